package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults presign expiration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, validConfig(""))
		require.NoError(t, err)
		assert.Equal(t, "exports", s.Bucket())
		assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
	})

	t.Run("options override config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(ctx, validConfig(""), WithPresignExpiration(time.Hour), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		ssl    bool
		expect string
	}{
		{"", false, defaultEndpoint},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.ssl)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, got)
	}
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig("http://localhost:9000"))
	require.NoError(t, err)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	t.Run("zero uses the configured lifetime", func(t *testing.T) {
		raw, expiresAt, err := s.GenerateDownloadURL(context.Background(), "t/p/lines.csv", 0)
		require.NoError(t, err)
		assert.Equal(t, fixed.Add(defaultPresignExpiration), expiresAt)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/exports/t/p/lines.csv", u.Path)
		assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	})

	t.Run("explicit lifetime", func(t *testing.T) {
		_, expiresAt, err := s.GenerateDownloadURL(context.Background(), "k.csv", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, fixed.Add(time.Minute), expiresAt)
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.GenerateDownloadURL(context.Background(), "", 0)
		assert.Error(t, err)
	})
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     string
		gotType     string
		gotMethod   string
		respondWith = http.StatusOK
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotBody, gotType = r.Method, r.URL.Path, string(body), r.Header.Get("Content-Type")
		w.WriteHeader(respondWith)
	}))
	defer server.Close()

	s, err := NewS3ObjectStorage(context.Background(), validConfig(server.URL))
	require.NoError(t, err)

	t.Run("puts the object", func(t *testing.T) {
		require.NoError(t, s.Upload(context.Background(), "tenant/plan/lines.csv", []byte("a,b\n"), "text/csv"))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/exports/tenant/plan/lines.csv", gotPath)
		assert.Equal(t, "a,b\n", gotBody)
		assert.Equal(t, "text/csv", gotType)
	})

	t.Run("empty key", func(t *testing.T) {
		assert.Error(t, s.Upload(context.Background(), "", nil, "text/csv"))
	})

	t.Run("server error", func(t *testing.T) {
		mu.Lock()
		respondWith = http.StatusForbidden
		mu.Unlock()

		err := s.Upload(context.Background(), "k.csv", []byte("x"), "text/csv")
		assert.ErrorContains(t, err, "failed to upload object")
	})
}
