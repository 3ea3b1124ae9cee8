package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(r.URL.Query().Get("tenant"))
		if err != nil {
			http.Error(w, "bad tenant", http.StatusBadRequest)
			return
		}
		_ = hub.Serve(w, r, tenantID)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, tenantID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?tenant=" + tenantID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_DeliversToSameTenantOnly(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	defer hub.Close()
	server := newHubServer(t, hub)

	tenantA, tenantB := uuid.New(), uuid.New()
	connA := dial(t, server, tenantA)
	connB := dial(t, server, tenantB)
	require.Eventually(t, func() bool {
		return hub.ClientCount(tenantA) == 1 && hub.ClientCount(tenantB) == 1
	}, time.Second, 10*time.Millisecond)

	plan, err := planning.NewPlan(tenantA, "March")
	require.NoError(t, err)
	excess := 1
	event := planning.NewPlanRecalculatedEvent(plan, planning.Summary{Total: 3, Valid: 2, Excess: &excess})
	require.NoError(t, hub.Handle(context.Background(), event))

	_ = connA.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := connA.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type        string    `json:"type"`
		AggregateID uuid.UUID `json:"aggregate_id"`
		Payload     struct {
			Summary planning.Summary `json:"summary"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, planning.EventTypePlanRecalculated, got.Type)
	assert.Equal(t, plan.ID, got.AggregateID)
	assert.Equal(t, 3, got.Payload.Summary.Total)
	require.NotNil(t, got.Payload.Summary.Excess)
	assert.Equal(t, 1, *got.Payload.Summary.Excess)

	_ = connB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	server := newHubServer(t, hub)

	tenantID := uuid.New()
	conn := dial(t, server, tenantID)
	require.Eventually(t, func() bool { return hub.ClientCount(tenantID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(tenantID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsDisallowedOrigin(t *testing.T) {
	hub := NewHub(nil, WithAllowedOrigins("https://app.example.com"))
	server := newHubServer(t, hub)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?tenant=" + uuid.NewString()
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_EventTypes(t *testing.T) {
	hub := NewHub(nil)
	assert.Contains(t, hub.EventTypes(), planning.EventTypePlanRecalculated)
	assert.Contains(t, hub.EventTypes(), planning.EventTypePlanRecalculationFailed)
}
