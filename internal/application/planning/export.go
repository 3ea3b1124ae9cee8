package planning

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
)

// ErrExportUnavailable is returned when no object storage is configured.
var ErrExportUnavailable = shared.NewDomainError("EXPORT_UNAVAILABLE", "Plan export storage is not configured")

const csvContentType = "text/csv"

var csvHeader = []string{
	"sequence", "product_id", "quantity",
	"source_kind", "source_id", "source_date",
	"destination_kind", "destination_id", "destination_date",
	"day_difference", "valid", "late", "without_stock", "excess",
}

// ExportLines writes the plan lines as CSV to object storage and returns a
// presigned download URL.
func (s *PlanService) ExportLines(ctx context.Context, tenantID, id uuid.UUID) (*ExportResponse, error) {
	if s.storage == nil {
		return nil, ErrExportUnavailable
	}
	plan, err := s.loadComputed(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	data, err := EncodeLinesCSV(plan.Lines)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s/%s/%s.csv", s.exportPrefix, tenantID, plan.ID, plan.ComputedAt.UTC().Format("20060102T150405Z"))
	if err := s.storage.Upload(ctx, key, data, csvContentType); err != nil {
		return nil, fmt.Errorf("failed to upload plan export: %w", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sign plan export: %w", err)
	}
	return &ExportResponse{Key: key, URL: url, ExpiresAt: expiresAt, Lines: len(plan.Lines)}, nil
}

// EncodeLinesCSV renders lines with a header row. Dates are YYYY-MM-DD and
// absent values are empty cells.
func EncodeLinesCSV(lines []planning.PlanLine) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, l := range lines {
		lag := ""
		if days, ok := l.DayDifference(); ok {
			lag = strconv.Itoa(days)
		}
		record := []string{
			strconv.Itoa(l.Sequence),
			l.ProductID.String(),
			strconv.FormatInt(l.Quantity, 10),
			string(l.Source.Kind),
			refID(l.Source),
			csvDate(l.SourceDate),
			string(l.Destination.Kind),
			refID(l.Destination),
			csvDate(l.DestinationDate),
			lag,
			strconv.FormatBool(l.IsValid()),
			strconv.FormatBool(l.IsLate()),
			strconv.FormatBool(l.IsWithoutStock()),
			strconv.FormatBool(l.IsExcess()),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func refID(r planning.LineRef) string {
	if r.IsNone() {
		return ""
	}
	return r.ID.String()
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
