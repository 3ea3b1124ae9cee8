package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
)

// CreatePlanRequest represents a request to create a plan
type CreatePlanRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Description   string `json:"description" binding:"max=1000"`
	IncludeExcess *bool  `json:"include_excess"`
}

// UpdatePlanRequest represents a request to edit a plan's settings
type UpdatePlanRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Description   string `json:"description" binding:"max=1000"`
	IncludeExcess bool   `json:"include_excess"`
}

// RecalculateRequest triggers a recalculation. Exactly one plan id is accepted.
type RecalculateRequest struct {
	PlanIDs []uuid.UUID `json:"plan_ids" binding:"required"`
}

// PlanListFilter represents query parameters for listing plans
type PlanListFilter struct {
	State    string `form:"state" binding:"omitempty,oneof=DRAFT ACTIVE DEPRECATED CANCELLED"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func (f PlanListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Page = f.Page
	filter.PageSize = f.PageSize
	if f.State != "" {
		filter.Filters["state"] = f.State
	}
	return filter.Normalize()
}

// SummaryResponse represents plan health counts
type SummaryResponse struct {
	ComputedAt   time.Time `json:"computed_at"`
	Total        int       `json:"total"`
	Valid        int       `json:"valid"`
	Late         int       `json:"late"`
	WithoutStock int       `json:"without_stock"`
	// Excess is omitted for plans that do not report unmet supply.
	Excess *int `json:"excess,omitempty"`
}

func toSummaryResponse(computedAt time.Time, s planning.Summary) SummaryResponse {
	return SummaryResponse{
		ComputedAt:   computedAt,
		Total:        s.Total,
		Valid:        s.Valid,
		Late:         s.Late,
		WithoutStock: s.WithoutStock,
		Excess:       s.Excess,
	}
}

// PlanResponse represents a plan in API responses
type PlanResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	IncludeExcess bool             `json:"include_excess"`
	State         string           `json:"state"`
	ComputedAt    *time.Time       `json:"computed_at,omitempty"`
	Summary       *SummaryResponse `json:"summary,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Version       int              `json:"version"`
}

// ToPlanResponse converts a plan. The summary is filled only when the
// plan was computed and its lines are loaded.
func ToPlanResponse(p *planning.Plan) PlanResponse {
	resp := PlanResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		IncludeExcess: p.IncludeExcess,
		State:         string(p.State),
		ComputedAt:    p.ComputedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
	if p.HasBaseline() && p.Lines != nil {
		summary := toSummaryResponse(*p.ComputedAt, planning.Summarize(p.Lines, p.IncludeExcess))
		resp.Summary = &summary
	}
	return resp
}

// LineQuery represents the filters accepted when listing plan lines
type LineQuery struct {
	Kind      string     `form:"kind" binding:"omitempty,oneof=valid late without_stock excess"`
	ProductID *uuid.UUID `form:"product_id"`
	MinLag    *int       `form:"min_lag"`
	MaxLag    *int       `form:"max_lag"`
}

func (q LineQuery) ToFilter() (planning.LineFilter, error) {
	kind := planning.LineKind(q.Kind)
	if !kind.IsValid() {
		return planning.LineFilter{}, shared.ErrInvalidInput.WithMessage("Unknown line kind: " + q.Kind)
	}
	if q.MinLag != nil && q.MaxLag != nil && *q.MinLag > *q.MaxLag {
		return planning.LineFilter{}, shared.ErrInvalidInput.WithMessage("min_lag cannot exceed max_lag")
	}
	return planning.LineFilter{
		Kind:      kind,
		ProductID: q.ProductID,
		MinLag:    q.MinLag,
		MaxLag:    q.MaxLag,
	}, nil
}

// PlanLineResponse represents one plan line with its classification
type PlanLineResponse struct {
	ID              uuid.UUID  `json:"id"`
	Sequence        int        `json:"sequence"`
	ProductID       uuid.UUID  `json:"product_id"`
	Quantity        int64      `json:"quantity"`
	SourceKind      string     `json:"source_kind,omitempty"`
	SourceID        *uuid.UUID `json:"source_id,omitempty"`
	SourceDate      *time.Time `json:"source_date,omitempty"`
	DestinationKind string     `json:"destination_kind,omitempty"`
	DestinationID   *uuid.UUID `json:"destination_id,omitempty"`
	DestinationDate *time.Time `json:"destination_date,omitempty"`
	DayDifference   *int       `json:"day_difference,omitempty"`
	Valid           bool       `json:"valid"`
	Late            bool       `json:"late"`
	WithoutStock    bool       `json:"without_stock"`
	Excess          bool       `json:"excess"`
}

func ToPlanLineResponse(l planning.PlanLine) PlanLineResponse {
	resp := PlanLineResponse{
		ID:              l.ID,
		Sequence:        l.Sequence,
		ProductID:       l.ProductID,
		Quantity:        l.Quantity,
		SourceKind:      string(l.Source.Kind),
		SourceID:        l.Source.IDPtr(),
		SourceDate:      l.SourceDate,
		DestinationKind: string(l.Destination.Kind),
		DestinationID:   l.Destination.IDPtr(),
		DestinationDate: l.DestinationDate,
		Valid:           l.IsValid(),
		Late:            l.IsLate(),
		WithoutStock:    l.IsWithoutStock(),
		Excess:          l.IsExcess(),
	}
	if days, ok := l.DayDifference(); ok {
		resp.DayDifference = &days
	}
	return resp
}

func toPlanLineResponses(lines []planning.PlanLine) []PlanLineResponse {
	out := make([]PlanLineResponse, len(lines))
	for i, l := range lines {
		out[i] = ToPlanLineResponse(l)
	}
	return out
}

// RecalculationResult reports the outcome of a recalculation
type RecalculationResult struct {
	PlanID     uuid.UUID       `json:"plan_id"`
	ComputedAt time.Time       `json:"computed_at"`
	Areas      int             `json:"areas"`
	Requests   int             `json:"requests"`
	Summary    SummaryResponse `json:"summary"`
	DurationMs int64           `json:"duration_ms"`
}

// ExportResponse points at an exported CSV file
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Lines     int       `json:"lines"`
}
