package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/stock"
)

const dateLayout = "2006-01-02"

// Scenario is an offline planning input: the areas to plan, their on-hand
// stock and the pending transfers between them.
type Scenario struct {
	Today         string             `json:"today"`
	IncludeExcess bool               `json:"include_excess"`
	Areas         []uuid.UUID        `json:"areas"`
	Stock         []ScenarioStock    `json:"stock"`
	Transfers     []ScenarioTransfer `json:"transfers"`
}

// ScenarioStock is an on-hand quantity of one product in one area.
type ScenarioStock struct {
	AreaID    uuid.UUID `json:"area_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// ScenarioTransfer is a transfer request. Dates use YYYY-MM-DD; a missing
// area means the end is outside every storage area.
type ScenarioTransfer struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Quantity      int64      `json:"quantity"`
	FromAreaID    *uuid.UUID `json:"from_area_id,omitempty"`
	ToAreaID      *uuid.UUID `json:"to_area_id,omitempty"`
	EffectiveDate string     `json:"effective_date,omitempty"`
	PlannedDate   string     `json:"planned_date,omitempty"`
	State         string     `json:"state,omitempty"`
}

// Outcome is what a scenario run prints.
type Outcome struct {
	Today   string           `json:"today"`
	Areas   int              `json:"areas"`
	Summary planning.Summary `json:"summary"`
	Lines   []OutcomeLine    `json:"lines"`
}

// OutcomeLine is one plan line with its classification spelled out.
type OutcomeLine struct {
	Sequence        int      `json:"sequence"`
	ProductID       string   `json:"product_id"`
	Quantity        int64    `json:"quantity"`
	Source          string   `json:"source"`
	SourceDate      string   `json:"source_date,omitempty"`
	Destination     string   `json:"destination"`
	DestinationDate string   `json:"destination_date,omitempty"`
	DayDifference   *int     `json:"day_difference,omitempty"`
	Kinds           []string `json:"kinds,omitempty"`
}

// ReadScenario decodes a scenario, rejecting unknown fields.
func ReadScenario(r io.Reader) (*Scenario, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// Run plans the scenario with the same engine the server uses. today is
// used when the scenario does not pin its own date.
func (s *Scenario) Run(ctx context.Context, today time.Time, parallelism int) (*Outcome, error) {
	if s.Today != "" {
		t, err := time.ParseInLocation(dateLayout, s.Today, today.Location())
		if err != nil {
			return nil, fmt.Errorf("today: %w", err)
		}
		today = t
	}

	snapshot := make(planning.Snapshot, len(s.Stock))
	for _, st := range s.Stock {
		key := planning.StockKey{AreaID: st.AreaID, ProductID: st.ProductID}
		snapshot[key] += st.Quantity
	}

	requests := make([]stock.TransferRequest, 0, len(s.Transfers))
	for i, t := range s.Transfers {
		req, err := t.request(i, today)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	engine := planning.NewEngine(planning.NewStaticSnapshot(snapshot), planning.WithParallelism(parallelism))
	res, err := engine.Run(ctx, planning.RunInput{
		Areas:         s.Areas,
		Requests:      requests,
		IncludeExcess: s.IncludeExcess,
		Today:         today,
	})
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Today:   today.Format(dateLayout),
		Areas:   res.Areas,
		Summary: planning.Summarize(res.Lines, s.IncludeExcess),
		Lines:   make([]OutcomeLine, 0, len(res.Lines)),
	}
	for i, l := range res.Lines {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		l.Sequence = i + 1
		out.Lines = append(out.Lines, outcomeLine(l))
	}
	return out, nil
}

func (t ScenarioTransfer) request(i int, today time.Time) (stock.TransferRequest, error) {
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	state := stock.TransferState(t.State)
	if state == "" {
		state = stock.TransferStateDraft
	}
	if !state.IsValid() {
		return stock.TransferRequest{}, fmt.Errorf("transfer %d: unknown state %q", i, t.State)
	}
	effective, err := parseDate(t.EffectiveDate, today.Location())
	if err != nil {
		return stock.TransferRequest{}, fmt.Errorf("transfer %d effective_date: %w", i, err)
	}
	planned, err := parseDate(t.PlannedDate, today.Location())
	if err != nil {
		return stock.TransferRequest{}, fmt.Errorf("transfer %d planned_date: %w", i, err)
	}

	req := stock.TransferRequest{
		ProductID:     t.ProductID,
		Quantity:      t.Quantity,
		FromAreaID:    t.FromAreaID,
		ToAreaID:      t.ToAreaID,
		EffectiveDate: effective,
		PlannedDate:   planned,
		State:         state,
	}
	req.ID = id
	// File order breaks date ties.
	req.CreatedAt = today.Add(time.Duration(i) * time.Second)
	return req, nil
}

func parseDate(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func outcomeLine(l planning.PlanLine) OutcomeLine {
	out := OutcomeLine{
		Sequence:        l.Sequence,
		ProductID:       l.ProductID.String(),
		Quantity:        l.Quantity,
		Source:          l.Source.String(),
		SourceDate:      formatDate(l.SourceDate),
		Destination:     l.Destination.String(),
		DestinationDate: formatDate(l.DestinationDate),
	}
	if days, ok := l.DayDifference(); ok {
		out.DayDifference = &days
	}
	if l.IsValid() {
		out.Kinds = append(out.Kinds, string(planning.LineKindValid))
	}
	if l.IsLate() {
		out.Kinds = append(out.Kinds, string(planning.LineKindLate))
	}
	if l.IsWithoutStock() {
		out.Kinds = append(out.Kinds, string(planning.LineKindWithoutStock))
	}
	if l.IsExcess() {
		out.Kinds = append(out.Kinds, string(planning.LineKindExcess))
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
