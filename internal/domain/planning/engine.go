package planning

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"golang.org/x/sync/errgroup"
)

// StockKey identifies a product in a storage area.
type StockKey struct {
	AreaID    uuid.UUID
	ProductID uuid.UUID
}

// Snapshot maps (area, product) to on-hand quantity.
type Snapshot map[StockKey]int64

// StockSnapshotProvider returns on-hand quantities as of an instant. An
// empty productFilter means every product.
type StockSnapshotProvider interface {
	Snapshot(ctx context.Context, areaIDs []uuid.UUID, asOf time.Time, productFilter []uuid.UUID) (Snapshot, error)
}

// TransferFeed returns pending transfer requests.
type TransferFeed interface {
	FindPending(ctx context.Context, tenantID uuid.UUID) ([]stock.TransferRequest, error)
}

// Income is a pending inbound transfer and the part of it not yet promised
// to any outbound request.
type Income struct {
	Request   *stock.TransferRequest
	Remaining int64
}

// Partitioned is the demand and supply of one run, split by area.
type Partitioned struct {
	// Outgoing holds requests leaving each area, in date order.
	Outgoing map[uuid.UUID][]*stock.TransferRequest
	// Incoming holds inbound supply per (destination area, product), in
	// arrival order.
	Incoming map[StockKey][]*Income
	// Needed holds the products each area ships. Only filled when excess is
	// not reported.
	Needed map[uuid.UUID]map[uuid.UUID]struct{}

	incomingKeys []StockKey
}

// SortRequests orders requests by effective date, then planned date (both
// ascending with missing dates last), then creation time and id.
func SortRequests(reqs []*stock.TransferRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return lessRequest(reqs[i], reqs[j])
	})
}

func lessRequest(a, b *stock.TransferRequest) bool {
	if c := compareNullableTime(a.EffectiveDate, b.EffectiveDate); c != 0 {
		return c < 0
	}
	if c := compareNullableTime(a.PlannedDate, b.PlannedDate); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// compareNullableTime sorts nil after every date.
func compareNullableTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

// Partition validates and splits pending requests into per-area outgoing
// queues and per-(area, product) incoming queues. Requests that stay inside
// one area are ignored. A pending request with a non-positive quantity aborts
// the whole partition.
func Partition(requests []stock.TransferRequest, includeExcess bool) (*Partitioned, error) {
	ordered := make([]*stock.TransferRequest, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		if !r.IsPending() {
			continue
		}
		if r.Quantity <= 0 {
			return nil, shared.ErrInvalidQuantity.WithMessage(
				fmt.Sprintf("Transfer %s has non-positive quantity %d", r.ID, r.Quantity))
		}
		ordered = append(ordered, r)
	}
	SortRequests(ordered)

	p := &Partitioned{
		Outgoing: make(map[uuid.UUID][]*stock.TransferRequest),
		Incoming: make(map[StockKey][]*Income),
		Needed:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
	for _, r := range ordered {
		if r.IsInternal() {
			continue
		}
		if r.FromAreaID != nil {
			area := *r.FromAreaID
			p.Outgoing[area] = append(p.Outgoing[area], r)
			if !includeExcess {
				if p.Needed[area] == nil {
					p.Needed[area] = make(map[uuid.UUID]struct{})
				}
				p.Needed[area][r.ProductID] = struct{}{}
			}
		}
		if r.ToAreaID != nil {
			key := StockKey{AreaID: *r.ToAreaID, ProductID: r.ProductID}
			if _, seen := p.Incoming[key]; !seen {
				p.incomingKeys = append(p.incomingKeys, key)
			}
			p.Incoming[key] = append(p.Incoming[key], &Income{Request: r, Remaining: r.Quantity})
		}
	}
	return p, nil
}

// NeededProducts returns the product filter for an area in a stable order,
// or nil when there is none.
func (p *Partitioned) NeededProducts(areaID uuid.UUID) []uuid.UUID {
	set := p.Needed[areaID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// queuesFor returns a private view of the incoming queues of one area. The
// slices are copies so consuming them never touches shared map entries.
func (p *Partitioned) queuesFor(areaID uuid.UUID) map[uuid.UUID][]*Income {
	queues := make(map[uuid.UUID][]*Income)
	for _, key := range p.incomingKeys {
		if key.AreaID != areaID {
			continue
		}
		src := p.Incoming[key]
		q := make([]*Income, len(src))
		copy(q, src)
		queues[key.ProductID] = q
	}
	return queues
}

// Engine allocates on-hand stock and inbound supply to outbound demand.
type Engine struct {
	snapshots   StockSnapshotProvider
	parallelism int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithParallelism lets up to n areas allocate concurrently. Output is the
// same as a sequential run.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// NewEngine creates an engine reading on-hand stock from snapshots.
func NewEngine(snapshots StockSnapshotProvider, opts ...EngineOption) *Engine {
	e := &Engine{snapshots: snapshots, parallelism: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunInput is everything one recalculation reads.
type RunInput struct {
	// Areas are processed in this order. Areas that ship pending requests
	// without being listed follow in id order.
	Areas         []uuid.UUID
	Requests      []stock.TransferRequest
	IncludeExcess bool
	// Today is the single instant every stock snapshot of the run is read at.
	Today time.Time
}

// RunResult is the emitted lines in emission order.
type RunResult struct {
	Lines []PlanLine
	Areas int
}

// Run recomputes plan lines from scratch. Each area consumes its on-hand
// stock first, then its inbound supply in arrival order; whatever is left of
// a request becomes a without-stock line. With IncludeExcess, unclaimed
// stock and unclaimed inbound supply become excess lines.
func (e *Engine) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	p, err := Partition(in.Requests, in.IncludeExcess)
	if err != nil {
		return nil, err
	}
	areas := withShippingAreas(dedupeIDs(in.Areas), p.Outgoing)

	perArea := make([][]PlanLine, len(areas))
	if e.parallelism > 1 && len(areas) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.parallelism)
		for i, areaID := range areas {
			g.Go(func() error {
				lines, err := e.allocateArea(gctx, areaID, p, in)
				if err != nil {
					return err
				}
				perArea[i] = lines
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, areaID := range areas {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lines, err := e.allocateArea(ctx, areaID, p, in)
			if err != nil {
				return nil, err
			}
			perArea[i] = lines
		}
	}

	var lines []PlanLine
	for _, al := range perArea {
		lines = append(lines, al...)
	}
	if in.IncludeExcess {
		lines = append(lines, p.unclaimedIncomes()...)
	}
	return &RunResult{Lines: lines, Areas: len(areas)}, nil
}

// withShippingAreas appends, in id order, the areas that ship pending
// requests but are missing from listed.
func withShippingAreas(listed []uuid.UUID, outgoing map[uuid.UUID][]*stock.TransferRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(listed))
	for _, id := range listed {
		seen[id] = struct{}{}
	}
	var extra []uuid.UUID
	for id := range outgoing {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sortIDs(extra)
	return append(listed, extra...)
}

func (e *Engine) allocateArea(ctx context.Context, areaID uuid.UUID, p *Partitioned, in RunInput) ([]PlanLine, error) {
	outgoing := p.Outgoing[areaID]
	if len(outgoing) == 0 && !in.IncludeExcess {
		return nil, nil
	}

	var filter []uuid.UUID
	if !in.IncludeExcess {
		filter = p.NeededProducts(areaID)
	}
	snap, err := e.snapshots.Snapshot(ctx, []uuid.UUID{areaID}, in.Today, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock snapshot for area %s: %w", areaID, err)
	}
	onHand := make(map[uuid.UUID]int64, len(snap))
	for key, qty := range snap {
		if key.AreaID == areaID && qty > 0 {
			onHand[key.ProductID] = qty
		}
	}

	today := toDate(&in.Today)
	queues := p.queuesFor(areaID)
	var lines []PlanLine

	for _, req := range outgoing {
		remaining := req.Quantity
		when := toDate(req.When())

		if stockQty, ok := onHand[req.ProductID]; ok {
			take := min(remaining, stockQty)
			remaining -= take
			if left := stockQty - take; left > 0 {
				onHand[req.ProductID] = left
			} else {
				delete(onHand, req.ProductID)
			}
			if take > 0 {
				lines = append(lines, PlanLine{
					ID:              uuid.New(),
					ProductID:       req.ProductID,
					Quantity:        take,
					Source:          AreaRef(areaID),
					SourceDate:      today,
					Destination:     RequestRef(req.ID),
					DestinationDate: when,
				})
			}
		}

		queue := queues[req.ProductID]
		for remaining > 0 && len(queue) > 0 {
			income := queue[0]
			take := min(remaining, income.Remaining)
			remaining -= take
			income.Remaining -= take
			if income.Remaining <= 0 {
				queue = queue[1:]
			}
			lines = append(lines, PlanLine{
				ID:              uuid.New(),
				ProductID:       req.ProductID,
				Quantity:        take,
				Source:          RequestRef(income.Request.ID),
				SourceDate:      toDate(income.Request.When()),
				Destination:     RequestRef(req.ID),
				DestinationDate: when,
			})
		}
		queues[req.ProductID] = queue

		if remaining > 0 {
			lines = append(lines, PlanLine{
				ID:              uuid.New(),
				ProductID:       req.ProductID,
				Quantity:        remaining,
				Destination:     RequestRef(req.ID),
				DestinationDate: when,
			})
		}
	}

	if in.IncludeExcess && len(onHand) > 0 {
		products := make([]uuid.UUID, 0, len(onHand))
		for id := range onHand {
			products = append(products, id)
		}
		sortIDs(products)
		for _, productID := range products {
			lines = append(lines, PlanLine{
				ID:         uuid.New(),
				ProductID:  productID,
				Quantity:   onHand[productID],
				Source:     AreaRef(areaID),
				SourceDate: today,
			})
		}
	}
	return lines, nil
}

// unclaimedIncomes emits excess lines for inbound supply no area consumed,
// grouped by (area, product) in first-seen order.
func (p *Partitioned) unclaimedIncomes() []PlanLine {
	var lines []PlanLine
	for _, key := range p.incomingKeys {
		for _, income := range p.Incoming[key] {
			if income.Remaining <= 0 {
				continue
			}
			lines = append(lines, PlanLine{
				ID:         uuid.New(),
				ProductID:  income.Request.ProductID,
				Quantity:   income.Remaining,
				Source:     RequestRef(income.Request.ID),
				SourceDate: toDate(income.Request.When()),
			})
		}
	}
	return lines
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
