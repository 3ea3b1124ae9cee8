package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StaticSnapshot serves a fixed set of on-hand quantities regardless of the
// requested instant. It backs offline runs and tests.
type StaticSnapshot struct {
	entries Snapshot
}

// NewStaticSnapshot wraps entries. The map is not copied.
func NewStaticSnapshot(entries Snapshot) *StaticSnapshot {
	if entries == nil {
		entries = Snapshot{}
	}
	return &StaticSnapshot{entries: entries}
}

// Snapshot returns the positive entries of the requested areas, narrowed to
// productFilter when it is not empty.
func (s *StaticSnapshot) Snapshot(_ context.Context, areaIDs []uuid.UUID, _ time.Time, productFilter []uuid.UUID) (Snapshot, error) {
	areas := make(map[uuid.UUID]struct{}, len(areaIDs))
	for _, id := range areaIDs {
		areas[id] = struct{}{}
	}
	var products map[uuid.UUID]struct{}
	if len(productFilter) > 0 {
		products = make(map[uuid.UUID]struct{}, len(productFilter))
		for _, id := range productFilter {
			products[id] = struct{}{}
		}
	}

	out := make(Snapshot)
	for key, qty := range s.entries {
		if qty <= 0 {
			continue
		}
		if _, ok := areas[key.AreaID]; !ok {
			continue
		}
		if products != nil {
			if _, ok := products[key.ProductID]; !ok {
				continue
			}
		}
		out[key] = qty
	}
	return out, nil
}
