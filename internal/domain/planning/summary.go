package planning

import (
	"time"

	"github.com/google/uuid"
)

// Summary holds the plan health counts. Excess is nil when the plan does not
// report unmet supply, which is different from reporting zero.
type Summary struct {
	Total        int  `json:"total"`
	Valid        int  `json:"valid"`
	Late         int  `json:"late"`
	WithoutStock int  `json:"without_stock"`
	Excess       *int `json:"excess,omitempty"`
}

// Summarize rescans lines and counts them by classification.
func Summarize(lines []PlanLine, includeExcess bool) Summary {
	var s Summary
	excess := 0
	for _, l := range lines {
		s.Total++
		if l.IsValid() {
			s.Valid++
		}
		if l.IsLate() {
			s.Late++
		}
		if l.IsWithoutStock() {
			s.WithoutStock++
		}
		if l.IsExcess() {
			excess++
		}
	}
	if includeExcess {
		s.Excess = &excess
	}
	return s
}

// LineKind selects lines by classification.
type LineKind string

const (
	LineKindAll          LineKind = ""
	LineKindValid        LineKind = "valid"
	LineKindLate         LineKind = "late"
	LineKindWithoutStock LineKind = "without_stock"
	LineKindExcess       LineKind = "excess"
)

// IsValid checks if the kind is known
func (k LineKind) IsValid() bool {
	switch k {
	case LineKindAll, LineKindValid, LineKindLate, LineKindWithoutStock, LineKindExcess:
		return true
	}
	return false
}

// LineFilter narrows a plan's lines. Zero values match everything.
type LineFilter struct {
	Kind      LineKind
	ProductID *uuid.UUID
	RequestID *uuid.UUID
	MinLag    *int
	MaxLag    *int
}

// Matches reports whether the line passes the filter. Lag bounds use
// SearchLag, so they exclude lines without a destination date.
func (f LineFilter) Matches(l PlanLine, today time.Time) bool {
	switch f.Kind {
	case LineKindValid:
		if !l.IsValid() {
			return false
		}
	case LineKindLate:
		if !l.IsLate() {
			return false
		}
	case LineKindWithoutStock:
		if !l.IsWithoutStock() {
			return false
		}
	case LineKindExcess:
		if !l.IsExcess() {
			return false
		}
	}
	if f.ProductID != nil && l.ProductID != *f.ProductID {
		return false
	}
	if f.RequestID != nil && !l.References(*f.RequestID) {
		return false
	}
	if f.MinLag != nil || f.MaxLag != nil {
		lag, ok := l.SearchLag(today)
		if !ok {
			return false
		}
		if f.MinLag != nil && lag < *f.MinLag {
			return false
		}
		if f.MaxLag != nil && lag > *f.MaxLag {
			return false
		}
	}
	return true
}

// FilterLines returns the lines matching f, keeping their order.
func FilterLines(lines []PlanLine, f LineFilter, today time.Time) []PlanLine {
	out := make([]PlanLine, 0, len(lines))
	for _, l := range lines {
		if f.Matches(l, today) {
			out = append(out, l)
		}
	}
	return out
}
