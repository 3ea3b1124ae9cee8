package planning

import (
	"time"

	"github.com/google/uuid"
)

// PlanLine pairs a quantity of supply with a demand, or records an unmatched
// leftover on either side. Lines are immutable once emitted.
type PlanLine struct {
	ID              uuid.UUID
	PlanID          uuid.UUID
	ProductID       uuid.UUID
	Quantity        int64
	Source          LineRef
	SourceDate      *time.Time
	Destination     LineRef
	DestinationDate *time.Time
	Sequence        int
}

// NewPlanLine builds a line, enforcing a positive quantity, at least one
// present side, and a request-only destination.
func NewPlanLine(productID uuid.UUID, quantity int64, source LineRef, sourceDate *time.Time, destination LineRef, destinationDate *time.Time) (PlanLine, error) {
	line := PlanLine{
		ID:              uuid.New(),
		ProductID:       productID,
		Quantity:        quantity,
		Source:          source,
		SourceDate:      toDate(sourceDate),
		Destination:     destination,
		DestinationDate: toDate(destinationDate),
	}
	if err := line.Validate(); err != nil {
		return PlanLine{}, err
	}
	return line, nil
}

// Validate checks the structural rules of a line.
func (l PlanLine) Validate() error {
	if l.Quantity <= 0 {
		return ErrInvalidPlanLine.WithMessage("Plan line quantity must be positive")
	}
	if l.Source.IsNone() && l.Destination.IsNone() {
		return ErrInvalidPlanLine.WithMessage("Plan line needs a source or a destination")
	}
	if l.Destination.IsArea() {
		return ErrInvalidPlanLine.WithMessage("Plan line destination must be a transfer request")
	}
	if l.ProductID == uuid.Nil {
		return ErrInvalidPlanLine.WithMessage("Plan line product is required")
	}
	return nil
}

// DayDifference is the destination date minus the source date in whole days.
// ok is false when either date is missing; there is no numeric default.
func (l PlanLine) DayDifference() (days int, ok bool) {
	if l.SourceDate == nil || l.DestinationDate == nil {
		return 0, false
	}
	return daysBetween(*l.SourceDate, *l.DestinationDate), true
}

// SearchLag is the lag used when filtering lines by day difference: lines
// without a destination date never match, and a missing source date counts
// as today.
func (l PlanLine) SearchLag(today time.Time) (days int, ok bool) {
	if l.DestinationDate == nil {
		return 0, false
	}
	src := today
	if l.SourceDate != nil {
		src = *l.SourceDate
	}
	return daysBetween(src, *l.DestinationDate), true
}

// IsLate reports a request-sourced pairing whose supply arrives after the
// demand, or whose timing is unknown. On-hand stock is never late.
func (l PlanLine) IsLate() bool {
	if !l.Source.IsRequest() || l.Destination.IsNone() {
		return false
	}
	lag, ok := l.DayDifference()
	return !ok || lag < 0
}

// IsValid reports a pairing that is served in time: on-hand stock, or a
// transfer arriving strictly before the demand. A zero lag is not valid.
func (l PlanLine) IsValid() bool {
	if l.Source.IsNone() || l.Destination.IsNone() {
		return false
	}
	if l.Source.IsArea() {
		return true
	}
	lag, ok := l.DayDifference()
	return ok && lag > 0
}

// IsWithoutStock reports demand no supply could cover.
func (l PlanLine) IsWithoutStock() bool {
	return l.Source.IsNone()
}

// IsExcess reports supply no demand claimed.
func (l PlanLine) IsExcess() bool {
	return l.Destination.IsNone()
}

// References reports whether either side of the line points at the request.
func (l PlanLine) References(requestID uuid.UUID) bool {
	return (l.Source.IsRequest() && l.Source.ID == requestID) ||
		(l.Destination.IsRequest() && l.Destination.ID == requestID)
}

func toDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &day
}

func daysBetween(from, to time.Time) int {
	return int(civilDay(to) - civilDay(from))
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
