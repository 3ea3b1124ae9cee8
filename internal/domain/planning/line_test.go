package planning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(source LineRef, src *time.Time, dest LineRef, dst *time.Time) PlanLine {
	return PlanLine{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		Quantity:        1,
		Source:          source,
		SourceDate:      src,
		Destination:     dest,
		DestinationDate: dst,
	}
}

func TestPlanLine_DayDifference(t *testing.T) {
	req := RequestRef(uuid.New())
	dst := RequestRef(uuid.New())

	t.Run("whole days", func(t *testing.T) {
		lag, ok := line(req, day(3), dst, day(10)).DayDifference()
		require.True(t, ok)
		assert.Equal(t, 7, lag)

		lag, ok = line(req, day(10), dst, day(3)).DayDifference()
		require.True(t, ok)
		assert.Equal(t, -7, lag)
	})

	t.Run("ignores time of day", func(t *testing.T) {
		src := time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC)
		dest := time.Date(2024, 3, 4, 0, 1, 0, 0, time.UTC)
		lag, ok := line(req, &src, dst, &dest).DayDifference()
		require.True(t, ok)
		assert.Equal(t, 1, lag)
	})

	t.Run("undefined when a date is missing", func(t *testing.T) {
		for _, l := range []PlanLine{
			line(req, nil, dst, day(3)),
			line(req, day(3), dst, nil),
			line(req, nil, dst, nil),
		} {
			lag, ok := l.DayDifference()
			assert.False(t, ok)
			assert.Zero(t, lag)
		}
	})
}

func TestPlanLine_Classification(t *testing.T) {
	area := AreaRef(uuid.New())
	req := RequestRef(uuid.New())
	dst := RequestRef(uuid.New())

	tests := []struct {
		name         string
		line         PlanLine
		valid        bool
		late         bool
		withoutStock bool
		excess       bool
	}{
		{"on-hand in time", line(area, day(1), dst, day(5)), true, false, false, false},
		{"on-hand after demand is still not late", line(area, day(9), dst, day(5)), true, false, false, false},
		{"on-hand with undated demand", line(area, day(1), dst, nil), true, false, false, false},
		{"transfer arrives before", line(req, day(2), dst, day(5)), true, false, false, false},
		{"transfer arrives after", line(req, day(8), dst, day(5)), false, true, false, false},
		{"transfer same day", line(req, day(5), dst, day(5)), false, false, false, false},
		{"transfer undated", line(req, nil, dst, day(5)), false, true, false, false},
		{"without stock", line(NoRef(), nil, dst, day(5)), false, false, true, false},
		{"area excess", line(area, day(1), NoRef(), nil), false, false, false, true},
		{"transfer excess", line(req, day(1), NoRef(), nil), false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.line.IsValid(), "valid")
			assert.Equal(t, tt.late, tt.line.IsLate(), "late")
			assert.Equal(t, tt.withoutStock, tt.line.IsWithoutStock(), "without stock")
			assert.Equal(t, tt.excess, tt.line.IsExcess(), "excess")
		})
	}
}

func TestNewPlanLine(t *testing.T) {
	product := uuid.New()
	req := RequestRef(uuid.New())

	t.Run("truncates dates", func(t *testing.T) {
		at := time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)
		l, err := NewPlanLine(product, 3, req, &at, NoRef(), nil)
		require.NoError(t, err)
		assert.Equal(t, day(5), l.SourceDate)
		assert.NotEqual(t, uuid.Nil, l.ID)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewPlanLine(product, 0, req, nil, NoRef(), nil)
		assert.ErrorIs(t, err, ErrInvalidPlanLine)
	})

	t.Run("rejects line without sides", func(t *testing.T) {
		_, err := NewPlanLine(product, 1, NoRef(), nil, NoRef(), nil)
		assert.ErrorIs(t, err, ErrInvalidPlanLine)
	})

	t.Run("rejects area destination", func(t *testing.T) {
		_, err := NewPlanLine(product, 1, req, nil, AreaRef(uuid.New()), nil)
		assert.ErrorIs(t, err, ErrInvalidPlanLine)
	})
}

func TestParseLineRef(t *testing.T) {
	id := uuid.New()

	ref, err := ParseLineRef("AREA", &id)
	require.NoError(t, err)
	assert.Equal(t, AreaRef(id), ref)

	ref, err = ParseLineRef("", nil)
	require.NoError(t, err)
	assert.True(t, ref.IsNone())
	assert.Nil(t, ref.IDPtr())
	assert.Equal(t, "-", ref.String())

	_, err = ParseLineRef("REQUEST", nil)
	assert.Error(t, err)
	_, err = ParseLineRef("MOVE", &id)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	area := AreaRef(uuid.New())
	req := RequestRef(uuid.New())
	dst := RequestRef(uuid.New())
	lines := []PlanLine{
		line(area, day(1), dst, day(5)),
		line(req, day(2), dst, day(5)),
		line(req, day(5), dst, day(5)),
		line(req, day(9), dst, day(5)),
		line(NoRef(), nil, dst, day(5)),
		line(area, day(1), NoRef(), nil),
	}

	s := Summarize(lines, true)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.Valid)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 1, s.WithoutStock)
	require.NotNil(t, s.Excess)
	assert.Equal(t, 1, *s.Excess)

	s = Summarize(lines, false)
	assert.Nil(t, s.Excess, "excess is not reported rather than zero")

	s = Summarize(nil, true)
	assert.Equal(t, 0, s.Total)
	require.NotNil(t, s.Excess)
	assert.Equal(t, 0, *s.Excess)
}

func TestFilterLines(t *testing.T) {
	area := AreaRef(uuid.New())
	in := RequestRef(uuid.New())
	out := RequestRef(uuid.New())
	now := *day(4)

	lines := []PlanLine{
		line(area, day(4), out, day(6)),
		line(in, day(7), out, day(6)),
		line(in, nil, out, day(10)),
		line(NoRef(), nil, out, day(6)),
		line(in, day(2), NoRef(), nil),
	}
	lines[1].ProductID = lines[0].ProductID

	assert.Len(t, FilterLines(lines, LineFilter{}, now), 5)
	assert.Len(t, FilterLines(lines, LineFilter{Kind: LineKindLate}, now), 2)
	assert.Len(t, FilterLines(lines, LineFilter{Kind: LineKindExcess}, now), 1)
	assert.Len(t, FilterLines(lines, LineFilter{Kind: LineKindWithoutStock}, now), 1)
	assert.Len(t, FilterLines(lines, LineFilter{ProductID: &lines[0].ProductID}, now), 2)
	assert.Len(t, FilterLines(lines, LineFilter{RequestID: &in.ID}, now), 3)

	t.Run("lag range coalesces missing source date to today", func(t *testing.T) {
		got := FilterLines(lines, LineFilter{MinLag: ptr(5)}, now)
		require.Len(t, got, 1)
		assert.Equal(t, day(10), got[0].DestinationDate)
	})

	t.Run("lag range excludes lines without destination date", func(t *testing.T) {
		got := FilterLines(lines, LineFilter{MaxLag: ptr(0)}, now)
		require.Len(t, got, 1)
		assert.Equal(t, -1, mustLag(t, got[0]))
	})
}

func mustLag(t *testing.T, l PlanLine) int {
	t.Helper()
	lag, ok := l.DayDifference()
	require.True(t, ok)
	return lag
}
