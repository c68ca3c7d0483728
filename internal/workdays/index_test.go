package workdays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdesk/internal/dates"
)

func june(day int) dates.Date { return dates.MustNew(2024, time.June, day) }

func TestNew_ParsesDedupesAndSorts(t *testing.T) {
	ix, err := New([]string{"10/06/2024", "Date(2024,5,1)", "garbage", "", "3/6/2024", "2024-06-10", "05/06/2024"})
	require.NoError(t, err)

	assert.Equal(t, []dates.Date{june(1), june(3), june(5), june(10)}, ix.Days())
	assert.Equal(t, 4, ix.Len())
	assert.Equal(t, june(1), ix.First())
	assert.Equal(t, june(10), ix.Last())
}

func TestNew_NoValidDays(t *testing.T) {
	for _, in := range [][]string{nil, {}, {"", "header", "n/a"}} {
		ix, err := New(in)
		assert.Nil(t, ix)
		assert.ErrorIs(t, err, ErrNoWorkingDays)
	}
}

func TestDatesOnOrAfter(t *testing.T) {
	ix, err := FromDates([]dates.Date{june(1), june(3), june(5), june(10)})
	require.NoError(t, err)

	assert.Equal(t, []dates.Date{june(3), june(5), june(10)}, ix.DatesOnOrAfter(june(3)))
	assert.Equal(t, []dates.Date{june(5), june(10)}, ix.DatesOnOrAfter(june(4)))
	assert.Empty(t, ix.DatesOnOrAfter(june(11)))
	assert.Len(t, ix.DatesOnOrAfter(dates.MustNew(2024, time.January, 1)), 4)
}

func TestNearestOnOrAfter(t *testing.T) {
	ix, err := FromDates([]dates.Date{june(1), june(3), june(5), june(10)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		target dates.Date
		want   dates.Date
		idx    int
	}{
		{name: "exact", target: june(5), want: june(5), idx: 2},
		{name: "gap rounds up", target: june(6), want: june(10), idx: 3},
		{name: "before first", target: dates.MustNew(2024, time.May, 1), want: june(1), idx: 0},
		{name: "past end falls back to latest before", target: june(17), want: june(10), idx: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, idx := ix.NearestOnOrAfter(tt.target)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.idx, idx)
		})
	}
}

func TestIndexOfAndInMonth(t *testing.T) {
	ix, err := FromDates([]dates.Date{june(28), dates.MustNew(2024, time.July, 1), june(3)})
	require.NoError(t, err)

	assert.Equal(t, 0, ix.IndexOf(june(3)))
	assert.Equal(t, 2, ix.IndexOf(dates.MustNew(2024, time.July, 1)))
	assert.Equal(t, -1, ix.IndexOf(june(4)))
	assert.Equal(t, []dates.Date{june(3), june(28)}, ix.InMonth(2024, time.June))
	assert.Empty(t, ix.InMonth(2024, time.August))
}
