// Package workdays holds the business-day calendar used to place recurring
// task occurrences.
package workdays

import (
	"errors"
	"sort"
	"time"

	"sheetdesk/internal/dates"
)

// ErrNoWorkingDays is returned when the calendar source yields no parseable day.
var ErrNoWorkingDays = errors.New("working day calendar has no valid dates")

// Index is an ascending, duplicate-free list of working days. A constructed
// Index is never empty.
type Index struct {
	days []dates.Date
}

// New parses raw calendar cells, dropping anything that is not a date.
func New(values []string) (*Index, error) {
	parsed := make([]dates.Date, 0, len(values))
	for _, v := range values {
		if d, ok := dates.Parse(v); ok {
			parsed = append(parsed, d)
		}
	}
	return FromDates(parsed)
}

// FromDates sorts and deduplicates ds.
func FromDates(ds []dates.Date) (*Index, error) {
	days := make([]dates.Date, 0, len(ds))
	for _, d := range ds {
		if !d.IsZero() {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, ErrNoWorkingDays
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	out := days[:1]
	for _, d := range days[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return &Index{days: out}, nil
}

func (ix *Index) Len() int { return len(ix.days) }

// Days returns a copy of the stored days.
func (ix *Index) Days() []dates.Date {
	return append([]dates.Date(nil), ix.days...)
}

// At returns the i-th stored day.
func (ix *Index) At(i int) dates.Date { return ix.days[i] }

// First and Last are the bounds of the calendar.
func (ix *Index) First() dates.Date { return ix.days[0] }
func (ix *Index) Last() dates.Date  { return ix.days[len(ix.days)-1] }

// DatesOnOrAfter returns every stored day >= d, in order.
func (ix *Index) DatesOnOrAfter(d dates.Date) []dates.Date {
	i := ix.search(d)
	return append([]dates.Date(nil), ix.days[i:]...)
}

// NearestOnOrAfter returns the earliest stored day >= target and its
// position. When none exists it falls back to the latest stored day before
// target.
func (ix *Index) NearestOnOrAfter(target dates.Date) (dates.Date, int) {
	i := ix.search(target)
	if i == len(ix.days) {
		i = len(ix.days) - 1
	}
	return ix.days[i], i
}

// IndexOf returns the position of d, or -1.
func (ix *Index) IndexOf(d dates.Date) int {
	i := ix.search(d)
	if i < len(ix.days) && ix.days[i] == d {
		return i
	}
	return -1
}

// InMonth returns the stored days that fall in the given month.
func (ix *Index) InMonth(year int, month time.Month) []dates.Date {
	var out []dates.Date
	for _, d := range ix.days {
		if d.Year == year && d.Month == month {
			out = append(out, d)
		}
	}
	return out
}

// search is the first position whose day is >= d.
func (ix *Index) search(d dates.Date) int {
	return sort.Search(len(ix.days), func(i int) bool { return !ix.days[i].Before(d) })
}
