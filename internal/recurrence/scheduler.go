// Package recurrence computes due dates for recurring tasks over a working-day
// calendar.
package recurrence

import (
	"errors"
	"fmt"

	"sheetdesk/internal/dates"
	"sheetdesk/internal/workdays"
)

// ErrNoFutureWorkingDays means the calendar has no day on or after the start date.
var ErrNoFutureWorkingDays = errors.New("no working days on or after the start date")

// StartDateAdjusted is an informational notice: the requested start date is
// not a working day, so the first later working day was used.
type StartDateAdjusted struct {
	Original dates.Date `json:"original"`
	Used     dates.Date `json:"used"`
}

func (n StartDateAdjusted) String() string {
	return fmt.Sprintf("the selected date (%s) is not in the working day calendar; the next available working day will be used instead: %s", n.Original, n.Used)
}

// Schedule is the ordered list of due dates for one assignee.
type Schedule struct {
	Dates    []dates.Date
	Adjusted *StartDateAdjusted
}

// Occurrence is one scheduled instance for one assignee.
type Occurrence struct {
	Assignee string     `json:"assignee"`
	Due      dates.Date `json:"due"`
	Sequence int        `json:"sequence"`
}

// Generate walks the working days on or after start according to freq.
func Generate(start dates.Date, freq Frequency, calendar *workdays.Index) (Schedule, error) {
	if calendar == nil {
		return Schedule{}, workdays.ErrNoWorkingDays
	}

	future, err := workdays.FromDates(calendar.DatesOnOrAfter(start))
	if err != nil {
		return Schedule{}, ErrNoFutureWorkingDays
	}

	var sched Schedule
	cur := future.IndexOf(start)
	if cur == -1 {
		cur = 0
		sched.Adjusted = &StartDateAdjusted{Original: start, Used: future.First()}
	}

	for cur < future.Len() {
		sched.Dates = append(sched.Dates, future.At(cur))
		next, ok := advance(future, cur, freq)
		if !ok || next <= cur {
			break
		}
		cur = next
	}
	return sched, nil
}

// GenerateForAssignees runs Generate once per assignee with the same inputs.
func GenerateForAssignees(start dates.Date, freq Frequency, calendar *workdays.Index, assignees []string) ([]Occurrence, *StartDateAdjusted, error) {
	sched, err := Generate(start, freq, calendar)
	if err != nil {
		return nil, nil, err
	}

	out := make([]Occurrence, 0, len(assignees)*len(sched.Dates))
	for _, a := range assignees {
		for i, d := range sched.Dates {
			out = append(out, Occurrence{Assignee: a, Due: d, Sequence: i + 1})
		}
	}
	return out, sched.Adjusted, nil
}

// advance returns the next position in future, or ok=false to stop.
func advance(future *workdays.Index, cur int, freq Frequency) (int, bool) {
	if freq == OneTime {
		return 0, false
	}
	if freq == Daily {
		return cur + 1, true
	}

	current := future.At(cur)
	if days, months, years, ok := freq.offset(); ok {
		target := current.AddDays(days).AddMonths(months).AddYears(years)
		// Past the end of the calendar this falls back to the last day, which
		// still counts as long as it is later than the current one.
		_, next := future.NearestOnOrAfter(target)
		return next, true
	}

	if week, ok := freq.weekNumber(); ok {
		target, found := endOfWeek(future, current.AddMonths(1), week)
		if !found {
			return 0, false
		}
		return future.IndexOf(target), true
	}

	return 0, false
}

// endOfWeek picks the last working day of the requested week of month's
// month. Weeks are split wherever the weekday stops increasing.
func endOfWeek(future *workdays.Index, month dates.Date, week int) (dates.Date, bool) {
	days := future.InMonth(month.Year, month.Month)
	if len(days) == 0 {
		return dates.Date{}, false
	}

	var groups [][]dates.Date
	var group []dates.Date
	for _, d := range days {
		if len(group) > 0 && d.Weekday() <= group[len(group)-1].Weekday() {
			groups = append(groups, group)
			group = nil
		}
		group = append(group, d)
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}

	lastOfMonth := days[len(days)-1]
	switch {
	case len(groups) == 0:
		return lastOfMonth, true
	case week == lastWeekNumber:
		g := groups[len(groups)-1]
		return g[len(g)-1], true
	case week >= 1 && week <= len(groups):
		g := groups[week-1]
		return g[len(g)-1], true
	}
	return lastOfMonth, true
}
