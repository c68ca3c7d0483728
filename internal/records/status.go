package records

import (
	"strings"

	"sheetdesk/internal/dates"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
)

// DeriveStatus: completed when completion is filled in, overdue when start is
// strictly before today, pending otherwise.
func DeriveStatus(start, completion string, today dates.Date) Status {
	if strings.TrimSpace(completion) != "" {
		return StatusCompleted
	}
	if d, ok := dates.Parse(start); ok && dates.IsBefore(d, today) {
		return StatusOverdue
	}
	return StatusPending
}

// StatusFields names the columns status derivation reads.
type StatusFields struct {
	Start      string
	Completion string
	Assignee   string
}

func (f StatusFields) Of(r Record, today dates.Date) Status {
	return DeriveStatus(r.Get(f.Start), r.Get(f.Completion), today)
}

// Counts: Pending includes every record that is not completed, so Overdue is a
// subset of it.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

func (c *Counts) add(s Status) {
	c.Total++
	switch s {
	case StatusCompleted:
		c.Completed++
	case StatusOverdue:
		c.Pending++
		c.Overdue++
	default:
		c.Pending++
	}
}

// CompletionRate is completed/total as a percentage rounded to one decimal.
func (c Counts) CompletionRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(int(float64(c.Completed)*1000/float64(c.Total)+0.5)) / 10
}

// Unassigned is the PerAssignee bucket for records with a blank assignee.
const Unassigned = "Unassigned"

type Summary struct {
	Counts
	PerAssignee map[string]Counts `json:"perAssignee"`
}

func Aggregate(rs []Record, f StatusFields, today dates.Date) Summary {
	sum := Summary{PerAssignee: map[string]Counts{}}
	for _, r := range rs {
		s := f.Of(r, today)
		sum.add(s)
		if f.Assignee == "" {
			continue
		}
		name := strings.TrimSpace(r.Get(f.Assignee))
		if name == "" {
			name = Unassigned
		}
		c := sum.PerAssignee[name]
		c.add(s)
		sum.PerAssignee[name] = c
	}
	return sum
}
