// Package submission turns a user's selection of pending tasks into validated
// outbound rows.
package submission

import (
	"sheetdesk/internal/dates"
)

type Outcome string

const (
	OutcomeDone   Outcome = "Done"
	OutcomeExtend Outcome = "Extend date"
)

func (o Outcome) Valid() bool {
	return o == OutcomeDone || o == OutcomeExtend
}

// Attachment is a file picked for a record. URL is set once it is stored.
type Attachment struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
	URL      string `json:"url,omitempty"`
}

func (a *Attachment) present() bool {
	return a != nil && (len(a.Data) > 0 || a.URL != "")
}

// Entry is the annotation carried by one selected record.
type Entry struct {
	Outcome    Outcome
	NextDate   dates.Date
	Remark     string
	Attachment *Attachment
}

// State is the selection: ids in selection order plus their entries.
// It is a value; every transition returns a new State.
type State struct {
	order   []string
	entries map[string]Entry
}

func (s State) Len() int { return len(s.order) }

// Selected returns the selected ids in the order they were selected.
func (s State) Selected() []string {
	return append([]string(nil), s.order...)
}

func (s State) IsSelected(id string) bool {
	_, ok := s.entries[id]
	return ok
}

func (s State) Entry(id string) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

func (s State) clone() State {
	out := State{
		order:   append([]string(nil), s.order...),
		entries: make(map[string]Entry, len(s.entries)),
	}
	for k, v := range s.entries {
		out.entries[k] = v
	}
	return out
}

func (s State) update(id string, fn func(*Entry)) State {
	e, ok := s.entries[id]
	if !ok {
		return s
	}
	out := s.clone()
	fn(&e)
	out.entries[id] = e
	return out
}

// Action is one user interaction on the selection.
type Action interface {
	apply(State) State
}

// Select adds id with outcome Done.
type Select struct{ ID string }

// Deselect removes id and every annotation it carried.
type Deselect struct{ ID string }

// SelectAll selects ids, keeping entries that are already selected.
type SelectAll struct{ IDs []string }

type ClearAll struct{}

// SetOutcome on a selected id. Done clears the next date; an unknown outcome
// leaves the entry without one.
type SetOutcome struct {
	ID      string
	Outcome Outcome
}

type SetNextDate struct {
	ID   string
	Date dates.Date
}

type SetRemark struct {
	ID     string
	Remark string
}

type Attach struct {
	ID         string
	Attachment *Attachment
}

func (a Select) apply(s State) State {
	if s.IsSelected(a.ID) || a.ID == "" {
		return s
	}
	out := s.clone()
	out.order = append(out.order, a.ID)
	out.entries[a.ID] = Entry{Outcome: OutcomeDone}
	return out
}

func (a Deselect) apply(s State) State {
	if !s.IsSelected(a.ID) {
		return s
	}
	out := s.clone()
	delete(out.entries, a.ID)
	order := out.order[:0]
	for _, id := range out.order {
		if id != a.ID {
			order = append(order, id)
		}
	}
	out.order = order
	return out
}

func (a SelectAll) apply(s State) State {
	for _, id := range a.IDs {
		s = Select{ID: id}.apply(s)
	}
	return s
}

func (ClearAll) apply(State) State { return State{} }

func (a SetOutcome) apply(s State) State {
	return s.update(a.ID, func(e *Entry) {
		e.Outcome = ""
		if a.Outcome.Valid() {
			e.Outcome = a.Outcome
		}
		if e.Outcome != OutcomeExtend {
			e.NextDate = dates.Date{}
		}
	})
}

func (a SetNextDate) apply(s State) State {
	return s.update(a.ID, func(e *Entry) {
		if e.Outcome == OutcomeExtend {
			e.NextDate = a.Date
		}
	})
}

func (a SetRemark) apply(s State) State {
	return s.update(a.ID, func(e *Entry) { e.Remark = a.Remark })
}

func (a Attach) apply(s State) State {
	return s.update(a.ID, func(e *Entry) { e.Attachment = a.Attachment })
}

// Reduce applies actions in order.
func Reduce(s State, actions ...Action) State {
	for _, a := range actions {
		s = a.apply(s)
	}
	return s
}
