package records

import (
	"sort"
	"strings"

	"sheetdesk/internal/dates"
)

// FieldMatch is an exact match on one field. An empty Value matches all.
type FieldMatch struct {
	Field string
	Value string
}

// FieldSet matches when the field equals any of Values. No values matches all.
type FieldSet struct {
	Field  string
	Values []string
}

// Query combines the supported filters; zero parts are inactive.
type Query struct {
	Text        string
	FieldEquals FieldMatch
	AnyOf       FieldSet
	DateField   string
	From        dates.Date
	To          dates.Date
}

func (q Query) rangeActive() bool {
	return q.DateField != "" && (!q.From.IsZero() || !q.To.IsZero())
}

// Filter returns the records matching every active part of q, in input order.
func Filter(rs []Record, q Query) []Record {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]Record, 0, len(rs))
	for _, r := range rs {
		if text != "" && !containsText(r, text) {
			continue
		}
		if q.FieldEquals.Field != "" && q.FieldEquals.Value != "" && r.Get(q.FieldEquals.Field) != q.FieldEquals.Value {
			continue
		}
		if q.AnyOf.Field != "" && len(q.AnyOf.Values) > 0 && !oneOf(r.Get(q.AnyOf.Field), q.AnyOf.Values) {
			continue
		}
		if q.rangeActive() && !inRange(r.Get(q.DateField), q.From, q.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func containsText(r Record, lowered string) bool {
	for _, v := range r.Fields {
		if strings.Contains(strings.ToLower(v), lowered) {
			return true
		}
	}
	return false
}

func oneOf(v string, values []string) bool {
	for _, want := range values {
		if v == want {
			return true
		}
	}
	return false
}

// inRange is inclusive at day granularity; unparseable values never match.
func inRange(raw string, from, to dates.Date) bool {
	d, ok := dates.Parse(raw)
	if !ok {
		return false
	}
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// SortByDate returns a copy of rs ordered by field. Records without a
// parseable date go last when ascending and first when descending.
func SortByDate(rs []Record, field string, descending bool) []Record {
	type keyed struct {
		rec Record
		d   dates.Date
		ok  bool
	}
	ks := make([]keyed, len(rs))
	for i, r := range rs {
		d, ok := dates.Parse(r.Get(field))
		ks[i] = keyed{rec: r, d: d, ok: ok}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			// missing dates: end of ascending, start of descending
			if descending {
				return !a.ok
			}
			return a.ok
		}
		if !a.ok {
			return false
		}
		if descending {
			return a.d.After(b.d)
		}
		return a.d.Before(b.d)
	})

	out := make([]Record, len(ks))
	for i, k := range ks {
		out[i] = k.rec
	}
	return out
}
