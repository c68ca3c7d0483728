// Package records filters, sorts and aggregates flat rows fetched from a
// sheet partition.
package records

import (
	"encoding/json"
	"sort"
	"strings"

	"sheetdesk/internal/authz"
)

// Record is one data row: a stable id, its 1-based source row and named fields.
type Record struct {
	ID       string
	RowIndex int
	Fields   map[string]string
}

func New(id string, rowIndex int, fields map[string]string) Record {
	if fields == nil {
		fields = map[string]string{}
	}
	return Record{ID: id, RowIndex: rowIndex, Fields: fields}
}

// Get returns the named field or "".
func (r Record) Get(field string) string {
	return r.Fields[field]
}

// MarshalJSON flattens the fields next to _id and _rowIndex.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["_id"] = r.ID
	out["_rowIndex"] = r.RowIndex
	return json.Marshal(out)
}

// ByID indexes rs by id. Later duplicates win.
func ByID(rs []Record) map[string]Record {
	out := make(map[string]Record, len(rs))
	for _, r := range rs {
		out[r.ID] = r
	}
	return out
}

// Distinct returns the sorted, trimmed, non-empty values of field.
func Distinct(rs []Record, field string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rs {
		v := strings.TrimSpace(r.Get(field))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// VisibleTo keeps the rows the session may see, judged by assigneeField.
func VisibleTo(rs []Record, s authz.Session, assigneeField string) []Record {
	if s.IsAdmin() {
		return rs
	}
	out := make([]Record, 0, len(rs))
	for _, r := range rs {
		if s.CanSee(r.Get(assigneeField)) {
			out = append(out, r)
		}
	}
	return out
}
