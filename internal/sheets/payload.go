// Package sheets talks to the spreadsheet backend: the script endpoint used for
// reads and writes, and the query export used for read-only reference lists.
package sheets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sheetdesk/internal/dates"
)

var ErrMalformedPayload = errors.New("malformed sheet payload")

// Cell keeps the raw value and the spreadsheet's formatted rendering.
type Cell struct {
	Raw       string `json:"v"`
	Formatted string `json:"f,omitempty"`
}

func (c Cell) Value() string { return c.Raw }

// Display prefers the formatted value.
func (c Cell) Display() string {
	if c.Formatted != "" {
		return c.Formatted
	}
	return c.Raw
}

// Date reads a date cell from its raw value, rendered DD/MM/YYYY. The
// formatted value follows the sheet's locale, so it is only used when the
// raw value is not a date.
func (c Cell) Date() string {
	if d := dates.Normalize(c.Raw); d != "" {
		return d
	}
	return c.Display()
}

type Row []Cell

// At returns cell i, or an empty cell past the end of a short row.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Blank reports whether every cell is empty.
func (r Row) Blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c.Display()) != "" {
			return false
		}
	}
	return true
}

// Table is a decoded payload. Rows[0] is the header.
type Table struct {
	Rows []Row `json:"rows"`
}

// DataRow is a non-header row with its 1-based spreadsheet row number.
type DataRow struct {
	Index int
	Row   Row
}

// DataRows skips the header row.
func (t Table) DataRows() []DataRow {
	if len(t.Rows) <= 1 {
		return nil
	}
	out := make([]DataRow, 0, len(t.Rows)-1)
	for i, r := range t.Rows[1:] {
		out = append(out, DataRow{Index: i + 2, Row: r})
	}
	return out
}

// Column returns the display value of column i for every data row.
func (t Table) Column(i int) []string {
	rows := t.DataRows()
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Row.At(i).Display())
	}
	return out
}

// DateColumn is Column for a date column, read through Cell.Date.
func (t Table) DateColumn(i int) []string {
	rows := t.DataRows()
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Row.At(i).Date())
	}
	return out
}

// DecodePayload accepts the table, array-of-arrays and values shapes, either
// as plain JSON or wrapped in a script callback.
func DecodePayload(body []byte) (Table, error) {
	raw, err := decodeJSON(body)
	if err != nil {
		start := bytes.IndexByte(body, '{')
		end := bytes.LastIndexByte(body, '}')
		if start == -1 || end <= start {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if raw, err = decodeJSON(body[start : end+1]); err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}

	switch v := raw.(type) {
	case []any:
		return Table{Rows: decodeRows(v)}, nil
	case map[string]any:
		if tbl, ok := v["table"].(map[string]any); ok {
			if rows, ok := tbl["rows"].([]any); ok {
				return Table{Rows: decodeRows(rows)}, nil
			}
		}
		if values, ok := v["values"].([]any); ok {
			return Table{Rows: decodeRows(values)}, nil
		}
		if msg, ok := v["error"].(string); ok && msg != "" {
			return Table{}, fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
		}
	}
	return Table{}, fmt.Errorf("%w: unrecognised shape", ErrMalformedPayload)
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeRows(rows []any) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		switch row := r.(type) {
		case []any:
			cells := make(Row, len(row))
			for i, v := range row {
				cells[i] = Cell{Raw: scalar(v)}
			}
			out = append(out, cells)
		case map[string]any:
			cs, _ := row["c"].([]any)
			cells := make(Row, len(cs))
			for i, c := range cs {
				if m, ok := c.(map[string]any); ok {
					cells[i] = Cell{Raw: scalar(m["v"]), Formatted: scalar(m["f"])}
				}
			}
			out = append(out, cells)
		default:
			out = append(out, Row{})
		}
	}
	return out
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
