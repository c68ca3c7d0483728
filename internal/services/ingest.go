package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sheetdesk/internal/dates"
	"sheetdesk/internal/models"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
)

// Clock returns today's calendar day.
type Clock func() dates.Date

// ClockIn is a Clock reading the wall clock in loc.
func ClockIn(loc *time.Location) Clock {
	return func() dates.Date { return dates.Today(loc) }
}

// rowID names a record from its source row; "" falls back to a random id.
type rowID func(r sheets.DataRow) string

// ingest is the single path from a fetched table to records. Rows before
// firstRow and blank rows are skipped. Cells use their display value, except
// dateFields, which are read raw through Cell.Date.
func ingest(t sheets.Table, layout models.Layout, dateFields []string, firstRow int, id rowID) []records.Record {
	dateCols := map[int]bool{}
	for _, f := range dateFields {
		if i := layout.Index(f); i >= 0 {
			dateCols[i] = true
		}
	}
	rows := t.DataRows()
	out := make([]records.Record, 0, len(rows))
	for _, dr := range rows {
		if dr.Index < firstRow || dr.Row.Blank() {
			continue
		}
		fields := make(map[string]string, len(layout))
		for i, name := range layout {
			c := dr.Row.At(i)
			if dateCols[i] {
				fields[name] = strings.TrimSpace(c.Date())
			} else {
				fields[name] = strings.TrimSpace(c.Display())
			}
		}
		rid := ""
		if id != nil {
			rid = id(dr)
		}
		if rid == "" {
			rid = fmt.Sprintf("row_%d_%s", dr.Index, shortUUID())
		}
		out = append(out, records.New(rid, dr.Index, fields))
	}
	return out
}

func fetchRecords(ctx context.Context, src sheets.Source, sheet string, layout models.Layout, dateFields []string, firstRow int, id rowID) ([]records.Record, error) {
	t, err := src.Fetch(ctx, sheet)
	if err != nil {
		return nil, err
	}
	return ingest(t, layout, dateFields, firstRow, id), nil
}

func shortUUID() string {
	return uuid.NewString()[:8]
}

// normalizeDates rewrites ISO datetime values of the given fields to DD/MM/YYYY.
func normalizeDates(rs []records.Record, fields ...string) {
	for _, r := range rs {
		for _, f := range fields {
			v := r.Fields[f]
			if strings.Contains(v, "T") {
				if n := dates.Normalize(v); n != "" {
					r.Fields[f] = n
				}
			}
		}
	}
}

// pageQuery translates the shared page filters into a record query.
func pageQuery(q models.PageQuery, dateField string) records.Query {
	return records.Query{
		Text:      q.Search,
		DateField: dateField,
		From:      q.From,
		To:        q.To,
	}
}
