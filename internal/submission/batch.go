package submission

import (
	"sheetdesk/internal/dates"
)

// Source is the part of a pending record copied into its outbound row.
type Source struct {
	TaskID            string
	Assignee          string
	Description       string
	GivenBy           string
	RequireAttachment bool
}

// OutboundRow is one completion row for the history partition.
type OutboundRow struct {
	RecordID      string
	Submitted     dates.Date
	TaskID        string
	Outcome       Outcome
	NextDate      dates.Date
	Remark        string
	Attachment    string
	ConditionDate string
	Assignee      string
	Description   string
	GivenBy       string

	// File still to be stored; nil when there is nothing to upload.
	Pending *Attachment
}

// Cells renders the row in history column order:
// timestamp, task id, status, next date, remarks, image, condition date,
// name, description, given by.
func (r OutboundRow) Cells() []string {
	return []string{
		r.Submitted.String(),
		r.TaskID,
		string(r.Outcome),
		r.NextDate.String(),
		r.Remark,
		r.Attachment,
		r.ConditionDate,
		r.Assignee,
		r.Description,
		r.GivenBy,
	}
}

// BuildBatch makes one row per selected id, in selection order. Call it only
// after Validate succeeded.
func BuildBatch(s State, sources map[string]Source, today dates.Date) []OutboundRow {
	ids := s.Selected()
	rows := make([]OutboundRow, 0, len(ids))
	for _, id := range ids {
		e, _ := s.Entry(id)
		src := sources[id]
		row := OutboundRow{
			RecordID:    id,
			Submitted:   today,
			TaskID:      src.TaskID,
			Outcome:     e.Outcome,
			Remark:      e.Remark,
			Assignee:    src.Assignee,
			Description: src.Description,
			GivenBy:     src.GivenBy,
		}
		if e.Outcome == OutcomeExtend {
			row.NextDate = e.NextDate
		}
		if e.Attachment != nil {
			row.Attachment = e.Attachment.URL
			if row.Attachment == "" && len(e.Attachment.Data) > 0 {
				row.Pending = e.Attachment
			}
		}
		rows = append(rows, row)
	}
	return rows
}
