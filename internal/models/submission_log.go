package models

import "time"

type SubmissionStatus string

const (
	SubmissionOK      SubmissionStatus = "ok"
	SubmissionPartial SubmissionStatus = "partial"
	SubmissionFailed  SubmissionStatus = "failed"
)

// SubmissionLog records one write of rows into a partition.
type SubmissionLog struct {
	ID        int64            `json:"id"`
	Sheet     string           `json:"sheet"`
	Username  string           `json:"username"`
	RowCount  int              `json:"row_count"`
	Status    SubmissionStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type SubmissionLogFilter struct {
	Sheet    *string
	Username *string
	Limit    int
}
