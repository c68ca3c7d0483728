package sheets

import (
	"context"
)

// Source reads a whole partition.
type Source interface {
	Fetch(ctx context.Context, sheet string) (Table, error)
}

// Writer appends rows and stores attachments.
type Writer interface {
	Insert(ctx context.Context, sheet string, row []string) error
	InsertBatch(ctx context.Context, sheet string, rows [][]string) error
	Upload(ctx context.Context, f File) (string, error)
}

// File is an attachment to store in the drive folder.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Routed sends reads for the listed partitions to a different source. The
// reference lists come from the query export, everything else from Default.
type Routed struct {
	Default Source
	Routes  map[string]Source
}

func (r Routed) Fetch(ctx context.Context, sheet string) (Table, error) {
	if src, ok := r.Routes[sheet]; ok && src != nil {
		return src.Fetch(ctx, sheet)
	}
	return r.Default.Fetch(ctx, sheet)
}
