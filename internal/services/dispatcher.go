package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/realtime"
	"sheetdesk/internal/records"
	"sheetdesk/internal/repositories"
	"sheetdesk/internal/sheets"
	"sheetdesk/internal/submission"
)

// Dispatcher writes rows to a partition and does the bookkeeping every write
// needs: submission log, view cache eviction and the change broadcast.
type Dispatcher struct {
	writer    sheets.Writer
	logs      repositories.SubmissionLogRepository
	cache     *records.ViewCache
	hub       *realtime.SheetHub
	batchSize int
	log       zerolog.Logger
}

// NewDispatcher; logs, cache and hub may be nil.
func NewDispatcher(w sheets.Writer, logs repositories.SubmissionLogRepository, cache *records.ViewCache, hub *realtime.SheetHub, batchSize int) *Dispatcher {
	if batchSize < 1 {
		batchSize = 5
	}
	return &Dispatcher{
		writer:    w,
		logs:      logs,
		cache:     cache,
		hub:       hub,
		batchSize: batchSize,
		log:       logging.Component("dispatch"),
	}
}

// Submit uploads pending attachments, then inserts rows into sheet one group
// of batchSize at a time, rows within a group in parallel. Rows that fail to
// insert are reported by record id; an upload failure only empties the
// attachment cell. evict names extra partitions whose views went stale.
func (d *Dispatcher) Submit(ctx context.Context, sess authz.Session, sheet string, rows []submission.OutboundRow, evict ...string) models.SubmitResult {
	res := models.SubmitResult{Sheet: sheet}
	res.UploadFailures = d.uploadAll(ctx, rows)

	var mu sync.Mutex
	for start := 0; start < len(rows); start += d.batchSize {
		end := min(start+d.batchSize, len(rows))
		var g errgroup.Group
		for i := start; i < end; i++ {
			row := rows[i]
			g.Go(func() error {
				err := d.writer.Insert(ctx, sheet, row.Cells())
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					d.log.Error().Err(err).Str("sheet", sheet).Str("record", row.RecordID).Msg("[dispatch][insert][err]")
					res.Failed = append(res.Failed, row.RecordID)
					return nil
				}
				res.Submitted++
				return nil
			})
		}
		_ = g.Wait()
	}

	var runErr error
	if len(res.Failed) > 0 {
		runErr = fmt.Errorf("%d of %d rows failed", len(res.Failed), len(rows))
	}
	d.finish(ctx, sess, sheet, len(rows), res.Submitted, runErr, evict)
	return res
}

// InsertRows writes pre-rendered rows with one batch request per group.
// It stops at the first failing group.
func (d *Dispatcher) InsertRows(ctx context.Context, sess authz.Session, sheet string, rows [][]string, evict ...string) (int, error) {
	written := 0
	var err error
	for start := 0; start < len(rows); start += d.batchSize {
		end := min(start+d.batchSize, len(rows))
		if err = d.writer.InsertBatch(ctx, sheet, rows[start:end]); err != nil {
			d.log.Error().Err(err).Str("sheet", sheet).Int("written", written).Msg("[dispatch][batch][err]")
			break
		}
		written = end
	}
	d.finish(ctx, sess, sheet, len(rows), written, err, evict)
	return written, err
}

func (d *Dispatcher) uploadAll(ctx context.Context, rows []submission.OutboundRow) int {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	g.SetLimit(d.batchSize)
	for i := range rows {
		if rows[i].Pending == nil {
			continue
		}
		row := &rows[i]
		g.Go(func() error {
			url, err := d.writer.Upload(ctx, sheets.File{
				Name:     uploadName(row.TaskID, row.Pending.FileName),
				MimeType: row.Pending.MimeType,
				Data:     row.Pending.Data,
			})
			if err != nil {
				var ue *sheets.UploadError
				if !errors.As(err, &ue) {
					err = &sheets.UploadError{FileName: row.Pending.FileName, Err: err}
				}
				d.log.Warn().Err(err).Str("record", row.RecordID).Msg("[dispatch][upload][err]")
				mu.Lock()
				failed++
				mu.Unlock()
				url = ""
			}
			row.Attachment = url
			row.Pending = nil
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

func (d *Dispatcher) finish(ctx context.Context, sess authz.Session, sheet string, total, written int, runErr error, evict []string) {
	status := models.SubmissionOK
	switch {
	case written == 0 && total > 0:
		status = models.SubmissionFailed
	case written < total:
		status = models.SubmissionPartial
	}

	if d.logs != nil {
		entry := &models.SubmissionLog{Sheet: sheet, Username: sess.Username, RowCount: written, Status: status}
		if runErr != nil {
			entry.Error = runErr.Error()
		}
		if err := d.logs.Store(ctx, entry); err != nil {
			d.log.Warn().Err(err).Str("sheet", sheet).Msg("[dispatch][log][err]")
		}
	}

	if written == 0 {
		return
	}
	if d.cache != nil {
		d.cache.Evict(sheet)
		for _, s := range evict {
			d.cache.Evict(s)
		}
	}
	if d.hub != nil {
		d.hub.Inserted(sheet, written)
	}
	d.log.Info().Str("sheet", sheet).Str("user", sess.Username).Int("rows", written).Str("status", string(status)).Msg("[dispatch][insert][ok]")
}

// uploadName is task_<id>_<random>.<ext>, the extension taken from the
// original file name.
func uploadName(taskID, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	id := strings.TrimSpace(taskID)
	if id == "" {
		id = "x"
	}
	return fmt.Sprintf("task_%s_%s%s", id, shortUUID(), ext)
}
