package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
	"sheetdesk/internal/submission"
)

var ErrBadAttachment = errors.New("attachment data is not valid base64")

type ChecklistService interface {
	Pending(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error)
	History(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error)
	Submit(ctx context.Context, sess authz.Session, req models.SubmitRequest) (*models.SubmitResult, error)
}

type checklistService struct {
	src      sheets.Source
	pending  string
	history  string
	cache    *records.ViewCache
	dispatch *Dispatcher
	today    Clock
	log      zerolog.Logger
}

func NewChecklistService(src sheets.Source, pendingSheet, historySheet string, cache *records.ViewCache, d *Dispatcher, today Clock) ChecklistService {
	return &checklistService{
		src:      src,
		pending:  pendingSheet,
		history:  historySheet,
		cache:    cache,
		dispatch: d,
		today:    today,
		log:      logging.Component("checklist"),
	}
}

func (s *checklistService) Pending(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error) {
	all, err := s.loadPending(ctx, sess)
	if err != nil {
		return nil, err
	}

	rq := pageQuery(q, models.FieldStartDate)
	rq.FieldEquals = records.FieldMatch{Field: models.FieldName, Value: q.Member}
	filtered := records.SortByDate(records.Filter(all, rq), models.FieldStartDate, false)

	return &models.ChecklistView{
		Pending: filtered,
		Members: s.members(sess, all),
		Stats: models.ChecklistStats{
			TotalPending:    len(all),
			FilteredPending: len(filtered),
		},
	}, nil
}

func (s *checklistService) History(ctx context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error) {
	done, err := fetchRecords(ctx, s.src, s.history, models.ChecklistHistoryLayout, models.ChecklistHistoryDateFields, 0, nil)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.history).Msg("[checklist][history][err]")
		return nil, err
	}
	done = records.VisibleTo(done, sess, models.FieldName)

	members := q.Members
	if !sess.IsAdmin() {
		members = nil
	}
	rq := pageQuery(q, models.FieldCondition)
	rq.AnyOf = records.FieldSet{Field: models.FieldName, Values: members}
	filtered := records.SortByDate(records.Filter(done, rq), models.FieldCondition, true)

	stats := models.ChecklistStats{
		TotalCompleted:    len(done),
		FilteredCompleted: len(filtered),
		MemberCompleted:   map[string]int{},
	}
	for _, m := range members {
		stats.MemberCompleted[m] = 0
	}
	for _, r := range done {
		if _, ok := stats.MemberCompleted[r.Get(models.FieldName)]; ok {
			stats.MemberCompleted[r.Get(models.FieldName)]++
		}
	}

	pending, ok := s.cache.Get(records.ViewKey(s.pending, sess.Username))
	if !ok {
		if pending, err = s.loadPending(ctx, sess); err != nil {
			return nil, err
		}
	}
	stats.TotalPending = len(pending)
	stats.FilteredPending = len(records.Filter(pending, records.Query{
		Text:  q.Search,
		AnyOf: records.FieldSet{Field: models.FieldName, Values: members},
	}))

	return &models.ChecklistView{
		History: filtered,
		Members: s.members(sess, done),
		Stats:   stats,
	}, nil
}

// Submit resolves entries against the pending view, applies them to an empty
// selection, validates, and dispatches the completion rows. Entries for ids
// that are no longer pending are dropped.
func (s *checklistService) Submit(ctx context.Context, sess authz.Session, req models.SubmitRequest) (*models.SubmitResult, error) {
	key := records.ViewKey(s.pending, sess.Username)
	pending, ok := s.cache.Get(key)
	if !ok {
		var err error
		if pending, err = s.loadPending(ctx, sess); err != nil {
			return nil, err
		}
	}
	byID := records.ByID(pending)

	sources := make(map[string]submission.Source, len(req.Entries))
	var actions []submission.Action
	for _, e := range req.Entries {
		r, ok := byID[e.ID]
		if !ok {
			s.log.Warn().Str("record", e.ID).Str("user", sess.Username).Msg("[checklist][submit][unknown]")
			continue
		}
		sources[e.ID] = sourceOf(r)

		acts, err := entryActions(e)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", e.ID, err)
		}
		actions = append(actions, acts...)
	}

	state := submission.Reduce(submission.State{}, actions...)
	if err := submission.Validate(state, sources); err != nil {
		return nil, err
	}

	rows := submission.BuildBatch(state, sources, s.today())
	res := s.dispatch.Submit(ctx, sess, s.history, rows, s.pending)
	s.log.Info().Str("user", sess.Username).Int("submitted", res.Submitted).Int("failed", len(res.Failed)).Msg("[checklist][submit][done]")
	return &res, nil
}

// loadPending fetches the pending partition and commits it to the view cache
// unless a newer fetch for the same view started meanwhile.
func (s *checklistService) loadPending(ctx context.Context, sess authz.Session) ([]records.Record, error) {
	key := records.ViewKey(s.pending, sess.Username)
	gen := s.cache.Begin(key)

	rs, err := fetchRecords(ctx, s.src, s.pending, models.ChecklistLayout, models.ChecklistDateFields, 0, checklistID)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.pending).Msg("[checklist][fetch][err]")
		return nil, err
	}
	rs = records.VisibleTo(pendingOnly(rs, s.today()), sess, models.FieldName)

	if !s.cache.Commit(key, gen, rs) {
		s.log.Debug().Str("key", key).Uint64("gen", gen).Msg("[checklist][cache][stale]")
	}
	return rs, nil
}

func (s *checklistService) members(sess authz.Session, rs []records.Record) []string {
	if !sess.IsAdmin() {
		return []string{sess.Username}
	}
	return records.Distinct(rs, models.FieldName)
}

func checklistID(r sheets.DataRow) string {
	id := strings.TrimSpace(r.Row.At(models.ColTaskID).Display())
	if id == "" {
		return ""
	}
	return fmt.Sprintf("task_%s_%d", id, r.Index)
}

// pendingOnly keeps rows not tagged done, with a start date and no actual
// date, that start no later than tomorrow.
func pendingOnly(rs []records.Record, today dates.Date) []records.Record {
	tomorrow := today.AddDays(1)
	out := make([]records.Record, 0, len(rs))
	for _, r := range rs {
		if strings.EqualFold(r.Get(models.FieldStatus), models.PendingStatusDoneTag) {
			continue
		}
		if r.Get(models.FieldActual) != "" {
			continue
		}
		start, ok := dates.Parse(r.Get(models.FieldStartDate))
		if !ok || start.After(tomorrow) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sourceOf(r records.Record) submission.Source {
	return submission.Source{
		TaskID:            r.Get(models.FieldTaskID),
		Assignee:          r.Get(models.FieldName),
		Description:       r.Get(models.FieldDescription),
		GivenBy:           r.Get(models.FieldGivenBy),
		RequireAttachment: strings.EqualFold(r.Get(models.FieldReqAttach), "yes"),
	}
}

func entryActions(e models.SubmitEntry) ([]submission.Action, error) {
	acts := []submission.Action{submission.Select{ID: e.ID}}
	if e.Outcome != "" {
		acts = append(acts, submission.SetOutcome{ID: e.ID, Outcome: submission.Outcome(e.Outcome)})
	}
	if !e.NextDate.IsZero() {
		acts = append(acts, submission.SetNextDate{ID: e.ID, Date: e.NextDate})
	}
	if e.Remark != "" {
		acts = append(acts, submission.SetRemark{ID: e.ID, Remark: e.Remark})
	}
	if e.Attachment != nil && e.Attachment.Data != "" {
		data, err := decodeAttachment(e.Attachment.Data)
		if err != nil {
			return nil, err
		}
		acts = append(acts, submission.Attach{ID: e.ID, Attachment: &submission.Attachment{
			FileName: e.Attachment.FileName,
			MimeType: e.Attachment.MimeType,
			Data:     data,
		}})
	}
	return acts, nil
}

// decodeAttachment accepts bare base64 or a data: URL.
func decodeAttachment(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrBadAttachment
	}
	return b, nil
}
