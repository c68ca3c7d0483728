package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/recurrence"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
	"sheetdesk/internal/workdays"
)

// AssignSheets names the partitions the assign flow reads and writes.
type AssignSheets struct {
	Master      string
	WorkingDays string
	Checklist   string
	Delegation  string
}

type AssignService interface {
	Options(ctx context.Context) (*models.AssignOptions, error)
	Preview(ctx context.Context, req models.AssignRequest) (*models.AssignPreview, error)
	Submit(ctx context.Context, sess authz.Session, req models.AssignRequest) (*models.AssignResult, error)
}

type assignService struct {
	src      sheets.Source
	sheets   AssignSheets
	dispatch *Dispatcher
	notify   Notifier
	today    Clock
	log      zerolog.Logger
}

func NewAssignService(src sheets.Source, names AssignSheets, d *Dispatcher, n Notifier, today Clock) AssignService {
	return &assignService{
		src:      src,
		sheets:   names,
		dispatch: d,
		notify:   n,
		today:    today,
		log:      logging.Component("assign"),
	}
}

func (s *assignService) Options(ctx context.Context) (*models.AssignOptions, error) {
	t, err := s.src.Fetch(ctx, s.sheets.Master)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.sheets.Master).Msg("[assign][options][err]")
		return nil, err
	}
	return &models.AssignOptions{
		Departments: distinctColumn(t, models.ColMasterDepartment),
		GivenBy:     distinctColumn(t, models.ColMasterGivenBy),
		Doers:       distinctColumn(t, models.ColMasterDoer),
		Frequencies: recurrence.Options(),
	}, nil
}

func (s *assignService) Preview(ctx context.Context, req models.AssignRequest) (*models.AssignPreview, error) {
	tasks, adjusted, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	p := &models.AssignPreview{Tasks: tasks, Adjusted: adjusted}
	if adjusted != nil {
		p.Notice = adjusted.String()
	}
	return p, nil
}

// Submit regenerates the schedule, numbers the rows after the highest task id
// already in the target partition, writes them and notifies the doers.
func (s *assignService) Submit(ctx context.Context, sess authz.Session, req models.AssignRequest) (*models.AssignResult, error) {
	tasks, _, err := s.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	sheet := s.sheets.Checklist
	if req.Frequency == recurrence.OneTime {
		sheet = s.sheets.Delegation
	}
	existing, err := s.src.Fetch(ctx, sheet)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", sheet).Msg("[assign][submit][fetch-err]")
		return nil, err
	}
	first := lastTaskID(existing) + 1

	stamp := s.today().String()
	rows := make([][]string, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, []string{
			stamp,
			strconv.Itoa(first + i),
			t.Department,
			t.GivenBy,
			t.Doer,
			t.Description,
			t.DueDate.String(),
			string(t.Frequency),
			yesNo(t.EnableReminders),
			yesNo(t.RequireAttachment),
		})
	}

	written, err := s.dispatch.InsertRows(ctx, sess, sheet, rows)
	if err != nil {
		return nil, fmt.Errorf("insert tasks into %s (%d of %d written): %w", sheet, written, len(rows), err)
	}
	s.log.Info().Str("sheet", sheet).Str("user", sess.Username).Int("count", written).Msg("[assign][submit][ok]")

	if s.notify != nil {
		s.notify.TasksAssigned(ctx, tasks)
	}
	return &models.AssignResult{
		Sheet:       sheet,
		Count:       written,
		FirstTaskID: first,
		LastTaskID:  first + written - 1,
	}, nil
}

func (s *assignService) generate(ctx context.Context, req models.AssignRequest) ([]models.GeneratedTask, *recurrence.StartDateAdjusted, error) {
	doers := cleanNames(req.Doers)
	if err := validateAssign(req, doers); err != nil {
		return nil, nil, err
	}

	cal, err := s.calendar(ctx)
	if err != nil {
		return nil, nil, err
	}
	occ, adjusted, err := recurrence.GenerateForAssignees(req.StartDate, req.Frequency, cal, doers)
	if err != nil {
		return nil, nil, err
	}

	tasks := make([]models.GeneratedTask, 0, len(occ))
	for _, o := range occ {
		tasks = append(tasks, models.GeneratedTask{
			Department:        strings.TrimSpace(req.Department),
			GivenBy:           strings.TrimSpace(req.GivenBy),
			Doer:              o.Assignee,
			Description:       strings.TrimSpace(req.Description),
			DueDate:           o.Due,
			Frequency:         req.Frequency,
			EnableReminders:   req.EnableReminders,
			RequireAttachment: req.RequireAttachment,
		})
	}
	return tasks, adjusted, nil
}

func (s *assignService) calendar(ctx context.Context) (*workdays.Index, error) {
	t, err := s.src.Fetch(ctx, s.sheets.WorkingDays)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", s.sheets.WorkingDays).Msg("[assign][calendar][err]")
		return nil, err
	}
	return workdays.New(t.DateColumn(models.ColWorkingDay))
}

func validateAssign(req models.AssignRequest, doers []string) error {
	var errs criterio.FieldErrorsBuilder
	if req.StartDate.IsZero() {
		errs = errs.Append("startDate", errors.New("is required"))
	}
	if len(doers) == 0 {
		errs = errs.Append("doers", errors.New("select at least one doer"))
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = errs.Append("description", errors.New("is required"))
	}
	if req.Frequency == "" {
		errs = errs.Append("frequency", errors.New("is required"))
	} else if !req.Frequency.Known() {
		errs = errs.Append("frequency", fmt.Errorf("unknown frequency %q", req.Frequency))
	}
	return errs.ToError()
}

// lastTaskID is the highest integer in the task id column, 0 when none.
func lastTaskID(t sheets.Table) int {
	last := 0
	for _, v := range t.Column(models.ColTaskID) {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > last {
			last = n
		}
	}
	return last
}

func distinctColumn(t sheets.Table, col int) []string {
	rs := make([]records.Record, 0, len(t.Rows))
	for _, v := range t.Column(col) {
		rs = append(rs, records.New("", 0, map[string]string{"v": v}))
	}
	return records.Distinct(rs, "v")
}

func cleanNames(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
