package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/pdf"
	"sheetdesk/internal/records"
	"sheetdesk/internal/sheets"
)

var ErrUnknownMode = fmt.Errorf("mode must be %q or %q", models.ModeChecklist, models.ModeDelegation)

const (
	colorCompleted = "#22c55e"
	colorPending   = "#facc15"
	colorOverdue   = "#ef4444"
)

// dashboard record fields
const (
	dbTitle      = "title"
	dbAssignee   = "assignedTo"
	dbProject    = "projectName"
	dbStart      = "taskStartDate"
	dbCompletion = "completionDate"
	dbFrequency  = "frequency"
	dbRating     = "rating"
)

var dashboardFields = records.StatusFields{Start: dbStart, Completion: dbCompletion, Assignee: dbAssignee}

type ProjectService interface {
	Dashboard(ctx context.Context, sess authz.Session, mode models.DashboardMode, search string) (*models.ProjectDashboard, error)
	Report(ctx context.Context, sess authz.Session, mode models.DashboardMode) (string, error)
}

type projectService struct {
	src        sheets.Source
	checklist  string
	delegation string
	pdf        pdf.Generator
	today      Clock
	log        zerolog.Logger
}

func NewProjectService(src sheets.Source, checklistSheet, delegationSheet string, gen pdf.Generator, today Clock) ProjectService {
	return &projectService{
		src:        src,
		checklist:  checklistSheet,
		delegation: delegationSheet,
		pdf:        gen,
		today:      today,
		log:        logging.Component("project"),
	}
}

func (s *projectService) Dashboard(ctx context.Context, sess authz.Session, mode models.DashboardMode, search string) (*models.ProjectDashboard, error) {
	if mode == "" {
		mode = models.ModeChecklist
	}
	sheet, completionCol, err := s.partition(mode)
	if err != nil {
		return nil, err
	}
	t, err := s.src.Fetch(ctx, sheet)
	if err != nil {
		s.log.Error().Err(err).Str("sheet", sheet).Msg("[project][fetch][err]")
		return nil, err
	}

	today := s.today()
	rs := records.VisibleTo(dashboardRecords(t, mode, completionCol), sess, dbAssignee)
	sum := records.Aggregate(rs, dashboardFields, today)

	d := &models.ProjectDashboard{
		Mode:           mode,
		Tasks:          tasksOf(records.Filter(rs, records.Query{Text: search}), today),
		Staff:          staffRows(rs, today),
		Total:          sum.Total,
		Completed:      sum.Completed,
		Pending:        sum.Pending,
		Overdue:        sum.Overdue,
		CompletionRate: sum.CompletionRate(),
		Bars:           monthBars(rs, today),
		Pie:            pieSlices(rs, today),
	}
	if mode == models.ModeDelegation {
		d.Ratings = ratingBuckets(rs, today)
	}
	return d, nil
}

func (s *projectService) Report(ctx context.Context, sess authz.Session, mode models.DashboardMode) (string, error) {
	d, err := s.Dashboard(ctx, sess, mode, "")
	if err != nil {
		return "", err
	}
	summary := []pdf.KV{
		{Key: "Total tasks", Value: strconv.Itoa(d.Total)},
		{Key: "Completed", Value: strconv.Itoa(d.Completed)},
		{Key: "Pending", Value: strconv.Itoa(d.Pending)},
		{Key: "Overdue", Value: strconv.Itoa(d.Overdue)},
		{Key: "Completion rate", Value: strconv.FormatFloat(d.CompletionRate, 'f', 1, 64) + "%"},
	}
	if d.Mode == models.ModeDelegation {
		summary = append(summary,
			pdf.KV{Key: "Rated 1", Value: strconv.Itoa(d.Ratings.One)},
			pdf.KV{Key: "Rated 2", Value: strconv.Itoa(d.Ratings.Two)},
			pdf.KV{Key: "Rated 3+", Value: strconv.Itoa(d.Ratings.ThreePlus)},
		)
	}
	staff := make([][]string, 0, len(d.Staff))
	for _, m := range d.Staff {
		staff = append(staff, []string{
			m.Name, m.Project,
			strconv.Itoa(m.Total), strconv.Itoa(m.Completed), strconv.Itoa(m.Pending), strconv.Itoa(m.Overdue),
			strconv.Itoa(m.Progress) + "%",
		})
	}
	return s.pdf.GenerateDashboardReport(pdf.DashboardReport{
		Mode:        string(d.Mode),
		GeneratedAt: time.Now(),
		Viewer:      sess.Username,
		Summary:     summary,
		StaffHeader: []string{"Name", "Project", "Total", "Done", "Pending", "Overdue", "Progress"},
		Staff:       staff,
	})
}

func (s *projectService) partition(mode models.DashboardMode) (string, int, error) {
	switch mode {
	case models.ModeChecklist:
		return s.checklist, models.ColChecklistActual, nil
	case models.ModeDelegation:
		return s.delegation, models.ColDelegationActual, nil
	}
	return "", 0, ErrUnknownMode
}

// dashboardRecords drops rows without a task id; checklist rows also need a
// parseable start date.
func dashboardRecords(t sheets.Table, mode models.DashboardMode, completionCol int) []records.Record {
	var out []records.Record
	for _, dr := range t.DataRows() {
		cell := func(i int) string { return strings.TrimSpace(dr.Row.At(i).Display()) }
		dateCell := func(i int) string { return strings.TrimSpace(dr.Row.At(i).Date()) }
		id := cell(models.ColTaskID)
		if id == "" {
			continue
		}
		start := dateCell(models.ColStartDate)
		if mode == models.ModeChecklist {
			if _, ok := dates.Parse(start); !ok {
				continue
			}
		}
		out = append(out, records.New(id, dr.Index, map[string]string{
			dbTitle:      orDefault(cell(models.ColDescription), "Untitled Task"),
			dbAssignee:   orDefault(cell(models.ColAssignee), records.Unassigned),
			dbProject:    orDefault(cell(models.ColProject), "N/A"),
			dbStart:      start,
			dbCompletion: dateCell(completionCol),
			dbFrequency:  orDefault(cell(models.ColFrequency), "one-time"),
			dbRating:     cell(models.ColDelegationRating),
		}))
	}
	return out
}

func tasksOf(rs []records.Record, today dates.Date) []models.Task {
	out := make([]models.Task, 0, len(rs))
	for _, r := range rs {
		out = append(out, models.Task{
			ID:         r.ID,
			Title:      r.Get(dbTitle),
			AssignedTo: r.Get(dbAssignee),
			Project:    r.Get(dbProject),
			StartDate:  r.Get(dbStart),
			Completed:  r.Get(dbCompletion),
			Status:     dashboardFields.Of(r, today),
			Frequency:  r.Get(dbFrequency),
		})
	}
	return out
}

func staffRows(rs []records.Record, today dates.Date) []models.StaffRow {
	type key struct{ project, name string }
	byKey := map[key][]records.Record{}
	var order []key
	for _, r := range rs {
		k := key{r.Get(dbProject), r.Get(dbAssignee)}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].project != order[j].project {
			return order[i].project < order[j].project
		}
		return order[i].name < order[j].name
	})

	out := make([]models.StaffRow, 0, len(order))
	for _, k := range order {
		c := records.Aggregate(byKey[k], dashboardFields, today).Counts
		progress := 0
		if c.Total > 0 {
			progress = int(math.Round(float64(c.Completed) / float64(c.Total) * 100))
		}
		out = append(out, models.StaffRow{
			ID:        strings.ReplaceAll(strings.ToLower(k.name), " ", "-"),
			Name:      k.name,
			Project:   k.project,
			Total:     c.Total,
			Completed: c.Completed,
			Pending:   c.Pending,
			Overdue:   c.Overdue,
			Progress:  progress,
		})
	}
	return out
}

// monthBars covers January to December of the current year. Completed tasks
// count in their completion month, open ones in the current month; only
// tasks that have started are counted.
func monthBars(rs []records.Record, today dates.Date) []models.MonthBar {
	bars := make([]models.MonthBar, 12)
	for i := range bars {
		bars[i].Name = time.Month(i + 1).String()[:3]
	}
	for _, r := range started(rs, today) {
		if dashboardFields.Of(r, today) == records.StatusCompleted {
			if d, ok := dates.Parse(r.Get(dbCompletion)); ok && d.Year == today.Year {
				bars[d.Month-1].Completed++
			}
			continue
		}
		bars[today.Month-1].Pending++
	}
	return bars
}

func pieSlices(rs []records.Record, today dates.Date) []models.PieSlice {
	var completed, pending, overdue int
	for _, r := range started(rs, today) {
		switch dashboardFields.Of(r, today) {
		case records.StatusCompleted:
			completed++
		case records.StatusOverdue:
			overdue++
		default:
			pending++
		}
	}
	return []models.PieSlice{
		{Name: "Completed", Value: completed, Color: colorCompleted},
		{Name: "Pending", Value: pending, Color: colorPending},
		{Name: "Overdue", Value: overdue, Color: colorOverdue},
	}
}

// ratingBuckets counts completed delegation tasks by their numeric rating.
func ratingBuckets(rs []records.Record, today dates.Date) models.RatingBuckets {
	var b models.RatingBuckets
	for _, r := range rs {
		if dashboardFields.Of(r, today) != records.StatusCompleted {
			continue
		}
		v, err := strconv.ParseFloat(r.Get(dbRating), 64)
		if err != nil {
			continue
		}
		switch {
		case v == 1:
			b.One++
		case v == 2:
			b.Two++
		case v > 2:
			b.ThreePlus++
		}
	}
	return b
}

func started(rs []records.Record, today dates.Date) []records.Record {
	out := make([]records.Record, 0, len(rs))
	for _, r := range rs {
		if d, ok := dates.Parse(r.Get(dbStart)); ok && !d.After(today) {
			out = append(out, r)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
