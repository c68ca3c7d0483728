package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/models"
	"sheetdesk/internal/pdf"
	"sheetdesk/internal/sheets"
)

var (
	admin = authz.Session{Username: "boss", Role: authz.RoleAdmin}
	asha  = authz.Session{Username: "Asha", Role: authz.RoleUser}
)

func attendanceRow(code, name, in, month string) []string {
	return cols(13, map[int]string{0: code, 1: name, 3: in, 10: month})
}

func TestAttendance_OneTabFailing(t *testing.T) {
	src := newFakeSource()
	src.tables["ATTENDANCE"] = table(models.AttendanceLayout,
		attendanceRow("E1", "Asha", "1899-12-30T09:05:00.000Z", "June"),
		attendanceRow("", "Ravi", "09:30", "May"),
	)
	src.errs["SITE ATTENDANCE"] = &sheets.FetchError{Sheet: "SITE ATTENDANCE", Status: 503, Err: errors.New("unavailable")}

	svc := NewAttendanceService(src, "ATTENDANCE", "SITE ATTENDANCE")
	v, err := svc.View(context.Background(), admin, models.PageQuery{})
	require.NoError(t, err)

	require.Len(t, v.Office, 2)
	assert.Equal(t, "office_E1_2", v.Office[0].ID)
	assert.True(t, strings.HasPrefix(v.Office[1].ID, "office_row_3_"))
	assert.Equal(t, "09:05", v.Office[0].Get("inTime"))
	assert.Equal(t, "09:30", v.Office[1].Get("inTime"))
	assert.Empty(t, v.Site)
	assert.Contains(t, v.SiteError, "unavailable")
	assert.Empty(t, v.OfficeError)
	assert.Equal(t, []string{"June", "May"}, v.Months)
	assert.Equal(t, 2, v.OfficeCount)
}

func TestAttendance_MonthAndVisibility(t *testing.T) {
	src := newFakeSource()
	rows := [][]string{
		attendanceRow("E1", "Asha", "", "June"),
		attendanceRow("E2", "Ravi", "", "June"),
		attendanceRow("E1", "asha", "", "May"),
	}
	src.tables["office"] = table(models.AttendanceLayout, rows...)
	src.tables["site"] = table(models.AttendanceLayout, rows[1])

	svc := NewAttendanceService(src, "office", "site")
	v, err := svc.View(context.Background(), asha, models.PageQuery{Month: "June"})
	require.NoError(t, err)
	require.Len(t, v.Office, 1)
	assert.Equal(t, "Asha", v.Office[0].Get(models.FieldName))
	assert.Empty(t, v.Site)
	assert.Equal(t, []string{"June", "May"}, v.Months)
}

func TestScore_SkipsTitleRowsAndBlanks(t *testing.T) {
	src := newFakeSource()
	src.tables["Scoring"] = table([]string{"Score sheet"},
		cols(8, map[int]string{2: "Zed"}),
		cols(8, map[int]string{}),
		[]string{"2024-06-03T00:00:00.000Z", "07/06/2024", "Asha", "10", "8", "-20%", "-10%", "2"},
		cols(8, map[int]string{}),
		[]string{"03/06/2024", "07/06/2024", "Ravi", "5", "5", "0%", "0%", "0"},
	)

	svc := NewScoreService(src, "Scoring", nil)
	v, err := svc.View(context.Background(), admin, models.PageQuery{})
	require.NoError(t, err)
	require.Len(t, v.Records, 2)
	assert.Equal(t, "03/06/2024", v.Records[0].Get(models.FieldStartDate))
	assert.Equal(t, 4, v.Records[0].RowIndex)

	v, err = svc.View(context.Background(), asha, models.PageQuery{Search: "ravi"})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Total)
	assert.Equal(t, 0, v.Filtered)
}

type fakeReports struct {
	score     []pdf.ScoreReport
	dashboard []pdf.DashboardReport
}

func (f *fakeReports) GenerateScoreReport(d pdf.ScoreReport) (string, error) {
	f.score = append(f.score, d)
	return "/reports/score.pdf", nil
}

func (f *fakeReports) GenerateDashboardReport(d pdf.DashboardReport) (string, error) {
	f.dashboard = append(f.dashboard, d)
	return "/reports/dashboard.pdf", nil
}

func TestScore_Report(t *testing.T) {
	src := newFakeSource()
	src.tables["Scoring"] = table([]string{"title"}, nil, nil,
		[]string{"03/06/2024", "07/06/2024", "Asha", "10", "8", "-20%", "-10%", "2"},
	)
	reports := &fakeReports{}
	path, err := NewScoreService(src, "Scoring", reports).Report(context.Background(), asha, models.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, "/reports/score.pdf", path)
	require.Len(t, reports.score, 1)
	assert.Equal(t, "Asha", reports.score[0].Viewer)
	require.Len(t, reports.score[0].Rows, 1)
	assert.Equal(t, "Asha", reports.score[0].Rows[0][2])
}

func TestQuickTasks_DateRange(t *testing.T) {
	src := newFakeSource()
	row := func(date, name string) []string {
		return cols(9, map[int]string{0: date, 3: name, 4: "call " + name})
	}
	src.tables["Unique Task"] = table(models.QuickTaskLayout,
		row("01/06/2024", "Asha"),
		row("05/06/2024", "Asha"),
		row("20/06/2024", "Asha"),
		row("not a date", "Asha"),
		row("06/06/2024", "Ravi"),
	)

	svc := NewQuickTaskService(src, "Unique Task")
	v, err := svc.View(context.Background(), asha, models.PageQuery{
		From: dates.MustNew(2024, 6, 2),
		To:   dates.MustNew(2024, 6, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, 2, v.Filtered)

	v, err = svc.View(context.Background(), admin, models.PageQuery{Search: "CALL RAVI"})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Filtered)
}

func TestFetchErrorsPropagate(t *testing.T) {
	src := newFakeSource()
	src.errs["Unique Task"] = &sheets.FetchError{Sheet: "Unique Task", Err: errors.New("timeout")}
	_, err := NewQuickTaskService(src, "Unique Task").View(context.Background(), admin, models.PageQuery{})
	assert.True(t, sheets.IsFetchError(err))
}

func pdfKV(k, v string) pdf.KV { return pdf.KV{Key: k, Value: v} }
