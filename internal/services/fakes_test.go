package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"sheetdesk/internal/dates"
	"sheetdesk/internal/models"
	"sheetdesk/internal/repositories"
	"sheetdesk/internal/sheets"
)

var june10 = dates.MustNew(2024, 6, 10)

func fixedClock(d dates.Date) Clock { return func() dates.Date { return d } }

// table builds a sheet with a header row followed by rows.
func table(header []string, rows ...[]string) sheets.Table {
	t := sheets.Table{Rows: []sheets.Row{toRow(header)}}
	for _, r := range rows {
		t.Rows = append(t.Rows, toRow(r))
	}
	return t
}

func toRow(cells []string) sheets.Row {
	row := make(sheets.Row, len(cells))
	for i, c := range cells {
		row[i] = sheets.Cell{Raw: c}
	}
	return row
}

// cols places values at column positions in a row of width n.
func cols(n int, values map[int]string) []string {
	row := make([]string, n)
	for i, v := range values {
		row[i] = v
	}
	return row
}

type fakeSource struct {
	mu      sync.Mutex
	tables  map[string]sheets.Table
	errs    map[string]error
	fetches map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{tables: map[string]sheets.Table{}, errs: map[string]error{}, fetches: map[string]int{}}
}

func (f *fakeSource) Fetch(_ context.Context, sheet string) (sheets.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[sheet]++
	if err := f.errs[sheet]; err != nil {
		return sheets.Table{}, err
	}
	return f.tables[sheet], nil
}

type insertCall struct {
	sheet string
	rows  [][]string
}

type fakeWriter struct {
	mu         sync.Mutex
	inserts    []insertCall
	uploads    []sheets.File
	failTaskID map[string]bool
	failBatch  int // InsertBatch call number (1-based) that fails
	batchCalls int
	uploadErr  error
	uploadURL  string
}

func (w *fakeWriter) Insert(_ context.Context, sheet string, row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(row) > 1 && w.failTaskID[row[1]] {
		return &sheets.FetchError{Sheet: sheet, Status: 500, Err: errors.New("boom")}
	}
	w.inserts = append(w.inserts, insertCall{sheet: sheet, rows: [][]string{row}})
	return nil
}

func (w *fakeWriter) InsertBatch(_ context.Context, sheet string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batchCalls++
	if w.batchCalls == w.failBatch {
		return &sheets.FetchError{Sheet: sheet, Status: 500, Err: errors.New("boom")}
	}
	w.inserts = append(w.inserts, insertCall{sheet: sheet, rows: rows})
	return nil
}

func (w *fakeWriter) Upload(_ context.Context, f sheets.File) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.uploads = append(w.uploads, f)
	if w.uploadErr != nil {
		return "", w.uploadErr
	}
	return w.uploadURL, nil
}

// rowsByTaskID flattens every inserted row keyed by its task id column.
func (w *fakeWriter) rowsByTaskID() map[string][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := map[string][]string{}
	for _, c := range w.inserts {
		for _, r := range c.rows {
			out[r[1]] = r
		}
	}
	return out
}

func (w *fakeWriter) rowCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.inserts {
		n += len(c.rows)
	}
	return n
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []models.SubmissionLog
}

func (f *fakeLogs) Store(_ context.Context, e *models.SubmissionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeLogs) List(context.Context, models.SubmissionLogFilter) ([]models.SubmissionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SubmissionLog(nil), f.entries...), nil
}

type fakeUsers struct {
	byName map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byName: map[string]*models.User{}}
	for _, u := range users {
		f.byName[strings.ToLower(u.Username)] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	u.ID = int64(len(f.byName) + 1)
	f.byName[strings.ToLower(u.Username)] = u
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.byName[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byName {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, username, hash string) error {
	u, ok := f.byName[strings.ToLower(username)]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}
