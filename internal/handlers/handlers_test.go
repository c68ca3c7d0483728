package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/dates"
	"sheetdesk/internal/middleware"
	"sheetdesk/internal/models"
	"sheetdesk/internal/recurrence"
	"sheetdesk/internal/services"
	"sheetdesk/internal/sheets"
	"sheetdesk/internal/submission"
	"sheetdesk/internal/workdays"
)

type stubTokens struct{}

func (stubTokens) ParseToken(token string) (authz.Session, error) {
	switch token {
	case "admin":
		return authz.Session{Username: "boss", Role: authz.RoleAdmin}, nil
	case "asha":
		return authz.Session{Username: "Asha", Role: authz.RoleUser}, nil
	}
	return authz.Session{}, errors.New("bad token")
}

type stubChecklist struct {
	gotQuery models.PageQuery
	gotSess  authz.Session
	gotReq   models.SubmitRequest
	err      error
}

func (s *stubChecklist) Pending(_ context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error) {
	s.gotSess, s.gotQuery = sess, q
	return &models.ChecklistView{Members: []string{sess.Username}}, s.err
}

func (s *stubChecklist) History(_ context.Context, sess authz.Session, q models.PageQuery) (*models.ChecklistView, error) {
	s.gotSess, s.gotQuery = sess, q
	return &models.ChecklistView{}, s.err
}

func (s *stubChecklist) Submit(_ context.Context, sess authz.Session, req models.SubmitRequest) (*models.SubmitResult, error) {
	s.gotSess, s.gotReq = sess, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.SubmitResult{Sheet: "Checklist Done", Submitted: len(req.Entries)}, nil
}

type stubAssign struct{ err error }

func (s *stubAssign) Options(context.Context) (*models.AssignOptions, error) {
	return &models.AssignOptions{Frequencies: recurrence.Options()}, s.err
}

func (s *stubAssign) Preview(_ context.Context, req models.AssignRequest) (*models.AssignPreview, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AssignPreview{Tasks: []models.GeneratedTask{{Doer: req.Doers[0], DueDate: req.StartDate, Frequency: req.Frequency}}}, nil
}

func (s *stubAssign) Submit(_ context.Context, _ authz.Session, req models.AssignRequest) (*models.AssignResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AssignResult{Sheet: "Checklist", Count: len(req.Doers), FirstTaskID: 1, LastTaskID: len(req.Doers)}, nil
}

type stubAuth struct{}

func (stubAuth) IssueToken(*models.User) (string, time.Time, error) { return "", time.Time{}, nil }
func (stubAuth) ParseToken(string) (authz.Session, error)          { return authz.Session{}, nil }
func (stubAuth) HashPassword(string) (string, error)               { return "", nil }

func (stubAuth) Login(_ context.Context, username, password string) (*models.LoginResponse, error) {
	if password != "pw" {
		return nil, services.ErrInvalidCredentials
	}
	return &models.LoginResponse{Token: "t", Username: username, Role: authz.RoleUser}, nil
}

func newRouter(cl services.ChecklistService, as services.AssignService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(stubTokens{}))
	auth := NewAuthHandler(stubAuth{})
	r.POST("/login", auth.Login)
	r.GET("/healthz", Health)

	ch := NewChecklistHandler(cl)
	r.GET("/checklist", ch.Pending)
	r.GET("/checklist/history", ch.History)
	r.POST("/checklist/submit", ch.Submit)

	ah := NewAssignHandler(as)
	r.GET("/assign/options", ah.Options)
	r.POST("/assign/preview", ah.Preview)
	r.POST("/assign/submit", ah.Submit)
	return r
}

func call(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestLogin(t *testing.T) {
	r := newRouter(&stubChecklist{}, &stubAssign{})

	w := call(r, http.MethodPost, "/login", "", models.LoginRequest{Username: "Asha", Password: "pw"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodPost, "/login", "", models.LoginRequest{Username: "Asha", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/login", "", map[string]string{"username": "Asha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChecklistPending_PassesSessionAndQuery(t *testing.T) {
	cl := &stubChecklist{}
	r := newRouter(cl, &stubAssign{})

	w := call(r, http.MethodGet, "/checklist?search=%20report%20&member=Ravi&from=01/06/2024&to=garbage", "asha", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", cl.gotSess.Username)
	assert.Equal(t, "report", cl.gotQuery.Search)
	assert.Equal(t, "Ravi", cl.gotQuery.Member)
	assert.Equal(t, dates.MustNew(2024, 6, 1), cl.gotQuery.From)
	assert.True(t, cl.gotQuery.To.IsZero())

	w = call(r, http.MethodGet, "/checklist/history?members=Asha,Ravi&members=Meera", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Asha", "Ravi", "Meera"}, cl.gotQuery.Members)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/checklist", "", nil).Code)
}

func TestErrorMapping(t *testing.T) {
	var fb criterio.FieldErrorsBuilder
	fb = fb.Append("doers", errors.New("select at least one doer"))
	fieldErr := fb.ToError()
	cases := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, body ErrorResponse)
	}{
		{"validation", &submission.ValidationError{Rule: submission.RuleMissingNextDate, Count: 2}, http.StatusUnprocessableEntity, func(t *testing.T, b ErrorResponse) {
			assert.Equal(t, 2, b.Count)
			assert.Contains(t, b.Error, "2 item(s)")
		}},
		{"fetch", fmt.Errorf("load: %w", &sheets.FetchError{Sheet: "Checklist", Status: 500, Err: errors.New("down")}), http.StatusBadGateway, func(t *testing.T, b ErrorResponse) {
			assert.True(t, b.Retryable)
		}},
		{"no working days", workdays.ErrNoWorkingDays, http.StatusConflict, nil},
		{"no future days", recurrence.ErrNoFutureWorkingDays, http.StatusConflict, nil},
		{"fields", fieldErr, http.StatusBadRequest, func(t *testing.T, b ErrorResponse) {
			require.Len(t, b.Fields, 1)
			assert.Equal(t, "doers", b.Fields[0].Field)
		}},
		{"bad attachment", services.ErrBadAttachment, http.StatusBadRequest, nil},
		{"unexpected", errors.New("db exploded"), http.StatusInternalServerError, func(t *testing.T, b ErrorResponse) {
			assert.Equal(t, "internal error", b.Error)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&stubChecklist{err: tc.err}, &stubAssign{err: tc.err})

			w := call(r, http.MethodPost, "/checklist/submit", "asha", models.SubmitRequest{Entries: []models.SubmitEntry{{ID: "task_1_2"}}})
			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			decode(t, w, &body)
			if tc.check != nil {
				tc.check(t, body)
			}

			w = call(r, http.MethodPost, "/assign/preview", "admin", models.AssignRequest{Doers: []string{"Asha"}})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAssignSubmit(t *testing.T) {
	r := newRouter(&stubChecklist{}, &stubAssign{})

	w := call(r, http.MethodPost, "/assign/submit", "admin", map[string]any{
		"doers":       []string{"Asha", "Ravi"},
		"startDate":   "03/06/2024",
		"frequency":   "weekly",
		"description": "Send report",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.AssignResult
	decode(t, w, &res)
	assert.Equal(t, 2, res.Count)

	w = call(r, http.MethodGet, "/assign/options", "asha", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opts models.AssignOptions
	decode(t, w, &opts)
	assert.Len(t, opts.Frequencies, 12)
}

func TestHealth(t *testing.T) {
	r := newRouter(&stubChecklist{}, &stubAssign{})
	w := call(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type stubLogs struct {
	got models.SubmissionLogFilter
}

func (s *stubLogs) List(_ context.Context, f models.SubmissionLogFilter) ([]models.SubmissionLog, error) {
	s.got = f
	return nil, nil
}

func TestSubmissionsList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := &stubLogs{}
	r := gin.New()
	r.GET("/submissions", NewSubmissionsHandler(logs).List)

	w := call(r, http.MethodGet, "/submissions?sheet=Checklist%20Done&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	require.NotNil(t, logs.got.Sheet)
	assert.Equal(t, "Checklist Done", *logs.got.Sheet)
	assert.Nil(t, logs.got.Username)
	assert.Equal(t, 5, logs.got.Limit)

	w = call(r, http.MethodGet, "/submissions?limit=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
