package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

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

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Retryable bool         `json:"retryable,omitempty"`
	Rule      int          `json:"rule,omitempty"`
	Count     int          `json:"count,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func sessionOf(c *gin.Context) authz.Session {
	sess, _ := middleware.SessionFrom(c)
	return sess
}

// pageQueryFrom reads the list filters; dates that do not parse are ignored.
func pageQueryFrom(c *gin.Context) models.PageQuery {
	q := models.PageQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Member: strings.TrimSpace(c.Query("member")),
		Month:  strings.TrimSpace(c.Query("month")),
	}
	for _, v := range c.QueryArray("members") {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				q.Members = append(q.Members, m)
			}
		}
	}
	q.From, _ = dates.Parse(c.Query("from"))
	q.To, _ = dates.Parse(c.Query("to"))
	return q
}

// statusOf maps domain errors onto HTTP.
func statusOf(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}

	var ve *submission.ValidationError
	var fe *sheets.FetchError
	var fields criterio.FieldErrors
	switch {
	case errors.As(err, &ve):
		resp.Rule, resp.Count = int(ve.Rule), ve.Count
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &fields):
		resp.Error = "validation failed"
		for _, f := range fields {
			resp.Fields = append(resp.Fields, FieldError{Field: f.Field, Error: f.Err.Error()})
		}
		return http.StatusBadRequest, resp
	case errors.As(err, &fe):
		resp.Retryable = fe.Retryable()
		return http.StatusBadGateway, resp
	case errors.Is(err, workdays.ErrNoWorkingDays), errors.Is(err, recurrence.ErrNoFutureWorkingDays):
		return http.StatusConflict, resp
	case errors.Is(err, services.ErrBadAttachment), errors.Is(err, services.ErrUnknownMode):
		return http.StatusBadRequest, resp
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, resp
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}

func respondError(c *gin.Context, log zerolog.Logger, tag string, err error) {
	status, body := statusOf(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Ctx(c.Request.Context()).Err(err).Int("status", status).Msg(tag)
	c.JSON(status, body)
}
