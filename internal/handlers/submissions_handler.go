package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
)

type SubmissionLister interface {
	List(ctx context.Context, filter models.SubmissionLogFilter) ([]models.SubmissionLog, error)
}

type SubmissionsHandler struct {
	logs SubmissionLister
	log  zerolog.Logger
}

func NewSubmissionsHandler(logs SubmissionLister) *SubmissionsHandler {
	return &SubmissionsHandler{logs: logs, log: logging.Component("submissions")}
}

// @Summary      Recent sheet writes
// @Tags         Admin
// @Produce      json
// @Param        sheet     query     string  false  "Partition name"
// @Param        username  query     string  false  "Submitted by"
// @Param        limit     query     int     false  "Max rows (default 100)"
// @Success      200       {array}   models.SubmissionLog
// @Security     BearerAuth
// @Router       /submissions [get]
func (h *SubmissionsHandler) List(c *gin.Context) {
	var filter models.SubmissionLogFilter
	if v := strings.TrimSpace(c.Query("sheet")); v != "" {
		filter.Sheet = &v
	}
	if v := strings.TrimSpace(c.Query("username")); v != "" {
		filter.Username = &v
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a number"})
			return
		}
		filter.Limit = n
	}

	out, err := h.logs.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, "[submissions][list][err]", err)
		return
	}
	if out == nil {
		out = []models.SubmissionLog{}
	}
	c.JSON(http.StatusOK, out)
}
