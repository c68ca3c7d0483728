package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/services"
)

// PagesHandler serves the read-only list pages.
type PagesHandler struct {
	attendance services.AttendanceService
	score      services.ScoreService
	quick      services.QuickTaskService
	log        zerolog.Logger
}

func NewPagesHandler(attendance services.AttendanceService, score services.ScoreService, quick services.QuickTaskService) *PagesHandler {
	return &PagesHandler{attendance: attendance, score: score, quick: quick, log: logging.Component("pages")}
}

// @Summary      Attendance
// @Description  Office and site attendance; a tab that failed to load carries an error string
// @Tags         Pages
// @Produce      json
// @Param        search  query     string  false  "Free text"
// @Param        month   query     string  false  "Month name"
// @Success      200     {object}  models.AttendanceView
// @Security     BearerAuth
// @Router       /attendance [get]
func (h *PagesHandler) Attendance(c *gin.Context) {
	v, err := h.attendance.View(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[attendance][view][err]", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Score sheet
// @Tags         Pages
// @Produce      json
// @Param        search  query     string  false  "Free text"
// @Success      200     {object}  models.ListView
// @Failure      502     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /score [get]
func (h *PagesHandler) Score(c *gin.Context) {
	v, err := h.score.View(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[score][view][err]", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Score sheet as PDF
// @Tags         Pages
// @Produce      application/pdf
// @Param        search  query  string  false  "Free text"
// @Success      200
// @Security     BearerAuth
// @Router       /score/report.pdf [get]
func (h *PagesHandler) ScoreReport(c *gin.Context) {
	path, err := h.score.Report(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[score][report][err]", err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// @Summary      Quick tasks
// @Tags         Pages
// @Produce      json
// @Param        search  query     string  false  "Free text"
// @Param        from    query     string  false  "Start of date range (DD/MM/YYYY or ISO)"
// @Param        to      query     string  false  "End of date range"
// @Success      200     {object}  models.ListView
// @Security     BearerAuth
// @Router       /quick-tasks [get]
func (h *PagesHandler) QuickTasks(c *gin.Context) {
	v, err := h.quick.View(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[quicktask][view][err]", err)
		return
	}
	c.JSON(http.StatusOK, v)
}
