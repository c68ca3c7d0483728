package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
	log     zerolog.Logger
}

func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service, log: logging.Component("project")}
}

// @Summary      Project dashboard
// @Tags         Projects
// @Produce      json
// @Param        mode    query     string  false  "checklist (default) or delegation"
// @Param        search  query     string  false  "Free text over tasks"
// @Success      200     {object}  models.ProjectDashboard
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	mode := models.DashboardMode(c.DefaultQuery("mode", string(models.ModeChecklist)))
	d, err := h.service.Dashboard(c.Request.Context(), sessionOf(c), mode, c.Query("search"))
	if err != nil {
		respondError(c, h.log, "[project][dashboard][err]", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Project dashboard as PDF
// @Tags         Projects
// @Produce      application/pdf
// @Param        mode  query  string  false  "checklist (default) or delegation"
// @Success      200
// @Security     BearerAuth
// @Router       /projects/report.pdf [get]
func (h *ProjectHandler) Report(c *gin.Context) {
	mode := models.DashboardMode(c.DefaultQuery("mode", string(models.ModeChecklist)))
	path, err := h.service.Report(c.Request.Context(), sessionOf(c), mode)
	if err != nil {
		respondError(c, h.log, "[project][report][err]", err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
