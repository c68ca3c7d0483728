package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/services"
)

type ChecklistHandler struct {
	service services.ChecklistService
	log     zerolog.Logger
}

func NewChecklistHandler(service services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{service: service, log: logging.Component("checklist")}
}

// @Summary      Pending checklist tasks
// @Tags         Checklist
// @Produce      json
// @Param        search  query     string  false  "Free text"
// @Param        member  query     string  false  "Assignee"
// @Param        from    query     string  false  "Start date from"
// @Param        to      query     string  false  "Start date to"
// @Success      200     {object}  models.ChecklistView
// @Failure      502     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /checklist [get]
func (h *ChecklistHandler) Pending(c *gin.Context) {
	v, err := h.service.Pending(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[checklist][pending][err]", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Completed checklist tasks
// @Tags         Checklist
// @Produce      json
// @Param        search   query     string  false  "Free text"
// @Param        members  query     string  false  "Comma separated assignees"
// @Param        from     query     string  false  "Condition date from"
// @Param        to       query     string  false  "Condition date to"
// @Success      200      {object}  models.ChecklistView
// @Security     BearerAuth
// @Router       /checklist/history [get]
func (h *ChecklistHandler) History(c *gin.Context) {
	v, err := h.service.History(c.Request.Context(), sessionOf(c), pageQueryFrom(c))
	if err != nil {
		respondError(c, h.log, "[checklist][history][err]", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Submit completed tasks
// @Description  Validates the selection and appends one history row per selected task
// @Tags         Checklist
// @Accept       json
// @Produce      json
// @Param        body  body      models.SubmitRequest  true  "Selected tasks"
// @Success      200   {object}  models.SubmitResult
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /checklist/submit [post]
func (h *ChecklistHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Ctx(c.Request.Context()).Err(err).Msg("[checklist][submit][bind][err]")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.service.Submit(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		respondError(c, h.log, "[checklist][submit][err]", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
