package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/services"
)

type AssignHandler struct {
	service services.AssignService
	log     zerolog.Logger
}

func NewAssignHandler(service services.AssignService) *AssignHandler {
	return &AssignHandler{service: service, log: logging.Component("assign")}
}

// @Summary      Assign form options
// @Tags         Assign
// @Produce      json
// @Success      200  {object}  models.AssignOptions
// @Security     BearerAuth
// @Router       /assign/options [get]
func (h *AssignHandler) Options(c *gin.Context) {
	o, err := h.service.Options(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "[assign][options][err]", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary      Preview generated tasks
// @Tags         Assign
// @Accept       json
// @Produce      json
// @Param        body  body      models.AssignRequest  true  "Assignment"
// @Success      200   {object}  models.AssignPreview
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /assign/preview [post]
func (h *AssignHandler) Preview(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, "[assign][preview][err]", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Write generated tasks
// @Tags         Assign
// @Accept       json
// @Produce      json
// @Param        body  body      models.AssignRequest  true  "Assignment"
// @Success      201   {object}  models.AssignResult
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /assign/submit [post]
func (h *AssignHandler) Submit(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := h.service.Submit(c.Request.Context(), sessionOf(c), req)
	if err != nil {
		respondError(c, h.log, "[assign][submit][err]", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
