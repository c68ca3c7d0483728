package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/models"
	"sheetdesk/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService, log: logging.Component("auth")}
}

// @Summary      Sign in
// @Description  Checks the username and password and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  models.LoginResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, "[auth][login][err]", err)
		return
	}
	h.log.Info().Ctx(c.Request.Context()).Str("user", resp.Username).Msg("[auth][login][ok]")
	c.JSON(http.StatusOK, resp)
}
