package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sheetdesk/internal/logging"
	"sheetdesk/internal/realtime"
)

type RealtimeHandler struct {
	hub *realtime.SheetHub
	log zerolog.Logger
}

func NewRealtimeHandler(hub *realtime.SheetHub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, log: logging.Component("realtime")}
}

// @Summary      Sheet change events
// @Description  Websocket; every insert sends {sheet, action, rows}
// @Tags         Realtime
// @Security     BearerAuth
// @Router       /ws/sheets [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.log.Warn().Ctx(c.Request.Context()).Err(err).Msg("[ws][upgrade][err]")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sess := sessionOf(c)
	h.hub.Register(conn)
	h.log.Debug().Str("user", sess.Username).Int("subscribers", h.hub.Len()).Msg("[ws][subscribe]")

	_ = conn.Drain()
	h.hub.Unregister(conn)
}

// Health godoc
// @Summary  Liveness probe
// @Tags     System
// @Success  200
// @Router   /healthz [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
