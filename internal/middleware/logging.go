package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/logging"
)

// AccessLog writes one line per request once the handler chain is done.
func AccessLog() gin.HandlerFunc {
	l := logging.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.Ctx(c.Request.Context()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("[http][request]")
	}
}
