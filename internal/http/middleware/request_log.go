package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// Probe routes are logged at debug so polling does not drown real traffic.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/readyz":      true,
	"/metrics":     true,
}

// RequestLogger writes one line per request after the handler chain ran.
func RequestLogger(baseLog *logger.Logger) gin.HandlerFunc {
	if baseLog == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log := baseLog.With("middleware", "RequestLogger")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, correlation(c)...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("http request", fields...)
		case status >= 400:
			log.Warn("http request", fields...)
		case quietRoutes[route]:
			log.Debug("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

func correlation(c *gin.Context) []interface{} {
	ctx := c.Request.Context()
	var out []interface{}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		out = append(out, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		out = append(out, "user_id", rd.UserID.String(), "session_id", rd.SessionID.String())
	}
	return out
}
