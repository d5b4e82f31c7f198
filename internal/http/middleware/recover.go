package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wellspring-backend/internal/platform/ctxutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

func Recover(baseLog *logger.Logger) gin.HandlerFunc {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	log := baseLog.With("middleware", "Recover")
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					"panic", rec,
					"route", c.FullPath(),
					"request_id", ctxutil.RequestID(c.Request.Context()),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": "internal server error",
					"code":    "internal",
				})
			}
		}()
		c.Next()
	}
}
