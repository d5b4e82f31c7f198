package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/wellspring-backend/internal/http"
	httpH "github.com/yungbote/wellspring-backend/internal/http/handlers"
	httpMW "github.com/yungbote/wellspring-backend/internal/http/middleware"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, metrics *observability.Metrics, cfg Config, s Services, checks map[string]httpH.Check) *gin.Engine {
	log.Info("Wiring router...")
	var limiter *httpMW.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = httpMW.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	return apphttp.NewUserRouter(apphttp.UserRouterConfig{
		CommonConfig: apphttp.CommonConfig{
			ServiceName:     ServiceName,
			Log:             log,
			Metrics:         metrics,
			CORSOrigins:     cfg.CORSOrigins,
			Development:     cfg.Env == "development",
			MaxRequestBytes: cfg.MaxRequestBytes,
			RateLimiter:     limiter,
			HealthHandler:   httpH.NewHealthHandler(checks),
		},
		AuthHandler:    httpH.NewAuthHandler(log, s.Auth),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),
		UserHandler:    httpH.NewUserHandler(log, s.User),
		SessionHandler: httpH.NewSessionHandler(log, s.Auth),
	})
}
