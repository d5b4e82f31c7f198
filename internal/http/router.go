package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/wellspring-backend/internal/http/handlers"
	httpMW "github.com/yungbote/wellspring-backend/internal/http/middleware"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// CommonConfig is shared by both service routers.
type CommonConfig struct {
	ServiceName     string
	Log             *logger.Logger
	Metrics         *observability.Metrics
	CORSOrigins     []string
	Development     bool
	MaxRequestBytes int64
	RateLimiter     *httpMW.RateLimiter
	HealthHandler   *httpH.HealthHandler
}

type UserRouterConfig struct {
	CommonConfig
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler
	SessionHandler *httpH.SessionHandler
}

type GuidanceRouterConfig struct {
	CommonConfig
	GuidanceHandler *httpH.GuidanceHandler
}

func newEngine(cfg CommonConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(httpMW.Recover(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.SecureHeaders(cfg.Development))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.NoRoute(httpH.NotFound)
	r.NoMethod(httpH.MethodNotAllowed)

	health := cfg.HealthHandler
	if health == nil {
		health = httpH.NewHealthHandler(nil)
	}
	r.GET("/healthcheck", health.HealthCheck)
	r.GET("/readyz", health.Ready)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	return r
}

func apiGroup(r *gin.Engine, cfg CommonConfig) *gin.RouterGroup {
	api := r.Group("/api")
	if cfg.MaxRequestBytes > 0 {
		api.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))
	}
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	return api
}

func NewUserRouter(cfg UserRouterConfig) *gin.Engine {
	r := newEngine(cfg.CommonConfig)
	api := apiGroup(r, cfg.CommonConfig)
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.ChangeName)
			protected.POST("/me/password", cfg.UserHandler.ChangePassword)
		}
		if cfg.SessionHandler != nil {
			protected.GET("/sessions", cfg.SessionHandler.List)
			protected.DELETE("/sessions/:id", cfg.SessionHandler.Revoke)
		}
	}
	return r
}

func NewGuidanceRouter(cfg GuidanceRouterConfig) *gin.Engine {
	r := newEngine(cfg.CommonConfig)
	api := apiGroup(r, cfg.CommonConfig)
	if cfg.GuidanceHandler != nil {
		api.POST("/guidance", cfg.GuidanceHandler.Guide)
	}
	return r
}
