package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/wellspring-backend/internal/guidance/config"
	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/history"
	"github.com/yungbote/wellspring-backend/internal/guidance/service"
	apphttp "github.com/yungbote/wellspring-backend/internal/http"
	httpH "github.com/yungbote/wellspring-backend/internal/http/handlers"
	httpMW "github.com/yungbote/wellspring-backend/internal/http/middleware"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

const ServiceName = "ai-service"

type App struct {
	Log     *logger.Logger
	Config  *config.Config
	Metrics *observability.Metrics
	Engine  *gin.Engine

	server   *apphttp.Server
	closers  []func() error
	otelStop func(context.Context) error
}

// New builds the ai-service from cfg. A nil log is replaced by one built
// from cfg.Env.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if log == nil {
		l, err := logger.New(cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}
	a := &App{Log: log, Config: cfg}

	a.otelStop = observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(ServiceName, cfg.Env))
	a.Metrics = observability.NewMetrics(ServiceName)

	store, err := a.historyStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	composer := engine.New(engine.Options{
		History:        store,
		HistoryTimeout: cfg.History.Timeout.Duration,
		Logger:         log,
	})

	strategy, err := cfg.Strategy(log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("resolve guidance strategy: %w", err)
	}
	svc := service.NewGuidanceService(log, composer, strategy, a.Metrics)

	var limiter *httpMW.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = httpMW.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Engine = apphttp.NewGuidanceRouter(apphttp.GuidanceRouterConfig{
		CommonConfig: apphttp.CommonConfig{
			ServiceName:     ServiceName,
			Log:             log,
			Metrics:         a.Metrics,
			CORSOrigins:     cfg.HTTP.CORSOrigins,
			Development:     cfg.Env == "development",
			MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
			RateLimiter:     limiter,
			HealthHandler:   httpH.NewHealthHandler(readiness(store)),
		},
		GuidanceHandler: httpH.NewGuidanceHandler(log, svc),
	})
	a.server = apphttp.NewServer(a.Engine, apphttp.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
	}, log)
	return a, nil
}

func (a *App) historyStore(ctx context.Context) (history.Store, error) {
	h := a.Config.History
	if h.RedisAddr == "" {
		a.Log.Info("guidance history in memory", "capacity", h.Capacity)
		return history.NewRing(h.Capacity), nil
	}
	store, closeFn, err := history.DialRedis(ctx, history.RedisConfig{
		Addr:     h.RedisAddr,
		Password: h.RedisPassword,
		DB:       h.RedisDB,
		Key:      h.RedisKey,
		Capacity: h.Capacity,
	}, a.Log)
	if err != nil {
		return nil, fmt.Errorf("connect history redis: %w", err)
	}
	a.closers = append(a.closers, closeFn)
	a.Log.Info("guidance history in redis", "addr", h.RedisAddr, "key", h.RedisKey)
	return store, nil
}

// readiness checks the history backend when it lives outside the process.
func readiness(store history.Store) map[string]httpH.Check {
	p, ok := store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return map[string]httpH.Check{"history": p.Ping}
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Run(gctx) })
	return g.Wait()
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	if a.otelStop != nil {
		if err := a.otelStop(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		a.otelStop = nil
	}
	a.Log.Sync()
}
