package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/wellspring-backend/internal/data/db"
	"github.com/yungbote/wellspring-backend/internal/data/repos"
	apphttp "github.com/yungbote/wellspring-backend/internal/http"
	httpH "github.com/yungbote/wellspring-backend/internal/http/handlers"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

const ServiceName = "user-service"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    repos.Repos
	Services Services
	Metrics  *observability.Metrics

	server   *apphttp.Server
	otelStop func(context.Context) error
}

// New opens the database, migrates it and wires the user-service.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	if log == nil {
		l, err := logger.New(cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		log = l
	}

	theDB, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		closeDB(theDB, log)
		return nil, err
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := observability.NewMetrics(ServiceName)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, metrics, cfg, reposet)
	router := wireRouter(log, metrics, cfg, serviceset, map[string]httpH.Check{"database": pingDB(theDB)})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Metrics:  metrics,
		server:   apphttp.NewServer(router, apphttp.ServerConfig{Addr: cfg.Addr, IdleTimeout: 2 * time.Minute}, log),
		otelStop: observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(ServiceName, cfg.Env)),
	}, nil
}

// Run serves HTTP and purges expired sessions until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Run(gctx) })
	if a.Cfg.JanitorInterval > 0 {
		g.Go(func() error {
			a.runJanitor(gctx)
			return nil
		})
	}
	return g.Wait()
}

func (a *App) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(a.Cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Repos.UserToken.FullDeleteExpired(ctx, nil, time.Now()); err != nil && ctx.Err() == nil {
				a.Log.Warn("expired session purge failed", "error", err)
			}
		}
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelStop != nil {
		if err := a.otelStop(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	closeDB(a.DB, a.Log)
	a.Log.Sync()
}

func pingDB(gdb *gorm.DB) httpH.Check {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func closeDB(gdb *gorm.DB, log *logger.Logger) {
	if gdb == nil {
		return
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", "error", err)
	}
}
