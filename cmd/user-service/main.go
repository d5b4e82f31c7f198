package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/wellspring-backend/internal/app"
	"github.com/yungbote/wellspring-backend/internal/platform/envutil"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
	"github.com/yungbote/wellspring-backend/internal/platform/shutdown"
)

func main() {
	if err := envutil.LoadDotenv(); err != nil {
		fmt.Printf("failed to load .env: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		log.Sync()
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		log.Sync()
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Close()
}
