package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/wellspring-backend/internal/guidance/app"
	"github.com/yungbote/wellspring-backend/internal/guidance/config"
	"github.com/yungbote/wellspring-backend/internal/platform/envutil"
	"github.com/yungbote/wellspring-backend/internal/platform/shutdown"
)

func main() {
	if err := envutil.LoadDotenv(); err != nil {
		fmt.Printf("failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		a.Log.Error("server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Close()
}
