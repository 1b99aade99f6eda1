package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/cqox-backend/internal/app"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
	"github.com/yungbote/cqox-backend/internal/platform/shutdown"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start(ctx)
	if err := a.Serve(ctx); err != nil {
		log.Error("Server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
}
