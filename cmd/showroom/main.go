package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/syntrixbase/showroom/internal/config"
	"github.com/syntrixbase/showroom/internal/logging"
	"github.com/syntrixbase/showroom/internal/services"
)

func main() {
	configDir := flag.String("config", "config", "Directory holding config.yml and config.local.yml")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()

	slog.Info("Starting showroom", "backend", cfg.Storage.Backend, "port", cfg.Server.HTTPPort)

	// 2. Initialize Service Manager
	mgr := services.NewManager(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mgr.Init(ctx); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	// 3. Start Services
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	mgr.Start(bgCtx)

	// 4. Wait for Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case <-quit:
		slog.Info("Shutting down services...")
	case err := <-mgr.Err():
		slog.Error("Server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := mgr.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown finished with errors", "error", err)
		exitCode = 1
	}
	slog.Info("Services stopped")

	if exitCode != 0 {
		_ = logging.Shutdown()
		os.Exit(exitCode)
	}
}
