// ===============================
// File: cmd/gateway/main.go
// ===============================
package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/config"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/gateway"
	"github.com/rovshanmuradov/pumpfun-gateway/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to gateway config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting pump.fun gateway")

	runner, err := gateway.NewRunner(cfg, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize gateway", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		log.Fatal("Gateway execution error", zap.Error(err))
	}
}
