package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohamedbeat/jsonrelay/config"
	"github.com/mohamedbeat/jsonrelay/logger"
	"github.com/mohamedbeat/jsonrelay/proxy"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	logg, err := logger.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Error initializing logger:", err)
	}
	defer logg.Sync()

	p, err := proxy.New(logg, cfg)
	if err != nil {
		logg.Fatal("Error creating proxy", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Start(ctx, cfg.Addr()); err != nil {
		logg.Fatal("Proxy server failed", zap.Error(err))
	}
}
