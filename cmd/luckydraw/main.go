// Package main provides the lucky draw server binary: one draw session
// behind an HTTP surface for the operator panel and the display layer.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"luckydraw/internal/config"
	"luckydraw/internal/draw/engine"
	"luckydraw/internal/draw/rng"
	"luckydraw/internal/draw/roster"
	"luckydraw/internal/observability"
	"luckydraw/internal/server"
	"luckydraw/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	rosterPath := flag.String("roster", "", "roster CSV to preload; overrides roster.path from the config")
	flag.Parse()

	ctx := context.Background()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadDefaults()
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	settings := engine.Settings{
		DigitCount:     cfg.Draw.DigitCount,
		MinValue:       cfg.Draw.MinValue,
		MaxValue:       cfg.Draw.MaxValue,
		TickInterval:   cfg.Draw.TickInterval,
		GeneratingTime: cfg.Draw.GeneratingTime,
		DigitStopDelay: cfg.Draw.DigitStopDelay,
		SettleDelay:    cfg.Draw.SettleDelay,
	}
	session, err := engine.NewSession(settings, rng.NewCryptoSource(), engine.NewWallClock(), logger)
	if err != nil {
		logger.Fatal("creating draw session", zap.Error(err))
	}

	path := cfg.Roster.Path
	if *rosterPath != "" {
		path = *rosterPath
	}
	if path != "" {
		loadStart := time.Now()
		entries, warnings, err := roster.LoadFile(path)
		if err != nil {
			logger.Fatal("preloading roster", zap.Error(err))
		}
		for _, w := range warnings {
			logger.Warn("roster row skipped", zap.String("warning", w))
		}
		session.ReplaceRoster(entries)
		logger.Info("roster preloaded",
			zap.String("path", path),
			zap.Int("entries", len(entries)),
			zap.Duration("elapsed", time.Since(loadStart)),
		)
	}

	handler := web.NewHandler(session, logger)
	httpServer := web.NewServer(cfg.HTTP, handler, logger)
	relay := web.NewMetricsRelay(session, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("metrics-relay", relay)
	lifecycle.Add("http", httpServer)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle", zap.Error(err))
	}
}
