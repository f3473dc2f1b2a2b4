package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hermes/api/httpserver"
	"hermes/config"
	"hermes/domain/instrument"
	"hermes/engine"
	"hermes/infra/kafka"
	"hermes/jobs/broadcaster"
	"hermes/pkg/logger"
	"hermes/reporter"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Instruments ----------------

	reg, err := instrument.NewRegistry(instrument.GenerateUniverse(cfg.UniversePrefix, cfg.UniverseSize))
	if err != nil {
		zl.Fatal("registry init failed", zap.Error(err))
	}

	// ---------------- Reporters ----------------

	outbox, err := reporter.OpenOutbox(cfg.OutboxDir, zl)
	if err != nil {
		zl.Fatal("outbox init failed", zap.Error(err))
	}
	defer func() { _ = outbox.Close() }()

	hub := httpserver.NewHub(zl)

	reporters := reporter.Multi{
		reporter.Log{L: zl},
		outbox,
		httpserver.NewTradeStream(hub, reg),
	}

	if len(cfg.KafkaBrokers) > 0 {
		feed := reporter.NewFeed(kafka.NewAsyncProducer(cfg.KafkaBrokers, cfg.FeedTopic), reg, zl)
		defer func() { _ = feed.Close() }()
		reporters = append(reporters, feed)
	}

	// ---------------- Engine ----------------

	eng := engine.New(reg, reporters, zl)

	// ---------------- Background Jobs ----------------

	if len(cfg.KafkaBrokers) > 0 {
		bc, err := broadcaster.New(outbox, reg, cfg.KafkaBrokers, cfg.TradeTopic, cfg.BroadcastInterval, zl)
		if err != nil {
			zl.Fatal("broadcaster init failed", zap.Error(err))
		}
		defer func() { _ = bc.Close() }()
		bc.Start(ctx)
	}

	// ---------------- HTTP ----------------

	srv := httpserver.NewServer(eng, hub, cfg.PriceScale, zl)
	// Error, not Fatal: the stacked Close defers must still run.
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		zl.Error("http server exited", zap.Error(err))
	}
}
