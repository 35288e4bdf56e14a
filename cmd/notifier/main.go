package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tazhibayda/radiostation-service/internal/config"
	"github.com/tazhibayda/radiostation-service/internal/log"
	"github.com/tazhibayda/radiostation-service/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	l, err := log.Init(cfg.LogProduction)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	if err := cfg.ValidateNotifier(); err != nil {
		l.Fatal("invalid config", zap.Error(err))
	}

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, cfg.RabbitBindKey)
	if err != nil {
		l.Fatal("rabbit consumer init", zap.Error(err))
	}
	defer cons.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("notifier up",
		zap.String("exchange", cfg.RabbitExchange),
		zap.String("queue", cfg.RabbitQueue),
		zap.String("key", cfg.RabbitBindKey),
		zap.Int("workers", cfg.Concurrency),
	)
	if err := cons.Consume(ctx, cfg.Concurrency, queue.AuditHandler(l.Named("audit"))); err != nil {
		l.Fatal("consumer stopped", zap.Error(err))
	}
	l.Info("notifier stopped")
}
