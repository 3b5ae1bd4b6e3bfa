package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"civic-service/internal/config"
	"civic-service/internal/kvcache"
	"civic-service/internal/notify"
	slogpretty "civic-service/pkg/handlers/slogPretty"
	"civic-service/pkg/sl"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting notification worker", slog.String("env", cfg.Env))

	cache, err := kvcache.New(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init kv cache", sl.Err(err))
		os.Exit(1)
	}

	var notifier notify.Notifier
	if cfg.Notify.PushGatewayURL != "" {
		notifier = notify.NewPushGateway(cfg.Notify.PushGatewayURL)
		log.Info("Using push gateway", slog.String("endpoint", cfg.Notify.PushGatewayURL))
	} else {
		notifier = notify.NewConsole(log)
		log.Info("No push gateway configured, logging notifications")
	}

	consumer := notify.NewConsumer(notify.ConsumerConfig{
		AMQPURL:     cfg.AMQPURL,
		Exchange:    cfg.Notify.Exchange,
		Queue:       cfg.Notify.Queue,
		MinInterval: cfg.Notify.MinInterval,
	}, notifier, cache, log)

	if err := consumer.Connect(); err != nil {
		log.Error("Failed to connect to broker", sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped unexpectedly", sl.Err(err))
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", sl.Err(err))
	}

	if err := cache.Close(); err != nil {
		log.Error("Failed to close kv cache", sl.Err(err))
	}

	log.Info("Notification worker stopped")

}

func setupLogger(env string) *slog.Logger {
	if env == "local" {
		opts := slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}
		return slog.New(opts.NewPrettyHandler(os.Stdout))
	}

	return slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
}
