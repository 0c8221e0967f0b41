package main

import (
	"context"
	"os/signal"
	"syscall"

	"bookspace/internal/notifications"
	"bookspace/pkg/config"
	"bookspace/pkg/kafka"
	kafka_config "bookspace/pkg/kafka/config"
	kafka_middleware "bookspace/pkg/kafka/middleware"
)

func main() {
	cfg := config.Load(config.NotifierServiceName)

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	var mailer notifications.Mailer
	if cfg.SendGridAPIKey == "" {
		cfg.Log.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		mailer = notifications.NewLogMailer(cfg.Log)
	} else {
		mailer = notifications.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, cfg.Log)
	}
	dispatcher := notifications.NewDispatcher(mailer, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.NotificationsTopic, cfg.NotifierGroupID, dispatcher.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.NotificationsTopic, "group_id", cfg.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
