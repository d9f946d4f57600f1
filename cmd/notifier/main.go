package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"innkeep/internal/bookings/events"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
	"innkeep/pkg/telemetry"

	"go.opentelemetry.io/otel"
)

const ServiceName = "innkeep-notifier"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.Kafka.Enabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to set up telemetry", "error", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			cfg.Log.Error("Failed to flush telemetry", "error", err)
		}
	}()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.Brokers = cfg.Kafka.Brokers
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	notifier := events.NewNotifier(cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Kafka.BookingTopic, kafkaCfg.ConsumerGroup, cfg.Kafka.BookingDLQTopic, notifier.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		metrics, err := kafka_middleware.NewMetrics(otel.Meter(ServiceName))
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka metrics", "error", err)
		}
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.Consumer())
	}

	cfg.Log.Info("Starting booking notifier", "topic", cfg.Kafka.BookingTopic, "group", kafkaCfg.ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
