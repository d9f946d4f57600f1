package main

import (
	"context"

	"innkeep/internal/bookings/events"
	bookingservice "innkeep/internal/bookings/service"
	"innkeep/internal/server"
	"innkeep/internal/store"
	"innkeep/internal/store/memory"
	storemongo "innkeep/internal/store/mongo"
	storepostgres "innkeep/internal/store/postgres"
	"innkeep/pkg/app"
	"innkeep/pkg/config"
	"innkeep/pkg/contracts"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
	"innkeep/pkg/telemetry"

	"go.opentelemetry.io/otel"
)

const ServiceName = "innkeep"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Connect()

	shutdownTelemetry, err := telemetry.Setup(context.Background(), telemetry.Config{
		ServiceName: ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to set up telemetry", "error", err)
	}

	st := initStore(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func(context.Context) error {
		cfg.GracefulShutdown()
		return nil
	})
	serverApp.OnShutdown(shutdownTelemetry)
	serverApp.OnShutdown(st.Close)

	var opts []bookingservice.Option
	if producer := initProducer(cfg); producer != nil {
		serverApp.OnShutdown(func(context.Context) error { return producer.Close() })
		opts = append(opts, bookingservice.WithPublisher(events.NewKafkaPublisher(producer, ServiceName)))
	}

	cfg.Log.Info("Starting innkeep service", "store_driver", cfg.StoreDriver)
	serverApp.SetApp(readinessChecks(cfg, st), server.Handlers(st, cfg, opts...)...)
	serverApp.Run()
}

func initStore(cfg *config.Config) store.Store {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return storepostgres.New(cfg.Client.Postgres)
	case config.StoreMemory:
		cfg.Log.Warn("Using the in-memory store; data is lost on restart")
		return memory.New()
	default:
		return storemongo.New(cfg.Client.Mongo, cfg.Mongo.DatabaseName, storemongo.Options{
			ReadTimeout:   cfg.Mongo.ReadTimeout,
			WriteTimeout:  cfg.Mongo.WriteTimeout,
			MaxCommitTime: cfg.BookingTxTimeout,
		})
	}
}

// initProducer returns nil when no brokers are configured.
func initProducer(cfg *config.Config) *kafka.Producer {
	if !cfg.Kafka.Enabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.Brokers = cfg.Kafka.Brokers
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Kafka.BookingTopic, cfg.Kafka.BookingDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		metrics, err := kafka_middleware.NewMetrics(otel.Meter(ServiceName))
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka metrics", "error", err)
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.Producer())
	}
	return producer
}

func readinessChecks(cfg *config.Config, st store.Store) map[string]contracts.Pinger {
	checks := server.Checks(st)
	if cfg.Client.Redis != nil {
		checks["redis"] = contracts.PingFunc(func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		})
	}
	return checks
}
