package main

import (
	"context"
	"time"

	mongoMigration "innkeep/internal/migrations/mongo"
	postgresMigration "innkeep/internal/migrations/postgres"
	"innkeep/pkg/config"
)

const JobName = "innkeep-migrate"

// migrate applies the schema of the configured STORE_DRIVER.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()

	var err error
	switch cfg.StoreDriver {
	case config.StoreMongo:
		cfg.SetMongo()
		err = mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.Mongo.DatabaseName, cfg.Log)
	case config.StorePostgres:
		cfg.SetPostgres()
		err = postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	default:
		cfg.Log.Info("Nothing to migrate", "store_driver", cfg.StoreDriver)
		return
	}

	if err != nil {
		cfg.Log.Error("Migration failed", "store_driver", cfg.StoreDriver, "error", err)
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
	cfg.Log.Info("Migration completed successfully", "store_driver", cfg.StoreDriver)
}
