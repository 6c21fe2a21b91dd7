// Package main applies the Postgres schema migrations.
package main

import (
	"flag"
	"log"

	"github.com/jobbuddy/internal/bootstrap"
	"github.com/jobbuddy/internal/config"
	"github.com/jobbuddy/internal/storage"
)

func main() {
	action := flag.String("action", "up", "Migration action: up, down, version")
	path := flag.String("path", storage.DefaultMigrationsPath, "Directory holding the migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := bootstrap.InitLogging(cfg).WithField("action", *action)
	databaseURL := cfg.Database.Postgres.URL()

	switch *action {
	case "up":
		if err := storage.RunMigrations(databaseURL, *path); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		logger.Info("Migrations applied")
	case "down":
		if err := storage.RollbackMigrations(databaseURL, *path); err != nil {
			logger.WithError(err).Fatal("Rollback failed")
		}
		logger.Info("Migrations rolled back")
	case "version":
		version, dirty, err := storage.MigrationVersion(databaseURL, *path)
		if err != nil {
			logger.WithError(err).Fatal("Failed to read migration version")
		}
		logger.WithFields(map[string]interface{}{
			"version": version,
			"dirty":   dirty,
		}).Info("Current migration version")
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}
