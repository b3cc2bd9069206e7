package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"jobfit-backend/internal/shared/config"
	"jobfit-backend/internal/shared/storage/db"
	"jobfit-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(telemetry.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.missing_database_url", nil)
		os.Exit(1)
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.ProfileMigrate)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}
