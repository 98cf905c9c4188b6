package main

import (
	"context"
	"log/slog"

	"finance-ledger-backend/internal/config"
	"finance-ledger-backend/internal/store"
)

// setupDatabase creates the schema without starting the server
func setupDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := openDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.InfoContext(ctx, "Creating database schema...")
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Schema created successfully")
	return nil
}
