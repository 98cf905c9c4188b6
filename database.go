package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/config"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/schedule"
	"finance-ledger-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	maxRetries = 60
	retryDelay = 2 * time.Second
)

type goalStore interface {
	ListGoals(ctx context.Context, p profile.Profile) ([]savings.Goal, error)
	GetGoal(ctx context.Context, id string) (savings.Goal, error)
	CreateGoal(ctx context.Context, g savings.Goal) error
	UpdateGoal(ctx context.Context, id string, fn func(savings.Goal) (savings.Goal, error)) (savings.Goal, error)
	DeleteGoal(ctx context.Context, id string) (savings.Goal, error)
}

type recurringStore interface {
	ListRecurring(ctx context.Context, p profile.Profile) ([]schedule.Recurring, error)
	GetRecurring(ctx context.Context, id string) (schedule.Recurring, error)
	CreateRecurring(ctx context.Context, r schedule.Recurring) error
	UpdateRecurring(ctx context.Context, r schedule.Recurring) error
	DeleteRecurring(ctx context.Context, id string) (schedule.Recurring, error)
}

type transactionStore interface {
	ListTransactions(ctx context.Context, p profile.Profile) ([]cashflow.Transaction, error)
	GetTransaction(ctx context.Context, id string) (cashflow.Transaction, error)
	CreateTransaction(ctx context.Context, t cashflow.Transaction) error
	DeleteTransaction(ctx context.Context, id string) (cashflow.Transaction, error)
}

type budgetStore interface {
	ListBudgets(ctx context.Context, p profile.Profile) ([]cashflow.Budget, error)
	GetBudget(ctx context.Context, id string) (cashflow.Budget, error)
	CreateBudget(ctx context.Context, b cashflow.Budget) error
	UpdateBudget(ctx context.Context, b cashflow.Budget) error
	DeleteBudget(ctx context.Context, id string) (cashflow.Budget, error)
}

type auditStore interface {
	AppendAudit(ctx context.Context, entries ...audit.Entry) error
	ListAudit(ctx context.Context, f store.AuditFilter) ([]audit.Entry, error)
	ClearAudit(ctx context.Context) error
}

// appStore is everything the handlers need from persistence
type appStore interface {
	goalStore
	recurringStore
	transactionStore
	budgetStore
	auditStore
	Ping(ctx context.Context) error
	Close() error
}

// openDB connects to PostgreSQL, waiting for the database to come up
func openDB(ctx context.Context, databaseURL string, logger *slog.Logger) (*sql.DB, error) {
	pgxConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		db := stdlib.OpenDB(*pgxConfig)
		err := db.PingContext(ctx)
		if err == nil {
			logger.InfoContext(ctx, "Database connection established")
			return db, nil
		}
		_ = db.Close()
		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
		}

		// Log the actual error on the first attempts and every 10th after that
		attrs := []any{"retry_in", retryDelay, "attempt", i + 1, "max_attempts", maxRetries}
		if i%10 == 0 || i < 5 {
			attrs = append(attrs, "error", err)
		}
		logger.WarnContext(ctx, "Database not ready", attrs...)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database")
}

// openStore opens the configured storage backend
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (appStore, error) {
	if cfg.Storage == config.StorageMemory {
		logger.InfoContext(ctx, "Using in-memory storage; data is lost on restart")
		return store.NewMemory(), nil
	}

	db, err := openDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.NewPostgres(db, cfg.Location), nil
}
