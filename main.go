package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"finance-ledger-backend/internal/config"
	"finance-ledger-backend/internal/savings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Check for migrate command
	migrateCmd := flag.Bool("migrate", false, "Run database migration and exit")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo goals, transactions, budgets and recurring transactions (idempotent)")
	flag.Parse()

	logger := newLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)
	ctx := context.Background()

	if err := config.LoadDotEnv(ctx, logger); err != nil {
		logger.Error("Failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(ctx, logger)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// amounts are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if *migrateCmd {
		if err := setupDatabase(ctx, cfg, logger); err != nil {
			logger.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Migration completed successfully")
		os.Exit(0)
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if *seedDemoCmd || cfg.Storage == config.StorageMemory {
		if err := seedDemoData(ctx, st, time.Now(), cfg.Location); err != nil {
			logger.Error("Seeding demo data failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Demo data seeded")
		if *seedDemoCmd {
			return
		}
	}

	opts := []savings.Option{}
	if cfg.ChallengeSeed != nil {
		opts = append(opts, savings.WithRand(savings.NewRand(*cfg.ChallengeSeed)))
	}

	srv := &server{
		store:  st,
		ledger: savings.NewLedger(opts...),
		now:    time.Now,
		loc:    cfg.Location,
		user:   cfg.AuditUser,
		logger: logger,
	}

	// Initialize Redis
	redisClient, err := initRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Failed to initialize Redis, continuing without cache", "error", err)
		redisClient = nil
	}
	srv.cache = newResponseCache(redisClient, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := newRouter(srv, cfg.CORSOrigins)

	logger.Info("Server starting", "port", cfg.Port, "storage", cfg.Storage)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newRouter wires the HTTP routes
func newRouter(srv *server, origins []string) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", profileHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", srv.healthCheck)

	api := r.Group("/api", srv.withProfile)

	api.GET("/goals", srv.listGoals)
	api.POST("/goals", srv.createGoal)
	api.GET("/goals/:id", srv.getGoal)
	api.PUT("/goals/:id", srv.updateGoal)
	api.DELETE("/goals/:id", srv.deleteGoal)
	api.POST("/goals/:id/contributions", srv.contribute)
	api.POST("/goals/:id/withdrawals/:wid/complete", srv.completeWithdrawal)
	api.GET("/withdrawals/pending", srv.listPendingWithdrawals)
	api.POST("/savings-automation", srv.configureAutomation)

	api.GET("/recurring", srv.listRecurring)
	api.POST("/recurring", srv.createRecurring)
	api.GET("/recurring/overview", srv.recurringOverview)
	api.PUT("/recurring/:id", srv.updateRecurring)
	api.DELETE("/recurring/:id", srv.deleteRecurring)

	api.GET("/transactions", srv.getTransactions)
	api.POST("/transactions", srv.addTransaction)
	api.DELETE("/transactions/:id", srv.deleteTransaction)
	api.GET("/categories", srv.getCategories)
	api.GET("/analytics", srv.getAnalytics)

	api.GET("/budgets", srv.getBudgets)
	api.POST("/budgets", srv.createBudget)
	api.PUT("/budgets/:id", srv.updateBudget)
	api.DELETE("/budgets/:id", srv.deleteBudget)

	api.GET("/audit", srv.listAudit)
	api.DELETE("/audit", srv.clearAudit)

	return r
}
