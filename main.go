package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/config"
	"github.com/balcao-digital/gestor-engine/pkg/database"
	"github.com/balcao-digital/gestor-engine/pkg/handlers"
	"github.com/balcao-digital/gestor-engine/pkg/llm"
	"github.com/balcao-digital/gestor-engine/pkg/middleware"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
	"github.com/balcao-digital/gestor-engine/pkg/services"
	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.Database),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
		ConnLifetime:   cfg.Database.ConnLifetime,
		ConnIdleTime:   cfg.Database.ConnIdleTime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	client, err := llm.New(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Repositories
	categories := repositories.NewCategoryRepository(db)
	suppliers := repositories.NewSupplierRepository(db)
	customers := repositories.NewCustomerRepository(db)
	products := repositories.NewProductRepository(db)
	sales := repositories.NewSaleRepository(db)
	receivables := repositories.NewReceivableRepository(db)
	payables := repositories.NewPayableRepository(db)
	chat := repositories.NewChatRepository(db)

	// Services
	saleService := services.NewSaleService(sales, products, receivables, logger)
	financeService := services.NewFinanceService(receivables, payables, logger)
	dashboardService := services.NewDashboardService(sales, receivables, payables)
	snapshots := snapshot.NewBuilder(sales, receivables, payables, products, logger)
	analystService := services.NewAnalystService(
		client, chat, snapshots,
		cfg.LLM.Timeout(), cfg.Analyst.HistoryTurns, cfg.Analyst.SnapshotRows,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg.Version, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(categories, suppliers, customers, products, logger).RegisterRoutes(mux)
	handlers.NewSalesHandler(saleService, logger).RegisterRoutes(mux)
	handlers.NewFinanceHandler(financeService, logger).RegisterRoutes(mux)
	handlers.NewDashboardHandler(dashboardService, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(analystService, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting gestor-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations opens a short-lived database/sql connection for the
// migration run; the pgx pool is created afterwards.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return database.RunMigrations(db, cfg.Database.MigrationsPath, logger)
}
