// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "tradax-ledger/internal/api"
	"tradax-ledger/internal/api/handler"
	"tradax-ledger/internal/config"
	"tradax-ledger/internal/pricing"
	"tradax-ledger/internal/repository"
	"tradax-ledger/internal/repository/postgres"
	"tradax-ledger/internal/service"
	"tradax-ledger/internal/util"
	"tradax-ledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository

	// Pricing
	Oracle pricing.Oracle

	// Services
	LedgerEngine      service.LedgerEngine
	PortfolioValuator service.PortfolioValuator

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Price Oracle
	if app.Config.OracleURL != "" {
		app.Oracle = pricing.NewHTTPOracle(pricing.HTTPOracleConfig{BaseURL: app.Config.OracleURL})
		app.Logger.Info("Price oracle initialized.", "mode", "http", "url", app.Config.OracleURL)
	} else {
		app.Oracle = pricing.NewStaticOracle()
		app.Logger.Info("Price oracle initialized.", "mode", "static")
	}

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.LedgerEngine = service.NewLedgerEngine(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.WalletRepository,
		app.TransactionRepository,
		app.Oracle,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.PortfolioValuator = service.NewPortfolioValuator(
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		app.Oracle,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.LedgerEngine, app.PortfolioValuator, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
