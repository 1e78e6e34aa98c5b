// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tradax-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Route("/wallet", func(r chi.Router) {
		r.Get("/health", walletHandler.Health)

		// Everything below requires a caller identity.
		r.Group(func(r chi.Router) {
			r.Use(walletHandler.RequireUser)

			r.Get("/balance", walletHandler.GetBalances)
			r.Post("/deposit", walletHandler.Deposit)
			r.Post("/withdraw", walletHandler.Withdraw)
			r.Post("/trade", walletHandler.Trade)
			r.Get("/history", walletHandler.GetTransactionHistory)
			r.Get("/portfolio", walletHandler.GetPortfolioSummary)
			r.Get("/portfolio/volume", walletHandler.GetTradingVolume)
			r.Get("/portfolio/pnl", walletHandler.GetProfitLoss)
		})
	})

	return r
}
