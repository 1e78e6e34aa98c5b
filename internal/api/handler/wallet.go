// internal/api/handler/wallet.go
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradax-ledger/internal/api/types"
	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/service"
	"tradax-ledger/internal/util" // For custom errors
)

// DefaultTimeout bounds request handling time at the router level.
const DefaultTimeout = 30 * time.Second

type contextKey string

// userContextKey carries the authenticated user identity through the request
// context.
const userContextKey contextKey = "user"

// WalletHandler handles HTTP requests for ledger and portfolio operations.
type WalletHandler struct {
	engine   service.LedgerEngine
	valuator service.PortfolioValuator
	logger   *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(engine service.LedgerEngine, valuator service.PortfolioValuator, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		engine:   engine,
		valuator: valuator,
		logger:   logger,
	}
}

// RequireUser extracts the caller identity set by the authentication layer
// from the X-User-Email header and stores its normalized form in the request
// context. Requests without an identity are rejected.
func (h *WalletHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.Header.Get("X-User-Email"))
		if email == "" {
			h.respondWithError(w, util.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, strings.ToLower(email))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

// Helper function to send JSON responses.
func (h *WalletHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *WalletHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrInvalidPrice),
		util.IsError(err, util.ErrInvalidTradeType):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = err.Error()
	case util.IsError(err, util.ErrContention):
		statusCode = http.StatusConflict
		message = "Operation conflicted with a concurrent update, please retry"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Missing user identity"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// Health reports service liveness.
// GET /wallet/health
func (h *WalletHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"service": "ledger",
	})
}

// GetBalances returns the user's wallets and total portfolio value.
// GET /wallet/balance
func (h *WalletHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	wallets, err := h.engine.ListWallets(r.Context(), user)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	totalValue, err := h.valuator.TotalValue(r.Context(), user)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"balances":   wallets,
		"totalValue": totalValue,
		"currency":   service.ReferenceAsset,
	})
}

// DepositRequest represents the request body for deposit.
type DepositRequest struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// Deposit handles the deposit request.
// POST /wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	if req.Asset == "" {
		h.respondWithError(w, util.ErrNotFound)
		return
	}

	transaction, err := h.engine.Deposit(r.Context(), userFromContext(r.Context()), req.Asset, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Deposit successful",
		"transaction": transaction,
	})
}

// WithdrawRequest represents the request body for withdraw.
type WithdrawRequest struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// Withdraw handles the withdrawal request.
// POST /wallet/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	if req.Asset == "" {
		h.respondWithError(w, util.ErrNotFound)
		return
	}

	transaction, err := h.engine.Withdraw(r.Context(), userFromContext(r.Context()), req.Asset, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Withdrawal successful",
		"transaction": transaction,
	})
}

// TradeRequest represents the request body for a trade.
type TradeRequest struct {
	Type   string          `json:"type"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

// Trade handles the buy/sell request.
// POST /wallet/trade
func (h *WalletHandler) Trade(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	if req.Asset == "" {
		h.respondWithError(w, util.ErrNotFound)
		return
	}

	transaction, err := h.engine.ExecuteTrade(r.Context(), userFromContext(r.Context()), req.Type, req.Asset, req.Amount, req.Price)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Trade executed successfully",
		"transaction": transaction,
	})
}

// GetTransactionHistory returns one page of the user's ledger history.
// GET /wallet/history?page=&size=
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 20
	}

	transactions, totalCount, err := h.engine.ListTransactions(r.Context(), userFromContext(r.Context()), page, size)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Page:       page,
		Size:       size,
		TotalCount: totalCount,
	})
}

// GetPortfolioSummary returns wallets, total value, and performance metrics.
// GET /wallet/portfolio
func (h *WalletHandler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	wallets, err := h.engine.ListWallets(r.Context(), user)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	performance, err := h.valuator.Performance(r.Context(), user)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"wallets":     wallets,
		"totalValue":  performance.TotalValue,
		"performance": performance,
		"currency":    service.ReferenceAsset,
	})
}

// GetTradingVolume returns the user's total traded value.
// GET /wallet/portfolio/volume
func (h *WalletHandler) GetTradingVolume(w http.ResponseWriter, r *http.Request) {
	volume, err := h.valuator.TradingVolume(r.Context(), userFromContext(r.Context()))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"totalVolume": volume})
}

// GetProfitLoss returns the user's realized profit and loss.
// GET /wallet/portfolio/pnl
func (h *WalletHandler) GetProfitLoss(w http.ResponseWriter, r *http.Request) {
	pnl, err := h.valuator.ProfitAndLoss(r.Context(), userFromContext(r.Context()))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"profitLoss": pnl})
}
