// internal/service/portfolio_valuator.go
package service

import (
	"context"
	"fmt"

	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/pricing"
	"tradax-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// PortfolioValuator derives valuation and trading metrics from stored wallets
// and ledger records. It never mutates state.
type PortfolioValuator interface {
	TotalValue(ctx context.Context, userID string) (decimal.Decimal, error)
	Performance(ctx context.Context, userID string) (*domain.PortfolioPerformance, error)
	ProfitAndLoss(ctx context.Context, userID string) (decimal.Decimal, error)
	TradingVolume(ctx context.Context, userID string) (decimal.Decimal, error)
}

// portfolioValuator implements the PortfolioValuator interface.
type portfolioValuator struct {
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	oracle          pricing.Oracle
}

// NewPortfolioValuator creates a new instance of PortfolioValuator.
func NewPortfolioValuator(
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	oracle pricing.Oracle,
) PortfolioValuator {
	return &portfolioValuator{
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		oracle:          oracle,
	}
}

// TotalValue sums balance * current price over all of the user's wallets,
// rounded to 2 decimal places.
func (v *portfolioValuator) TotalValue(ctx context.Context, userID string) (decimal.Decimal, error) {
	userID = normalizeUser(userID)
	wallets, err := v.walletRepo.ListWalletsByUser(ctx, v.dbExecutor, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total value: %w", err)
	}

	total := decimal.Zero
	for _, wallet := range wallets {
		price, err := v.oracle.CurrentPrice(ctx, wallet.Asset)
		if err != nil {
			return decimal.Zero, fmt.Errorf("total value: failed to resolve price for %s: %w", wallet.Asset, err)
		}
		total = total.Add(wallet.Balance.Mul(price))
	}
	return total.Round(2), nil
}

// Performance reports total value and gain against the fixed starting
// balance. The percentage is computed at 4 decimal places before the final
// rounding; a zero reference yields zero rather than an error.
func (v *portfolioValuator) Performance(ctx context.Context, userID string) (*domain.PortfolioPerformance, error) {
	totalValue, err := v.TotalValue(ctx, userID)
	if err != nil {
		return nil, err
	}

	initialValue := domain.StarterUSDBalance
	gain := totalValue.Sub(initialValue)

	pct := decimal.Zero
	if !initialValue.IsZero() {
		pct = gain.DivRound(initialValue, 4).Mul(decimal.NewFromInt(100))
	}

	return &domain.PortfolioPerformance{
		TotalValue:          totalValue,
		InitialValue:        initialValue,
		TotalGain:           gain.Round(2),
		TotalGainPercentage: pct.Round(2),
		DayChange:           decimal.Zero,
		DayChangePercentage: decimal.Zero,
	}, nil
}

// ProfitAndLoss is total SELL value minus total BUY value, rounded to 2
// decimal places.
func (v *portfolioValuator) ProfitAndLoss(ctx context.Context, userID string) (decimal.Decimal, error) {
	userID = normalizeUser(userID)
	sells, err := v.transactionRepo.SumValueByUserAndTypes(ctx, v.dbExecutor, userID, domain.TransactionTypeSell)
	if err != nil {
		return decimal.Zero, fmt.Errorf("profit and loss: %w", err)
	}
	buys, err := v.transactionRepo.SumValueByUserAndTypes(ctx, v.dbExecutor, userID, domain.TransactionTypeBuy)
	if err != nil {
		return decimal.Zero, fmt.Errorf("profit and loss: %w", err)
	}
	return sells.Sub(buys).Round(2), nil
}

// TradingVolume is the total value traded across BUY and SELL records,
// rounded to 2 decimal places. A user with no trades gets zero.
func (v *portfolioValuator) TradingVolume(ctx context.Context, userID string) (decimal.Decimal, error) {
	userID = normalizeUser(userID)
	volume, err := v.transactionRepo.SumValueByUserAndTypes(ctx, v.dbExecutor, userID,
		domain.TransactionTypeBuy, domain.TransactionTypeSell)
	if err != nil {
		return decimal.Zero, fmt.Errorf("trading volume: %w", err)
	}
	return volume.Round(2), nil
}
