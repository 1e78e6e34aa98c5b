// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"tradax-ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet row using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWallet retrieves the wallet for a (user, asset) pair.
	GetWallet(ctx context.Context, q DBExecutor, userID, asset string) (*domain.Wallet, error)
	// GetWalletForUpdate retrieves the wallet for a (user, asset) pair and
	// locks the row for the remainder of the surrounding transaction.
	GetWalletForUpdate(ctx context.Context, q DBExecutor, userID, asset string) (*domain.Wallet, error)
	// ListWalletsByUser retrieves all wallets for a user, ordered by asset.
	ListWalletsByUser(ctx context.Context, q DBExecutor, userID string) ([]domain.Wallet, error)
	// UpdateWalletBalance applies a signed delta to a wallet's balance.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, delta decimal.Decimal) error
	// UpdateWalletPrice refreshes the cached display price of a wallet.
	UpdateWalletPrice(ctx context.Context, q DBExecutor, walletID int64, price decimal.Decimal) error
}
