// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/repository"
	"tradax-ledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// Methods receive a DBExecutor directly, so no connection is held here.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

const walletColumns = `id, user_id, asset, name, balance, price, created_at, updated_at`

// CreateWallet inserts a new wallet row using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, asset, name, balance, price, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.UserID, wallet.Asset, wallet.Name, wallet.Balance, wallet.Price, wallet.CreatedAt, wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to create wallet for user %s asset %s: %w", wallet.UserID, wallet.Asset, err)
	}
	return nil
}

// GetWallet retrieves the wallet for a (user, asset) pair.
func (r *WalletRepository) GetWallet(ctx context.Context, q repository.DBExecutor, userID, asset string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND asset = $2`
	err := q.GetContext(ctx, &wallet, query, userID, asset)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %s asset %s: %w", userID, asset, err)
	}
	return &wallet, nil
}

// GetWalletForUpdate retrieves the wallet for a (user, asset) pair with a row
// lock held until the surrounding transaction commits or rolls back. Callers
// lock multiple wallets in lexicographic asset order.
func (r *WalletRepository) GetWalletForUpdate(ctx context.Context, q repository.DBExecutor, userID, asset string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND asset = $2 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, userID, asset)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet for user %s asset %s: %w", userID, asset, err)
	}
	return &wallet, nil
}

// ListWalletsByUser retrieves all wallets for a user, ordered by asset.
func (r *WalletRepository) ListWalletsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY asset`
	if err := q.SelectContext(ctx, &wallets, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list wallets for user %s: %w", userID, err)
	}
	return wallets, nil
}

// UpdateWalletBalance applies a signed delta to a wallet's balance. The
// wallets table carries a CHECK (balance >= 0) constraint, so a delta that
// would drive the balance negative fails the statement instead of committing.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet balance for ID %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating wallet balance for ID %d: %w", walletID, util.ErrNotFound)
	}
	return nil
}

// UpdateWalletPrice refreshes the cached display price of a wallet.
func (r *WalletRepository) UpdateWalletPrice(ctx context.Context, q repository.DBExecutor, walletID int64, price decimal.Decimal) error {
	query := `UPDATE wallets SET price = $1, updated_at = $2 WHERE id = $3`
	if _, err := q.ExecContext(ctx, query, price, time.Now().UTC(), walletID); err != nil {
		return fmt.Errorf("failed to update wallet price for ID %d: %w", walletID, err)
	}
	return nil
}
