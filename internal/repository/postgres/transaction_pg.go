// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	// Methods receive a DBExecutor directly, so no connection is held here.
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

const transactionColumns = `id, reference, user_id, asset, type, amount, price, value, status, description, created_at, completed_at`

// AppendTransaction inserts a new ledger record using the provided DBExecutor.
func (r *TransactionRepository) AppendTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (reference, user_id, asset, type, amount, price, value, status, description, created_at, completed_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.Reference,
		transaction.UserID,
		transaction.Asset,
		transaction.Type,
		transaction.Amount,
		transaction.Price,
		transaction.Value,
		transaction.Status,
		transaction.Description,
		transaction.CreatedAt,
		transaction.CompletedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// ListTransactionsByUser retrieves a paginated list of a user's ledger
// records, newest first. It performs two queries: one for the page and one
// for the total count.
func (r *TransactionRepository) ListTransactionsByUser(ctx context.Context, q repository.DBExecutor, userID string, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %s: %w", userID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for user %s: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// FindByUserAndType retrieves all of a user's records of one type, newest first.
func (r *TransactionRepository) FindByUserAndType(ctx context.Context, q repository.DBExecutor, userID string, txType domain.TransactionType) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC`
	if err := q.SelectContext(ctx, &transactions, query, userID, txType); err != nil {
		return nil, fmt.Errorf("failed to fetch %s transactions for user %s: %w", txType, userID, err)
	}
	return transactions, nil
}

// SumValueByUserAndTypes totals the value column over a user's COMPLETED
// records of the given types. COALESCE keeps the aggregate at zero when no
// rows match.
func (r *TransactionRepository) SumValueByUserAndTypes(ctx context.Context, q repository.DBExecutor, userID string, types ...domain.TransactionType) (decimal.Decimal, error) {
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(value), 0)
		FROM transactions
		WHERE user_id = $1 AND type = ANY($2) AND status = $3`
	err := q.GetContext(ctx, &total, query, userID, pq.Array(typeNames), domain.TransactionStatusCompleted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction values for user %s: %w", userID, err)
	}
	return total, nil
}
