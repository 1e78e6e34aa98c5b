// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"tradax-ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger record operations.
// Records are append-only: there is deliberately no update or delete.
type TransactionRepository interface {
	// AppendTransaction adds a new ledger record using the provided DBExecutor.
	AppendTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// ListTransactionsByUser retrieves a user's records, newest first, along
	// with the total record count for pagination.
	ListTransactionsByUser(ctx context.Context, q DBExecutor, userID string, limit, offset int) ([]domain.Transaction, int64, error)
	// FindByUserAndType retrieves all of a user's records of one type.
	FindByUserAndType(ctx context.Context, q DBExecutor, userID string, txType domain.TransactionType) ([]domain.Transaction, error)
	// SumValueByUserAndTypes totals the value column over a user's COMPLETED
	// records of the given types. Returns zero when no rows match.
	SumValueByUserAndTypes(ctx context.Context, q DBExecutor, userID string, types ...domain.TransactionType) (decimal.Decimal, error)
}
