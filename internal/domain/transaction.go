// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a balance-affecting event.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTypeBuy         TransactionType = "BUY"
	TransactionTypeSell        TransactionType = "SELL"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
)

// TransactionStatus defines the status of a transaction record.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is one append-only ledger record. Rows are never edited or
// deleted after creation, except to set CompletedAt.
type Transaction struct {
	ID          int64             `db:"id" json:"id"`                     // Primary key, BIGSERIAL in DB
	Reference   string            `db:"reference" json:"reference"`       // Opaque external reference (UUID)
	UserID      string            `db:"user_id" json:"user_id"`           // Normalized lower-case email
	Asset       string            `db:"asset" json:"asset"`               // Uppercase symbol
	Type        TransactionType   `db:"type" json:"type"`                 // DEPOSIT, WITHDRAWAL, BUY, SELL, TRANSFER_IN, TRANSFER_OUT
	Amount      decimal.Decimal   `db:"amount" json:"amount"`             // Quantity of asset, always positive
	Price       decimal.Decimal   `db:"price" json:"price"`               // Unit price at execution time
	Value       decimal.Decimal   `db:"value" json:"value"`               // amount * price, the USD equivalent
	Status      TransactionStatus `db:"status" json:"status"`             // PENDING, COMPLETED, FAILED, CANCELLED
	Description *string           `db:"description" json:"description"`   // Optional description
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`     // Timestamp of record creation
	CompletedAt *time.Time        `db:"completed_at" json:"completed_at"` // Set when the record reaches COMPLETED
}

// NewTransaction creates a Transaction for a committed ledger operation.
// In the synchronous model a record is created already COMPLETED or never
// persisted at all.
func NewTransaction(userID, asset string, txType TransactionType, amount, price decimal.Decimal) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		Reference:   uuid.NewString(),
		UserID:      userID,
		Asset:       asset,
		Type:        txType,
		Amount:      amount,
		Price:       price,
		Value:       amount.Mul(price),
		Status:      TransactionStatusCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
}
