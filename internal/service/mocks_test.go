// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/pricing"
	"tradax-ledger/internal/repository"
	"tradax-ledger/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWallet(ctx context.Context, q repository.DBExecutor, userID, asset string) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletForUpdate(ctx context.Context, q repository.DBExecutor, userID, asset string) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID, asset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWalletsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateWalletPrice(ctx context.Context, q repository.DBExecutor, walletID int64, price decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, price)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) AppendTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListTransactionsByUser(ctx context.Context, q repository.DBExecutor, userID string, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) FindByUserAndType(ctx context.Context, q repository.DBExecutor, userID string, txType domain.TransactionType) ([]domain.Transaction, error) {
	args := m.Called(ctx, q, userID, txType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumValueByUserAndTypes(ctx context.Context, q repository.DBExecutor, userID string, types ...domain.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, q, userID, types)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. Embedding
// MockDBExecutor lets it stand in for the transaction executor as well.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Satisfies repository.DBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newTestEngine wires a LedgerEngine whose transaction lifecycle is the given
// mock controller.
func newTestEngine(
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	oracle pricing.Oracle,
	beginner *MockDBBeginner,
	executor *MockDBExecutor,
	controller *MockTxController,
) LedgerEngine {
	return NewLedgerEngine(
		beginner,
		executor,
		walletRepo,
		transactionRepo,
		oracle,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return controller, nil
		},
		func(tx db.TxController) error {
			return controller.Commit()
		},
		func(tx db.TxController) {
			_ = controller.Rollback()
		},
	)
}

// eqDecimal matches a decimal argument by numeric value rather than internal
// representation.
func eqDecimal(expected decimal.Decimal) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(expected)
	})
}
