// internal/service/ledger_engine.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradax-ledger/internal/domain"
	"tradax-ledger/internal/pricing"
	"tradax-ledger/internal/repository"
	"tradax-ledger/internal/util"
	"tradax-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// ReferenceAsset is the quote currency every trade settles against.
const ReferenceAsset = "USD"

// FeeRate is the trading fee charged on buy cost and sell proceeds.
var FeeRate = decimal.RequireFromString("0.001")

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 25 * time.Millisecond
)

// LedgerEngine owns the write path to wallets and transactions. Every
// mutating operation is a single atomic unit: either all wallet mutations and
// the ledger append commit, or none are visible.
type LedgerEngine interface {
	Deposit(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Transaction, error)
	Withdraw(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Transaction, error)
	ExecuteTrade(ctx context.Context, userID, tradeType, asset string, amount, price decimal.Decimal) (*domain.Transaction, error)
	ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error)
	ListTransactions(ctx context.Context, userID string, page, size int) ([]domain.Transaction, int64, error)
}

// ledgerEngine implements the LedgerEngine interface.
type ledgerEngine struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g. *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g. *sqlx.DB)
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	oracle          pricing.Oracle
	beginTx         db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx        db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx      db.RollbackTxFunc // Injected dependency for rolling back transactions

	maxAttempts  int
	retryBackoff time.Duration
}

// NewLedgerEngine creates a new instance of LedgerEngine.
func NewLedgerEngine(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	oracle pricing.Oracle,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerEngine {
	return &ledgerEngine{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		oracle:          oracle,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		maxAttempts:     defaultMaxAttempts,
		retryBackoff:    defaultRetryBackoff,
	}
}

// normalizeUser lowers the caller-supplied identity to its stable form.
func normalizeUser(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID))
}

// normalizeAsset uppercases an asset symbol.
func normalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// runOnce executes fn inside a single database transaction.
func (e *ledgerEngine) runOnce(ctx context.Context, fn func(q repository.DBExecutor) error) error {
	txController, err := e.beginTx(ctx, e.dbBeginner)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer e.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := e.commitTx(txController); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// withRetry executes fn transactionally, retrying with linear backoff when the
// database reports a conflict between concurrent transactions. Exhausting the
// attempts yields ErrContention; every other failure is terminal on first sight.
func (e *ledgerEngine) withRetry(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		err := e.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !db.IsConflict(err) && !db.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(e.retryBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%s: %w: %v", op, util.ErrContention, lastErr)
}

// lockOrCreateWallet returns the wallet for (userID, asset) with its row
// locked until the surrounding transaction ends, creating it with a zero
// balance when absent. A concurrent create surfaces as a unique violation,
// which withRetry resolves on the next attempt.
func (e *ledgerEngine) lockOrCreateWallet(ctx context.Context, q repository.DBExecutor, userID, asset string, displayPrice decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := e.walletRepo.GetWalletForUpdate(ctx, q, userID, asset)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	wallet = domain.NewWallet(userID, asset, displayPrice)
	if err := e.walletRepo.CreateWallet(ctx, q, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// Deposit credits amount of asset to the user's wallet and appends a DEPOSIT
// record valued at the oracle's current price.
func (e *ledgerEngine) Deposit(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	userID = normalizeUser(userID)
	asset = normalizeAsset(asset)

	price, err := e.oracle.CurrentPrice(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to resolve price for %s: %w", asset, err)
	}

	var transaction *domain.Transaction
	err = e.withRetry(ctx, "deposit", func(q repository.DBExecutor) error {
		wallet, err := e.lockOrCreateWallet(ctx, q, userID, asset, price)
		if err != nil {
			return err
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, wallet.ID, amount); err != nil {
			return err
		}
		transaction = domain.NewTransaction(userID, asset, domain.TransactionTypeDeposit, amount, price)
		return e.transactionRepo.AppendTransaction(ctx, q, transaction)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Withdraw debits amount of asset from the user's wallet and appends a
// WITHDRAWAL record valued at the oracle's current price.
func (e *ledgerEngine) Withdraw(ctx context.Context, userID, asset string, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	userID = normalizeUser(userID)
	asset = normalizeAsset(asset)

	price, err := e.oracle.CurrentPrice(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("withdraw: failed to resolve price for %s: %w", asset, err)
	}

	var transaction *domain.Transaction
	err = e.withRetry(ctx, "withdraw", func(q repository.DBExecutor) error {
		wallet, err := e.lockOrCreateWallet(ctx, q, userID, asset, price)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return fmt.Errorf("%w: %s balance %s is below %s", util.ErrInsufficientBalance, asset, wallet.Balance, amount)
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, wallet.ID, amount.Neg()); err != nil {
			return err
		}
		transaction = domain.NewTransaction(userID, asset, domain.TransactionTypeWithdrawal, amount, price)
		return e.transactionRepo.AppendTransaction(ctx, q, transaction)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// ExecuteTrade exchanges the reference asset against another asset at the
// caller-stated price. Both wallet legs and the ledger append commit together.
// A 0.1% fee is charged on buy cost and sell proceeds; the recorded value is
// the pre-fee amount*price.
func (e *ledgerEngine) ExecuteTrade(ctx context.Context, userID, tradeType, asset string, amount, price decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidPrice
	}
	userID = normalizeUser(userID)
	asset = normalizeAsset(asset)

	switch strings.ToLower(tradeType) {
	case "buy":
		return e.executeBuy(ctx, userID, asset, amount, price)
	case "sell":
		return e.executeSell(ctx, userID, asset, amount, price)
	default:
		return nil, fmt.Errorf("%w: got %q", util.ErrInvalidTradeType, tradeType)
	}
}

// lockTradeWallets locks the asset and reference wallets in lexicographic
// asset order, so two opposite-direction trades on the same pair cannot
// deadlock. The stated trade price seeds the asset wallet's display price
// when the wallet is created here.
func (e *ledgerEngine) lockTradeWallets(ctx context.Context, q repository.DBExecutor, userID, asset string, price decimal.Decimal) (assetWallet, refWallet *domain.Wallet, err error) {
	displayPrice := map[string]decimal.Decimal{
		asset:          price,
		ReferenceAsset: pricing.FallbackPrice,
	}

	first, second := asset, ReferenceAsset
	if second < first {
		first, second = second, first
	}

	wallets := make(map[string]*domain.Wallet, 2)
	for _, a := range []string{first, second} {
		w, err := e.lockOrCreateWallet(ctx, q, userID, a, displayPrice[a])
		if err != nil {
			return nil, nil, err
		}
		wallets[a] = w
	}
	return wallets[asset], wallets[ReferenceAsset], nil
}

func (e *ledgerEngine) executeBuy(ctx context.Context, userID, asset string, amount, price decimal.Decimal) (*domain.Transaction, error) {
	totalValue := amount.Mul(price)
	fee := totalValue.Mul(FeeRate)
	cost := totalValue.Add(fee)

	var transaction *domain.Transaction
	err := e.withRetry(ctx, "buy", func(q repository.DBExecutor) error {
		assetWallet, usdWallet, err := e.lockTradeWallets(ctx, q, userID, asset, price)
		if err != nil {
			return err
		}
		if usdWallet.Balance.LessThan(cost) {
			return fmt.Errorf("%w: %s balance %s is below cost %s (incl. fee)", util.ErrInsufficientBalance, ReferenceAsset, usdWallet.Balance, cost)
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, usdWallet.ID, cost.Neg()); err != nil {
			return err
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, assetWallet.ID, amount); err != nil {
			return err
		}
		transaction = domain.NewTransaction(userID, asset, domain.TransactionTypeBuy, amount, price)
		return e.transactionRepo.AppendTransaction(ctx, q, transaction)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func (e *ledgerEngine) executeSell(ctx context.Context, userID, asset string, amount, price decimal.Decimal) (*domain.Transaction, error) {
	totalValue := amount.Mul(price)
	fee := totalValue.Mul(FeeRate)
	proceeds := totalValue.Sub(fee)

	var transaction *domain.Transaction
	err := e.withRetry(ctx, "sell", func(q repository.DBExecutor) error {
		assetWallet, usdWallet, err := e.lockTradeWallets(ctx, q, userID, asset, price)
		if err != nil {
			return err
		}
		if assetWallet.Balance.LessThan(amount) {
			return fmt.Errorf("%w: %s balance %s is below %s", util.ErrInsufficientBalance, asset, assetWallet.Balance, amount)
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, assetWallet.ID, amount.Neg()); err != nil {
			return err
		}
		if err := e.walletRepo.UpdateWalletBalance(ctx, q, usdWallet.ID, proceeds); err != nil {
			return err
		}
		transaction = domain.NewTransaction(userID, asset, domain.TransactionTypeSell, amount, price)
		return e.transactionRepo.AppendTransaction(ctx, q, transaction)
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// ListWallets returns all of the user's wallets with refreshed display
// prices, seeding the starter set on a user's first visit.
func (e *ledgerEngine) ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	userID = normalizeUser(userID)

	wallets, err := e.walletRepo.ListWalletsByUser(ctx, e.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	if len(wallets) == 0 {
		return e.seedStarterWallets(ctx, userID)
	}

	// Cached prices are display-only, so refreshing them outside the
	// mutation path is fine.
	for i := range wallets {
		price, err := e.oracle.CurrentPrice(ctx, wallets[i].Asset)
		if err != nil {
			return nil, fmt.Errorf("list wallets: failed to resolve price for %s: %w", wallets[i].Asset, err)
		}
		if !wallets[i].Price.Equal(price) {
			if err := e.walletRepo.UpdateWalletPrice(ctx, e.dbExecutor, wallets[i].ID, price); err != nil {
				return nil, fmt.Errorf("list wallets: %w", err)
			}
		}
		wallets[i].Price = price
	}
	return wallets, nil
}

// seedStarterWallets creates the starter wallet set for a brand-new user,
// with the reference asset funded at the starting balance.
func (e *ledgerEngine) seedStarterWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	prices := make(map[string]decimal.Decimal, len(domain.StarterAssets))
	for _, asset := range domain.StarterAssets {
		price, err := e.oracle.CurrentPrice(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("seed wallets: failed to resolve price for %s: %w", asset, err)
		}
		prices[asset] = price
	}

	var wallets []domain.Wallet
	err := e.withRetry(ctx, "seed wallets", func(q repository.DBExecutor) error {
		// A concurrent first visit may have seeded already.
		existing, err := e.walletRepo.ListWalletsByUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			wallets = existing
			return nil
		}

		wallets = wallets[:0]
		for _, asset := range domain.StarterAssets {
			wallet := domain.NewWallet(userID, asset, prices[asset])
			if asset == ReferenceAsset {
				wallet.Balance = domain.StarterUSDBalance
			}
			if err := e.walletRepo.CreateWallet(ctx, q, wallet); err != nil {
				return err
			}
			wallets = append(wallets, *wallet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// ListTransactions returns one page of the user's ledger history, newest
// first, along with the total record count.
func (e *ledgerEngine) ListTransactions(ctx context.Context, userID string, page, size int) ([]domain.Transaction, int64, error) {
	userID = normalizeUser(userID)
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	transactions, totalCount, err := e.transactionRepo.ListTransactionsByUser(ctx, e.dbExecutor, userID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, totalCount, nil
}
