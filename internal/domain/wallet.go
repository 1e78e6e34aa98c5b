// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet holds a user's balance for a single asset. There is exactly one row
// per (user, asset) pair.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	UserID    string          `db:"user_id" json:"user_id"`       // Normalized lower-case email
	Asset     string          `db:"asset" json:"asset"`           // Uppercase symbol, e.g. "BTC", "USD"
	Name      string          `db:"name" json:"name"`             // Display name, e.g. "Bitcoin"
	Balance   decimal.Decimal `db:"balance" json:"balance"`       // Current balance, NUMERIC(20, 8) in DB, never negative
	Price     decimal.Decimal `db:"price" json:"price"`           // Last observed unit price (display cache only)
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewWallet creates a zero-balance Wallet for a (user, asset) pair.
func NewWallet(userID, asset string, price decimal.Decimal) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,
		Asset:     asset,
		Name:      AssetName(asset),
		Balance:   decimal.Zero,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// assetNames maps the starter symbols to display names. Unknown symbols keep
// their symbol as the name.
var assetNames = map[string]string{
	"BTC": "Bitcoin",
	"ETH": "Ethereum",
	"ADA": "Cardano",
	"SOL": "Solana",
	"USD": "US Dollar",
}

// StarterAssets is the set of wallets seeded for a brand-new user, in
// creation order. USD is seeded with StarterUSDBalance, the rest with zero.
var StarterAssets = []string{"BTC", "ETH", "ADA", "SOL", "USD"}

// StarterUSDBalance is the USD balance granted to a new user. It doubles as
// the fixed reference value for portfolio performance.
var StarterUSDBalance = decimal.RequireFromString("10000.00")

// AssetName returns the display name for an asset symbol.
func AssetName(asset string) string {
	if name, ok := assetNames[asset]; ok {
		return name
	}
	return asset
}
