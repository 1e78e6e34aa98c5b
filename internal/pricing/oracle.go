// internal/pricing/oracle.go
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Oracle supplies the current unit price for an asset symbol. Lookups are
// case-insensitive; a symbol the oracle does not know prices at FallbackPrice
// rather than failing, so a missing quote never blocks a ledger operation.
type Oracle interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// FallbackPrice is the unit price used for symbols unknown to an oracle.
var FallbackPrice = decimal.RequireFromString("1.00")
