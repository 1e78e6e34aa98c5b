// internal/pricing/static.go
package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// StaticOracle serves prices from a fixed in-memory table. It backs local
// development and tests, and is the default when no oracle URL is configured.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle returns a StaticOracle preloaded with the reference quotes.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		prices: map[string]decimal.Decimal{
			"btc": decimal.RequireFromString("45000.00"),
			"eth": decimal.RequireFromString("3000.00"),
			"ada": decimal.RequireFromString("0.50"),
			"sol": decimal.RequireFromString("100.00"),
			"usd": decimal.RequireFromString("1.00"),
		},
	}
}

// NewStaticOracleWithPrices returns a StaticOracle over the given quotes,
// keyed by lower-case symbol.
func NewStaticOracleWithPrices(prices map[string]decimal.Decimal) *StaticOracle {
	table := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		table[strings.ToLower(symbol)] = price
	}
	return &StaticOracle{prices: table}
}

// CurrentPrice returns the table quote for symbol, or FallbackPrice when the
// symbol is unknown.
func (o *StaticOracle) CurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	if price, ok := o.prices[strings.ToLower(symbol)]; ok {
		return price, nil
	}
	return FallbackPrice, nil
}
