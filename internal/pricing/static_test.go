// internal/pricing/static_test.go
package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticOracleKnownSymbols(t *testing.T) {
	oracle := NewStaticOracle()
	ctx := context.Background()

	cases := map[string]string{
		"btc": "45000.00",
		"eth": "3000.00",
		"ada": "0.50",
		"sol": "100.00",
		"usd": "1.00",
	}
	for symbol, want := range cases {
		price, err := oracle.CurrentPrice(ctx, symbol)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.RequireFromString(want)), "%s: got %s", symbol, price)
	}
}

func TestStaticOracleCaseInsensitive(t *testing.T) {
	oracle := NewStaticOracle()

	price, err := oracle.CurrentPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("45000.00")))
}

func TestStaticOracleUnknownSymbolFallsBack(t *testing.T) {
	oracle := NewStaticOracle()

	price, err := oracle.CurrentPrice(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.True(t, price.Equal(FallbackPrice))
}

func TestStaticOracleWithCustomPrices(t *testing.T) {
	oracle := NewStaticOracleWithPrices(map[string]decimal.Decimal{
		"XRP": decimal.RequireFromString("0.60"),
	})

	price, err := oracle.CurrentPrice(context.Background(), "xrp")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("0.60")))
}
