// internal/pricing/http_test.go
package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Path[len("/prices/"):]
		price, ok := prices[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"symbol":%q,"price":%q}`, symbol, price)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPOracleCurrentPrice(t *testing.T) {
	server := newFeedServer(t, map[string]string{"btc": "47123.45"})
	oracle := NewHTTPOracle(HTTPOracleConfig{BaseURL: server.URL})

	price, err := oracle.CurrentPrice(context.Background(), "BTC")

	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("47123.45")), "got %s", price)
}

func TestHTTPOracleUnknownSymbolFallsBack(t *testing.T) {
	server := newFeedServer(t, map[string]string{"btc": "47123.45"})
	oracle := NewHTTPOracle(HTTPOracleConfig{BaseURL: server.URL})

	price, err := oracle.CurrentPrice(context.Background(), "doge")

	require.NoError(t, err)
	assert.True(t, price.Equal(FallbackPrice))
}

func TestHTTPOracleServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	oracle := NewHTTPOracle(HTTPOracleConfig{BaseURL: server.URL})

	_, err := oracle.CurrentPrice(context.Background(), "btc")

	assert.Error(t, err)
}

func TestHTTPOracleNonPositiveQuoteFallsBack(t *testing.T) {
	server := newFeedServer(t, map[string]string{"bad": "0"})
	oracle := NewHTTPOracle(HTTPOracleConfig{BaseURL: server.URL})

	price, err := oracle.CurrentPrice(context.Background(), "bad")

	require.NoError(t, err)
	assert.True(t, price.Equal(FallbackPrice))
}
