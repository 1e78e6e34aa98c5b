// internal/domain/portfolio.go
package domain

import "github.com/shopspring/decimal"

// PortfolioPerformance summarizes a user's gain against the fixed starting
// balance. Day-change fields are placeholders until a historical price feed
// exists.
type PortfolioPerformance struct {
	TotalValue          decimal.Decimal `json:"totalValue"`
	InitialValue        decimal.Decimal `json:"initialValue"`
	TotalGain           decimal.Decimal `json:"totalGain"`
	TotalGainPercentage decimal.Decimal `json:"totalGainPercentage"`
	DayChange           decimal.Decimal `json:"dayChange"`
	DayChangePercentage decimal.Decimal `json:"dayChangePercentage"`
}
