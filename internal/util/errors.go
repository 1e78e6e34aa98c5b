// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidTradeType    = errors.New("trade type must be 'buy' or 'sell'")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrContention          = errors.New("concurrent update conflict, retries exhausted")
	ErrUnauthorized        = errors.New("missing or invalid user identity")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
