package vending

import "errors"

// Domain rule violations. Callers match with errors.Is; wrapped messages
// carry the offending id or amount. Business no-ops (debit beyond balance,
// a skipped purchase line, unloading an unknown product) are deliberately
// not errors: they surface through unchanged balances, absent lines and nil
// results instead.
var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidDebit             = errors.New("invalid debit")
	ErrInvalidProduct           = errors.New("invalid product")
	ErrInvalidAccount           = errors.New("invalid account")
	ErrUnauthorizedDenomination = errors.New("unauthorized denomination")
	ErrAccountNotFound          = errors.New("account not found")
	ErrProductNotFound          = errors.New("product not found")
)
