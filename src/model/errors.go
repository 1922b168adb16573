package model

import "errors"

// Error taxonomy shared by the ledger, the trade service and the HTTP layer.
// The first group is recoverable and surfaced to the caller synchronously;
// ErrLedgerInvariant is fatal for the affected account's operation and is
// never clamped or swallowed.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientHoldings   = errors.New("insufficient holdings")
	ErrMarketClosed           = errors.New("market is closed")
	ErrInvalidQuantity        = errors.New("quantity must be a positive integer")
	ErrInvalidPrice           = errors.New("price must be positive")
	ErrNotFound               = errors.New("not found")
	ErrNotPending             = errors.New("order is not pending")
	ErrConcurrentModification = errors.New("concurrent modification, refresh and retry")
	ErrLedgerInvariant        = errors.New("ledger invariant violation")
)
