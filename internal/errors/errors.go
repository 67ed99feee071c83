// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidInstrument    = errors.New("instrument not tradable in this tournament")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrNoPosition           = errors.New("no position in instrument")
	ErrPlayerNotFound       = errors.New("player has not joined the tournament")
	ErrCapacityExceeded     = errors.New("tournament is full")
	ErrStoreUnavailable     = errors.New("player store unavailable")
)

// InsufficientFundsError reports a rejected buy, carrying the cost the order
// would have required and the cash actually available.
type InsufficientFundsError struct {
	Cost      float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: order costs %.2f, balance is %.2f", e.Cost, e.Available)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// NewInsufficientFundsError creates a new InsufficientFundsError.
func NewInsufficientFundsError(cost, available float64) *InsufficientFundsError {
	return &InsufficientFundsError{Cost: cost, Available: available}
}

// InsufficientHoldingsError reports a sell for more units than are held.
type InsufficientHoldingsError struct {
	Ticker    string
	Requested int
	Held      int
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings: requested %d %s, holding %d", e.Requested, e.Ticker, e.Held)
}

func (e *InsufficientHoldingsError) Unwrap() error {
	return ErrInsufficientHoldings
}

// NewInsufficientHoldingsError creates a new InsufficientHoldingsError.
func NewInsufficientHoldingsError(ticker string, requested, held int) *InsufficientHoldingsError {
	return &InsufficientHoldingsError{Ticker: ticker, Requested: requested, Held: held}
}

// CapacityError reports a join rejected because the tournament is full.
type CapacityError struct {
	MaxPlayers int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("tournament is full: maximum of %d players reached", e.MaxPlayers)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// NewCapacityError creates a new CapacityError.
func NewCapacityError(maxPlayers int) *CapacityError {
	return &CapacityError{MaxPlayers: maxPlayers}
}

// StoreError represents a transient persistence failure. It is the only
// failure class the engine surfaces that does not mean the order itself was
// rejected; the caller may retry the same command.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store error [%s]", e.Op)
}

func (e *StoreError) Unwrap() error {
	return ErrStoreUnavailable
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Is reports whether err matches target, delegating to the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
