/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  Every failure of a public operation is a normal, expected outcome the
  caller branches on. Boolean operations (CreateAccount, MergeAccounts)
  and value operations (Deposit, Transfer, Pay, ...) both report failure
  as a non-nil error wrapping one of the sentinels below.

ERROR CATEGORIES:
  1. Not found   - unknown account, unknown payment, no history at a
                   time, merged-away account
  2. Client      - duplicate id, same account, insufficient funds,
                   non-positive amount
  3. Policy      - invalid cashback policy (construction only)

USAGE:
    if _, err := l.Pay(ts, "A", 50); errors.Is(err, bank.ErrInsufficientFunds) {
        ...
    }

SEE ALSO:
  - api/handlers.go: Maps these errors onto HTTP status codes
*/
package bank

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountExists is returned when creating an id that is already live.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound is returned when a referenced account is not live.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSameAccount is returned for self-transfers and self-merges.
	ErrSameAccount = errors.New("source and target account are the same")

	// ErrInsufficientFunds is returned when a debit would make a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPaymentNotFound is returned when the account has no such payment.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNoHistory is returned when no snapshot exists at or before the queried time.
	ErrNoHistory = errors.New("no balance history at requested time")

	// ErrAccountMerged is returned for historical queries at or after a merge cutoff.
	ErrAccountMerged = errors.New("account was merged")

	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidPolicy is returned when a cashback policy is out of range.
	ErrInvalidPolicy = errors.New("invalid cashback policy")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError provides details about a rejected debit.
type InsufficientFundsError struct {
	AccountID AccountID
	Available int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %d, requested %d",
		e.AccountID, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// MergedAccountError reports a historical query past a merge cutoff.
type MergedAccountError struct {
	AccountID AccountID
	MergedAt  Timestamp
	At        Timestamp
}

func (e *MergedAccountError) Error() string {
	return fmt.Sprintf("account %s was merged at %d, cannot query %d",
		e.AccountID, e.MergedAt, e.At)
}

func (e *MergedAccountError) Unwrap() error {
	return ErrAccountMerged
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing account, payment or snapshot.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrNoHistory) ||
		errors.Is(err, ErrAccountMerged)
}

// IsClientError returns true if the error is due to a rejected request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAccountExists) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInvalidAmount)
}
