/*
Package bank provides the cashback ledger engine.

PURPOSE:
  A single in-memory bank driven entirely by caller-supplied logical
  timestamps. Accounts receive deposits, send transfers, and make
  point-of-sale payments that earn a delayed cashback credit. Accounts
  can be merged, ranked by spend, and queried for their balance at any
  past timestamp.

KEY CONCEPTS IN THIS FILE (types.go):
  - Timestamp: logical clock value supplied by the caller (no wall clock)
  - AccountID / PaymentID: type-safe identifiers
  - Payment: a debit that schedules a cashback credit
  - Snapshot: one (timestamp, balance) entry in an account's history
  - SpenderRank: one row of the top-spenders report

LAZY DRAINING:
  There is no background timer. Every public operation first credits all
  cashback whose due time is <= the operation's timestamp, then applies
  its own effect. Drain-before-apply is what makes same-timestamp calls
  observe the credit.

CONCURRENCY:
  A Ledger is not safe for concurrent use. Callers that share one across
  goroutines serialize access themselves (see api.Service).

SEE ALSO:
  - ledger.go: The orchestrator and the public operations
  - errors.go: Sentinel and structured errors
  - policy.go: Cashback rate and delay
*/
package bank

import "fmt"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Timestamp is a logical time unit supplied by the caller.
type Timestamp int64

type AccountID string
type PaymentID string

// =============================================================================
// PAYMENT
// =============================================================================

type PaymentStatus string

const (
	PaymentInProgress       PaymentStatus = "IN_PROGRESS"
	PaymentCashbackReceived PaymentStatus = "CASHBACK_RECEIVED"
)

// Payment is a point-of-sale debit with a pending cashback credit.
//
// Status moves IN_PROGRESS -> CASHBACK_RECEIVED exactly once. AccountID
// changes only when the owning account is merged away; ID, Amount,
// Cashback and DueAt never change.
type Payment struct {
	ID        PaymentID
	AccountID AccountID
	Amount    int64
	Cashback  int64
	CreatedAt Timestamp
	DueAt     Timestamp
	Status    PaymentStatus
}

// =============================================================================
// HISTORY / REPORTING
// =============================================================================

// Snapshot is the balance of an account right after a change at At.
type Snapshot struct {
	At      Timestamp
	Balance int64
}

// SpenderRank is one row of the top-spenders report.
type SpenderRank struct {
	AccountID AccountID
	Outgoing  int64
}

// String renders the row as "<id>(<total>)".
func (r SpenderRank) String() string {
	return fmt.Sprintf("%s(%d)", r.AccountID, r.Outgoing)
}

// AccountSummary is the current state of a live account.
type AccountSummary struct {
	ID              AccountID
	Balance         int64
	Outgoing        int64
	Payments        int
	PendingCashback int
}
