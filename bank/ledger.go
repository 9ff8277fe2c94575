/*
ledger.go - The ledger orchestrator

PURPOSE:
  Ledger composes the account store, payment ledger, cashback scheduler,
  spend ranking, balance history and merge registry into the public
  operations of the bank.

OPERATION SHAPE:
  Every public method follows the same three steps:
    1. drainCashback(ts)  - credit cashback due at or before ts
    2. validate           - no state is touched when a check fails
    3. apply              - mutate the components, record history

  Step 1 always happens, even when step 2 fails: draining is a function
  of the logical clock, not of the call.

DATA FLOW:
  Ledger.Op(ts, ...)
    -> cashbackScheduler.drain  (accounts, payments, history)
    -> op logic                 (accounts, payments, ranking, history,
                                 scheduler, merges)

TIMESTAMPS:
  Callers must supply non-decreasing timestamps. The ledger does not
  check this; out-of-order calls produce unspecified history.

EXAMPLE:
  l := bank.New()
  _ = l.CreateAccount(1, "A")
  _, _ = l.Deposit(2, "A", 100)
  id, _ := l.Pay(3, "A", 50)              // "payment1", cashback 1
  st, _ := l.GetPaymentStatus(86_400_003, "A", id) // CASHBACK_RECEIVED

SEE ALSO:
  - cashback.go, ranking.go, history.go: The components
  - command/command.go: Text-command front end
*/
package bank

import "fmt"

// Ledger is a single bank. Not safe for concurrent use.
type Ledger struct {
	policy   CashbackPolicy
	history  *balanceHistory
	accounts *accountStore
	payments *paymentLedger
	cashback *cashbackScheduler
	ranking  *spendRanking
	merges   *mergeRegistry
}

// New creates a ledger with the default 2% / 24h cashback policy.
func New() *Ledger {
	l, _ := NewWithPolicy(DefaultCashbackPolicy())
	return l
}

// NewWithPolicy creates a ledger with a custom cashback policy.
func NewWithPolicy(policy CashbackPolicy) (*Ledger, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	history := newBalanceHistory()
	return &Ledger{
		policy:   policy,
		history:  history,
		accounts: newAccountStore(history),
		payments: newPaymentLedger(policy),
		cashback: newCashbackScheduler(),
		ranking:  newSpendRanking(),
		merges:   newMergeRegistry(),
	}, nil
}

func (l *Ledger) Policy() CashbackPolicy {
	return l.policy
}

// =============================================================================
// CASHBACK DRAIN
// =============================================================================

// drainCashback credits every pending cashback due at or before now.
// The credit is recorded in history at the payment's due time.
func (l *Ledger) drainCashback(now Timestamp) {
	l.cashback.drain(now, func(e cashbackEntry) {
		pay, ok := l.payments.get(e.accountID, e.paymentID)
		if !ok || pay.Status != PaymentInProgress {
			return
		}
		if !l.accounts.exists(e.accountID) {
			return
		}
		l.accounts.credit(e.dueAt, e.accountID, pay.Cashback)
		pay.Status = PaymentCashbackReceived
	})
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// CreateAccount opens a zero-balance account. Fails with ErrAccountExists
// if id is live. Reusing an id that was merged away starts a fresh account.
func (l *Ledger) CreateAccount(ts Timestamp, id AccountID) error {
	l.drainCashback(ts)

	if !l.accounts.create(ts, id) {
		return fmt.Errorf("create %s: %w", id, ErrAccountExists)
	}
	l.merges.clear(id)
	l.ranking.track(id)
	l.payments.open(id)
	return nil
}

// Deposit credits amount and returns the new balance.
func (l *Ledger) Deposit(ts Timestamp, id AccountID, amount int64) (int64, error) {
	l.drainCashback(ts)

	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !l.accounts.exists(id) {
		return 0, fmt.Errorf("deposit to %s: %w", id, ErrAccountNotFound)
	}
	return l.accounts.credit(ts, id, amount), nil
}

// Transfer moves amount from src to dst and returns src's new balance.
func (l *Ledger) Transfer(ts Timestamp, src, dst AccountID, amount int64) (int64, error) {
	l.drainCashback(ts)

	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if src == dst {
		return 0, fmt.Errorf("transfer %s -> %s: %w", src, dst, ErrSameAccount)
	}
	if !l.accounts.exists(src) {
		return 0, fmt.Errorf("transfer from %s: %w", src, ErrAccountNotFound)
	}
	if !l.accounts.exists(dst) {
		return 0, fmt.Errorf("transfer to %s: %w", dst, ErrAccountNotFound)
	}

	balance, err := l.accounts.debit(ts, src, amount)
	if err != nil {
		return 0, err
	}
	l.accounts.credit(ts, dst, amount)
	l.ranking.add(src, amount)
	return balance, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// Pay debits amount and schedules its cashback. Returns the payment id.
func (l *Ledger) Pay(ts Timestamp, id AccountID, amount int64) (PaymentID, error) {
	l.drainCashback(ts)

	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if !l.accounts.exists(id) {
		return "", fmt.Errorf("pay from %s: %w", id, ErrAccountNotFound)
	}
	if _, err := l.accounts.debit(ts, id, amount); err != nil {
		return "", err
	}
	l.ranking.add(id, amount)

	pay := l.payments.create(id, amount, ts)
	l.cashback.schedule(pay.DueAt, id, pay.ID)
	return pay.ID, nil
}

func (l *Ledger) GetPaymentStatus(ts Timestamp, id AccountID, paymentID PaymentID) (PaymentStatus, error) {
	pay, err := l.Payment(ts, id, paymentID)
	if err != nil {
		return "", err
	}
	return pay.Status, nil
}

// Payment returns a copy of the payment record owned by id.
func (l *Ledger) Payment(ts Timestamp, id AccountID, paymentID PaymentID) (Payment, error) {
	l.drainCashback(ts)

	if !l.accounts.exists(id) {
		return Payment{}, fmt.Errorf("payment %s of %s: %w", paymentID, id, ErrAccountNotFound)
	}
	pay, ok := l.payments.get(id, paymentID)
	if !ok {
		return Payment{}, fmt.Errorf("payment %s of %s: %w", paymentID, id, ErrPaymentNotFound)
	}
	return *pay, nil
}

// =============================================================================
// REPORTING
// =============================================================================

// TopSpenders returns the n highest spenders, by outgoing total descending
// then id ascending. Fewer are returned if fewer accounts exist.
func (l *Ledger) TopSpenders(ts Timestamp, n int) []SpenderRank {
	l.drainCashback(ts)
	return l.ranking.top(n)
}

func (l *Ledger) Account(ts Timestamp, id AccountID) (AccountSummary, error) {
	l.drainCashback(ts)

	if !l.accounts.exists(id) {
		return AccountSummary{}, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	return AccountSummary{
		ID:              id,
		Balance:         l.accounts.balance(id),
		Outgoing:        l.ranking.total(id),
		Payments:        l.payments.count(id),
		PendingCashback: l.cashback.pending(id),
	}, nil
}

// TotalBalance is the sum of all live balances. It does not drain.
func (l *Ledger) TotalBalance() int64 {
	return l.accounts.total()
}

// PendingCashback is the number of queued cashback entries. It does not drain.
func (l *Ledger) PendingCashback() int {
	return l.cashback.len()
}

// =============================================================================
// MERGE
// =============================================================================

// MergeAccounts folds a2 into a1: balance, outgoing total, payments and
// pending cashback move to a1, and a2 stops existing. a2's history stays
// queryable for times before ts.
func (l *Ledger) MergeAccounts(ts Timestamp, a1, a2 AccountID) error {
	l.drainCashback(ts)

	if a1 == a2 {
		return fmt.Errorf("merge %s into %s: %w", a2, a1, ErrSameAccount)
	}
	if !l.accounts.exists(a1) {
		return fmt.Errorf("merge into %s: %w", a1, ErrAccountNotFound)
	}
	if !l.accounts.exists(a2) {
		return fmt.Errorf("merge %s: %w", a2, ErrAccountNotFound)
	}

	l.accounts.credit(ts, a1, l.accounts.balance(a2))
	l.ranking.mergeInto(a1, a2)
	l.payments.transferRecords(a2, a1)
	l.cashback.rehome(a2, a1)
	l.accounts.remove(a2)
	l.merges.mark(a2, ts)
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

// GetBalance returns the balance id had at time 'at'. Fails if 'at' is before
// the account existed or at/after the time it was merged away.
func (l *Ledger) GetBalance(ts Timestamp, id AccountID, at Timestamp) (int64, error) {
	l.drainCashback(ts)

	if mergedAt, ok := l.merges.cutoff(id); ok && mergedAt <= at {
		return 0, &MergedAccountError{AccountID: id, MergedAt: mergedAt, At: at}
	}
	balance, err := l.history.query(id, at)
	if err != nil {
		return 0, fmt.Errorf("balance of %s at %d: %w", id, at, err)
	}
	return balance, nil
}

// History returns a copy of every snapshot recorded for id, including
// accounts that were merged away.
func (l *Ledger) History(ts Timestamp, id AccountID) ([]Snapshot, error) {
	l.drainCashback(ts)

	snaps, ok := l.history.list(id)
	if !ok {
		return nil, fmt.Errorf("history of %s: %w", id, ErrAccountNotFound)
	}
	return snaps, nil
}
