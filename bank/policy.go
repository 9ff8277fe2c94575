package bank

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCashbackDelay is 24h expressed in logical milliseconds.
	DefaultCashbackDelay Timestamp = 86_400_000
)

// DefaultCashbackRate is 2%.
var DefaultCashbackRate = decimal.New(2, -2)

// CashbackPolicy decides how much cashback a payment earns and when.
type CashbackPolicy struct {
	Rate  decimal.Decimal
	Delay Timestamp
}

func DefaultCashbackPolicy() CashbackPolicy {
	return CashbackPolicy{Rate: DefaultCashbackRate, Delay: DefaultCashbackDelay}
}

// Validate checks that Rate is in [0, 1] and Delay is not negative.
func (p CashbackPolicy) Validate() error {
	if p.Rate.IsNegative() || p.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: rate %s outside [0, 1]", ErrInvalidPolicy, p.Rate)
	}
	if p.Delay < 0 {
		return fmt.Errorf("%w: negative delay %d", ErrInvalidPolicy, p.Delay)
	}
	return nil
}

// CashbackFor returns floor(amount * Rate).
func (p CashbackPolicy) CashbackFor(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(p.Rate).Floor().IntPart()
}

// DueAt returns the logical time the cashback for a payment made at createdAt is credited.
func (p CashbackPolicy) DueAt(createdAt Timestamp) Timestamp {
	return createdAt + p.Delay
}
