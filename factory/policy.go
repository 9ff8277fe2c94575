/*
Package factory provides JSON to Go cashback policy conversion.

PURPOSE:
  Lets operators define the cashback policy in a JSON file instead of
  flags, and lets the API report the active policy in the same shape.

JSON SCHEMA:
  {
    "rate": "0.02",
    "delay": 86400000
  }

  rate   decimal in [0, 1], string or number
  delay  logical time units between a payment and its cashback

  Missing fields take the defaults of bank.DefaultCashbackPolicy.

USAGE:
  f := NewPolicyFactory()
  policy, err := f.ParsePolicy(jsonString)

SEE ALSO:
  - bank/policy.go: CashbackPolicy
  - config/config.go: -policy-file flag
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/cashback-ledger/bank"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a cashback policy.
type PolicyJSON struct {
	Rate  *decimal.Decimal `json:"rate,omitempty"`
	Delay *int64           `json:"delay,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses and validates a JSON policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (bank.CashbackPolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return bank.CashbackPolicy{}, fmt.Errorf("invalid policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// LoadFile reads a policy from a JSON file.
func (f *PolicyFactory) LoadFile(path string) (bank.CashbackPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bank.CashbackPolicy{}, fmt.Errorf("read policy file: %w", err)
	}
	return f.ParsePolicy(string(raw))
}

// FromJSON fills defaults and validates.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (bank.CashbackPolicy, error) {
	policy := bank.DefaultCashbackPolicy()
	if pj.Rate != nil {
		policy.Rate = *pj.Rate
	}
	if pj.Delay != nil {
		policy.Delay = bank.Timestamp(*pj.Delay)
	}
	if err := policy.Validate(); err != nil {
		return bank.CashbackPolicy{}, err
	}
	return policy, nil
}

// ToJSON converts a policy back to its JSON form.
func (f *PolicyFactory) ToJSON(policy bank.CashbackPolicy) PolicyJSON {
	rate := policy.Rate
	delay := int64(policy.Delay)
	return PolicyJSON{Rate: &rate, Delay: &delay}
}
