/*
scenarios.go - Worked examples that can be replayed through the API

PURPOSE:
  Each scenario is a list of raw queries plus the outputs they must
  produce. Loading one resets the ledger and the journal, then runs the
  queries in order under a single lock.

AVAILABLE SCENARIOS:
  payment-lifecycle:  Deposit, pay, cashback credited at the due time
  transfer-ranking:   Transfer then top spenders with a zero-spend account
  insufficient-pay:   Payment larger than the balance is rejected
  merge-cashback:     Pending cashback follows the payment into the survivor
  merge-cutoff:       Historical balance of a merged-away account

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "merge-cashback"}

SEE ALSO:
  - handlers.go: ListScenarios, LoadScenario
  - command/command.go: Query format
*/
package api

import (
	"fmt"
	"slices"

	"github.com/warp/cashback-ledger/command"
)

type Scenario struct {
	ID          string
	Name        string
	Description string
	Queries     [][]string
	Expected    []string
}

// Commands parses the scenario's queries.
func (s Scenario) Commands() ([]command.Command, error) {
	cmds := make([]command.Command, len(s.Queries))
	for i, q := range s.Queries {
		c, err := command.Parse(q)
		if err != nil {
			return nil, fmt.Errorf("scenario %s query %d: %w", s.ID, i, err)
		}
		cmds[i] = c
	}
	return cmds, nil
}

// Matches reports whether outputs equal the expected outputs.
func (s Scenario) Matches(outputs []string) bool {
	return slices.Equal(s.Expected, outputs)
}

var scenarios = []Scenario{
	{
		ID:          "payment-lifecycle",
		Name:        "Payment lifecycle",
		Description: "Pay 50 from a balance of 100, then observe the 1 unit cashback a day later",
		Queries: [][]string{
			{"CREATE_ACCOUNT", "1", "A"},
			{"DEPOSIT", "2", "A", "100"},
			{"PAY", "3", "A", "50"},
			{"GET_BALANCE", "4", "A", "3"},
			{"GET_PAYMENT_STATUS", "5", "A", "payment1"},
			{"GET_PAYMENT_STATUS", "86400003", "A", "payment1"},
			{"GET_BALANCE", "86400003", "A", "86400003"},
		},
		Expected: []string{"true", "100", "payment1", "50", "IN_PROGRESS", "CASHBACK_RECEIVED", "51"},
	},
	{
		ID:          "transfer-ranking",
		Name:        "Transfer and ranking",
		Description: "A sends 30 to B; B stays in the ranking with zero spend",
		Queries: [][]string{
			{"CREATE_ACCOUNT", "1", "A"},
			{"CREATE_ACCOUNT", "1", "B"},
			{"DEPOSIT", "2", "A", "100"},
			{"TRANSFER", "3", "A", "B", "30"},
			{"TOP_SPENDERS", "4", "5"},
			{"TOP_SPENDERS", "4", "1"},
		},
		Expected: []string{"true", "true", "100", "70", "A(30), B(0)", "A(30)"},
	},
	{
		ID:          "insufficient-pay",
		Name:        "Insufficient funds",
		Description: "A payment of 50 against a balance of 40 is rejected and leaves the balance alone",
		Queries: [][]string{
			{"CREATE_ACCOUNT", "1", "A"},
			{"DEPOSIT", "2", "A", "40"},
			{"PAY", "3", "A", "50"},
			{"GET_BALANCE", "4", "A", "3"},
			{"TOP_SPENDERS", "5", "1"},
		},
		Expected: []string{"true", "40", "", "40", "A(0)"},
	},
	{
		ID:          "merge-cashback",
		Name:        "Merge with pending cashback",
		Description: "B pays, is merged into A, and the cashback later credits A",
		Queries: [][]string{
			{"CREATE_ACCOUNT", "1", "A"},
			{"CREATE_ACCOUNT", "1", "B"},
			{"DEPOSIT", "2", "B", "100"},
			{"PAY", "5", "B", "50"},
			{"MERGE_ACCOUNTS", "10", "A", "B"},
			{"GET_PAYMENT_STATUS", "11", "A", "payment1"},
			{"GET_PAYMENT_STATUS", "11", "B", "payment1"},
			{"TOP_SPENDERS", "12", "2"},
			{"GET_PAYMENT_STATUS", "86400005", "A", "payment1"},
			{"GET_BALANCE", "86400006", "A", "86400005"},
		},
		Expected: []string{"true", "true", "100", "payment1", "true", "IN_PROGRESS", "", "A(50)", "CASHBACK_RECEIVED", "51"},
	},
	{
		ID:          "merge-cutoff",
		Name:        "Merge cutoff",
		Description: "History of a merged-away account is readable only before the merge",
		Queries: [][]string{
			{"CREATE_ACCOUNT", "1", "A"},
			{"CREATE_ACCOUNT", "1", "B"},
			{"DEPOSIT", "2", "B", "70"},
			{"MERGE_ACCOUNTS", "10", "A", "B"},
			{"GET_BALANCE", "12", "B", "9"},
			{"GET_BALANCE", "12", "B", "10"},
			{"GET_BALANCE", "12", "B", "11"},
			{"GET_BALANCE", "12", "A", "10"},
			{"DEPOSIT", "13", "B", "5"},
		},
		Expected: []string{"true", "true", "70", "true", "70", "", "", "70", ""},
	},
}

// Scenarios returns the replayable worked examples.
func Scenarios() []Scenario {
	return slices.Clone(scenarios)
}

// FindScenario looks a scenario up by id.
func FindScenario(id string) (Scenario, bool) {
	i := slices.IndexFunc(scenarios, func(s Scenario) bool { return s.ID == id })
	if i < 0 {
		return Scenario{}, false
	}
	return scenarios[i], true
}
