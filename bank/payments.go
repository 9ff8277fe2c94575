package bank

import "fmt"

// paymentLedger keeps payment records partitioned by owning account.
// Ids come from one global counter and are never reused, even across
// accounts or after merges.
type paymentLedger struct {
	policy    CashbackPolicy
	counter   uint64
	byAccount map[AccountID]map[PaymentID]*Payment
}

func newPaymentLedger(policy CashbackPolicy) *paymentLedger {
	return &paymentLedger{
		policy:    policy,
		byAccount: make(map[AccountID]map[PaymentID]*Payment),
	}
}

// open starts an empty partition for a (re)created account.
func (p *paymentLedger) open(id AccountID) {
	p.byAccount[id] = make(map[PaymentID]*Payment)
}

func (p *paymentLedger) create(accountID AccountID, amount int64, now Timestamp) *Payment {
	p.counter++
	pay := &Payment{
		ID:        PaymentID(fmt.Sprintf("payment%d", p.counter)),
		AccountID: accountID,
		Amount:    amount,
		Cashback:  p.policy.CashbackFor(amount),
		CreatedAt: now,
		DueAt:     p.policy.DueAt(now),
		Status:    PaymentInProgress,
	}
	if p.byAccount[accountID] == nil {
		p.open(accountID)
	}
	p.byAccount[accountID][pay.ID] = pay
	return pay
}

func (p *paymentLedger) get(accountID AccountID, id PaymentID) (*Payment, bool) {
	pay, ok := p.byAccount[accountID][id]
	return pay, ok
}

// transferRecords moves every record of from into to, keeping ids and status.
func (p *paymentLedger) transferRecords(from, to AccountID) {
	if p.byAccount[to] == nil {
		p.open(to)
	}
	for id, pay := range p.byAccount[from] {
		pay.AccountID = to
		p.byAccount[to][id] = pay
	}
	delete(p.byAccount, from)
}

func (p *paymentLedger) count(accountID AccountID) int {
	return len(p.byAccount[accountID])
}
