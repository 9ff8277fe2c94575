package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SPEND RANKING
// =============================================================================

func TestSpendRanking_OrderAndReposition(t *testing.T) {
	r := newSpendRanking()
	for _, id := range []AccountID{"d", "b", "a", "c"} {
		r.track(id)
	}

	assert.Equal(t, []SpenderRank{{"a", 0}, {"b", 0}, {"c", 0}, {"d", 0}}, r.top(10))

	r.add("c", 50)
	r.add("d", 50)
	r.add("b", 10)
	assert.Equal(t, []SpenderRank{{"c", 50}, {"d", 50}, {"b", 10}}, r.top(3))

	// Moving past the leader re-positions without leaving a stale key.
	r.add("b", 100)
	assert.Equal(t, []SpenderRank{{"b", 110}, {"c", 50}, {"d", 50}, {"a", 0}}, r.top(10))
	assert.Equal(t, 4, r.index.Len())
}

func TestSpendRanking_MergeInto(t *testing.T) {
	r := newSpendRanking()
	r.track("a")
	r.track("b")
	r.add("a", 5)
	r.add("b", 7)

	r.mergeInto("a", "b")

	assert.Equal(t, []SpenderRank{{"a", 12}}, r.top(5))
	assert.Equal(t, int64(0), r.total("b"))
	assert.Equal(t, 1, r.index.Len())
}

func TestSpendRanking_TrackResets(t *testing.T) {
	r := newSpendRanking()
	r.track("a")
	r.add("a", 9)

	r.track("a")

	assert.Equal(t, []SpenderRank{{"a", 0}}, r.top(5))
	assert.Equal(t, 1, r.index.Len())
}

// =============================================================================
// CASHBACK SCHEDULER
// =============================================================================

func TestCashbackScheduler_DrainOrder(t *testing.T) {
	s := newCashbackScheduler()
	s.schedule(30, "a", "p1")
	s.schedule(10, "b", "p2")
	s.schedule(30, "c", "p3")
	s.schedule(20, "a", "p4")

	var got []PaymentID
	n := s.drain(30, func(e cashbackEntry) { got = append(got, e.paymentID) })

	assert.Equal(t, 4, n)
	assert.Equal(t, []PaymentID{"p2", "p4", "p1", "p3"}, got, "ties keep arrival order")
	assert.Equal(t, 0, s.len())
	assert.Empty(t, s.byAccount)
}

func TestCashbackScheduler_DrainStopsAtNow(t *testing.T) {
	s := newCashbackScheduler()
	s.schedule(10, "a", "p1")
	s.schedule(11, "a", "p2")

	var got []PaymentID
	s.drain(10, func(e cashbackEntry) { got = append(got, e.paymentID) })
	s.drain(10, func(e cashbackEntry) { got = append(got, e.paymentID) })

	assert.Equal(t, []PaymentID{"p1"}, got, "a drained entry is never replayed")
	assert.Equal(t, 1, s.pending("a"))
}

func TestCashbackScheduler_Rehome(t *testing.T) {
	s := newCashbackScheduler()
	s.schedule(10, "a", "p1")
	s.schedule(20, "b", "p2")
	s.schedule(30, "b", "p3")

	s.rehome("b", "a")

	assert.Equal(t, 0, s.pending("b"))
	assert.Equal(t, 3, s.pending("a"))

	var owners []AccountID
	s.drain(100, func(e cashbackEntry) { owners = append(owners, e.accountID) })
	assert.Equal(t, []AccountID{"a", "a", "a"}, owners)
}

// =============================================================================
// BALANCE HISTORY
// =============================================================================

func TestBalanceHistory_Query(t *testing.T) {
	h := newBalanceHistory()
	h.reset("a", 5, 0)
	h.append("a", 8, 10)
	h.append("a", 8, 15)
	h.append("a", 12, 3)

	tests := []struct {
		at      Timestamp
		want    int64
		wantErr error
	}{
		{at: 4, wantErr: ErrNoHistory},
		{at: 5, want: 0},
		{at: 7, want: 0},
		{at: 8, want: 15},
		{at: 11, want: 15},
		{at: 12, want: 3},
		{at: 99, want: 3},
	}
	for _, tt := range tests {
		got, err := h.query("a", tt.at)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "at %d", tt.at)
			continue
		}
		require.NoError(t, err, "at %d", tt.at)
		assert.Equal(t, tt.want, got, "at %d", tt.at)
	}

	_, err := h.query("zz", 5)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBalanceHistory_ListIsCopy(t *testing.T) {
	h := newBalanceHistory()
	h.reset("a", 1, 0)

	snaps, ok := h.list("a")
	require.True(t, ok)
	snaps[0].Balance = 999

	got, err := h.query("a", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

// =============================================================================
// PAYMENTS / ACCOUNTS / MERGES
// =============================================================================

func TestPaymentLedger_TransferRecords(t *testing.T) {
	p := newPaymentLedger(DefaultCashbackPolicy())
	p.open("a")
	p.open("b")
	pay := p.create("b", 500, 7)

	p.transferRecords("b", "a")

	got, ok := p.get("a", pay.ID)
	require.True(t, ok)
	assert.Equal(t, AccountID("a"), got.AccountID)
	assert.Equal(t, int64(10), got.Cashback)
	assert.Equal(t, Timestamp(7)+DefaultCashbackDelay, got.DueAt)
	assert.Equal(t, PaymentInProgress, got.Status)
	_, ok = p.get("b", pay.ID)
	assert.False(t, ok)
}

func TestAccountStore_DebitRejectsOverdraft(t *testing.T) {
	h := newBalanceHistory()
	s := newAccountStore(h)
	require.True(t, s.create(1, "a"))
	assert.False(t, s.create(2, "a"))
	s.credit(2, "a", 30)

	_, err := s.debit(3, "a", 31)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(30), s.balance("a"))
	snaps, _ := h.list("a")
	assert.Len(t, snaps, 2, "rejected debit records no snapshot")
}

func TestMergeRegistry(t *testing.T) {
	m := newMergeRegistry()
	m.mark("b", 10)

	at, ok := m.cutoff("b")
	assert.True(t, ok)
	assert.Equal(t, Timestamp(10), at)

	m.clear("b")
	_, ok = m.cutoff("b")
	assert.False(t, ok)
}
