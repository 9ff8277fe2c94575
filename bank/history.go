/*
history.go - Append-only per-account balance history

PURPOSE:
  Answers "what was the balance of X at time T?" without replaying
  transactions. Every balance change appends one Snapshot; a query is a
  binary search for the latest snapshot with At <= T.

INVARIANTS:
  1. APPEND-ONLY: snapshots are never edited or removed while the id is in use.
  2. ORDERED: At is non-decreasing within one account (callers supply a
     non-decreasing logical clock; cashback credits land at their due time,
     which is never earlier than the previous call).
  3. DUPLICATES: several snapshots may share a timestamp; a query returns
     the most recently appended one.

SEE ALSO:
  - merges.go: Cutoff applied before consulting history
*/
package bank

import "sort"

type balanceHistory struct {
	snapshots map[AccountID][]Snapshot
}

func newBalanceHistory() *balanceHistory {
	return &balanceHistory{snapshots: make(map[AccountID][]Snapshot)}
}

// reset starts a fresh history for an id that is (re)created.
func (h *balanceHistory) reset(id AccountID, at Timestamp, balance int64) {
	h.snapshots[id] = []Snapshot{{At: at, Balance: balance}}
}

func (h *balanceHistory) append(id AccountID, at Timestamp, balance int64) {
	h.snapshots[id] = append(h.snapshots[id], Snapshot{At: at, Balance: balance})
}

// query returns the balance recorded by the latest snapshot with At <= at.
func (h *balanceHistory) query(id AccountID, at Timestamp) (int64, error) {
	snaps, ok := h.snapshots[id]
	if !ok {
		return 0, ErrAccountNotFound
	}

	// First index whose timestamp is after 'at'; the one before it is the answer.
	i := sort.Search(len(snaps), func(i int) bool {
		return snaps[i].At > at
	})
	if i == 0 {
		return 0, ErrNoHistory
	}
	return snaps[i-1].Balance, nil
}

func (h *balanceHistory) list(id AccountID) ([]Snapshot, bool) {
	snaps, ok := h.snapshots[id]
	if !ok {
		return nil, false
	}
	out := make([]Snapshot, len(snaps))
	copy(out, snaps)
	return out, true
}
