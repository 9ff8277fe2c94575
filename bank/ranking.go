/*
ranking.go - Spend ranking for top-N reports

PURPOSE:
  Tracks each live account's cumulative outgoing total (transfers sent and
  payments made) and keeps the accounts in rank order at all times.

RANK ORDER:
  Descending outgoing total, ascending account id on ties. Accounts with a
  zero total are ranked too.

INDEX:
  A B-tree keyed by (-total, id). Changing a total is a delete of the old
  key plus an insert of the new one, both O(log n). top(n) is an in-order
  walk that stops after n items, so reports never re-sort the account set.
*/
package bank

import "github.com/google/btree"

// btreeDegree is the fan-out of the ranking tree.
const btreeDegree = 16

type rankKey struct {
	total int64
	id    AccountID
}

func rankLess(a, b rankKey) bool {
	if a.total != b.total {
		return a.total > b.total
	}
	return a.id < b.id
}

type spendRanking struct {
	totals map[AccountID]int64
	index  *btree.BTreeG[rankKey]
}

func newSpendRanking() *spendRanking {
	return &spendRanking{
		totals: make(map[AccountID]int64),
		index:  btree.NewG(btreeDegree, rankLess),
	}
}

// track registers id with a zero total, replacing any previous entry.
func (r *spendRanking) track(id AccountID) {
	r.remove(id)
	r.totals[id] = 0
	r.index.ReplaceOrInsert(rankKey{total: 0, id: id})
}

func (r *spendRanking) add(id AccountID, delta int64) {
	old, ok := r.totals[id]
	if ok {
		r.index.Delete(rankKey{total: old, id: id})
	}
	r.totals[id] = old + delta
	r.index.ReplaceOrInsert(rankKey{total: old + delta, id: id})
}

// mergeInto folds absorbed's total into survivor and drops absorbed.
func (r *spendRanking) mergeInto(survivor, absorbed AccountID) {
	total := r.totals[absorbed]
	r.remove(absorbed)
	r.add(survivor, total)
}

func (r *spendRanking) remove(id AccountID) {
	if old, ok := r.totals[id]; ok {
		r.index.Delete(rankKey{total: old, id: id})
		delete(r.totals, id)
	}
}

func (r *spendRanking) total(id AccountID) int64 {
	return r.totals[id]
}

// top returns at most n accounts in rank order.
func (r *spendRanking) top(n int) []SpenderRank {
	if n <= 0 {
		return []SpenderRank{}
	}
	out := make([]SpenderRank, 0, min(n, r.index.Len()))
	r.index.Ascend(func(k rankKey) bool {
		out = append(out, SpenderRank{AccountID: k.id, Outgoing: k.total})
		return len(out) < n
	})
	return out
}
