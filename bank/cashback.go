/*
cashback.go - Time-ordered queue of pending cashback credits

PURPOSE:
  Holds one entry per payment whose cashback has not been credited yet.
  The ledger drains the queue lazily at the start of every operation.

ORDERING:
  By due time ascending; ties in arrival order (seq). The heap never
  needs any other tie-break.

REHOME:
  When an account is merged away its pending entries must credit the
  survivor. Entries are indexed per account so a rehome touches only the
  absorbed account's own entries, not the whole queue. The heap order
  does not depend on the account, so no re-heapify is needed.

SEE ALSO:
  - ledger.go: drainCashback applies popped entries
*/
package bank

import "container/heap"

type cashbackEntry struct {
	dueAt     Timestamp
	seq       uint64
	accountID AccountID
	paymentID PaymentID
}

// cashbackQueue implements heap.Interface.
type cashbackQueue []*cashbackEntry

func (q cashbackQueue) Len() int { return len(q) }

func (q cashbackQueue) Less(i, j int) bool {
	if q[i].dueAt != q[j].dueAt {
		return q[i].dueAt < q[j].dueAt
	}
	return q[i].seq < q[j].seq
}

func (q cashbackQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *cashbackQueue) Push(x any) { *q = append(*q, x.(*cashbackEntry)) }

func (q *cashbackQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

type cashbackScheduler struct {
	queue     cashbackQueue
	nextSeq   uint64
	byAccount map[AccountID]map[*cashbackEntry]struct{}
}

func newCashbackScheduler() *cashbackScheduler {
	return &cashbackScheduler{byAccount: make(map[AccountID]map[*cashbackEntry]struct{})}
}

func (s *cashbackScheduler) schedule(dueAt Timestamp, accountID AccountID, paymentID PaymentID) {
	e := &cashbackEntry{dueAt: dueAt, seq: s.nextSeq, accountID: accountID, paymentID: paymentID}
	s.nextSeq++
	heap.Push(&s.queue, e)
	s.index(e)
}

// drain pops every entry due at or before now, in order, and hands it to apply.
// Popped entries are never re-queued.
func (s *cashbackScheduler) drain(now Timestamp, apply func(cashbackEntry)) int {
	n := 0
	for len(s.queue) > 0 && s.queue[0].dueAt <= now {
		e := heap.Pop(&s.queue).(*cashbackEntry)
		s.unindex(e)
		apply(*e)
		n++
	}
	return n
}

// rehome points every pending entry of from at to.
func (s *cashbackScheduler) rehome(from, to AccountID) {
	entries := s.byAccount[from]
	delete(s.byAccount, from)
	for e := range entries {
		e.accountID = to
		s.index(e)
	}
}

func (s *cashbackScheduler) pending(id AccountID) int {
	return len(s.byAccount[id])
}

func (s *cashbackScheduler) len() int {
	return len(s.queue)
}

func (s *cashbackScheduler) index(e *cashbackEntry) {
	set, ok := s.byAccount[e.accountID]
	if !ok {
		set = make(map[*cashbackEntry]struct{})
		s.byAccount[e.accountID] = set
	}
	set[e] = struct{}{}
}

func (s *cashbackScheduler) unindex(e *cashbackEntry) {
	set := s.byAccount[e.accountID]
	delete(set, e)
	if len(set) == 0 {
		delete(s.byAccount, e.accountID)
	}
}
