package bank

// accountStore owns current balances of live accounts. Every balance
// change is mirrored into the history at the given timestamp.
type accountStore struct {
	balances map[AccountID]int64
	history  *balanceHistory
}

func newAccountStore(history *balanceHistory) *accountStore {
	return &accountStore{
		balances: make(map[AccountID]int64),
		history:  history,
	}
}

// create inserts a zero balance and starts a fresh history at 'at'.
// Returns false if id is already live.
func (s *accountStore) create(at Timestamp, id AccountID) bool {
	if _, ok := s.balances[id]; ok {
		return false
	}
	s.balances[id] = 0
	s.history.reset(id, at, 0)
	return true
}

func (s *accountStore) exists(id AccountID) bool {
	_, ok := s.balances[id]
	return ok
}

func (s *accountStore) balance(id AccountID) int64 {
	return s.balances[id]
}

func (s *accountStore) credit(at Timestamp, id AccountID, delta int64) int64 {
	s.balances[id] += delta
	s.history.append(id, at, s.balances[id])
	return s.balances[id]
}

// debit fails without mutating if the balance would go negative.
func (s *accountStore) debit(at Timestamp, id AccountID, delta int64) (int64, error) {
	if s.balances[id] < delta {
		return 0, &InsufficientFundsError{AccountID: id, Available: s.balances[id], Requested: delta}
	}
	s.balances[id] -= delta
	s.history.append(id, at, s.balances[id])
	return s.balances[id], nil
}

// remove drops a merged-away account. Its history is kept for pre-merge queries.
func (s *accountStore) remove(id AccountID) {
	delete(s.balances, id)
}

func (s *accountStore) total() int64 {
	var sum int64
	for _, b := range s.balances {
		sum += b
	}
	return sum
}
