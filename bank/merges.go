package bank

// mergeRegistry remembers when an account id was absorbed by a merge.
// Recreating the id clears the record.
type mergeRegistry struct {
	cutoffs map[AccountID]Timestamp
}

func newMergeRegistry() *mergeRegistry {
	return &mergeRegistry{cutoffs: make(map[AccountID]Timestamp)}
}

func (m *mergeRegistry) mark(absorbed AccountID, at Timestamp) {
	m.cutoffs[absorbed] = at
}

func (m *mergeRegistry) clear(id AccountID) {
	delete(m.cutoffs, id)
}

func (m *mergeRegistry) cutoff(id AccountID) (Timestamp, bool) {
	at, ok := m.cutoffs[id]
	return at, ok
}
