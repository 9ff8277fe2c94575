package journal

import (
	"context"
	"sync"

	"github.com/warp/cashback-ledger/command"
)

// =============================================================================
// MEMORY JOURNAL - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	nextSeq int64
}

func NewMemory() *Memory {
	return &Memory{nextSeq: 1}
}

// Append adds a single entry. Append-only.
func (m *Memory) Append(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.Seq = m.nextSeq
	m.nextSeq++
	m.entries = append(m.entries, e)
	return e, nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.nextSeq = 1
	return nil
}

func (m *Memory) CountByOp(_ context.Context) (map[command.Op]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[command.Op]int)
	for _, e := range m.entries {
		counts[e.Op]++
	}
	return counts, nil
}
