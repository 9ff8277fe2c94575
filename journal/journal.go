/*
Package journal records every command executed against the ledger.

PURPOSE:
  An append-only audit trail: which operation ran, at which logical
  timestamp, with which arguments, and what it returned. The journal is
  read by operators (GET /api/journal); the ledger is never rebuilt from it.

APPEND-ONLY CONTRACT:
  - Append(): single entry write
  - List():   newest first, bounded by limit
  - Reset():  clears everything, used only when the ledger itself is reset
  - NO Update() method exists

IMPLEMENTATIONS:
  - journal.Memory:       in-memory, for tests and dev
  - store/sqlite.Journal: SQLite-backed

SEE ALSO:
  - api/service.go: Writes one entry per executed command
*/
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/warp/cashback-ledger/command"
)

// Entry is one executed command.
type Entry struct {
	ID         string
	Seq        int64
	Op         command.Op
	Timestamp  int64
	Args       []string
	Result     string
	OK         bool
	Error      string
	RecordedAt time.Time
}

// Journal stores entries. Implementations assign Seq on Append.
type Journal interface {
	Append(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Reset(ctx context.Context) error
	// CountByOp returns how many entries each operation has.
	CountByOp(ctx context.Context) (map[command.Op]int, error)
}

// NewEntry builds an entry for an executed command.
func NewEntry(c command.Command, res command.Result, now time.Time) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		Op:         c.Op,
		Timestamp:  int64(c.Timestamp),
		Args:       append([]string(nil), c.Args...),
		Result:     res.Output,
		OK:         res.OK(),
		RecordedAt: now.UTC(),
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	return e
}
