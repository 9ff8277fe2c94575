package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/journal"
	"github.com/warp/cashback-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func run(t *testing.T, l *bank.Ledger, fields ...string) (command.Command, command.Result) {
	t.Helper()
	c, err := command.Parse(fields)
	require.NoError(t, err)
	res, err := command.Execute(l, c)
	require.NoError(t, err)
	return c, res
}

// =============================================================================
// JOURNAL
// =============================================================================

func TestStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	l := bank.New()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	for _, fields := range [][]string{
		{"CREATE_ACCOUNT", "1", "A"},
		{"DEPOSIT", "2", "A", "100"},
		{"PAY", "3", "B", "10"},
	} {
		c, res := run(t, l, fields...)
		_, err := store.Append(ctx, journal.NewEntry(c, res, now))
		require.NoError(t, err)
	}

	entries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	newest := entries[0]
	assert.Equal(t, int64(3), newest.Seq)
	assert.Equal(t, command.OpPay, newest.Op)
	assert.Equal(t, int64(3), newest.Timestamp)
	assert.Equal(t, []string{"B", "10"}, newest.Args)
	assert.False(t, newest.OK)
	assert.Contains(t, newest.Error, "account not found")
	assert.True(t, newest.RecordedAt.Equal(now))

	oldest := entries[2]
	assert.Equal(t, command.OpCreateAccount, oldest.Op)
	assert.Equal(t, "true", oldest.Result)
	assert.True(t, oldest.OK)
	assert.Empty(t, oldest.Error)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c, res := run(t, bank.New(), "CREATE_ACCOUNT", "1", "A")
	e := journal.NewEntry(c, res, time.Now())

	_, err := store.Append(ctx, e)
	require.NoError(t, err)
	_, err = store.Append(ctx, e)

	assert.ErrorIs(t, err, sqlite.ErrDuplicateEntry)
}

func TestStore_ResetAndCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	l := bank.New()

	for _, fields := range [][]string{
		{"CREATE_ACCOUNT", "1", "A"},
		{"CREATE_ACCOUNT", "1", "B"},
		{"TOP_SPENDERS", "2", "3"},
	} {
		c, res := run(t, l, fields...)
		_, err := store.Append(ctx, journal.NewEntry(c, res, time.Now()))
		require.NoError(t, err)
	}

	counts, err := store.CountByOp(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[command.Op]int{command.OpCreateAccount: 2, command.OpTopSpenders: 1}, counts)

	require.NoError(t, store.Reset(ctx))
	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
