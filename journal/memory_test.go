package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/journal"
)

func entry(op command.Op, ts int64) journal.Entry {
	c := command.Command{Op: op, Timestamp: 0, Args: []string{"A"}}
	e := journal.NewEntry(c, command.Result{Output: "true"}, time.Unix(100, 0))
	e.Timestamp = ts
	return e
}

func TestMemory_AppendAssignsSeq(t *testing.T) {
	ctx := context.Background()
	j := journal.NewMemory()

	first, err := j.Append(ctx, entry(command.OpCreateAccount, 1))
	require.NoError(t, err)
	second, err := j.Append(ctx, entry(command.OpCreateAccount, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMemory_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := journal.NewMemory()
	for ts := int64(1); ts <= 5; ts++ {
		_, err := j.Append(ctx, entry(command.OpDeposit, ts))
		require.NoError(t, err)
	}

	got, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].Timestamp)
	assert.Equal(t, int64(4), got[1].Timestamp)

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	require.NoError(t, j.Reset(ctx))
	all, err = j.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewEntry_RecordsFailure(t *testing.T) {
	c := command.Command{Op: command.OpPay, Timestamp: 9, Args: []string{"A", "5"}}
	e := journal.NewEntry(c, command.Result{Err: errors.New("account not found")}, time.Now())

	assert.False(t, e.OK)
	assert.Equal(t, "account not found", e.Error)
	assert.Equal(t, int64(9), e.Timestamp)
	assert.Equal(t, []string{"A", "5"}, e.Args)
}

func TestMemory_CountByOp(t *testing.T) {
	ctx := context.Background()
	j := journal.NewMemory()
	for _, op := range []command.Op{command.OpDeposit, command.OpPay, command.OpDeposit} {
		_, err := j.Append(ctx, entry(op, 1))
		require.NoError(t, err)
	}

	counts, err := j.CountByOp(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[command.Op]int{command.OpDeposit: 2, command.OpPay: 1}, counts)
}
