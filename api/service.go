/*
service.go - Serialized access to the single ledger

PURPOSE:
  bank.Ledger is not safe for concurrent use. HTTP handlers run on many
  goroutines, so every call goes through Service, which holds one mutex
  for the ledger, journals each executed command and updates metrics.

FLOW (per command):
  1. Lock
  2. command.Execute against the ledger
  3. Append a journal entry (failure is logged, the result still stands)
  4. Count the outcome and refresh the ledger gauges in Prometheus
  5. Unlock

SEE ALSO:
  - command/command.go: Parsing and rendering
  - journal/journal.go: Entry format
*/
package api

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/journal"
)

type Service struct {
	mu      sync.Mutex
	ledger  *bank.Ledger
	policy  bank.CashbackPolicy
	journal journal.Journal
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a service around a fresh ledger with the given policy.
func NewService(policy bank.CashbackPolicy, j journal.Journal, log zerolog.Logger) (*Service, error) {
	l, err := bank.NewWithPolicy(policy)
	if err != nil {
		return nil, err
	}
	return &Service{
		ledger:  l,
		policy:  policy,
		journal: j,
		log:     log,
		now:     time.Now,
	}, nil
}

// Exec runs one command. The error is only for malformed commands; a
// rejected operation is reported in Result.Err.
func (s *Service) Exec(ctx context.Context, c command.Command) (command.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execLocked(ctx, c)
}

// ExecBatch runs commands in order under one lock, so no other caller can
// interleave. It stops at the first malformed command.
func (s *Service) ExecBatch(ctx context.Context, cmds []command.Command) ([]command.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runLocked(ctx, cmds)
}

func (s *Service) runLocked(ctx context.Context, cmds []command.Command) ([]command.Result, error) {
	results := make([]command.Result, 0, len(cmds))
	for _, c := range cmds {
		res, err := s.execLocked(ctx, c)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) execLocked(ctx context.Context, c command.Command) (command.Result, error) {
	res, err := command.Execute(s.ledger, c)
	if err != nil {
		operationsTotal.WithLabelValues(string(c.Op), "malformed").Inc()
		return res, err
	}

	outcome := "ok"
	if !res.OK() {
		outcome = "rejected"
	}
	operationsTotal.WithLabelValues(string(c.Op), outcome).Inc()
	pendingCashback.Set(float64(s.ledger.PendingCashback()))
	totalBalance.Set(float64(s.ledger.TotalBalance()))

	if _, err := s.journal.Append(ctx, journal.NewEntry(c, res, s.now())); err != nil {
		s.log.Error().Err(err).Str("op", string(c.Op)).Msg("journal append failed")
	}

	s.log.Debug().
		Str("op", string(c.Op)).
		Int64("ts", int64(c.Timestamp)).
		Strs("args", c.Args).
		Str("result", res.Output).
		Bool("ok", res.OK()).
		Msg("command executed")
	return res, nil
}

// Account returns the current summary of a live account.
func (s *Service) Account(ts bank.Timestamp, id bank.AccountID) (bank.AccountSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Account(ts, id)
}

// Payment returns the full payment record.
func (s *Service) Payment(ts bank.Timestamp, id bank.AccountID, paymentID bank.PaymentID) (bank.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Payment(ts, id, paymentID)
}

// History returns every balance snapshot of an account.
func (s *Service) History(ts bank.Timestamp, id bank.AccountID) ([]bank.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.History(ts, id)
}

// TopSpenders returns the ranked rows directly, for structured responses.
func (s *Service) TopSpenders(ctx context.Context, ts bank.Timestamp, n int) ([]bank.SpenderRank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := command.Command{Op: command.OpTopSpenders, Timestamp: ts, Args: []string{strconv.Itoa(n)}}
	if _, err := s.execLocked(ctx, c); err != nil {
		return nil, err
	}
	// Already drained by the command above.
	return s.ledger.TopSpenders(ts, n), nil
}

// Reset replaces the ledger with an empty one and clears the journal.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked(ctx)
}

func (s *Service) resetLocked(ctx context.Context) error {
	l, err := bank.NewWithPolicy(s.policy)
	if err != nil {
		return err
	}
	if err := s.journal.Reset(ctx); err != nil {
		return err
	}
	s.ledger = l
	pendingCashback.Set(0)
	totalBalance.Set(0)
	s.log.Info().Msg("ledger reset")
	return nil
}

// Replay resets the ledger and runs cmds against the empty ledger, all under
// one lock.
func (s *Service) Replay(ctx context.Context, cmds []command.Command) ([]command.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resetLocked(ctx); err != nil {
		return nil, err
	}
	return s.runLocked(ctx, cmds)
}

// Journal returns the most recent journal entries.
func (s *Service) Journal(ctx context.Context, limit int) ([]journal.Entry, error) {
	return s.journal.List(ctx, limit)
}

// JournalStats counts journal entries per operation.
func (s *Service) JournalStats(ctx context.Context) (map[command.Op]int, error) {
	return s.journal.CountByOp(ctx)
}

func (s *Service) Policy() bank.CashbackPolicy {
	return s.policy
}
