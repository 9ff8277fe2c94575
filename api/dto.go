/*
dto.go - Request and response bodies for the HTTP API

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Amounts and timestamps are plain integers, the same units the ledger uses.
Validation happens in handlers; DTOs only carry data.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/journal"
)

// =============================================================================
// REQUESTS
// =============================================================================

type CreateAccountRequest struct {
	Timestamp int64  `json:"timestamp"`
	AccountID string `json:"account_id"`
}

// AmountRequest is the body of deposits and payments.
type AmountRequest struct {
	Timestamp int64 `json:"timestamp"`
	Amount    int64 `json:"amount"`
}

type TransferRequest struct {
	Timestamp int64  `json:"timestamp"`
	SourceID  string `json:"source_id"`
	TargetID  string `json:"target_id"`
	Amount    int64  `json:"amount"`
}

// MergeRequest folds AccountID2 into AccountID1.
type MergeRequest struct {
	Timestamp  int64  `json:"timestamp"`
	AccountID1 string `json:"account_id_1"`
	AccountID2 string `json:"account_id_2"`
}

// CommandsRequest is a batch of raw queries, each [OP, timestamp, args...].
type CommandsRequest struct {
	Commands [][]string `json:"commands"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type BalanceDTO struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
	At        *int64 `json:"at,omitempty"`
}

type PaymentCreatedDTO struct {
	PaymentID string `json:"payment_id"`
	AccountID string `json:"account_id"`
}

type PaymentDTO struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Amount    int64  `json:"amount"`
	Cashback  int64  `json:"cashback"`
	CreatedAt int64  `json:"created_at"`
	DueAt     int64  `json:"due_at"`
	Status    string `json:"status"`
}

type SnapshotDTO struct {
	At      int64 `json:"at"`
	Balance int64 `json:"balance"`
}

type AccountDTO struct {
	ID              string        `json:"id"`
	Balance         int64         `json:"balance"`
	Outgoing        int64         `json:"outgoing"`
	Payments        int           `json:"payments"`
	PendingCashback int           `json:"pending_cashback"`
	History         []SnapshotDTO `json:"history"`
}

type SpenderDTO struct {
	AccountID string `json:"account_id"`
	Outgoing  int64  `json:"outgoing"`
}

type MergeDTO struct {
	AccountID string `json:"account_id"`
	MergedID  string `json:"merged_id"`
	Merged    bool   `json:"merged"`
}

// CommandResultDTO mirrors one query line and its rendered output.
type CommandResultDTO struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

type JournalEntryDTO struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Op         string    `json:"op"`
	Timestamp  int64     `json:"timestamp"`
	Args       []string  `json:"args"`
	Result     string    `json:"result"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Commands    int    `json:"commands"`
}

// ScenarioRunDTO reports what a loaded scenario produced next to what it
// is expected to produce.
type ScenarioRunDTO struct {
	ScenarioID string             `json:"scenario_id"`
	Results    []CommandResultDTO `json:"results"`
	Expected   []string           `json:"expected"`
	Matches    bool               `json:"matches"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPaymentDTO(p bank.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        string(p.ID),
		AccountID: string(p.AccountID),
		Amount:    p.Amount,
		Cashback:  p.Cashback,
		CreatedAt: int64(p.CreatedAt),
		DueAt:     int64(p.DueAt),
		Status:    string(p.Status),
	}
}

func toAccountDTO(s bank.AccountSummary, history []bank.Snapshot) AccountDTO {
	dto := AccountDTO{
		ID:              string(s.ID),
		Balance:         s.Balance,
		Outgoing:        s.Outgoing,
		Payments:        s.Payments,
		PendingCashback: s.PendingCashback,
		History:         make([]SnapshotDTO, len(history)),
	}
	for i, snap := range history {
		dto.History[i] = SnapshotDTO{At: int64(snap.At), Balance: snap.Balance}
	}
	return dto
}

func toSpenderDTOs(rows []bank.SpenderRank) []SpenderDTO {
	out := make([]SpenderDTO, len(rows))
	for i, r := range rows {
		out[i] = SpenderDTO{AccountID: string(r.AccountID), Outgoing: r.Outgoing}
	}
	return out
}

func toCommandResultDTO(c command.Command, res command.Result) CommandResultDTO {
	dto := CommandResultDTO{Command: c.String(), Output: res.Output, OK: res.OK()}
	if res.Err != nil {
		dto.Error = res.Err.Error()
	}
	return dto
}

func toJournalEntryDTOs(entries []journal.Entry) []JournalEntryDTO {
	out := make([]JournalEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = JournalEntryDTO{
			ID:         e.ID,
			Seq:        e.Seq,
			Op:         string(e.Op),
			Timestamp:  e.Timestamp,
			Args:       e.Args,
			Result:     e.Result,
			OK:         e.OK,
			Error:      e.Error,
			RecordedAt: e.RecordedAt,
		}
	}
	return out
}
