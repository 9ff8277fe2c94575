/*
handlers.go - HTTP API handlers for the cashback ledger

PURPOSE:
  Exposes the ledger via REST. Handlers parse the request, turn it into a
  ledger command, run it through Service and render the result as JSON.

ENDPOINTS:
  Accounts:
    POST   /api/accounts                               Create account
    GET    /api/accounts/{id}?timestamp=               Summary and history
    POST   /api/accounts/{id}/deposits                 Deposit
    GET    /api/accounts/{id}/balance?timestamp=&at=   Historical balance

  Money movement:
    POST   /api/transfers                              Transfer
    POST   /api/accounts/{id}/payments                 Pay (schedules cashback)
    GET    /api/accounts/{id}/payments/{paymentID}     Payment record
    POST   /api/merges                                 Merge two accounts

  Reporting:
    GET    /api/top-spenders?timestamp=&n=             Ranked outgoing totals

  Batch and admin:
    GET    /api/policy                                 Active cashback policy
    POST   /api/commands                               Run raw queries in order
    GET    /api/journal?limit=                         Executed commands, newest first
    GET    /api/journal/stats                          Executed commands per operation
    POST   /api/reset                                  Empty ledger and journal
    GET    /api/scenarios                              List worked examples
    POST   /api/scenarios/load                         Replay one

ERROR HANDLING:
  - 400: Malformed JSON, missing or non-integer parameters
  - 404: Unknown account or payment, no history, merged-away account
  - 409: Duplicate account, same source and target
  - 422: Insufficient funds, non-positive amount
  - 500: Journal failures

SEE ALSO:
  - dto.go: Request/response data structures
  - service.go: Locking and journaling
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/command"
	"github.com/warp/cashback-ledger/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// CreateAccount opens a new account.
// POST /api/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required", nil)
		return
	}

	res, ok := h.exec(w, r, command.OpCreateAccount, req.Timestamp, req.AccountID)
	if !ok {
		return
	}
	if !res.OK() {
		writeLedgerError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.AccountID})
}

// GetAccount returns balance, outgoing total, payment count and history.
// GET /api/accounts/{id}?timestamp=
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := bank.AccountID(chi.URLParam(r, "id"))
	ts, ok := queryInt(w, r, "timestamp")
	if !ok {
		return
	}

	summary, err := h.Service.Account(bank.Timestamp(ts), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	history, err := h.Service.History(bank.Timestamp(ts), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(summary, history))
}

// Deposit credits an account.
// POST /api/accounts/{id}/deposits
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, ok := h.exec(w, r, command.OpDeposit, req.Timestamp, id, itoa(req.Amount))
	if !ok {
		return
	}
	writeBalance(w, id, res, nil)
}

// GetBalance returns the balance an account had at a past time.
// GET /api/accounts/{id}/balance?timestamp=&at=
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ts, ok := queryInt(w, r, "timestamp")
	if !ok {
		return
	}
	at, ok := queryInt(w, r, "at")
	if !ok {
		return
	}

	res, ok := h.exec(w, r, command.OpGetBalance, ts, id, itoa(at))
	if !ok {
		return
	}
	writeBalance(w, id, res, &at)
}

// =============================================================================
// MONEY MOVEMENT
// =============================================================================

// Transfer moves money between two accounts and returns the source balance.
// POST /api/transfers
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, ok := h.exec(w, r, command.OpTransfer, req.Timestamp, req.SourceID, req.TargetID, itoa(req.Amount))
	if !ok {
		return
	}
	writeBalance(w, req.SourceID, res, nil)
}

// Pay debits an account and schedules its cashback.
// POST /api/accounts/{id}/payments
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, ok := h.exec(w, r, command.OpPay, req.Timestamp, id, itoa(req.Amount))
	if !ok {
		return
	}
	if !res.OK() {
		writeLedgerError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentCreatedDTO{PaymentID: res.Output, AccountID: id})
}

// GetPayment returns the payment record, including its cashback status.
// GET /api/accounts/{id}/payments/{paymentID}?timestamp=
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	paymentID := chi.URLParam(r, "paymentID")
	ts, ok := queryInt(w, r, "timestamp")
	if !ok {
		return
	}

	res, ok := h.exec(w, r, command.OpGetPaymentStatus, ts, id, paymentID)
	if !ok {
		return
	}
	if !res.OK() {
		writeLedgerError(w, res.Err)
		return
	}

	pay, err := h.Service.Payment(bank.Timestamp(ts), bank.AccountID(id), bank.PaymentID(paymentID))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(pay))
}

// Merge folds account_id_2 into account_id_1.
// POST /api/merges
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, ok := h.exec(w, r, command.OpMergeAccounts, req.Timestamp, req.AccountID1, req.AccountID2)
	if !ok {
		return
	}
	if !res.OK() {
		writeLedgerError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, MergeDTO{AccountID: req.AccountID1, MergedID: req.AccountID2, Merged: true})
}

// =============================================================================
// REPORTING
// =============================================================================

// TopSpenders returns up to n accounts ranked by outgoing total.
// GET /api/top-spenders?timestamp=&n=
func (h *Handler) TopSpenders(w http.ResponseWriter, r *http.Request) {
	ts, ok := queryInt(w, r, "timestamp")
	if !ok {
		return
	}
	n, ok := queryInt(w, r, "n")
	if !ok {
		return
	}

	rows, err := h.Service.TopSpenders(r.Context(), bank.Timestamp(ts), int(n))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}
	writeJSON(w, http.StatusOK, toSpenderDTOs(rows))
}

// =============================================================================
// BATCH AND ADMIN
// =============================================================================

// RunCommands executes raw queries in order. Every query is parsed before
// any runs, so a malformed batch leaves the ledger untouched.
// POST /api/commands
func (h *Handler) RunCommands(w http.ResponseWriter, r *http.Request) {
	var req CommandsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmds := make([]command.Command, len(req.Commands))
	for i, fields := range req.Commands {
		c, err := command.Parse(fields)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid command %d", i), err)
			return
		}
		cmds[i] = c
	}

	results, err := h.Service.ExecBatch(r.Context(), cmds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid command", err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandResultDTOs(cmds, results))
}

// GetPolicy returns the active cashback policy.
// GET /api/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.NewPolicyFactory().ToJSON(h.Service.Policy()))
}

// GetJournal lists executed commands, newest first.
// GET /api/journal?limit=
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer", err)
			return
		}
		limit = n
	}

	entries, err := h.Service.Journal(r.Context(), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("journal list failed")
		writeError(w, http.StatusInternalServerError, "Failed to read journal", err)
		return
	}
	writeJSON(w, http.StatusOK, toJournalEntryDTOs(entries))
}

// GetJournalStats counts executed commands per operation.
// GET /api/journal/stats
func (h *Handler) GetJournalStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.JournalStats(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("journal stats failed")
		writeError(w, http.StatusInternalServerError, "Failed to read journal", err)
		return
	}
	out := make(map[string]int, len(counts))
	for op, n := range counts {
		out[string(op)] = n
	}
	writeJSON(w, http.StatusOK, out)
}

// Reset empties the ledger and the journal.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Reset(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("reset failed")
		writeError(w, http.StatusInternalServerError, "Failed to reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ListScenarios returns the replayable worked examples.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	all := Scenarios()
	dtos := make([]ScenarioDTO, len(all))
	for i, s := range all {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description, Commands: len(s.Queries)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario resets the ledger and replays one scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sc, found := FindScenario(req.ScenarioID)
	if !found {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}
	cmds, err := sc.Commands()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Invalid scenario", err)
		return
	}

	results, err := h.Service.Replay(r.Context(), cmds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replay scenario", err)
		return
	}

	outputs := make([]string, len(results))
	for i, res := range results {
		outputs[i] = res.Output
	}
	hlog.FromRequest(r).Info().Str("scenario", sc.ID).Int("commands", len(cmds)).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, ScenarioRunDTO{
		ScenarioID: sc.ID,
		Results:    toCommandResultDTOs(cmds, results),
		Expected:   sc.Expected,
		Matches:    sc.Matches(outputs),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// exec builds and runs a command. It writes a 400 and returns false when
// the command is malformed.
func (h *Handler) exec(w http.ResponseWriter, r *http.Request, op command.Op, ts int64, args ...string) (command.Result, bool) {
	c := command.Command{Op: op, Timestamp: bank.Timestamp(ts), Args: args}
	res, err := h.Service.Exec(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return command.Result{}, false
	}
	return res, true
}

func writeBalance(w http.ResponseWriter, id string, res command.Result, at *int64) {
	if !res.OK() {
		writeLedgerError(w, res.Err)
		return
	}
	balance, err := strconv.ParseInt(res.Output, 10, 64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Unexpected ledger output", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{AccountID: id, Balance: balance, At: at})
}

func toCommandResultDTOs(cmds []command.Command, results []command.Result) []CommandResultDTO {
	out := make([]CommandResultDTO, len(results))
	for i, res := range results {
		out[i] = toCommandResultDTO(cmds[i], res)
	}
	return out
}

// statusFor maps ledger errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case bank.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrAccountExists), errors.Is(err, bank.ErrSameAccount):
		return http.StatusConflict
	case bank.IsClientError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeLedgerError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeError(w, status, http.StatusText(status), err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return false
	}
	return true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, name+" is required", nil)
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer", err)
		return 0, false
	}
	return v, true
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
