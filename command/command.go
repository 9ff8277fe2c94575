/*
Package command runs text commands against a bank.Ledger.

PURPOSE:
  The ledger is usually driven as a list of queries of the form
  [OP, timestamp, args...] whose results are plain strings. This package
  parses such queries, dispatches them to the ledger and renders results.

RESULT FORMAT:
  CREATE_ACCOUNT, MERGE_ACCOUNTS   "true" / "false"
  DEPOSIT, TRANSFER, GET_BALANCE   decimal integer, or "" when not found
  PAY                              payment id, or ""
  GET_PAYMENT_STATUS               IN_PROGRESS / CASHBACK_RECEIVED, or ""
  TOP_SPENDERS                     "A(30), B(0)" (possibly empty)

MALFORMED INPUT:
  Unknown ops, wrong arity and non-integer numbers return an error and
  never reach the ledger. A rejected ledger operation is not an error
  here; it is rendered as "false" or "".

SEE ALSO:
  - api/handlers.go: POST /api/commands
  - api/scenarios.go: Worked examples expressed as commands
*/
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/cashback-ledger/bank"
)

// =============================================================================
// OPERATIONS
// =============================================================================

type Op string

const (
	OpCreateAccount    Op = "CREATE_ACCOUNT"
	OpDeposit          Op = "DEPOSIT"
	OpTransfer         Op = "TRANSFER"
	OpPay              Op = "PAY"
	OpGetPaymentStatus Op = "GET_PAYMENT_STATUS"
	OpTopSpenders      Op = "TOP_SPENDERS"
	OpMergeAccounts    Op = "MERGE_ACCOUNTS"
	OpGetBalance       Op = "GET_BALANCE"
)

// arity is the number of arguments after the timestamp.
var arity = map[Op]int{
	OpCreateAccount:    1,
	OpDeposit:          2,
	OpTransfer:         3,
	OpPay:              2,
	OpGetPaymentStatus: 2,
	OpTopSpenders:      1,
	OpMergeAccounts:    2,
	OpGetBalance:       2,
}

// Ops lists every supported operation.
func Ops() []Op {
	return []Op{
		OpCreateAccount, OpDeposit, OpTransfer, OpPay,
		OpGetPaymentStatus, OpTopSpenders, OpMergeAccounts, OpGetBalance,
	}
}

var (
	ErrUnknownOp    = errors.New("unknown operation")
	ErrArity        = errors.New("wrong number of arguments")
	ErrBadNumber    = errors.New("argument is not an integer")
	ErrEmptyCommand = errors.New("empty command")
)

// =============================================================================
// COMMAND
// =============================================================================

type Command struct {
	Op        Op
	Timestamp bank.Timestamp
	Args      []string
}

// Parse builds a Command from [OP, timestamp, args...].
func Parse(fields []string) (Command, error) {
	if len(fields) < 2 {
		return Command{}, ErrEmptyCommand
	}
	op := Op(strings.ToUpper(strings.TrimSpace(fields[0])))
	ts, err := parseInt(fields[1])
	if err != nil {
		return Command{}, fmt.Errorf("%s timestamp: %w", op, err)
	}
	c := Command{Op: op, Timestamp: bank.Timestamp(ts), Args: fields[2:]}
	return c, c.Validate()
}

// Validate checks the op name and argument count.
func (c Command) Validate() error {
	n, ok := arity[c.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, c.Op)
	}
	if len(c.Args) != n {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, c.Op, n, len(c.Args))
	}
	return nil
}

func (c Command) String() string {
	parts := append([]string{string(c.Op), strconv.FormatInt(int64(c.Timestamp), 10)}, c.Args...)
	return strings.Join(parts, " ")
}

// =============================================================================
// EXECUTION
// =============================================================================

// Result is the rendered output of a command plus the ledger error, if any.
type Result struct {
	Output string
	Err    error
}

// OK reports whether the ledger accepted the operation.
func (r Result) OK() bool { return r.Err == nil }

// Execute runs c against l. The returned error is only for malformed commands.
func Execute(l *bank.Ledger, c Command) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	ts := c.Timestamp
	a := c.Args

	switch c.Op {
	case OpCreateAccount:
		return boolResult(l.CreateAccount(ts, bank.AccountID(a[0]))), nil

	case OpDeposit:
		amount, err := parseInt(a[1])
		if err != nil {
			return Result{}, fmt.Errorf("%s amount: %w", c.Op, err)
		}
		return intResult(l.Deposit(ts, bank.AccountID(a[0]), amount)), nil

	case OpTransfer:
		amount, err := parseInt(a[2])
		if err != nil {
			return Result{}, fmt.Errorf("%s amount: %w", c.Op, err)
		}
		return intResult(l.Transfer(ts, bank.AccountID(a[0]), bank.AccountID(a[1]), amount)), nil

	case OpPay:
		amount, err := parseInt(a[1])
		if err != nil {
			return Result{}, fmt.Errorf("%s amount: %w", c.Op, err)
		}
		id, err := l.Pay(ts, bank.AccountID(a[0]), amount)
		return stringResult(string(id), err), nil

	case OpGetPaymentStatus:
		status, err := l.GetPaymentStatus(ts, bank.AccountID(a[0]), bank.PaymentID(a[1]))
		return stringResult(string(status), err), nil

	case OpTopSpenders:
		n, err := parseInt(a[0])
		if err != nil {
			return Result{}, fmt.Errorf("%s n: %w", c.Op, err)
		}
		rows := l.TopSpenders(ts, int(n))
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.String()
		}
		return Result{Output: strings.Join(out, ", ")}, nil

	case OpMergeAccounts:
		return boolResult(l.MergeAccounts(ts, bank.AccountID(a[0]), bank.AccountID(a[1]))), nil

	case OpGetBalance:
		at, err := parseInt(a[1])
		if err != nil {
			return Result{}, fmt.Errorf("%s time_at: %w", c.Op, err)
		}
		return intResult(l.GetBalance(ts, bank.AccountID(a[0]), bank.Timestamp(at))), nil
	}

	return Result{}, fmt.Errorf("%w: %q", ErrUnknownOp, c.Op)
}

// Run executes every command in order and returns the outputs. It stops at
// the first malformed command.
func Run(l *bank.Ledger, cmds []Command) ([]string, error) {
	out := make([]string, 0, len(cmds))
	for i, c := range cmds {
		res, err := Execute(l, c)
		if err != nil {
			return out, fmt.Errorf("command %d: %w", i, err)
		}
		out = append(out, res.Output)
	}
	return out, nil
}

func boolResult(err error) Result {
	return Result{Output: strconv.FormatBool(err == nil), Err: err}
}

func intResult(v int64, err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	return Result{Output: strconv.FormatInt(v, 10)}
}

func stringResult(s string, err error) Result {
	if err != nil {
		return Result{Err: err}
	}
	return Result{Output: s}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	return v, nil
}
