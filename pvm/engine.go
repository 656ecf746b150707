// Package pvm models Ψ_A, the on-chain execution engine spec.md §6 treats
// as an external collaborator: "a pure function from (WorkItem,
// GlobalState) → StateDelta or failure." This package supplies only the
// interface the accumulation processor depends on, plus LedgerEngine, a
// small reference implementation used by tests and any caller that wants a
// runnable end-to-end pipeline without wiring a real PVM. LedgerEngine is
// not a PVM: spec.md §1 places "the Ψ_A execution engine for Work-Items"
// deliberately out of scope, and §9 reiterates that a real engine is a
// Non-goal.
package pvm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tos-network/reports/reperrors"
	"github.com/tos-network/reports/reptypes"
)

// Engine executes a single WorkItem against a read-only GlobalState view
// and returns the delta it would apply, or an error. Engine implementations
// must not mutate globalState (spec.md §4.5.3: "Ψ_A does not mutate
// globalState directly").
type Engine interface {
	Execute(item reptypes.WorkItem, globalState reptypes.GlobalState) (reptypes.StateDelta, error)
}

// Program hashes LedgerEngine understands. A real deployment would resolve
// programHash to bytecode in a service registry and run it on an actual
// PVM; this reference engine instead keys a tiny fixed dispatch table,
// enough to make spec.md §8's happy-path transfer scenario executable.
const (
	ProgramTransfer = "transfer"
	ProgramMint     = "mint"
	ProgramNoop     = "noop"
)

// LedgerEngine is a reference Ψ_A: it dispatches on WorkItem.ProgramHash and
// interprets WorkItem.InputData as the colon-separated arguments of that
// operation on the account ledger in GlobalState.Accounts ("from:to:amount"
// for transfer, "account:amount" for mint; noop ignores it).
type LedgerEngine struct{}

// Execute implements Engine.
func (LedgerEngine) Execute(item reptypes.WorkItem, gs reptypes.GlobalState) (reptypes.StateDelta, error) {
	switch item.ProgramHash {
	case ProgramTransfer:
		return execTransfer(item, gs)
	case ProgramMint:
		return execMint(item, gs)
	case ProgramNoop:
		return reptypes.StateDelta{}, nil
	default:
		return reptypes.StateDelta{}, reperrors.NewPVMExecution(fmt.Sprintf("unknown programHash %q", item.ProgramHash))
	}
}

// execTransfer parses "from:to:amount" and moves amount from from's
// balance to to's balance, failing if from's balance would go negative or
// the work item's gas limit is under the fixed cost charged below.
func execTransfer(item reptypes.WorkItem, gs reptypes.GlobalState) (reptypes.StateDelta, error) {
	const transferGasCost = 10
	parts := strings.Split(item.InputData, ":")
	if len(parts) != 3 {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("transfer: expected from:to:amount")
	}
	from, to := parts[0], parts[1]
	amount, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || amount < 0 {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("transfer: invalid amount")
	}
	if item.GasLimit < transferGasCost {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("transfer: gas limit below fixed cost")
	}
	fromAcc := gs.Accounts[from]
	toAcc := gs.Accounts[to]
	if fromAcc.Balance < amount {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("transfer: insufficient balance")
	}
	fromAcc.Balance -= amount
	toAcc.Balance += amount
	return reptypes.StateDelta{
		Accounts: map[string]reptypes.Account{
			from: fromAcc,
			to:   toAcc,
		},
	}, nil
}

// execMint parses "account:amount" and credits amount to account.
func execMint(item reptypes.WorkItem, gs reptypes.GlobalState) (reptypes.StateDelta, error) {
	parts := strings.Split(item.InputData, ":")
	if len(parts) != 2 {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("mint: expected account:amount")
	}
	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || amount < 0 {
		return reptypes.StateDelta{}, reperrors.NewPVMExecution("mint: invalid amount")
	}
	acc := gs.Accounts[parts[0]]
	acc.Balance += amount
	return reptypes.StateDelta{
		Accounts: map[string]reptypes.Account{parts[0]: acc},
	}, nil
}
