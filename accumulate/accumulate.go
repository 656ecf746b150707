// Package accumulate implements the accumulation processor: spec.md §4.5's
// topological sort (Kahn's algorithm, see topo.go), per-report execution
// against Ψ_A, atomic delta application, and failure routing. The
// execute-in-order-then-finalize loop shape is grounded on
// core/state_processor.go's StateProcessor.Process, which likewise walks an
// ordered sequence, applies each unit's effect, and returns the
// accumulated result only after the whole sequence succeeds.
package accumulate

import (
	"github.com/tos-network/reports/pvm"
	"github.com/tos-network/reports/replog"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// Process drains ω, per spec.md §4.5: topologically order ready reports,
// execute each one's Work-Items against a snapshot of GlobalState, and
// commit to ξ on success or route to ψ_B/ψ_O on failure. It is invoked
// once per block after all extrinsics (spec.md §5).
func Process(s *state.OnchainState, slot uint64, engine pvm.Engine) {
	order := topoSort(s)

	if len(order) < len(s.Omega) {
		replog.Warn("accumulate: dependency cycle detected, affected reports remain in omega",
			"ready", len(order), "omega", len(s.Omega))
	}

	for _, d := range order {
		entry, ok := s.Omega[d]
		if !ok || entry.Status != state.OmegaReady {
			continue
		}
		entry.Status = state.OmegaProcessing

		newGS, err := executeReport(entry, s.GlobalState, engine)
		if err != nil {
			delete(s.Omega, d)
			s.InsertBadReport(d, "accumulation_failed: "+err.Error(), "system_accumulation")
			s.ChargeOffender(entry.Report.GuarantorPublicKey, slot)
			replog.Warn("accumulate: report failed, routed to psi_b", "digest", d.Hex(), "err", err)
			continue
		}

		s.GlobalState = newGS
		delete(s.Omega, d)
		s.Xi[d] = entry.Report
		replog.Info("accumulate: report finalized", "digest", d.Hex())
	}
}

// executeReport runs every Work-Item in entry's WorkPackage against a
// working copy of globalState, returning the fully-applied GlobalState on
// success. Per spec.md §4.5.2, atomicity is at the WorkReport boundary: a
// failure on any item discards every delta computed so far for this report
// by returning the original globalState untouched, rather than partially
// committing — the snapshot-and-restore strategy spec.md §4.5.2 names as
// option (b).
func executeReport(entry *state.OmegaEntry, globalState reptypes.GlobalState, engine pvm.Engine) (reptypes.GlobalState, error) {
	working := globalState
	for _, item := range entry.Report.WorkPackage.WorkItems {
		delta, err := engine.Execute(item, working)
		if err != nil {
			return globalState, err
		}
		working = working.Apply(delta)
	}
	return working, nil
}
