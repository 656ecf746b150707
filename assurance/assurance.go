// Package assurance implements the Assurance extrinsic processor. Per
// spec.md §4.4 this iteration performs no state mutation; the processor
// exists solely to preserve the canonical extrinsic ordering contract
// (spec.md §5: Guarantees → Assurances → Disputes → Accumulation) and to
// validate the shape of its input, per the dpos API package's style of a
// thin, mostly-validating handler (consensus/dpos/api.go).
package assurance

import (
	"github.com/tos-network/reports/replog"
	"github.com/tos-network/reports/reperrors"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// Assurance is the input to the Assurance extrinsic processor.
type Assurance struct {
	ReportHash        reptypes.Digest
	AffirmingParty    reptypes.Identity
	TargetDisputeHash *reptypes.Digest // optional
	Reason            string           // optional
}

// Validate checks the shape of an Assurance input (spec.md §4.4:
// "implementations must accept and validate the shape of the input").
func (a Assurance) Validate() error {
	if a.ReportHash.IsZero() {
		return reperrors.NewValidation("assurance.reportHash must be non-zero")
	}
	if a.AffirmingParty == "" {
		return reperrors.NewValidation("assurance.affirmingParty must be non-empty")
	}
	return nil
}

// Process validates shape and otherwise no-ops, per spec.md §4.4. The
// *state.OnchainState parameter is accepted (not just ignored outright) so
// a future expansion — e.g. recording affirmations that accelerate
// finality or tilt unresolved disputes, per spec.md §9 — has a stable call
// site to extend without changing callers.
func Process(a Assurance, s *state.OnchainState, slot uint64) error {
	if err := a.Validate(); err != nil {
		return err
	}
	replog.Debug("assurance: recorded (no-op)", "reportHash", a.ReportHash.Hex(), "affirmingParty", a.AffirmingParty, "slot", slot)
	return nil
}
