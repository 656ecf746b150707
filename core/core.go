// Package core is the top-level orchestrator for the Reports state
// machine: it exposes the four extrinsic entry points spec.md §6 names
// exactly, and a Block helper that threads them through the canonical
// per-block order spec.md §5 requires (Guarantees → Assurances →
// Disputes → Accumulation). The orchestrator role mirrors
// core/state_processor.go's StateProcessor, which plays the same
// "drive the ordered sequence of per-block work" role for transactions.
package core

import (
	"github.com/tos-network/reports/accumulate"
	"github.com/tos-network/reports/assurance"
	"github.com/tos-network/reports/dispute"
	"github.com/tos-network/reports/guarantee"
	"github.com/tos-network/reports/pvm"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// ProcessGuaranteeExtrinsic validates and admits report, per spec.md §4.2.
// Returns true iff report was newly promoted to ω on this call.
func ProcessGuaranteeExtrinsic(report reptypes.WorkReport, s *state.OnchainState, slot uint64, currentBlockDigests []reptypes.Digest) bool {
	return guarantee.Process(report, s, slot, currentBlockDigests)
}

// ProcessDisputeExtrinsic applies d to s, per spec.md §4.3, under the
// spec-prescribed silent-no-op-on-missing-target policy.
func ProcessDisputeExtrinsic(d dispute.Dispute, s *state.OnchainState, slot uint64) {
	_ = dispute.Process(d, s, slot, dispute.SilentNoOp)
}

// ProcessAssuranceExtrinsic validates the shape of a and otherwise no-ops,
// per spec.md §4.4.
func ProcessAssuranceExtrinsic(a assurance.Assurance, s *state.OnchainState, slot uint64) {
	if err := assurance.Process(a, s, slot); err != nil {
		// Malformed assurance input never touches state. The error is
		// discarded here; a caller that needs to reject the extrinsic on a
		// ValidationError calls assurance.Process directly.
		_ = err
	}
}

// ProcessAccumulationQueue drains ω once per block, per spec.md §4.5, using
// engine as Ψ_A.
func ProcessAccumulationQueue(s *state.OnchainState, slot uint64, engine pvm.Engine) {
	accumulate.Process(s, slot, engine)
}

// Block is a convenience batch of one block's extrinsics, applied through
// the canonical order in Block.Apply.
type Block struct {
	Guarantees []reptypes.WorkReport
	Assurances []assurance.Assurance
	Disputes   []dispute.Dispute
	Slot       uint64
}

// Apply runs b's extrinsics against s in the canonical order spec.md §5
// mandates, then sweeps ω with engine. It returns the "currentBlockDigests"
// list spec.md §5 describes: for each Guarantee, in block order, its
// report's digest if that digest is in ρ or ω after the Guarantee was
// processed. A digest endorsed by several Guarantees in the block appears
// once per Guarantee.
func Apply(b Block, s *state.OnchainState, engine pvm.Engine) []reptypes.Digest {
	var currentBlockDigests []reptypes.Digest
	for _, report := range b.Guarantees {
		ProcessGuaranteeExtrinsic(report, s, b.Slot, currentBlockDigests)
		// A report becomes a valid dependency target for later reports in
		// the same block as soon as it is admitted into ρ or ω, whether or
		// not this particular call promoted it (spec.md §5's ordering
		// guarantee (a); InRecentHistory checks ρ/ξ/same-block membership,
		// not promotion status).
		d, err := dispute.DigestOf(report)
		if err != nil {
			continue
		}
		if _, ok := s.Rho[d]; ok {
			currentBlockDigests = append(currentBlockDigests, d)
		} else if _, ok := s.Omega[d]; ok {
			currentBlockDigests = append(currentBlockDigests, d)
		}
	}
	for _, a := range b.Assurances {
		ProcessAssuranceExtrinsic(a, s, b.Slot)
	}
	for _, d := range b.Disputes {
		ProcessDisputeExtrinsic(d, s, b.Slot)
	}
	ProcessAccumulationQueue(s, b.Slot, engine)
	return currentBlockDigests
}
