// Package dispute implements the Dispute extrinsic processor: spec.md
// §4.3's locate/remove/merge/charge sequence. The silent-no-op-on-missing-
// target default, and the parameterized strict alternative, resolve the
// open question spec.md §9 flags ("some vectors may require
// dispute_target_missing").
package dispute

import (
	"github.com/tos-network/reports/canonical"
	"github.com/tos-network/reports/replog"
	"github.com/tos-network/reports/reperrors"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// Dispute is the input to the Dispute extrinsic processor.
type Dispute struct {
	DisputedDigestHash reptypes.Digest
	DisputerPublicKey  reptypes.Identity
	Reason             string
}

// MissingTargetPolicy controls the behavior spec.md §9 leaves as an open
// question: what to do when the disputed digest is not locatable in any of
// ρ/ω/ξ.
type MissingTargetPolicy int

const (
	// SilentNoOp is spec.md §4.3's prescribed default: tolerate replayed
	// disputes by doing nothing.
	SilentNoOp MissingTargetPolicy = iota
	// Strict raises reperrors.NewProtocol(dispute_target_missing, ...)
	// instead, for integrators who want to treat an unresolvable dispute
	// as a protocol violation.
	Strict
)

// Process applies d to s at the given slot under policy, per spec.md §4.3.
// It returns a non-nil error only under Strict policy when the target
// could not be located; under SilentNoOp it always returns nil.
func Process(d Dispute, s *state.OnchainState, slot uint64, policy MissingTargetPolicy) error {
	report, bucket, found := s.Locate(d.DisputedDigestHash)
	if !found {
		if policy == Strict {
			return reperrors.NewProtocol("dispute_target_missing", d.DisputedDigestHash.Hex())
		}
		replog.Debug("dispute: target not found, ignoring (replayed dispute)", "digest", d.DisputedDigestHash.Hex())
		return nil
	}

	switch bucket {
	case "rho":
		delete(s.Rho, d.DisputedDigestHash)
	case "omega":
		delete(s.Omega, d.DisputedDigestHash)
	case "xi":
		// History is immutable: a late dispute against a finalized report
		// leaves ξ untouched but still runs bookkeeping (spec.md §4.3
		// step 1, "late dispute").
	}

	s.InsertBadReport(d.DisputedDigestHash, d.Reason, string(d.DisputerPublicKey))
	s.ChargeOffender(report.GuarantorPublicKey, slot)

	replog.Info("dispute: processed", "digest", d.DisputedDigestHash.Hex(), "bucket", bucket, "disputer", d.DisputerPublicKey)
	return nil
}

// DigestOf is a convenience for callers that have a full WorkReport rather
// than its digest already computed.
func DigestOf(report reptypes.WorkReport) (reptypes.Digest, error) {
	return canonical.Digest(report)
}
