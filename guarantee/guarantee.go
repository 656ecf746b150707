// Package guarantee implements the Guarantee extrinsic processor:
// spec.md §4.2's fixed-order validation chain, §4.2.1's failure routing,
// and §4.2.2's endorsement merge and promotion to ω.
//
// The validation chain's shape — a sequence of named checks, each
// returning a tagged sentinel error at the first failure — is grounded on
// consensus/dpos/dpos.go's verifyHeader/verifyCascadingFields/verifySeal
// chain, which follows exactly this pattern for header validation.
package guarantee

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/tos-network/reports/canonical"
	"github.com/tos-network/reports/replog"
	"github.com/tos-network/reports/reperrors"
	"github.com/tos-network/reports/repparams"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// Process validates and admits a WorkReport, merging its endorsement into
// ρ and promoting to ω on super-majority, per spec.md §4.2. It returns true
// iff the report was newly promoted to ω on this call (spec.md §6's
// processGuaranteeExtrinsic contract).
func Process(report reptypes.WorkReport, s *state.OnchainState, slot uint64, currentBlockDigests []reptypes.Digest) bool {
	if err := report.Validate(); err != nil {
		replog.Warn("guarantee: malformed report rejected before state touch", "err", err)
		return false
	}

	if tag, err := validate(report, s, slot, currentBlockDigests); err != nil {
		reject(report, s, slot, tag, err)
		return false
	}

	return mergeAndPromote(report, s, slot)
}

// validate runs the fixed-order check sequence of spec.md §4.2, returning
// the failing tag and a ProtocolError on the first failed check.
func validate(report reptypes.WorkReport, s *state.OnchainState, slot uint64, currentBlockDigests []reptypes.Digest) (reperrors.Tag, error) {
	// 1. bad_signature
	ok, err := canonical.VerifySignature(report)
	if err != nil {
		return reperrors.TagBadSignature, reperrors.NewProtocol(reperrors.TagBadSignature, err.Error())
	}
	if !ok {
		return reperrors.TagBadSignature, reperrors.NewProtocol(reperrors.TagBadSignature, "signature does not verify")
	}

	// 2. anchor_not_recent
	if slot < report.RefinementContext.AnchorBlockNumber ||
		slot-report.RefinementContext.AnchorBlockNumber > repparams.AnchorMaxAgeSlots {
		return reperrors.TagAnchorNotRecent, reperrors.NewProtocol(reperrors.TagAnchorNotRecent,
			fmt.Sprintf("anchor age %d exceeds %d", slot-report.RefinementContext.AnchorBlockNumber, repparams.AnchorMaxAgeSlots))
	}

	// 3. bad_service_id
	reg, registered := s.GlobalState.ServiceRegistry[report.WorkPackage.AuthorizationServiceDetails.URL]
	if !registered {
		return reperrors.TagBadServiceID, reperrors.NewProtocol(reperrors.TagBadServiceID,
			report.WorkPackage.AuthorizationServiceDetails.URL)
	}

	// 4. bad_code_hash
	if reg.CodeHash != "" && report.WorkPackage.WorkItems[0].ProgramHash != reg.CodeHash {
		return reperrors.TagBadCodeHash, reperrors.NewProtocol(reperrors.TagBadCodeHash, "")
	}

	// 5. wrong_assignment / not_authorized
	if tag, err := checkAssignment(report); err != nil {
		return tag, err
	}

	// 6. core_engaged
	if cs, ok := s.GlobalState.CoreStatus[report.CoreIndex]; ok && cs.Engaged {
		return reperrors.TagCoreEngaged, reperrors.NewProtocol(reperrors.TagCoreEngaged, "")
	}

	// 7. future_report_slot
	if report.Slot > slot {
		return reperrors.TagFutureReportSlot, reperrors.NewProtocol(reperrors.TagFutureReportSlot, "")
	}

	// 8. report_before_last_rotation
	if slot-report.Slot > repparams.ReportTimeoutSlots {
		return reperrors.TagReportBeforeLastRotation, reperrors.NewProtocol(reperrors.TagReportBeforeLastRotation, "")
	}

	// 9. too_many_dependencies
	if len(report.Dependencies) > repparams.MaxDependencies {
		return reperrors.TagTooManyDependencies, reperrors.NewProtocol(reperrors.TagTooManyDependencies, "")
	}

	// 10. dependency_missing
	for _, d := range report.Dependencies {
		if !s.InRecentHistory(d, currentBlockDigests) {
			return reperrors.TagDependencyMissing, reperrors.NewProtocol(reperrors.TagDependencyMissing, d.Hex())
		}
	}

	// 11. too_high_work_report_gas
	if report.GasUsed > repparams.MaxWorkReportGas {
		return reperrors.TagTooHighWorkReportGas, reperrors.NewProtocol(reperrors.TagTooHighWorkReportGas, "")
	}

	// 12. service_item_gas_too_low
	for _, w := range report.WorkPackage.WorkItems {
		if w.GasLimit < repparams.MinServiceItemGas {
			return reperrors.TagServiceItemGasTooLow, reperrors.NewProtocol(reperrors.TagServiceItemGasTooLow, w.ID)
		}
	}

	// 13. duplicate_package_in_recent_history
	d, err := canonical.Digest(report)
	if err != nil {
		return reperrors.TagDuplicatePackageInRecentHistory, reperrors.NewProtocol(reperrors.TagDuplicatePackageInRecentHistory, err.Error())
	}
	if _, ok := s.Xi[d]; ok {
		return reperrors.TagDuplicatePackageInRecentHistory, reperrors.NewProtocol(reperrors.TagDuplicatePackageInRecentHistory, "")
	}

	return "", nil
}

// checkAssignment implements check 5: the guarantor's public key must
// appear in the current roster if the report's epoch matches the context's
// current epoch, or the previous roster if it matches the prior epoch.
func checkAssignment(report reptypes.WorkReport) (reperrors.Tag, error) {
	reportEpoch := report.Slot / repparams.EpochLengthSlots
	ctx := report.RefinementContext

	var roster []reptypes.Identity
	switch reportEpoch {
	case ctx.CurrentEpoch:
		roster = ctx.CurrentGuarantors
	case ctx.CurrentEpoch - 1:
		roster = ctx.PreviousGuarantors
	default:
		return reperrors.TagWrongAssignment, reperrors.NewProtocol(reperrors.TagWrongAssignment,
			fmt.Sprintf("report epoch %d not current (%d) or previous", reportEpoch, ctx.CurrentEpoch))
	}
	for _, g := range roster {
		if g == report.GuarantorPublicKey {
			return "", nil
		}
	}
	return reperrors.TagNotAuthorized, reperrors.NewProtocol(reperrors.TagNotAuthorized, string(report.GuarantorPublicKey))
}

// reject implements spec.md §4.2.1: route a validation failure to ψ_B and
// charge the guarantor in ψ_O.
func reject(report reptypes.WorkReport, s *state.OnchainState, slot uint64, tag reperrors.Tag, cause error) {
	d, err := canonical.Digest(report)
	if err != nil {
		replog.Error("guarantee: cannot compute digest of rejected report", "err", err)
		return
	}
	replog.Warn("guarantee: report rejected", "digest", d.Hex(), "tag", tag, "cause", cause)
	s.InsertBadReport(d, string(tag), "system_validation")
	s.ChargeOffender(report.GuarantorPublicKey, slot)
}

// mergeAndPromote implements spec.md §4.2.2.
func mergeAndPromote(report reptypes.WorkReport, s *state.OnchainState, slot uint64) bool {
	d, err := canonical.Digest(report)
	if err != nil {
		replog.Error("guarantee: cannot compute digest", "err", err)
		return false
	}

	entry, exists := s.Rho[d]
	if !exists {
		entry = &state.PendingEntry{
			Report:             report,
			ReceivedSignatures: mapset.NewSet(string(report.GuarantorPublicKey)),
			SubmissionSlot:     slot,
		}
		s.Rho[d] = entry
	} else if entry.ReceivedSignatures.Contains(string(report.GuarantorPublicKey)) {
		return false // idempotent: identity already endorsed this digest
	} else {
		entry.ReceivedSignatures.Add(string(report.GuarantorPublicKey))
	}

	n := len(report.RefinementContext.CurrentGuarantors) + len(report.RefinementContext.PreviousGuarantors)
	threshold := repparams.Threshold(n)

	if entry.ReceivedSignatures.Cardinality() >= threshold {
		delete(s.Rho, d)
		s.Omega[d] = &state.OmegaEntry{Report: entry.Report, Status: state.OmegaReady}
		replog.Info("guarantee: report promoted to omega", "digest", d.Hex(), "signatures", entry.ReceivedSignatures.Cardinality(), "threshold", threshold)
		return true
	}

	if slot > entry.SubmissionSlot && slot-entry.SubmissionSlot > repparams.ReportTimeoutSlots {
		delete(s.Rho, d)
		s.InsertBadReport(d, string(reperrors.TagTimedOut), "system_timeout")
		replog.Warn("guarantee: report timed out in rho", "digest", d.Hex(), "submissionSlot", entry.SubmissionSlot, "slot", slot)
	}
	return false
}
