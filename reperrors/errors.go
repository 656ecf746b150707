// Package reperrors defines the Reports error taxonomy as tagged variants
// (not plain exception-style errors), per spec.md §7. Sentinel naming and
// the package-level var-block style is grounded on
// consensus/dpos/dpos.go's errUnknownBlock/errInvalidSignature family.
package reperrors

import "fmt"

// Kind tags the taxonomy a given error belongs to.
type Kind int

const (
	_ Kind = iota
	KindValidation
	KindProtocol
	KindPVMExecution
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProtocol:
		return "protocol"
	case KindPVMExecution:
		return "pvm_execution"
	case KindAuthorization:
		return "authorization"
	default:
		return "unknown"
	}
}

// Tag is the stable, wire-visible failure tag used to route a report to
// ψ_B (spec.md §4.2.1) and as the reason string stored there.
type Tag string

// Protocol validation tags, in the fixed order spec.md §4.2 checks them.
const (
	TagBadSignature                  Tag = "bad_signature"
	TagAnchorNotRecent                Tag = "anchor_not_recent"
	TagBadServiceID                   Tag = "bad_service_id"
	TagBadCodeHash                    Tag = "bad_code_hash"
	TagWrongAssignment                Tag = "wrong_assignment"
	TagNotAuthorized                  Tag = "not_authorized"
	TagCoreEngaged                    Tag = "core_engaged"
	TagFutureReportSlot               Tag = "future_report_slot"
	TagReportBeforeLastRotation       Tag = "report_before_last_rotation"
	TagTooManyDependencies            Tag = "too_many_dependencies"
	TagDependencyMissing              Tag = "dependency_missing"
	TagTooHighWorkReportGas           Tag = "too_high_work_report_gas"
	TagServiceItemGasTooLow           Tag = "service_item_gas_too_low"
	TagDuplicatePackageInRecentHistory Tag = "duplicate_package_in_recent_history"
	TagTimedOut                       Tag = "timed_out"
	TagAccumulationFailed             Tag = "accumulation_failed"
)

// RepError is the single concrete error type for all four taxonomy kinds.
// A tagged variant in Go is a small closed struct plus a Kind discriminant
// rather than a type hierarchy, matching how dpos.go keeps one flat error
// family instead of modeling a class per failure.
type RepError struct {
	Kind Kind
	Tag  Tag
	Msg  string
}

func (e *RepError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Tag)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Tag, e.Msg)
}

// NewValidation builds a ValidationError: malformed inputs at the
// data-model boundary. These never touch on-chain state; the caller must
// reject the extrinsic before it reaches a processor.
func NewValidation(msg string) *RepError {
	return &RepError{Kind: KindValidation, Msg: msg}
}

// NewProtocol builds a ProtocolError carrying one of the named tags from
// spec.md §4.2. Protocol errors are caught inside the processor and
// converted into a ψ_B insert + ψ_O charge; they are not propagated raw to
// the extrinsic caller.
func NewProtocol(tag Tag, msg string) *RepError {
	return &RepError{Kind: KindProtocol, Tag: tag, Msg: msg}
}

// NewPVMExecution builds a PVMExecutionError: a Ψ_A failure, including gas
// overrun, surfaced to the accumulation processor (spec.md §4.5.2/§4.5.4).
func NewPVMExecution(msg string) *RepError {
	return &RepError{Kind: KindPVMExecution, Msg: msg}
}

// NewAuthorization builds an AuthorizationError, reserved for the off-chain
// refiner; the on-chain processors in this repo never construct one.
func NewAuthorization(msg string) *RepError {
	return &RepError{Kind: KindAuthorization, Msg: msg}
}

// AsProtocol reports whether err is a ProtocolError and returns it.
func AsProtocol(err error) (*RepError, bool) {
	re, ok := err.(*RepError)
	if !ok || re.Kind != KindProtocol {
		return nil, false
	}
	return re, true
}

// AsPVMExecution reports whether err is a PVMExecutionError and returns it.
func AsPVMExecution(err error) (*RepError, bool) {
	re, ok := err.(*RepError)
	if !ok || re.Kind != KindPVMExecution {
		return nil, false
	}
	return re, true
}
