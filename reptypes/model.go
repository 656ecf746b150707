// Package reptypes holds the immutable value types of the Reports domain
// model (spec.md §3): WorkItem, WorkPackage, RefinementContext,
// AvailabilitySpec, WorkReport, and the execution-side StateDelta /
// GlobalState types Ψ_A operates on. Field layout mirrors spec.md exactly;
// struct doc-comment density here matches the teacher's consensus/bft/types.go
// (one line per exported type, terse field comments only where the name
// alone doesn't carry the invariant).
package reptypes

import (
	"strconv"

	"github.com/tos-network/reports/reperrors"
)

// WorkItem is a unit of program execution.
type WorkItem struct {
	ID          string `json:"id"`
	ProgramHash string `json:"programHash"` // hex
	InputData   string `json:"inputData"`
	GasLimit    uint64 `json:"gasLimit"`
}

// Validate enforces the WorkItem invariant: gasLimit > 0.
func (w WorkItem) Validate() error {
	if w.ID == "" {
		return reperrors.NewValidation("workItem.id must be non-empty")
	}
	if w.GasLimit == 0 {
		return reperrors.NewValidation("workItem.gasLimit must be > 0")
	}
	return nil
}

// AuthorizationServiceDetails locates the off-chain authorization service
// for a WorkPackage.
type AuthorizationServiceDetails struct {
	Host     string `json:"host"`
	URL      string `json:"url"`
	Function string `json:"function"`
}

// WorkPackage is an atomic author-signed intent: authorization plus an
// ordered, non-empty sequence of WorkItems.
type WorkPackage struct {
	AuthorizationToken          string                      `json:"authorizationToken"`
	AuthorizationServiceDetails AuthorizationServiceDetails `json:"authorizationServiceDetails"`
	Context                     string                      `json:"context"`
	WorkItems                   []WorkItem                  `json:"workItems"`
}

// Validate enforces |workItems| >= 1 plus each item's own invariant.
func (p WorkPackage) Validate() error {
	if p.AuthorizationToken == "" {
		return reperrors.NewValidation("workPackage.authorizationToken must be non-empty")
	}
	if p.Context == "" {
		return reperrors.NewValidation("workPackage.context must be non-empty")
	}
	if len(p.WorkItems) == 0 {
		return reperrors.NewValidation("workPackage.workItems must contain at least one item")
	}
	for i, item := range p.WorkItems {
		if err := item.Validate(); err != nil {
			return reperrors.NewValidation(errPrefix(i, err))
		}
	}
	return nil
}

func errPrefix(i int, err error) string {
	return "workItems[" + strconv.Itoa(i) + "]: " + err.Error()
}

// RefinementContext is the view of chain state the guarantor worked
// against.
type RefinementContext struct {
	AnchorBlockRoot     string     `json:"anchorBlockRoot"`
	AnchorBlockNumber   uint64     `json:"anchorBlockNumber"`
	BeefyMmrRoot        string     `json:"beefyMmrRoot"`
	CurrentSlot         uint64     `json:"currentSlot"`
	CurrentEpoch        uint64     `json:"currentEpoch"`
	CurrentGuarantors   []Identity `json:"currentGuarantors"`
	PreviousGuarantors  []Identity `json:"previousGuarantors"`
}

// AvailabilitySpec is the erasure-coding descriptor for a WorkReport.
type AvailabilitySpec struct {
	TotalFragments  uint32   `json:"totalFragments"`
	DataFragments   uint32   `json:"dataFragments"`
	FragmentHashes  []string `json:"fragmentHashes"`
}

// Validate enforces 1 <= dataFragments <= totalFragments and that
// len(fragmentHashes) == totalFragments.
func (a AvailabilitySpec) Validate() error {
	if a.DataFragments < 1 || a.DataFragments > a.TotalFragments {
		return reperrors.NewValidation("availabilitySpec.dataFragments must be in [1, totalFragments]")
	}
	if uint32(len(a.FragmentHashes)) != a.TotalFragments {
		return reperrors.NewValidation("availabilitySpec.fragmentHashes length must equal totalFragments")
	}
	return nil
}

// WorkReport is the central on-chain artifact: a guarantor's signed,
// post-refinement attestation over a WorkPackage.
type WorkReport struct {
	WorkPackage         WorkPackage        `json:"workPackage"`
	RefinementContext   RefinementContext  `json:"refinementContext"`
	PvmOutput           string             `json:"pvmOutput"`
	GasUsed             uint64             `json:"gasUsed"`
	AvailabilitySpec    *AvailabilitySpec  `json:"availabilitySpec"`
	GuarantorSignature  string             `json:"guarantorSignature"` // base64
	GuarantorPublicKey  Identity           `json:"guarantorPublicKey"` // base64
	CoreIndex           uint32             `json:"coreIndex"`
	Slot                uint64             `json:"slot"`
	Dependencies        []Digest           `json:"dependencies"`
}

// Validate performs data-model-boundary checks only (spec.md §7's
// ValidationError scope); protocol-level checks belong to the guarantee
// processor.
func (r WorkReport) Validate() error {
	if err := r.WorkPackage.Validate(); err != nil {
		return err
	}
	if r.GuarantorSignature == "" {
		return reperrors.NewValidation("workReport.guarantorSignature must be non-empty")
	}
	if r.GuarantorPublicKey == "" {
		return reperrors.NewValidation("workReport.guarantorPublicKey must be non-empty")
	}
	if r.AvailabilitySpec != nil {
		if err := r.AvailabilitySpec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StateDelta carries per-field overrides produced by Ψ_A (spec.md §4.5.3).
// Absent (nil) fields are unchanged when applied.
type StateDelta struct {
	Accounts map[string]Account
	Data     map[string]string
	Log      string
}

// Account is a minimal global-state account record. The field set is
// intentionally small: this repo's Ψ_A stand-in (package pvm) only needs a
// balance and an owner-visible blob, and GlobalState.Accounts values are
// opaque to the Reports core beyond digest/replacement semantics.
type Account struct {
	Balance int64
	Data    string
}

// CoreStatus is the availability state of a compute core.
type CoreStatus struct {
	Available bool
	Engaged   bool
}

// ServiceRegistration is a registered service's on-chain metadata.
type ServiceRegistration struct {
	CodeHash string
	Owner    string
}

// GlobalState is the conceptual global state Ψ_A operates against
// (spec.md §3). OnchainState owns exactly one GlobalState value; Ψ_A never
// mutates it directly, only through a StateDelta.
type GlobalState struct {
	Accounts        map[string]Account
	CoreStatus      map[uint32]CoreStatus
	ServiceRegistry map[string]ServiceRegistration
}

// NewGlobalState returns an empty, ready-to-use GlobalState.
func NewGlobalState() GlobalState {
	return GlobalState{
		Accounts:        make(map[string]Account),
		CoreStatus:      make(map[uint32]CoreStatus),
		ServiceRegistry: make(map[string]ServiceRegistration),
	}
}

// Apply returns a new GlobalState with exactly the fields mentioned in
// delta replaced or merged; fields delta leaves nil are unchanged
// (spec.md §4.5.3). The receiver is never mutated, matching the teacher's
// snapshot.copy()-before-mutate discipline in consensus/dpos/snapshot.go.
func (g GlobalState) Apply(delta StateDelta) GlobalState {
	out := GlobalState{
		Accounts:        cloneAccounts(g.Accounts),
		CoreStatus:      cloneCoreStatus(g.CoreStatus),
		ServiceRegistry: cloneRegistry(g.ServiceRegistry),
	}
	for k, v := range delta.Accounts {
		out.Accounts[k] = v
	}
	// Data is a free-form shallow-merged map layered over account data
	// under the reserved "_data" key, since GlobalState itself has no Data
	// field distinct from Accounts/CoreStatus/ServiceRegistry in spec.md §3.
	if len(delta.Data) > 0 {
		acc, ok := out.Accounts["_data"]
		if !ok {
			acc = Account{}
		}
		for k, v := range delta.Data {
			acc.Data += k + "=" + v + ";"
		}
		out.Accounts["_data"] = acc
	}
	if delta.Log != "" {
		acc := out.Accounts["_log"]
		acc.Data += delta.Log
		out.Accounts["_log"] = acc
	}
	return out
}

func cloneAccounts(m map[string]Account) map[string]Account {
	out := make(map[string]Account, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneCoreStatus(m map[uint32]CoreStatus) map[uint32]CoreStatus {
	out := make(map[uint32]CoreStatus, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRegistry(m map[string]ServiceRegistration) map[string]ServiceRegistration {
	out := make(map[string]ServiceRegistration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
