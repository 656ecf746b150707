// Package state owns the five Reports buckets — ρ (pending), ω
// (accumulation queue), ξ (finalized history), ψ_B (bad reports), ψ_O
// (offender ledger) — plus the conceptual GlobalState, per spec.md §3.
// Map-of-struct ownership and the lookup-then-merge updates below are
// grounded on consensus/dpos/snapshot.go's Snapshot type; the per-digest
// identity sets are grounded on consensus/bft/vote_pool.go's VotePool.
// Entries are updated in place and nothing here takes a lock (see Guarded).
package state

import (
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/tos-network/reports/reptypes"
)

// PendingEntry is a ρ bucket entry: a report with incomplete endorsements.
type PendingEntry struct {
	Report            reptypes.WorkReport
	ReceivedSignatures mapset.Set // of reptypes.Identity (as string)
	SubmissionSlot    uint64
}

// OmegaStatus is the lifecycle status of an ω bucket entry.
type OmegaStatus int

const (
	OmegaPending OmegaStatus = iota
	OmegaReady
	OmegaProcessing
)

func (s OmegaStatus) String() string {
	switch s {
	case OmegaReady:
		return "ready"
	case OmegaProcessing:
		return "processing"
	default:
		return "pending"
	}
}

// OmegaEntry is an ω bucket entry: an endorsed report awaiting
// accumulation.
type OmegaEntry struct {
	Report reptypes.WorkReport
	Status OmegaStatus
}

// BadReportEntry is a ψ_B bucket entry.
type BadReportEntry struct {
	Reason      string
	DisputedBy  mapset.Set // of identity strings
}

// OffenderRecord is a ψ_O bucket entry: a guarantor's dispute tally.
type OffenderRecord struct {
	DisputeCount    uint64
	LastDisputeSlot uint64
}

// OnchainState owns ρ, ω, ξ, ψ_B, ψ_O and GlobalState exclusively; entries
// cross-reference each other only by digest key (spec.md §3, "Ownership").
// It is not internally synchronized — spec.md §5 mandates a single-threaded
// caller; see Guarded for a lock-wrapped variant.
type OnchainState struct {
	Rho         map[reptypes.Digest]*PendingEntry
	Omega       map[reptypes.Digest]*OmegaEntry
	Xi          map[reptypes.Digest]reptypes.WorkReport
	PsiB        map[reptypes.Digest]*BadReportEntry
	PsiO        map[reptypes.Identity]*OffenderRecord
	GlobalState reptypes.GlobalState
}

// New returns an empty OnchainState.
func New() *OnchainState {
	return &OnchainState{
		Rho:         make(map[reptypes.Digest]*PendingEntry),
		Omega:       make(map[reptypes.Digest]*OmegaEntry),
		Xi:          make(map[reptypes.Digest]reptypes.WorkReport),
		PsiB:        make(map[reptypes.Digest]*BadReportEntry),
		PsiO:        make(map[reptypes.Identity]*OffenderRecord),
		GlobalState: reptypes.NewGlobalState(),
	}
}

// ChargeOffender increments ψ_O[identity]'s dispute tally, creating the
// record if absent (spec.md §4.2.1 / §4.3 step 3).
func (s *OnchainState) ChargeOffender(identity reptypes.Identity, slot uint64) {
	rec, ok := s.PsiO[identity]
	if !ok {
		s.PsiO[identity] = &OffenderRecord{DisputeCount: 1, LastDisputeSlot: slot}
		return
	}
	rec.DisputeCount++
	rec.LastDisputeSlot = slot
}

// InsertBadReport merges d into ψ_B: creates the entry with {reason,
// disputedBy} if absent, otherwise adds disputedBy to the existing entry
// and leaves reason unchanged (spec.md §4.3 step 2).
func (s *OnchainState) InsertBadReport(d reptypes.Digest, reason string, disputedBy string) {
	entry, ok := s.PsiB[d]
	if !ok {
		s.PsiB[d] = &BadReportEntry{Reason: reason, DisputedBy: mapset.NewSet(disputedBy)}
		return
	}
	entry.DisputedBy.Add(disputedBy)
}

// Locate finds a report by digest across ρ, ω, ξ in that order, matching
// the lookup order spec.md §4.3 step 1 specifies for the Dispute processor.
func (s *OnchainState) Locate(d reptypes.Digest) (reptypes.WorkReport, string, bool) {
	if e, ok := s.Rho[d]; ok {
		return e.Report, "rho", true
	}
	if e, ok := s.Omega[d]; ok {
		return e.Report, "omega", true
	}
	if r, ok := s.Xi[d]; ok {
		return r, "xi", true
	}
	return reptypes.WorkReport{}, "", false
}

// InRecentHistory reports whether d is present in ξ, ρ, or the given
// same-block digest set — spec.md §4.2 check 10's closure set.
func (s *OnchainState) InRecentHistory(d reptypes.Digest, currentBlockDigests []reptypes.Digest) bool {
	if _, ok := s.Xi[d]; ok {
		return true
	}
	if _, ok := s.Rho[d]; ok {
		return true
	}
	for _, cd := range currentBlockDigests {
		if cd == d {
			return true
		}
	}
	return false
}

// OmegaDigestsSorted returns ω's keys in lexicographic hex order, the
// deterministic tie-break spec.md §4.5.1 mandates for Kahn's algorithm.
func (s *OnchainState) OmegaDigestsSorted() []reptypes.Digest {
	out := make([]reptypes.Digest, 0, len(s.Omega))
	for d := range s.Omega {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out
}
