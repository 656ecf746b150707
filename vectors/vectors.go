// Package vectors hydrates and diffs the JSON test-vector format spec.md
// §6 describes: a pre_state/input/post_state triple used to check one
// implementation's behavior against another's. This package only does
// loading and diffing — running a directory of vectors from a CLI is
// explicitly out of scope (spec.md §1's Non-goals).
package vectors

import (
	"encoding/json"
	"fmt"
	"reflect"

	mapset "github.com/deckarep/golang-set"
	"github.com/google/uuid"

	"github.com/tos-network/reports/assurance"
	"github.com/tos-network/reports/dispute"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

// Input is one block's extrinsics, in the JSON shape a vector file carries
// them in.
type Input struct {
	Guarantees []reptypes.WorkReport  `json:"guarantees"`
	Assurances []assurance.Assurance  `json:"assurances"`
	Disputes   []dispute.Dispute      `json:"disputes"`
	Slot       uint64                 `json:"slot"`
}

// Vector is one pre_state/input/post_state test case, plus a RunID stamped
// at load time so a batch run can correlate log lines back to the vector
// that produced them without re-parsing the source file.
type Vector struct {
	RunID     string          `json:"-"`
	Name      string          `json:"name"`
	PreState  state.Snapshot  `json:"pre_state"`
	Input     Input           `json:"input"`
	PostState state.Snapshot  `json:"post_state"`
}

// Load parses raw JSON into a Vector and stamps it with a fresh RunID.
func Load(raw []byte) (Vector, error) {
	var v Vector
	if err := json.Unmarshal(raw, &v); err != nil {
		return Vector{}, fmt.Errorf("vectors: decode: %w", err)
	}
	v.RunID = uuid.NewString()
	return v, nil
}

// Hydrate rebuilds an *state.OnchainState from a Snapshot, for feeding a
// vector's pre_state into the processors under test. Sets (ReceivedSignatures,
// DisputedBy) are rebuilt from the snapshot's sorted string slices.
func Hydrate(snap state.Snapshot) *state.OnchainState {
	s := state.New()
	for hex, p := range snap.Rho {
		d, err := reptypes.DigestFromHex(hex)
		if err != nil {
			continue
		}
		s.Rho[d] = &state.PendingEntry{
			Report:             p.Report,
			ReceivedSignatures: toSet(p.ReceivedSignatures),
			SubmissionSlot:     p.SubmissionSlot,
		}
	}
	for hex, o := range snap.Omega {
		d, err := reptypes.DigestFromHex(hex)
		if err != nil {
			continue
		}
		s.Omega[d] = &state.OmegaEntry{Report: o.Report, Status: parseOmegaStatus(o.Status)}
	}
	for hex, r := range snap.Xi {
		d, err := reptypes.DigestFromHex(hex)
		if err != nil {
			continue
		}
		s.Xi[d] = r
	}
	for hex, b := range snap.PsiB {
		d, err := reptypes.DigestFromHex(hex)
		if err != nil {
			continue
		}
		s.PsiB[d] = &state.BadReportEntry{Reason: b.Reason, DisputedBy: toSet(b.DisputedBy)}
	}
	for id, rec := range snap.PsiO {
		r := rec
		s.PsiO[reptypes.Identity(id)] = &r
	}
	s.GlobalState = snap.GlobalState
	return s
}

// Diff reports whether got matches want. On a mismatch it returns a message
// holding the JSON encodings of both whole snapshots; it does not locate the
// differing field.
func Diff(want, got state.Snapshot) (bool, string) {
	if !reflect.DeepEqual(want, got) {
		wantJSON, _ := json.Marshal(want)
		gotJSON, _ := json.Marshal(got)
		return false, fmt.Sprintf("post_state mismatch\nwant: %s\ngot:  %s", wantJSON, gotJSON)
	}
	return true, ""
}

func toSet(ss []string) mapset.Set {
	set := mapset.NewSet()
	for _, s := range ss {
		set.Add(s)
	}
	return set
}

func parseOmegaStatus(s string) state.OmegaStatus {
	switch s {
	case "ready":
		return state.OmegaReady
	case "processing":
		return state.OmegaProcessing
	default:
		return state.OmegaPending
	}
}
