package state

import (
	"sort"

	"github.com/tos-network/reports/reptypes"
)

// Snapshot is the plain-data tree spec.md §6 requires OnchainState::snapshot
// to return for test-vector diffing. Unlike the live OnchainState, every
// set is rendered as a sorted string slice so two snapshots compare equal
// regardless of map/set iteration order.
type Snapshot struct {
	Rho         map[string]PendingSnapshot       `json:"rho"`
	Omega       map[string]OmegaSnapshot         `json:"omega"`
	Xi          map[string]reptypes.WorkReport   `json:"xi"`
	PsiB        map[string]BadReportSnapshot     `json:"psi_b"`
	PsiO        map[string]OffenderRecord        `json:"psi_o"`
	GlobalState reptypes.GlobalState             `json:"globalState"`
}

type PendingSnapshot struct {
	Report             reptypes.WorkReport `json:"report"`
	ReceivedSignatures []string            `json:"receivedSignatures"`
	SubmissionSlot     uint64              `json:"submissionSlot"`
}

type OmegaSnapshot struct {
	Report reptypes.WorkReport `json:"report"`
	Status string              `json:"status"`
}

type BadReportSnapshot struct {
	Reason     string   `json:"reason"`
	DisputedBy []string `json:"disputedBy"`
}

// Snapshot renders s as a plain-data tree, safe to JSON-encode and diff.
func (s *OnchainState) Snapshot() Snapshot {
	out := Snapshot{
		Rho:         make(map[string]PendingSnapshot, len(s.Rho)),
		Omega:       make(map[string]OmegaSnapshot, len(s.Omega)),
		Xi:          make(map[string]reptypes.WorkReport, len(s.Xi)),
		PsiB:        make(map[string]BadReportSnapshot, len(s.PsiB)),
		PsiO:        make(map[string]OffenderRecord, len(s.PsiO)),
		GlobalState: s.GlobalState,
	}
	for d, e := range s.Rho {
		out.Rho[d.Hex()] = PendingSnapshot{
			Report:             e.Report,
			ReceivedSignatures: sortedStrings(e.ReceivedSignatures),
			SubmissionSlot:     e.SubmissionSlot,
		}
	}
	for d, e := range s.Omega {
		out.Omega[d.Hex()] = OmegaSnapshot{Report: e.Report, Status: e.Status.String()}
	}
	for d, r := range s.Xi {
		out.Xi[d.Hex()] = r
	}
	for d, e := range s.PsiB {
		out.PsiB[d.Hex()] = BadReportSnapshot{Reason: e.Reason, DisputedBy: sortedStrings(e.DisputedBy)}
	}
	for id, rec := range s.PsiO {
		out.PsiO[string(id)] = *rec
	}
	return out
}

func sortedStrings(set interface{ ToSlice() []interface{} }) []string {
	raw := set.ToSlice()
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(string))
	}
	sort.Strings(out)
	return out
}
