package core

import (
	"testing"

	"github.com/tos-network/reports/assurance"
	"github.com/tos-network/reports/canonical"
	"github.com/tos-network/reports/dispute"
	"github.com/tos-network/reports/pvm"
	"github.com/tos-network/reports/repcrypto"
	"github.com/tos-network/reports/reptypes"
	"github.com/tos-network/reports/state"
)

type guarantor struct {
	identity reptypes.Identity
	priv     repcrypto.PrivateKey
}

func newGuarantor(t *testing.T) guarantor {
	t.Helper()
	pub, priv, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return guarantor{identity: reptypes.Identity(repcrypto.EncodeBase64(pub)), priv: priv}
}

func sign(t *testing.T, g guarantor, r reptypes.WorkReport) reptypes.WorkReport {
	t.Helper()
	r.GuarantorPublicKey = g.identity
	msg, err := canonical.Signable(r)
	if err != nil {
		t.Fatalf("Signable: %v", err)
	}
	r.GuarantorSignature = repcrypto.EncodeBase64(repcrypto.Sign(g.priv, msg))
	return r
}

func transferReport(roster []reptypes.Identity, from, to string, amount string) reptypes.WorkReport {
	return reptypes.WorkReport{
		WorkPackage: reptypes.WorkPackage{
			AuthorizationToken:          "tok",
			AuthorizationServiceDetails: reptypes.AuthorizationServiceDetails{URL: "svc.example/authorize"},
			Context:                     "ctx",
			WorkItems: []reptypes.WorkItem{
				{ID: "w1", ProgramHash: pvm.ProgramTransfer, InputData: from + ":" + to + ":" + amount, GasLimit: 100},
			},
		},
		RefinementContext: reptypes.RefinementContext{
			AnchorBlockNumber: 90,
			CurrentEpoch:      0,
			CurrentGuarantors: roster,
		},
		GasUsed:   10,
		CoreIndex: 0,
		Slot:      100,
	}
}

// End-to-end happy path across the canonical block order: two Guarantees
// promote a transfer report to omega, the Accumulation sweep finalizes it
// into xi and applies the balance change.
func TestBlockApplyHappyPathEndToEnd(t *testing.T) {
	g1, g2 := newGuarantor(t), newGuarantor(t)
	roster := []reptypes.Identity{g1.identity, g2.identity}

	s := state.New()
	s.GlobalState.ServiceRegistry["svc.example/authorize"] = reptypes.ServiceRegistration{}
	s.GlobalState.Accounts["alice"] = reptypes.Account{Balance: 1000}
	s.GlobalState.Accounts["bob"] = reptypes.Account{Balance: 500}

	r1 := sign(t, g1, transferReport(roster, "alice", "bob", "100"))
	r2 := sign(t, g2, transferReport(roster, "alice", "bob", "100"))

	block := Block{
		Guarantees: []reptypes.WorkReport{r1, r2},
		Slot:       100,
	}
	Apply(block, s, pvm.LedgerEngine{})

	if len(s.Rho) != 0 || len(s.Omega) != 0 {
		t.Fatalf("expected rho and omega empty after the block, got rho=%d omega=%d", len(s.Rho), len(s.Omega))
	}
	if len(s.Xi) != 1 {
		t.Fatalf("expected one finalized report, got %d", len(s.Xi))
	}
	if s.GlobalState.Accounts["alice"].Balance != 900 {
		t.Fatalf("expected alice balance 900, got %d", s.GlobalState.Accounts["alice"].Balance)
	}
	if s.GlobalState.Accounts["bob"].Balance != 600 {
		t.Fatalf("expected bob balance 600, got %d", s.GlobalState.Accounts["bob"].Balance)
	}
}

// A same-block dependency: report B cites A's digest, admitted earlier in
// the same Guarantee batch, via currentBlockDigests.
func TestBlockApplyAdmitsSameBlockDependency(t *testing.T) {
	g1 := newGuarantor(t)
	roster := []reptypes.Identity{g1.identity}

	s := state.New()
	s.GlobalState.ServiceRegistry["svc.example/authorize"] = reptypes.ServiceRegistration{}
	s.GlobalState.Accounts["alice"] = reptypes.Account{Balance: 10}
	s.GlobalState.Accounts["bob"] = reptypes.Account{Balance: 10}

	a := sign(t, g1, transferReport(roster, "alice", "bob", "1"))
	aDigest, err := canonical.Digest(a)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	b := transferReport(roster, "bob", "carol", "1")
	b.Dependencies = []reptypes.Digest{aDigest}
	b = sign(t, g1, b)

	block := Block{Guarantees: []reptypes.WorkReport{a, b}, Slot: 100}
	digests := Apply(block, s, pvm.LedgerEngine{})

	if len(digests) != 2 {
		t.Fatalf("expected both reports admitted, got %d digests", len(digests))
	}
	// single guarantor with threshold 1 promotes both straight to omega, and
	// the accumulation sweep should finalize both (no dependency rejection).
	if len(s.PsiB) != 0 {
		t.Fatalf("expected no validation failures, got %d psi_b entries", len(s.PsiB))
	}
}

func TestBlockApplyRunsDisputesAfterGuaranteesAndAssurances(t *testing.T) {
	s := state.New()
	guarantor := reptypes.Identity("guarantor-1")
	var d reptypes.Digest
	d[0] = 0x01
	s.Omega[d] = &state.OmegaEntry{Report: reptypes.WorkReport{GuarantorPublicKey: guarantor}, Status: state.OmegaReady}

	block := Block{
		Assurances: []assurance.Assurance{{ReportHash: d, AffirmingParty: "peer-1"}},
		Disputes:   []dispute.Dispute{{DisputedDigestHash: d, DisputerPublicKey: "peer-2", Reason: "bad_output"}},
		Slot:       100,
	}
	Apply(block, s, pvm.LedgerEngine{})

	if _, ok := s.Omega[d]; ok {
		t.Fatal("expected dispute to remove the report from omega before accumulation runs")
	}
	if _, ok := s.Xi[d]; ok {
		t.Fatal("disputed report must never reach xi")
	}
}
