package guarantee

import (
	"testing"

	"github.com/tos-network/reports/canonical"
	"github.com/tos-network/reports/repcrypto"
	"github.com/tos-network/reports/reperrors"
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

func baseReport(roster []reptypes.Identity) reptypes.WorkReport {
	return reptypes.WorkReport{
		WorkPackage: reptypes.WorkPackage{
			AuthorizationToken: "tok",
			AuthorizationServiceDetails: reptypes.AuthorizationServiceDetails{
				URL: "svc.example/authorize",
			},
			Context: "ctx-1",
			WorkItems: []reptypes.WorkItem{
				{ID: "w1", ProgramHash: "transfer", InputData: "alice:bob:100", GasLimit: 100},
			},
		},
		RefinementContext: reptypes.RefinementContext{
			AnchorBlockNumber: 90,
			CurrentSlot:       100,
			CurrentEpoch:      0,
			CurrentGuarantors: roster,
		},
		GasUsed:   10,
		CoreIndex: 0,
		Slot:      100,
	}
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

func newRegisteredState() *state.OnchainState {
	s := state.New()
	s.GlobalState.ServiceRegistry["svc.example/authorize"] = reptypes.ServiceRegistration{}
	return s
}

// scenario 1: happy path — N=2, both sign, promotes to omega.
func TestProcessHappyPathPromotes(t *testing.T) {
	g1, g2 := newGuarantor(t), newGuarantor(t)
	roster := []reptypes.Identity{g1.identity, g2.identity}
	s := newRegisteredState()

	r1 := sign(t, g1, baseReport(roster))
	if promoted := Process(r1, s, 100, nil); promoted {
		t.Fatal("should not promote after first signature")
	}
	d, err := canonical.Digest(r1)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if _, ok := s.Rho[d]; !ok {
		t.Fatal("expected report pending in rho after first signature")
	}

	r2 := sign(t, g2, baseReport(roster))
	if promoted := Process(r2, s, 100, nil); !promoted {
		t.Fatal("expected promotion to omega on second signature")
	}
	if _, ok := s.Rho[d]; ok {
		t.Fatal("rho should be empty after promotion")
	}
	if _, ok := s.Omega[d]; !ok {
		t.Fatal("expected report in omega after promotion")
	}
}

// scenario 2: threshold miss — N=3, one signature leaves it pending.
func TestProcessThresholdMiss(t *testing.T) {
	g1, g2, g3 := newGuarantor(t), newGuarantor(t), newGuarantor(t)
	roster := []reptypes.Identity{g1.identity, g2.identity, g3.identity}
	s := newRegisteredState()

	r := sign(t, g1, baseReport(roster))
	if promoted := Process(r, s, 100, nil); promoted {
		t.Fatal("one of three signatures must not promote")
	}
	if len(s.Omega) != 0 {
		t.Fatal("omega must remain empty")
	}
	if len(s.Rho) != 1 {
		t.Fatalf("expected one pending entry, got %d", len(s.Rho))
	}
}

// scenario 3: anchor too old routes to psi_b and charges psi_o.
func TestProcessAnchorTooOldRejected(t *testing.T) {
	g1 := newGuarantor(t)
	roster := []reptypes.Identity{g1.identity}
	s := newRegisteredState()

	r := baseReport(roster)
	r.RefinementContext.AnchorBlockNumber = 1
	r = sign(t, g1, r)

	if promoted := Process(r, s, 100, nil); promoted {
		t.Fatal("stale-anchor report must not promote")
	}
	d, err := canonical.Digest(r)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	bad, ok := s.PsiB[d]
	if !ok {
		t.Fatal("expected psi_b entry for rejected report")
	}
	if bad.Reason != string(reperrors.TagAnchorNotRecent) {
		t.Fatalf("expected tag %s, got %s", reperrors.TagAnchorNotRecent, bad.Reason)
	}
	rec, ok := s.PsiO[g1.identity]
	if !ok || rec.DisputeCount != 1 {
		t.Fatalf("expected offender charge of 1, got %+v", rec)
	}
}

func TestProcessBadSignatureRejected(t *testing.T) {
	g1 := newGuarantor(t)
	roster := []reptypes.Identity{g1.identity}
	s := newRegisteredState()

	r := sign(t, g1, baseReport(roster))
	r.WorkPackage.Context = "tampered-after-signing"

	if promoted := Process(r, s, 100, nil); promoted {
		t.Fatal("tampered report must not promote")
	}
	if len(s.PsiB) != 1 {
		t.Fatalf("expected one psi_b entry, got %d", len(s.PsiB))
	}
}

// Idempotent endorsement invariant: re-processing the same (digest, identity)
// leaves receivedSignatures unchanged in size.
func TestProcessIdempotentEndorsement(t *testing.T) {
	g1, g2 := newGuarantor(t), newGuarantor(t)
	roster := []reptypes.Identity{g1.identity, g2.identity}
	s := newRegisteredState()

	r := sign(t, g1, baseReport(roster))
	Process(r, s, 100, nil)
	Process(r, s, 100, nil) // replay of the same endorsement

	d, err := canonical.Digest(r)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	entry, ok := s.Rho[d]
	if !ok {
		t.Fatal("expected pending entry")
	}
	if entry.ReceivedSignatures.Cardinality() != 1 {
		t.Fatalf("expected exactly one signature after replay, got %d", entry.ReceivedSignatures.Cardinality())
	}
}
