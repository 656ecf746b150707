package canonical

import (
	"strings"
	"testing"

	"github.com/tos-network/reports/repcrypto"
	"github.com/tos-network/reports/reptypes"
)

func newTestReport(t *testing.T, guarantorPub reptypes.Identity) reptypes.WorkReport {
	t.Helper()
	return reptypes.WorkReport{
		WorkPackage: reptypes.WorkPackage{
			AuthorizationToken: "tok",
			AuthorizationServiceDetails: reptypes.AuthorizationServiceDetails{
				Host: "svc.example", URL: "svc.example/authorize", Function: "check",
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
			CurrentGuarantors: []reptypes.Identity{guarantorPub, "peer-2"},
		},
		GasUsed:            10,
		GuarantorPublicKey: guarantorPub,
		CoreIndex:          0,
		Slot:               100,
	}
}

func signReport(t *testing.T, report reptypes.WorkReport, priv repcrypto.PrivateKey) reptypes.WorkReport {
	t.Helper()
	msg, err := Signable(report)
	if err != nil {
		t.Fatalf("Signable: %v", err)
	}
	report.GuarantorSignature = repcrypto.EncodeBase64(repcrypto.Sign(priv, msg))
	return report
}

func TestDigestStableUnderSignatureReplacement(t *testing.T) {
	pub, priv, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	guarantor := reptypes.Identity(repcrypto.EncodeBase64(pub))

	r1 := signReport(t, newTestReport(t, guarantor), priv)

	_, priv2, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	r2 := signReport(t, newTestReport(t, guarantor), priv2)

	d1, err := Digest(r1)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, err := Digest(r2)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("digest changed with signature: %s != %s", d1.Hex(), d2.Hex())
	}
}

func TestDigestStableAcrossDistinctGuarantors(t *testing.T) {
	pub1, priv1, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pub2, priv2, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	guarantor1 := reptypes.Identity(repcrypto.EncodeBase64(pub1))
	guarantor2 := reptypes.Identity(repcrypto.EncodeBase64(pub2))

	base := newTestReport(t, guarantor1)
	base.RefinementContext.CurrentGuarantors = []reptypes.Identity{guarantor1, guarantor2}

	r1 := signReport(t, base, priv1)
	r2 := base
	r2.GuarantorPublicKey = guarantor2
	r2 = signReport(t, r2, priv2)

	d1, err := Digest(r1)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	d2, err := Digest(r2)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("two guarantors endorsing the same report got different digests: %s != %s", d1.Hex(), d2.Hex())
	}
}

func TestSignableOmitsSignatureField(t *testing.T) {
	pub, priv, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	guarantor := reptypes.Identity(repcrypto.EncodeBase64(pub))
	r := signReport(t, newTestReport(t, guarantor), priv)

	signable, err := Signable(r)
	if err != nil {
		t.Fatalf("Signable: %v", err)
	}
	full, err := Full(r)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if string(signable) == string(full) {
		t.Fatal("signable and full encodings must differ once a signature is set")
	}
	if strings.Contains(string(signable), `"guarantorSignature"`) {
		t.Fatalf("signable encoding must not carry the signature field, got %s", signable)
	}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	pub, priv, err := repcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	guarantor := reptypes.Identity(repcrypto.EncodeBase64(pub))
	r := signReport(t, newTestReport(t, guarantor), priv)

	ok, err := VerifySignature(r)
	if err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}

	r.WorkPackage.Context = "tampered"
	ok, err = VerifySignature(r)
	if err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
	if ok {
		t.Fatal("expected tampered report to fail verification")
	}
}
