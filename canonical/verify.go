package canonical

import (
	"github.com/tos-network/reports/repcrypto"
	"github.com/tos-network/reports/reptypes"
)

// VerifySignature checks spec.md §3's invariant:
// verify(signable(report), signature, publicKey).
func VerifySignature(report reptypes.WorkReport) (bool, error) {
	msg, err := Signable(report)
	if err != nil {
		return false, err
	}
	sig, err := repcrypto.DecodeBase64(report.GuarantorSignature)
	if err != nil {
		return false, nil // malformed signature encoding is a verification failure, not an error
	}
	pub, err := repcrypto.DecodeBase64(string(report.GuarantorPublicKey))
	if err != nil {
		return false, nil
	}
	return repcrypto.Verify(pub, msg, sig), nil
}
