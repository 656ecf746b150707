// Package repcrypto wraps the Ed25519 and SHA-256 primitives the Reports
// state machine treats as externally supplied (spec.md §6, "Consumed"). The
// wrapper shape is modeled directly on the teacher's
// crypto/ed25519/ed25519_nocgo.go, which is itself a thin pass-through to
// the standard library when no cgo-accelerated backend is built — the
// teacher never hand-rolls the primitive, and neither does this package.
package repcrypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// PublicKey and PrivateKey alias the standard library types, mirroring
// ed25519_nocgo.go's PublicKey/PrivateKey aliases.
type (
	PublicKey  = ed25519.PublicKey
	PrivateKey = ed25519.PrivateKey
)

// GenerateKey produces a new Ed25519 keypair.
func GenerateKey() (PublicKey, PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("repcrypto: generate key: %w", err)
	}
	return pub, priv, nil
}

// Sign signs message with privateKey.
func Sign(privateKey PrivateKey, message []byte) []byte {
	return ed25519.Sign(privateKey, message)
}

// Verify reports whether sig is a valid Ed25519 signature of message under
// publicKey. A malformed (wrong-length) key never panics; it simply fails
// verification. The stdlib's ed25519.Verify panics on such a key, so the
// length is checked here before calling it.
func Verify(publicKey PublicKey, message []byte, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(publicKey, message, sig)
}

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// EncodeBase64 / DecodeBase64 match the "base64" wire representation spec.md
// §3 specifies for guarantorSignature and guarantorPublicKey.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("repcrypto: invalid base64: %w", err)
	}
	return b, nil
}
