package reptypes

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Digest is a Work-Digest: the 32-byte SHA-256 hash over a report's
// canonical signable encoding (spec.md §4.1), rendered as 64 lowercase hex
// characters on the wire.
type Digest [32]byte

// ZeroDigest is the empty digest, used as a "no value" marker.
var ZeroDigest = Digest{}

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string { return d.Hex() }

func (d Digest) IsZero() bool { return d == ZeroDigest }

// DigestFromHex parses a 64-char lowercase hex string into a Digest.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("reptypes: invalid digest hex %q: %w", s, err)
	}
	if len(b) != len(d) {
		return d, fmt.Errorf("reptypes: digest must be %d bytes, got %d", len(d), len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Hex())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := DigestFromHex(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Identity is a guarantor's public key, base64-encoded per spec.md §3.
type Identity string

func (id Identity) String() string { return string(id) }
