package keys

import (
	"crypto/ed25519"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the size of a verification key hash in bytes (blake2b-224).
const HashSize = 28

// PublicKey represents an ed25519 verification key.
type PublicKey struct {
	pub ed25519.PublicKey
}

// Bytes returns the raw 32-byte verification key.
func (p *PublicKey) Bytes() []byte {
	b := make([]byte, len(p.pub))
	copy(b, p.pub)
	return b
}

// Hash returns the blake2b-224 hash of the verification key, the form in
// which the ledger identifies key credentials.
func (p *PublicKey) Hash() []byte {
	h, _ := blake2b.New(HashSize, nil)
	h.Write(p.pub)
	return h.Sum(nil)
}

// HashString returns Hash as a hex string.
func (p *PublicKey) HashString() string {
	return hex.EncodeToString(p.Hash())
}

// Verify reports whether sig is a valid signature of msg by this key.
func (p *PublicKey) Verify(sig, msg []byte) bool {
	return ed25519.Verify(p.pub, sig, msg)
}
