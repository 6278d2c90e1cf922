// Package keys wraps the ed25519 key material used to witness oracle
// transactions.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// PrivateKey represents an oracle signing key and provides a high level API
// around the ed25519 seed it is derived from.
type PrivateKey struct {
	priv ed25519.PrivateKey
}

// NewPrivateKeyFromHex returns a PrivateKey created from the given
// hex-encoded 32-byte seed.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a PrivateKey from the given 32-byte seed.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"invalid key length: expected %d bytes got %d", ed25519.SeedSize, len(b),
		)
	}
	return &PrivateKey{priv: ed25519.NewKeyFromSeed(b)}, nil
}

// Sign signs the given message and returns a 64-byte detached signature.
// Signing is deterministic, the same message always yields the same bytes.
func (p *PrivateKey) Sign(msg []byte) []byte {
	return ed25519.Sign(p.priv, msg)
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := p.priv.Public().(ed25519.PublicKey)
	return &PublicKey{pub: pub}
}
