package oracle

import (
	"encoding/hex"
	"fmt"

	"github.com/shiporacle/shiporacle/pkg/cardano/tx"
	"github.com/shiporacle/shiporacle/pkg/crypto/keys"
	"github.com/shiporacle/shiporacle/pkg/trp"
)

// bodyHashSize is the length of a transaction body hash in bytes.
const bodyHashSize = 32

// Signer witnesses unsigned transaction envelopes with the oracle key.
type Signer struct {
	privKey *keys.PrivateKey
}

// NewSigner returns a Signer owning the given key.
func NewSigner(privKey *keys.PrivateKey) *Signer {
	return &Signer{privKey: privKey}
}

// PublicKey returns the verification key matching the signing key.
func (s *Signer) PublicKey() *keys.PublicKey {
	return s.privKey.PublicKey()
}

// SignTx signs the envelope's body hash, installs the resulting witness as
// the sole vkey witness of the transaction and returns the re-serialized
// bytes. Every other transaction section is preserved as received. Any
// malformed input is an explicit error, a corrupted witness would just buy
// a ledger-side rejection.
func (s *Signer) SignTx(envelope *trp.TxEnvelope) ([]byte, error) {
	bodyHash, err := hex.DecodeString(envelope.Hash)
	if err != nil {
		return nil, fmt.Errorf("envelope hash is not hex: %w", err)
	}
	if len(bodyHash) != bodyHashSize {
		return nil, fmt.Errorf("envelope hash must be %d bytes, got %d", bodyHashSize, len(bodyHash))
	}

	raw, err := hex.DecodeString(envelope.Tx)
	if err != nil {
		return nil, fmt.Errorf("envelope tx is not hex: %w", err)
	}

	transaction, err := tx.Decode(raw)
	if err != nil {
		return nil, err
	}

	witness := tx.VKeyWitness{
		VKey:      s.privKey.PublicKey().Bytes(),
		Signature: s.privKey.Sign(bodyHash),
	}
	if err := transaction.SetVKeyWitnesses([]tx.VKeyWitness{witness}); err != nil {
		return nil, err
	}
	return transaction.Bytes()
}

// ErrUnsupportedEra is re-exported for callers that only import this
// package.
var ErrUnsupportedEra = tx.ErrUnsupportedEra
