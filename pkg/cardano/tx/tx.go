/*
Package tx holds Conway-era Cardano transactions for witness editing.

A transaction is kept as its raw CBOR sections so that installing witnesses
re-serializes the witness set only: the body, validity flag and auxiliary
data go back on the wire byte-for-byte as they were received.
*/
package tx

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// A Conway transaction is framed as [body, witness_set, is_valid,
// auxiliary_data] with map-coded body and witness set. The witness set may
// only carry keys 0..7 (vkey witnesses through plutus v3 scripts).
const (
	txSections = 4

	vkeyWitnessKey     = 0
	maxWitnessSetKey   = 7
	nonEmptySetCBORTag = 258

	cborFalse = 0xf4
	cborTrue  = 0xf5
)

// ErrUnsupportedEra is returned when transaction bytes are not framed in the
// one supported era.
var ErrUnsupportedEra = errors.New("unsupported transaction era")

// encMode uses deterministic map ordering so re-serialized witness sets are
// stable.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Sort: cbor.SortCoreDeterministic}.EncMode()
	if err != nil {
		panic(err)
	}
}

type (
	// Transaction is a decoded Conway-era transaction. Sections other than
	// the witness set are retained as raw CBOR.
	Transaction struct {
		body       cbor.RawMessage
		witnessSet map[uint64]cbor.RawMessage
		isValid    cbor.RawMessage
		auxData    cbor.RawMessage
	}

	// VKeyWitness is a verification key witness: the key and its signature
	// over the transaction body hash.
	VKeyWitness struct {
		_         struct{} `cbor:",toarray"`
		VKey      []byte
		Signature []byte
	}
)

// Decode parses raw transaction bytes. Transactions not in Conway framing
// are rejected with ErrUnsupportedEra, structurally broken ones with a
// descriptive error.
func Decode(raw []byte) (*Transaction, error) {
	var sections []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("transaction is not a CBOR array: %w", err)
	}
	if len(sections) != txSections {
		return nil, fmt.Errorf("%w: %d top-level sections", ErrUnsupportedEra, len(sections))
	}

	// CBOR null decodes into a nil map without error, so nil is checked
	// explicitly for both map sections.
	var body map[uint64]cbor.RawMessage
	if err := cbor.Unmarshal(sections[0], &body); err != nil {
		return nil, fmt.Errorf("invalid transaction body: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: body is not a map", ErrUnsupportedEra)
	}

	var witnessSet map[uint64]cbor.RawMessage
	if err := cbor.Unmarshal(sections[1], &witnessSet); err != nil {
		return nil, fmt.Errorf("invalid witness set: %w", err)
	}
	if witnessSet == nil {
		return nil, fmt.Errorf("%w: witness set is not a map", ErrUnsupportedEra)
	}
	for k := range witnessSet {
		if k > maxWitnessSetKey {
			return nil, fmt.Errorf("%w: witness set key %d", ErrUnsupportedEra, k)
		}
	}

	if v := sections[2]; len(v) != 1 || (v[0] != cborFalse && v[0] != cborTrue) {
		return nil, fmt.Errorf("%w: validity flag is not a boolean", ErrUnsupportedEra)
	}

	return &Transaction{
		body:       sections[0],
		witnessSet: witnessSet,
		isValid:    sections[2],
		auxData:    sections[3],
	}, nil
}

// SetVKeyWitnesses replaces the verification key witnesses with ws. Existing
// vkey witnesses are dropped, all other witness set entries are kept as
// received.
func (t *Transaction) SetVKeyWitnesses(ws []VKeyWitness) error {
	raw, err := encMode.Marshal(cbor.Tag{Number: nonEmptySetCBORTag, Content: ws})
	if err != nil {
		return fmt.Errorf("unable to encode vkey witnesses: %w", err)
	}
	t.witnessSet[vkeyWitnessKey] = raw
	return nil
}

// BodyHash returns the blake2b-256 hash of the raw body section, the message
// a vkey witness signs.
func (t *Transaction) BodyHash() []byte {
	h := blake2b.Sum256(t.body)
	return h[:]
}

// Bytes re-serializes the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	witnessSet, err := encMode.Marshal(t.witnessSet)
	if err != nil {
		return nil, fmt.Errorf("unable to encode witness set: %w", err)
	}
	return encMode.Marshal([]cbor.RawMessage{t.body, witnessSet, t.isValid, t.auxData})
}
