/*
Package address parses and renders Cardano addresses from their raw on-chain
byte form.

Shelley addresses carry a header byte whose high nibble selects the payload
layout and whose low nibble is the network id; they render as bech32. Byron
bootstrap addresses are a CBOR structure rendered as base58.
*/
package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"
)

// Kind is the address payload layout.
type Kind uint8

// Address kinds. Base addresses carry payment and stake credentials, pointer
// addresses a payment credential plus a chain pointer to the stake
// registration, enterprise addresses a payment credential only and reward
// addresses a stake credential only.
const (
	Base Kind = iota
	Pointer
	Enterprise
	Reward
	Byron
)

const (
	credentialSize = 28

	mainnetID = 1
)

// ErrInvalidAddress is returned for byte strings that are not a valid
// address of any supported kind.
var ErrInvalidAddress = errors.New("invalid address bytes")

// Address is a validated Cardano address.
type Address struct {
	raw     []byte
	kind    Kind
	network uint8
	encoded string
}

// FromBytes parses and validates raw address bytes.
func FromBytes(b []byte) (*Address, error) {
	if len(b) == 0 {
		return nil, ErrInvalidAddress
	}

	header := b[0]
	kind, err := kindOf(header>>4, b)
	if err != nil {
		return nil, err
	}

	a := &Address{
		raw:     append([]byte(nil), b...),
		kind:    kind,
		network: header & 0x0f,
	}
	a.encoded, err = encode(a)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func kindOf(typ byte, b []byte) (Kind, error) {
	switch typ {
	case 0, 1, 2, 3:
		if len(b) != 1+2*credentialSize {
			return 0, fmt.Errorf("%w: base address must be %d bytes, got %d",
				ErrInvalidAddress, 1+2*credentialSize, len(b))
		}
		return Base, nil
	case 4, 5:
		if len(b) <= 1+credentialSize {
			return 0, fmt.Errorf("%w: pointer address too short", ErrInvalidAddress)
		}
		if err := checkPointer(b[1+credentialSize:]); err != nil {
			return 0, fmt.Errorf("%w: malformed pointer address: %s", ErrInvalidAddress, err)
		}
		return Pointer, nil
	case 6, 7:
		if len(b) != 1+credentialSize {
			return 0, fmt.Errorf("%w: enterprise address must be %d bytes, got %d",
				ErrInvalidAddress, 1+credentialSize, len(b))
		}
		return Enterprise, nil
	case 8:
		if !isByron(b) {
			return 0, fmt.Errorf("%w: malformed bootstrap address", ErrInvalidAddress)
		}
		return Byron, nil
	case 14, 15:
		if len(b) != 1+credentialSize {
			return 0, fmt.Errorf("%w: reward address must be %d bytes, got %d",
				ErrInvalidAddress, 1+credentialSize, len(b))
		}
		return Reward, nil
	}
	return 0, fmt.Errorf("%w: unknown header type %d", ErrInvalidAddress, typ)
}

// checkPointer validates the (slot, tx index, cert index) chain pointer that
// trails the payment credential: three variable-length naturals consuming
// the rest of the payload exactly.
func checkPointer(b []byte) error {
	off := 0
	for i := 0; i < 3; i++ {
		n, err := varNatLen(b[off:])
		if err != nil {
			return err
		}
		off += n
	}
	if off != len(b) {
		return errors.New("trailing pointer bytes")
	}
	return nil
}

func varNatLen(b []byte) (int, error) {
	for i, c := range b {
		if i >= 9 {
			break
		}
		if c&0x80 == 0 {
			return i + 1, nil
		}
	}
	return 0, errors.New("unterminated variable-length natural")
}

// isByron reports whether b is a CBOR bootstrap address wrapper:
// [tag 24 (address payload bytes), crc checksum].
func isByron(b []byte) bool {
	var parts []interface{}
	if err := cbor.Unmarshal(b, &parts); err != nil || len(parts) != 2 {
		return false
	}
	tag, ok := parts[0].(cbor.Tag)
	if !ok || tag.Number != 24 {
		return false
	}
	if _, ok := tag.Content.([]byte); !ok {
		return false
	}
	_, ok = parts[1].(uint64)
	return ok
}

func encode(a *Address) (string, error) {
	if a.kind == Byron {
		return base58.Encode(a.raw), nil
	}

	hrp := "addr"
	if a.kind == Reward {
		hrp = "stake"
	}
	if a.network != mainnetID {
		hrp += "_test"
	}

	conv, err := bech32.ConvertBits(a.raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	s, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	return s, nil
}

// Bytes returns a copy of the raw address bytes.
func (a *Address) Bytes() []byte {
	return append([]byte(nil), a.raw...)
}

// Kind returns the address payload layout.
func (a *Address) Kind() Kind {
	return a.kind
}

// Network returns the network id nibble. Byron addresses carry no network
// byte, for them it is the low nibble of the first CBOR byte and is not
// meaningful.
func (a *Address) Network() uint8 {
	return a.network
}

// String renders the address in its canonical text form.
func (a *Address) String() string {
	return a.encoded
}
