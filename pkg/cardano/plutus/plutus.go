/*
Package plutus decodes Plutus data values out of their CBOR representation.

Only the constructor form is modelled, which is the shape script datums take
on chain: a CBOR tag identifying the constructor alternative wrapping an
ordered array of fields.
*/
package plutus

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Constructor alternatives are spread over three tag ranges: 121..127 for
// alternatives 0..6, 1280..1400 for alternatives 7..127 and the general
// form 102 carrying [alternative, [fields]] for everything else.
const (
	compactBaseTag  = 121
	compactLimitTag = 127
	rangeBaseTag    = 1280
	rangeLimitTag   = 1400
	generalFormTag  = 102
)

// ErrNotConstr is returned when CBOR bytes hold a well-formed value that is
// not a Plutus constructor.
var ErrNotConstr = errors.New("not a plutus data constructor")

// Constr is a decoded Plutus data constructor.
type Constr struct {
	// Alternative is the constructor index.
	Alternative uint64
	// Fields holds the decoded field values in order. Byte strings decode
	// to []byte, unsigned integers to uint64, nested constructors to
	// cbor.Tag.
	Fields []interface{}
}

// DecodeConstr decodes a single Plutus data constructor from b. It never
// panics, any malformed or non-constructor input yields an error.
func DecodeConstr(b []byte) (*Constr, error) {
	var v interface{}
	if err := cbor.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("invalid plutus data CBOR: %w", err)
	}

	tag, ok := v.(cbor.Tag)
	if !ok {
		return nil, ErrNotConstr
	}

	switch {
	case tag.Number >= compactBaseTag && tag.Number <= compactLimitTag:
		fields, ok := tag.Content.([]interface{})
		if !ok {
			return nil, ErrNotConstr
		}
		return &Constr{Alternative: tag.Number - compactBaseTag, Fields: fields}, nil
	case tag.Number >= rangeBaseTag && tag.Number <= rangeLimitTag:
		fields, ok := tag.Content.([]interface{})
		if !ok {
			return nil, ErrNotConstr
		}
		return &Constr{Alternative: tag.Number - rangeBaseTag + 7, Fields: fields}, nil
	case tag.Number == generalFormTag:
		pair, ok := tag.Content.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, ErrNotConstr
		}
		alt, ok := pair[0].(uint64)
		if !ok {
			return nil, ErrNotConstr
		}
		fields, ok := pair[1].([]interface{})
		if !ok {
			return nil, ErrNotConstr
		}
		return &Constr{Alternative: alt, Fields: fields}, nil
	}
	return nil, ErrNotConstr
}

// BytesField returns field i as a byte string. The second return value is
// false when the field is missing or is not a byte string.
func (c *Constr) BytesField(i int) ([]byte, bool) {
	if i < 0 || i >= len(c.Fields) {
		return nil, false
	}
	b, ok := c.Fields[i].([]byte)
	return b, ok
}
