package oracle

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/shiporacle/shiporacle/pkg/cardano/address"
	"github.com/shiporacle/shiporacle/pkg/cardano/plutus"
)

// DatumFromCBOR decodes a tracking datum out of a hex-encoded inline datum.
// The expected shape is a Plutus constructor with three byte-string fields:
// carrier, tracking number and outbox address bytes. It returns nil for
// anything else, the oracle address routinely holds unrelated outputs and a
// non-decodable datum is not an error. Decoding never produces a partially
// populated record.
func DatumFromCBOR(datumHex string) *TrackingDatum {
	raw, err := hex.DecodeString(datumHex)
	if err != nil {
		raw = nil
	}

	constr, err := plutus.DecodeConstr(raw)
	if err != nil {
		return nil
	}

	carrier, ok := constr.BytesField(0)
	if !ok {
		return nil
	}
	trackingNumber, ok := constr.BytesField(1)
	if !ok {
		return nil
	}
	addrBytes, ok := constr.BytesField(2)
	if !ok {
		return nil
	}
	outbox, err := address.FromBytes(addrBytes)
	if err != nil {
		return nil
	}

	return &TrackingDatum{
		Carrier:        lossyString(carrier),
		TrackingNumber: lossyString(trackingNumber),
		OutboxAddress:  outbox,
	}
}

// lossyString degrades malformed UTF-8 to an empty string instead of
// failing the decode.
func lossyString(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}
