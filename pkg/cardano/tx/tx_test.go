package tx

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

// sampleTx builds a minimal Conway-framed transaction: a body with one input
// and a fee, a witness set with a native script entry that must survive
// witness installation untouched, a validity flag and no auxiliary data.
func sampleTx(t *testing.T) ([]byte, []byte) {
	t.Helper()

	body := map[uint64]interface{}{
		0: []interface{}{[]interface{}{[]byte{0xaa, 0xbb}, uint64(1)}},
		2: uint64(170000),
	}
	bodyRaw, err := cbor.Marshal(body)
	require.NoError(t, err)

	witnessSet := map[uint64]interface{}{
		1: []interface{}{[]byte{0x01, 0x02}}, // native scripts, must be preserved
	}
	wsRaw, err := cbor.Marshal(witnessSet)
	require.NoError(t, err)

	trueRaw, err := cbor.Marshal(true)
	require.NoError(t, err)
	nullRaw, err := cbor.Marshal(nil)
	require.NoError(t, err)

	raw, err := cbor.Marshal([]cbor.RawMessage{bodyRaw, wsRaw, trueRaw, nullRaw})
	require.NoError(t, err)
	return raw, bodyRaw
}

func TestDecode(t *testing.T) {
	t.Run("conway framing", func(t *testing.T) {
		raw, _ := sampleTx(t)
		tx, err := Decode(raw)
		require.NoError(t, err)
		require.NotNil(t, tx)
	})

	t.Run("not an array", func(t *testing.T) {
		raw, err := cbor.Marshal(uint64(7))
		require.NoError(t, err)
		_, err = Decode(raw)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUnsupportedEra)
	})

	t.Run("pre-alonzo framing", func(t *testing.T) {
		body, _ := cbor.Marshal(map[uint64]interface{}{2: uint64(1)})
		ws, _ := cbor.Marshal(map[uint64]interface{}{})
		null, _ := cbor.Marshal(nil)
		raw, err := cbor.Marshal([]cbor.RawMessage{body, ws, null})
		require.NoError(t, err)
		_, err = Decode(raw)
		require.ErrorIs(t, err, ErrUnsupportedEra)
	})

	t.Run("validity flag not boolean", func(t *testing.T) {
		body, _ := cbor.Marshal(map[uint64]interface{}{2: uint64(1)})
		ws, _ := cbor.Marshal(map[uint64]interface{}{})
		num, _ := cbor.Marshal(uint64(1))
		null, _ := cbor.Marshal(nil)
		raw, err := cbor.Marshal([]cbor.RawMessage{body, ws, num, null})
		require.NoError(t, err)
		_, err = Decode(raw)
		require.ErrorIs(t, err, ErrUnsupportedEra)
	})

	t.Run("unknown witness set key", func(t *testing.T) {
		body, _ := cbor.Marshal(map[uint64]interface{}{2: uint64(1)})
		ws, _ := cbor.Marshal(map[uint64]interface{}{8: []interface{}{}})
		boolean, _ := cbor.Marshal(true)
		null, _ := cbor.Marshal(nil)
		raw, err := cbor.Marshal([]cbor.RawMessage{body, ws, boolean, null})
		require.NoError(t, err)
		_, err = Decode(raw)
		require.ErrorIs(t, err, ErrUnsupportedEra)
	})

	t.Run("body not a map", func(t *testing.T) {
		body, _ := cbor.Marshal([]interface{}{})
		ws, _ := cbor.Marshal(map[uint64]interface{}{})
		boolean, _ := cbor.Marshal(true)
		null, _ := cbor.Marshal(nil)
		raw, err := cbor.Marshal([]cbor.RawMessage{body, ws, boolean, null})
		require.NoError(t, err)
		_, err = Decode(raw)
		require.Error(t, err)
	})

	t.Run("null sections", func(t *testing.T) {
		body, _ := cbor.Marshal(map[uint64]interface{}{2: uint64(1)})
		ws, _ := cbor.Marshal(map[uint64]interface{}{})
		boolean, _ := cbor.Marshal(true)
		null, _ := cbor.Marshal(nil)

		for name, sections := range map[string][]cbor.RawMessage{
			"body":     {null, ws, boolean, null},
			"witness":  {body, null, boolean, null},
			"validity": {body, ws, null, null},
		} {
			t.Run(name, func(t *testing.T) {
				raw, err := cbor.Marshal(sections)
				require.NoError(t, err)
				_, err = Decode(raw)
				require.ErrorIs(t, err, ErrUnsupportedEra)
			})
		}
	})

	t.Run("garbage", func(t *testing.T) {
		for _, b := range [][]byte{nil, {}, {0xff}, {0x84, 0x01}} {
			_, err := Decode(b)
			require.Error(t, err)
		}
	})
}

func TestSetVKeyWitnesses(t *testing.T) {
	raw, bodyRaw := sampleTx(t)
	transaction, err := Decode(raw)
	require.NoError(t, err)

	w := VKeyWitness{
		VKey:      make([]byte, 32),
		Signature: make([]byte, 64),
	}
	require.NoError(t, transaction.SetVKeyWitnesses([]VKeyWitness{w}))

	out, err := transaction.Bytes()
	require.NoError(t, err)
	require.NotEqual(t, raw, out)

	// The re-serialized transaction keeps Conway framing.
	reparsed, err := Decode(out)
	require.NoError(t, err)

	// Body bytes are untouched.
	require.Equal(t, []byte(bodyRaw), []byte(reparsed.body))
	require.Equal(t, transaction.BodyHash(), reparsed.BodyHash())

	// The vkey witness entry is a tag 258 set with our single witness.
	var decodedWS map[uint64]cbor.RawMessage
	var sections []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(out, &sections))
	require.NoError(t, cbor.Unmarshal(sections[1], &decodedWS))

	var tag cbor.RawTag
	require.NoError(t, cbor.Unmarshal(decodedWS[0], &tag))
	require.EqualValues(t, 258, tag.Number)
	var witnesses []VKeyWitness
	require.NoError(t, cbor.Unmarshal(tag.Content, &witnesses))
	require.Len(t, witnesses, 1)
	require.Equal(t, w.VKey, witnesses[0].VKey)
	require.Equal(t, w.Signature, witnesses[0].Signature)

	// The pre-existing native script entry survives byte-for-byte.
	var origWS map[uint64]cbor.RawMessage
	var origSections []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(raw, &origSections))
	require.NoError(t, cbor.Unmarshal(origSections[1], &origWS))
	require.Equal(t, []byte(origWS[1]), []byte(decodedWS[1]))
}

func TestSetVKeyWitnessesReplaces(t *testing.T) {
	raw, _ := sampleTx(t)
	transaction, err := Decode(raw)
	require.NoError(t, err)

	first := VKeyWitness{VKey: make([]byte, 32), Signature: make([]byte, 64)}
	require.NoError(t, transaction.SetVKeyWitnesses([]VKeyWitness{first}))

	second := VKeyWitness{VKey: append(make([]byte, 31), 0x01), Signature: make([]byte, 64)}
	require.NoError(t, transaction.SetVKeyWitnesses([]VKeyWitness{second}))

	out, err := transaction.Bytes()
	require.NoError(t, err)

	var sections []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(out, &sections))
	var ws map[uint64]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(sections[1], &ws))
	var tag cbor.RawTag
	require.NoError(t, cbor.Unmarshal(ws[0], &tag))
	var witnesses []VKeyWitness
	require.NoError(t, cbor.Unmarshal(tag.Content, &witnesses))
	require.Len(t, witnesses, 1)
	require.Equal(t, second.VKey, witnesses[0].VKey)
}

func TestBytesDeterministic(t *testing.T) {
	raw, _ := sampleTx(t)
	transaction, err := Decode(raw)
	require.NoError(t, err)
	require.NoError(t, transaction.SetVKeyWitnesses([]VKeyWitness{
		{VKey: make([]byte, 32), Signature: make([]byte, 64)},
	}))

	out1, err := transaction.Bytes()
	require.NoError(t, err)
	out2, err := transaction.Bytes()
	require.NoError(t, err)
	require.Equal(t, out1, out2)
}
