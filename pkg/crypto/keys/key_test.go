package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSeedHex = "8f7a3b5d1e9c2a4f6b8d0e2c4a6f8b1d3e5c7a9f1b3d5e7c9a1f3b5d7e9c2a4f"

func TestNewPrivateKeyFromHex(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		key, err := NewPrivateKeyFromHex(testSeedHex)
		require.NoError(t, err)
		require.NotNil(t, key)
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := NewPrivateKeyFromHex("not-a-hex-string")
		require.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := NewPrivateKeyFromHex("deadbeef")
		require.Error(t, err)

		_, err = NewPrivateKeyFromHex(testSeedHex + "00")
		require.Error(t, err)
	})
}

func TestSignDeterministic(t *testing.T) {
	key, err := NewPrivateKeyFromHex(testSeedHex)
	require.NoError(t, err)

	msg := []byte(strings.Repeat("x", 32))
	sig1 := key.Sign(msg)
	sig2 := key.Sign(msg)
	require.Equal(t, sig1, sig2)
	require.Len(t, sig1, ed25519.SignatureSize)
	require.True(t, key.PublicKey().Verify(sig1, msg))
	require.False(t, key.PublicKey().Verify(sig1, []byte("other message")))
}

func TestPublicKey(t *testing.T) {
	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)
	key, err := NewPrivateKeyFromBytes(seed)
	require.NoError(t, err)

	pub := key.PublicKey()
	require.Equal(t, []byte(ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)), pub.Bytes())
	require.Len(t, pub.Hash(), HashSize)
	require.Equal(t, hex.EncodeToString(pub.Hash()), pub.HashString())
	// Hash is a function of the key only.
	require.Equal(t, pub.Hash(), key.PublicKey().Hash())
}
