// keys_test.go - Container tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cryptkit

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCache struct{ wiped bool }

func (f *fakeCache) Zeroize() { f.wiped = true }

func TestSecretKeyLifecycle(t *testing.T) {
	require := require.New(t)

	raw := make([]byte, 32)
	rand.Read(raw)
	k := NewSecretKey(raw)
	require.Equal(raw, k.Bytes(), "owned copy")

	// The key owns its copy; mutating the source must not reach it.
	raw[0] ^= 0xff
	require.NotEqual(raw[0], k.Bytes()[0], "ownership")

	other := NewSecretKey(k.Bytes())
	require.True(k.Equal(other), "equality")
	require.False(k.Equal(NewSecretKey([]byte{1})), "length mismatch")

	cache := &fakeCache{}
	k.AttachCache(cache)
	k.Zeroize()
	require.True(cache.wiped, "attached cache wiped with the key")
	require.Panics(func() { k.Bytes() }, "use after zeroize")
}

func TestPublicKeyValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewPublicKey(KeyPairX25519, make([]byte, 31))
	require.ErrorIs(err, ErrInvalidArgument, "short x25519 key")

	pk, err := NewPublicKey(KeyPairEd25519, make([]byte, 32))
	require.NoError(err)
	same, err := NewPublicKey(KeyPairEd25519, make([]byte, 32))
	require.NoError(err)
	require.True(pk.Equal(same), "equality")

	asX, err := NewPublicKey(KeyPairX25519, make([]byte, 32))
	require.NoError(err)
	require.False(pk.Equal(asX), "type-tagged inequality")

	_, err = NewPublicKey(KeyPairP256, make([]byte, 65))
	require.NoError(err, "P-256 container length")
}

func TestSecretBoxConcat(t *testing.T) {
	require := require.New(t)

	box := &SecretBox{
		Ciphertext: []byte{1, 2, 3, 4, 5},
		Nonce:      []byte{9, 9, 9},
		Mac:        Mac{7, 7},
	}
	raw := box.Concat()
	back, err := ParseSecretBox(raw, 3, 2)
	require.NoError(err)
	require.Equal(box.Ciphertext, back.Ciphertext)
	require.Equal(box.Nonce, back.Nonce)
	require.Equal(box.Mac, back.Mac)

	_, err = ParseSecretBox([]byte{1}, 3, 2)
	require.ErrorIs(err, ErrInvalidArgument, "short input")
}

func TestMacEqual(t *testing.T) {
	require := require.New(t)

	require.True(Mac{1, 2}.Equal(Mac{1, 2}))
	require.False(Mac{1, 2}.Equal(Mac{1}))
	require.False(Mac{1, 2}.Equal(Mac{1, 3}))
}
