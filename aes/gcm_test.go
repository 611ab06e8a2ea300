// gcm_test.go - AES-GCM tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package aes

import (
	runtimeAES "crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// The classic GCM test cases 1 and 2: zero key, zero nonce.
func TestGCMKAT(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 16)
	nonce := make([]byte, 12)
	c, err := New(key)
	require.NoError(err)
	g := NewGCM(c)

	sealed := g.Seal(nil, nonce, nil, nil)
	require.Equal(mustUnhex(t, "58e2fccefa7e3061367f1d57a4e7455a"),
		sealed, "empty plaintext tag")

	sealed = g.Seal(nil, nonce, make([]byte, 16), nil)
	require.Equal(mustUnhex(t, "0388dace60b6a392f328c2b971b2fe78"),
		sealed[:16], "single-block ciphertext")
	require.Equal(mustUnhex(t, "ab6e47d42cec13bdf53a67b21257bddf"),
		sealed[16:], "single-block tag")
}

func TestGCMAgainstRuntime(t *testing.T) {
	require := require.New(t)

	for _, keyLen := range []int{16, 24, 32} {
		for i := 0; i < 40; i++ {
			key := make([]byte, keyLen)
			nonce := make([]byte, 12)
			msg := make([]byte, i*5)
			aad := make([]byte, i%23)
			rand.Read(key)
			rand.Read(nonce)
			rand.Read(msg)
			rand.Read(aad)

			c, err := New(key)
			require.NoError(err)
			got := NewGCM(c).Seal(nil, nonce, msg, aad)

			ref, err := runtimeAES.NewCipher(key)
			require.NoError(err)
			refGCM, err := cipher.NewGCM(ref)
			require.NoError(err)
			require.Equal(refGCM.Seal(nil, nonce, msg, aad), got,
				"keyLen %d case %d", keyLen, i)
		}
	}
}

func TestGCMLongAndShortNonces(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 16)
	msg := make([]byte, 61)
	aad := make([]byte, 9)
	rand.Read(key)
	rand.Read(msg)
	rand.Read(aad)

	c, err := New(key)
	require.NoError(err)
	ref, err := runtimeAES.NewCipher(key)
	require.NoError(err)

	for _, nonceLen := range []int{4, 8, 13, 16, 60} {
		nonce := make([]byte, nonceLen)
		rand.Read(nonce)

		got := NewGCM(c).Seal(nil, nonce, msg, aad)

		refGCM, err := cipher.NewGCMWithNonceSize(ref, nonceLen)
		require.NoError(err)
		require.Equal(refGCM.Seal(nil, nonce, msg, aad), got,
			"nonce %d", nonceLen)

		opened, err := NewGCM(c).Open(nil, nonce, got, aad)
		require.NoError(err)
		require.Equal(msg, opened, "round trip nonce %d", nonceLen)
	}

	require.PanicsWithValue(ErrInvalidGCMNonce, func() {
		NewGCM(c).Seal(nil, make([]byte, 3), msg, aad)
	}, "sub-4-byte nonce")
}

func TestGCMTamperDetection(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 32)
	nonce := make([]byte, 12)
	rand.Read(key)
	rand.Read(nonce)
	c, err := New(key)
	require.NoError(err)
	g := NewGCM(c)

	msg := []byte("integrity matters")
	aad := []byte("framing")
	sealed := g.Seal(nil, nonce, msg, aad)

	for i := range sealed {
		bad := append([]byte{}, sealed...)
		bad[i] ^= 0x40
		_, err := g.Open(nil, nonce, bad, aad)
		require.ErrorIs(err, ErrGCMOpen, "bit %d", i)
	}

	badAAD := append([]byte{}, aad...)
	badAAD[2] ^= 1
	_, err = g.Open(nil, nonce, sealed, badAAD)
	require.ErrorIs(err, ErrGCMOpen, "tampered AAD")
}
