// chacha20poly1305_test.go - AEAD tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package chacha20poly1305

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	xchachapoly "golang.org/x/crypto/chacha20poly1305"
)

func mustUnhex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// RFC 7539 §2.8.2, the sunscreen AEAD vector.
func TestRFC7539KAT(t *testing.T) {
	require := require.New(t)

	key := mustUnhex(t, "808182838485868788898a8b8c8d8e8f909192939495969798999a9b9c9d9e9f")
	nonce := mustUnhex(t, "070000004041424344454647")
	aad := mustUnhex(t, "50515253c0c1c2c3c4c5c6c7")
	plaintext := []byte("Ladies and Gentlemen of the class of '99: If I could offer you only one tip for the future, sunscreen would be it.")

	expectCT := mustUnhex(t,
		"d31a8d34648e60db7b86afbc53ef7ec2a4aded51296e08fea9e2b5a736ee62d6"+
			"3dbea45e8ca9671282fafb69da92728b1a71de0a9e060b2905d6a5b67ecd3b36"+
			"92ddbd7f2d778b8c9803aee328091b58fab324e4fad675945585808b4831d7bc"+
			"3ff4def08e4b7a9de576d26586cec64b6116")
	expectTag := mustUnhex(t, "1ae10b594f09e26a7e902ecbd0600691")

	aead := New(key)
	require.Equal(NonceSize, aead.NonceSize(), "NonceSize()")
	require.Equal(TagSize, aead.Overhead(), "Overhead()")

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	require.Equal(expectCT, sealed[:len(plaintext)], "ciphertext")
	require.Equal(expectTag, sealed[len(plaintext):], "tag")

	opened, err := aead.Open(nil, nonce, sealed, aad)
	require.NoError(err, "Open")
	require.Equal(plaintext, opened, "round trip")
}

func TestTamperDetection(t *testing.T) {
	require := require.New(t)

	var key [KeySize]byte
	var nonce [NonceSize]byte
	rand.Read(key[:])
	rand.Read(nonce[:])
	aead := New(key[:])

	msg := []byte("tamper detection payload")
	aad := []byte("header")
	sealed := aead.Seal(nil, nonce[:], msg, aad)

	// Flipping any bit of ciphertext or tag must fail authentication.
	for i := 0; i < len(sealed); i++ {
		bad := append([]byte{}, sealed...)
		bad[i] ^= 0x01
		_, err := aead.Open(nil, nonce[:], bad, aad)
		require.ErrorIs(err, ErrOpen, "ciphertext bit %d", i)
	}

	// Flipping AAD or nonce bits likewise.
	badAAD := append([]byte{}, aad...)
	badAAD[0] ^= 0x80
	_, err := aead.Open(nil, nonce[:], sealed, badAAD)
	require.ErrorIs(err, ErrOpen, "tampered AAD")

	badNonce := nonce
	badNonce[11] ^= 0x01
	_, err = aead.Open(nil, badNonce[:], sealed, aad)
	require.ErrorIs(err, ErrOpen, "tampered nonce")
}

func TestAgainstOracle(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 100; i++ {
		key := make([]byte, KeySize)
		nonce := make([]byte, NonceSize)
		msg := make([]byte, i*3)
		aad := make([]byte, i%29)
		rand.Read(key)
		rand.Read(nonce)
		rand.Read(msg)
		rand.Read(aad)

		got := New(key).Seal(nil, nonce, msg, aad)

		ref, err := xchachapoly.New(key)
		require.NoError(err)
		require.Equal(ref.Seal(nil, nonce, msg, aad), got, "case %d", i)
	}
}

func TestXChaChaAgainstOracle(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 50; i++ {
		key := make([]byte, KeySize)
		nonce := make([]byte, NonceSizeX)
		msg := make([]byte, 7*i)
		aad := make([]byte, i%17)
		rand.Read(key)
		rand.Read(nonce)
		rand.Read(msg)
		rand.Read(aad)

		aead := NewX(key)
		require.Equal(NonceSizeX, aead.NonceSize(), "NonceSize()")
		got := aead.Seal(nil, nonce, msg, aad)

		ref, err := xchachapoly.NewX(key)
		require.NoError(err)
		require.Equal(ref.Seal(nil, nonce, msg, aad), got, "case %d", i)

		opened, err := aead.Open(nil, nonce, got, aad)
		require.NoError(err)
		require.Equal(msg, opened, "round trip %d", i)
	}
}

func TestAPIMisusePanics(t *testing.T) {
	require := require.New(t)

	require.PanicsWithValue(ErrInvalidKeySize, func() { New(make([]byte, 16)) })
	aead := New(make([]byte, KeySize))
	require.PanicsWithValue(ErrInvalidNonceSize, func() {
		aead.Seal(nil, make([]byte, 8), nil, nil)
	})
}
