// blake2b_test.go - BLAKE2b tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package blake2b

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	xblake2b "golang.org/x/crypto/blake2b"
)

func TestKAT(t *testing.T) {
	require := require.New(t)

	// RFC 7693 appendix A.
	expect, err := hex.DecodeString(
		"ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d1" +
			"7d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923")
	require.NoError(err)
	got := Sum512([]byte("abc"))
	require.Equal(expect, got[:], "BLAKE2b-512(abc)")
}

func TestParameters(t *testing.T) {
	require := require.New(t)

	_, err := New(0, nil)
	require.ErrorIs(err, ErrInvalidDigestSize, "size 0")
	_, err = New(65, nil)
	require.ErrorIs(err, ErrInvalidDigestSize, "size 65")
	_, err = New(32, make([]byte, 65))
	require.ErrorIs(err, ErrInvalidKeySize, "key 65")
}

func TestKeyedAndSizedAgainstOracle(t *testing.T) {
	require := require.New(t)

	for _, keyLen := range []int{0, 1, 31, 32, 64} {
		key := make([]byte, keyLen)
		rand.Read(key)
		for _, size := range []int{1, 20, 32, 48, 64} {
			for _, msgLen := range []int{0, 1, 127, 128, 129, 1025} {
				msg := make([]byte, msgLen)
				rand.Read(msg)

				d, err := New(size, key)
				require.NoError(err)
				d.Write(msg)
				got := d.Sum(nil)

				ref, err := xblake2b.New(size, key)
				require.NoError(err)
				ref.Write(msg)
				require.Equal(ref.Sum(nil), got,
					"key %d size %d msg %d", keyLen, size, msgLen)
			}
		}
	}
}

func TestStreamingEquivalence(t *testing.T) {
	require := require.New(t)

	msg := make([]byte, 1000)
	rand.Read(msg)
	oneShot := Sum512(msg)

	for _, chunk := range []int{1, 63, 64, 65, 127, 128, 129, 999} {
		d, err := New(Size, nil)
		require.NoError(err)
		for off := 0; off < len(msg); off += chunk {
			end := off + chunk
			if end > len(msg) {
				end = len(msg)
			}
			d.Write(msg[off:end])
		}
		require.Equal(oneShot[:], d.Sum(nil), "chunk %d", chunk)
	}
}

func TestResetKeyed(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 32)
	rand.Read(key)
	d, err := New(32, key)
	require.NoError(err)
	d.Write([]byte("first"))
	first := d.Sum(nil)
	d.Reset()
	d.Write([]byte("first"))
	require.Equal(first, d.Sum(nil), "Reset must re-prime the key block")
}
