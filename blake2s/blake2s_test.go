// blake2s_test.go - BLAKE2s tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package blake2s

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	xblake2s "golang.org/x/crypto/blake2s"
)

func TestKAT(t *testing.T) {
	require := require.New(t)

	// RFC 7693 appendix B.
	expect, err := hex.DecodeString(
		"508c5e8c327c14e2e1a72ba34eeb452f37458b209ed63a294d999b4c86675982")
	require.NoError(err)
	got := Sum256([]byte("abc"))
	require.Equal(expect, got[:], "BLAKE2s-256(abc)")
}

func TestKeyedAndSizedAgainstOracle(t *testing.T) {
	require := require.New(t)

	for _, keyLen := range []int{0, 16, 32} {
		key := make([]byte, keyLen)
		rand.Read(key)
		for _, msgLen := range []int{0, 1, 63, 64, 65, 700} {
			msg := make([]byte, msgLen)
			rand.Read(msg)

			d, err := New(Size, key)
			require.NoError(err)
			d.Write(msg)
			got := d.Sum(nil)

			if keyLen == 0 {
				want := xblake2s.Sum256(msg)
				require.Equal(want[:], got, "unkeyed msg %d", msgLen)
				continue
			}
			ref, err := xblake2s.New256(key)
			require.NoError(err)
			ref.Write(msg)
			require.Equal(ref.Sum(nil), got, "key %d msg %d", keyLen, msgLen)
		}
	}
}

func TestStreamingEquivalence(t *testing.T) {
	require := require.New(t)

	msg := make([]byte, 500)
	rand.Read(msg)
	oneShot := Sum256(msg)

	for _, chunk := range []int{1, 31, 32, 63, 64, 65, 499} {
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
