// sha1_test.go - SHA-1 tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package sha1

import (
	"crypto/rand"
	runtimeSHA1 "crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKAT(t *testing.T) {
	require := require.New(t)

	vectors := []struct{ msg, expect string }{
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"84983e441c3bd26ebaae4aa1f95129e5e54670f1"},
	}
	for _, v := range vectors {
		got := Sum([]byte(v.msg))
		expect, err := hex.DecodeString(v.expect)
		require.NoError(err)
		require.Equal(expect, got[:], "SHA-1(%q)", v.msg)
	}
}

func TestAgainstRuntime(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 200; i++ {
		msg := make([]byte, i)
		rand.Read(msg)
		want := runtimeSHA1.Sum(msg)
		got := Sum(msg)
		require.Equal(want[:], got[:], "len %d", i)
	}
}
