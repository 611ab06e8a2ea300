// aes_test.go - AES block and mode tests
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
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustUnhex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// FIPS 197 appendix C single-block vectors for all three key lengths.
func TestBlockKAT(t *testing.T) {
	require := require.New(t)

	plaintext := mustUnhex(t, "00112233445566778899aabbccddeeff")
	vectors := []struct{ key, expect string }{
		{"000102030405060708090a0b0c0d0e0f",
			"69c4e0d86a7b0430d8cdb78070b4c55a"},
		{"000102030405060708090a0b0c0d0e0f1011121314151617",
			"dda97ca4864cdfe06eaf70a0ec0d7191"},
		{"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			"8ea2b7ca516745bfeafc49904b496089"},
	}
	for _, v := range vectors {
		c, err := New(mustUnhex(t, v.key))
		require.NoError(err)

		var ct, pt [BlockSize]byte
		c.EncryptBlock(ct[:], plaintext)
		require.Equal(mustUnhex(t, v.expect), ct[:], "encrypt key %d", len(v.key)/2)

		c.DecryptBlock(pt[:], ct[:])
		require.Equal(plaintext, pt[:], "decrypt key %d", len(v.key)/2)
	}
}

func TestInvalidKeySizes(t *testing.T) {
	require := require.New(t)

	for _, n := range []int{0, 8, 15, 17, 31, 33} {
		_, err := New(make([]byte, n))
		require.ErrorIs(err, ErrInvalidKeySize, "key %d", n)
	}
}

func TestBlockAgainstRuntime(t *testing.T) {
	require := require.New(t)

	for _, keyLen := range []int{16, 24, 32} {
		for i := 0; i < 50; i++ {
			key := make([]byte, keyLen)
			var src [BlockSize]byte
			rand.Read(key)
			rand.Read(src[:])

			c, err := New(key)
			require.NoError(err)
			ref, err := runtimeAES.NewCipher(key)
			require.NoError(err)

			var got, want [BlockSize]byte
			c.EncryptBlock(got[:], src[:])
			ref.Encrypt(want[:], src[:])
			require.Equal(want, got, "encrypt keyLen %d case %d", keyLen, i)

			c.DecryptBlock(got[:], src[:])
			ref.Decrypt(want[:], src[:])
			require.Equal(want, got, "decrypt keyLen %d case %d", keyLen, i)
		}
	}
}

func TestZeroize(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 16)
	rand.Read(key)
	c, err := New(key)
	require.NoError(err)
	c.Zeroize()
	for i, w := range c.enc {
		require.Zero(w, "enc word %d", i)
	}
	for i, w := range c.dec {
		require.Zero(w, "dec word %d", i)
	}
}

// SP 800-38A F.2.1/F.2.2: CBC-AES128 with the standard four-block message.
func TestCBCKAT(t *testing.T) {
	require := require.New(t)

	key := mustUnhex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustUnhex(t, "000102030405060708090a0b0c0d0e0f")
	pt := mustUnhex(t,
		"6bc1bee22e409f96e93d7e117393172a"+
			"ae2d8a571e03ac9c9eb76fac45af8e51"+
			"30c81c46a35ce411e5fbc1191a0a52ef"+
			"f69f2445df4f9b17ad2b417be66c3710")
	expect := mustUnhex(t,
		"7649abac8119b246cee98e9b12e9197d"+
			"5086cb9b507219ee95db113a917678b2"+
			"73bed6b8e3c1743b7116e69e22229516"+
			"3ff1caa1681fac09120eca307586e1a7")

	c, err := New(key)
	require.NoError(err)

	ct := make([]byte, len(pt))
	require.NoError(CBCEncrypt(c, iv, ct, pt))
	require.Equal(expect, ct, "CBC encrypt")

	back := make([]byte, len(ct))
	require.NoError(CBCDecrypt(c, iv, back, ct))
	require.Equal(pt, back, "CBC decrypt")
}

func TestCBCInPlace(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 32)
	iv := make([]byte, BlockSize)
	buf := make([]byte, 64)
	rand.Read(key)
	rand.Read(iv)
	rand.Read(buf)
	orig := append([]byte{}, buf...)

	c, err := New(key)
	require.NoError(err)
	require.NoError(CBCEncrypt(c, iv, buf, buf))
	require.NoError(CBCDecrypt(c, iv, buf, buf))
	require.Equal(orig, buf, "in-place round trip")
}

// SP 800-38A F.5.1: CTR-AES128.
func TestCTRKAT(t *testing.T) {
	require := require.New(t)

	key := mustUnhex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	pt := mustUnhex(t,
		"6bc1bee22e409f96e93d7e117393172a"+
			"ae2d8a571e03ac9c9eb76fac45af8e51")
	expect := mustUnhex(t,
		"874d6191b620e3261bef6864990db6ce"+
			"9806f66b7970fdff8617187bb9fffdff")

	c, err := New(key)
	require.NoError(err)
	// The F.5.1 counter block f0f1..ff splits into an 8-byte nonce and a
	// 64-bit big-endian counter.
	ctr, err := NewCTR(c, mustUnhex(t, "f0f1f2f3f4f5f6f7"), 64)
	require.NoError(err)
	ctr.SetCounter(0xf8f9fafbfcfdfeff)

	ct := make([]byte, len(pt))
	ctr.XORKeyStream(ct, pt)
	require.Equal(expect, ct, "CTR keystream")
}

func TestCTRResume(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 16)
	nonce := make([]byte, 8)
	rand.Read(key)
	rand.Read(nonce)

	c, err := New(key)
	require.NoError(err)
	whole := make([]byte, 400)
	ctr, err := NewCTR(c, nonce, 64)
	require.NoError(err)
	ctr.XORKeyStream(whole, whole)

	for _, idx := range []uint64{0, 1, 15, 16, 17, 160, 399} {
		ctr, err := NewCTR(c, nonce, 64)
		require.NoError(err)
		ctr.SetKeyStreamIndex(idx)
		rest := make([]byte, 400-int(idx))
		ctr.XORKeyStream(rest, rest)
		require.Equal(whole[idx:], rest, "resume at %d", idx)
	}
}

func TestCTRAgainstRuntime(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 32)
	iv := make([]byte, BlockSize)
	msg := make([]byte, 333)
	rand.Read(key)
	rand.Read(iv)
	rand.Read(msg)

	c, err := New(key)
	require.NoError(err)
	// A full 128-bit counter with an empty nonce matches crypto/cipher's
	// CTR over the IV as initial counter block... only when the IV is the
	// zero block, so use that.
	zeroIV := make([]byte, BlockSize)
	ctr, err := NewCTR(c, nil, 128)
	require.NoError(err)
	got := make([]byte, len(msg))
	ctr.XORKeyStream(got, msg)

	ref, err := runtimeAES.NewCipher(key)
	require.NoError(err)
	want := make([]byte, len(msg))
	cipher.NewCTR(ref, zeroIV).XORKeyStream(want, msg)
	require.Equal(want, got, "CTR vs runtime")
}
