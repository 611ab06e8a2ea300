// blamka.go - Argon2 compression function G
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package argon2

import "math/bits"

// fBlaMka is the multiplication-hardened addition a + b + 2*trunc32(a)*trunc32(b).
func fBlaMka(x, y uint64) uint64 {
	m := uint64(uint32(x)) * uint64(uint32(y))
	return x + y + 2*m
}

// blamka is the BLAKE2b G function with fBlaMka in place of plain addition.
func blamka(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -32)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -24)
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -16)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -63)
	return a, b, c, d
}

// round applies the permutation P to sixteen words of t selected by idx.
func round(t *block, idx *[16]int) {
	v := [16]uint64{}
	for i, j := range idx {
		v[i] = t[j]
	}
	v[0], v[4], v[8], v[12] = blamka(v[0], v[4], v[8], v[12])
	v[1], v[5], v[9], v[13] = blamka(v[1], v[5], v[9], v[13])
	v[2], v[6], v[10], v[14] = blamka(v[2], v[6], v[10], v[14])
	v[3], v[7], v[11], v[15] = blamka(v[3], v[7], v[11], v[15])
	v[0], v[5], v[10], v[15] = blamka(v[0], v[5], v[10], v[15])
	v[1], v[6], v[11], v[12] = blamka(v[1], v[6], v[11], v[12])
	v[2], v[7], v[8], v[13] = blamka(v[2], v[7], v[8], v[13])
	v[3], v[4], v[9], v[14] = blamka(v[3], v[4], v[9], v[14])
	for i, j := range idx {
		t[j] = v[i]
	}
}

// processBlock computes out = G(in1, in2); when xor is set the existing
// out is XORed in as well (iterations > 0).
func processBlock(out, in1, in2 *block, xor bool) {
	var t block
	for i := range t {
		t[i] = in1[i] ^ in2[i]
	}

	// P over the eight 128-byte rows.
	var idx [16]int
	for i := 0; i < blockLength; i += 16 {
		for j := range idx {
			idx[j] = i + j
		}
		round(&t, &idx)
	}

	// P over the eight 16-byte-cell columns.
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			idx[2*j] = 16*j + 2*i
			idx[2*j+1] = 16*j + 2*i + 1
		}
		round(&t, &idx)
	}

	if xor {
		for i := range t {
			out[i] ^= in1[i] ^ in2[i] ^ t[i]
		}
	} else {
		for i := range t {
			out[i] = in1[i] ^ in2[i] ^ t[i]
		}
	}
}
