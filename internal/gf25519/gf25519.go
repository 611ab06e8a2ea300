// gf25519.go - GF(2^255-19) field arithmetic
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package gf25519 implements arithmetic over GF(2^255-19) on sixteen
// 16-bit limbs carried in int64 words, shared by the x25519 and ed25519
// packages. All operations are constant-time.
package gf25519

import "crypto/subtle"

// Elem is a field element: little-endian 16-bit limbs in int64 words.
type Elem [16]int64

var (
	// Zero and One are the additive and multiplicative identities.
	Zero = Elem{}
	One  = Elem{1}

	// D is the Edwards curve constant -121665/121666.
	D = Elem{
		0x78a3, 0x1359, 0x4dca, 0x75eb, 0xd8ab, 0x4141, 0x0a4d, 0x0070,
		0xe898, 0x7779, 0x4079, 0x8cc7, 0xfe73, 0x2b6f, 0x6cee, 0x5203,
	}
	// D2 is 2*D.
	D2 = Elem{
		0xf159, 0x26b2, 0x9b94, 0xebd6, 0xb156, 0x8283, 0x149a, 0x00e0,
		0xd130, 0xeef3, 0x80f2, 0x198e, 0xfce7, 0x56df, 0xd9dc, 0x2406,
	}
	// BaseX and BaseY are the coordinates of the Ed25519 base point.
	BaseX = Elem{
		0xd51a, 0x8f25, 0x2d60, 0xc956, 0xa7b2, 0x9525, 0xc760, 0x692c,
		0xdc5c, 0xfdd6, 0xe231, 0xc0a4, 0x53fe, 0xcd6e, 0x36d3, 0x2169,
	}
	BaseY = Elem{
		0x6658, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666,
		0x6666, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666, 0x6666,
	}
	// SqrtM1 is sqrt(-1) mod 2^255-19.
	SqrtM1 = Elem{
		0xa0b0, 0x4a0e, 0x1b27, 0xc4ee, 0xe478, 0xad2f, 0x1806, 0x2f43,
		0xd7a7, 0x3dfb, 0x0099, 0x2b4d, 0xdf0b, 0x4fc1, 0x2480, 0x2b83,
	}
	// C121665 is the Montgomery ladder constant (A-2)/4.
	C121665 = Elem{0xdb41, 1}
)

// Carry reduces every limb to 16 bits, folding the top overflow back with
// the factor 38 (= 2*19).
func Carry(o *Elem) {
	var c int64
	for i := 0; i < 16; i++ {
		o[i] += 1 << 16
		c = o[i] >> 16
		if i < 15 {
			o[i+1] += c - 1
		} else {
			o[0] += 38 * (c - 1)
		}
		o[i] -= c << 16
	}
}

// Add sets o = a + b without carrying.
func Add(o, a, b *Elem) {
	for i := range o {
		o[i] = a[i] + b[i]
	}
}

// Sub sets o = a - b without carrying.
func Sub(o, a, b *Elem) {
	for i := range o {
		o[i] = a[i] - b[i]
	}
}

// Mul sets o = a * b, carried.
func Mul(o, a, b *Elem) {
	var t [31]int64
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			t[i+j] += a[i] * b[j]
		}
	}
	for i := 0; i < 15; i++ {
		t[i] += 38 * t[i+16]
	}
	for i := 0; i < 16; i++ {
		o[i] = t[i]
	}
	Carry(o)
	Carry(o)
}

// Sqr sets o = a * a.
func Sqr(o, a *Elem) {
	Mul(o, a, a)
}

// Inv sets o = a^(p-2), the multiplicative inverse.
func Inv(o, a *Elem) {
	c := *a
	for i := 253; i >= 0; i-- {
		Sqr(&c, &c)
		if i != 2 && i != 4 {
			Mul(&c, &c, a)
		}
	}
	*o = c
}

// Pow2523 sets o = a^((p-5)/8), used for square roots in point
// decompression.
func Pow2523(o, a *Elem) {
	c := *a
	for i := 250; i >= 0; i-- {
		Sqr(&c, &c)
		if i != 1 {
			Mul(&c, &c, a)
		}
	}
	*o = c
}

// Swap conditionally exchanges p and q when b is 1, in constant time.
func Swap(p, q *Elem, b int64) {
	c := ^(b - 1)
	for i := range p {
		t := c & (p[i] ^ q[i])
		p[i] ^= t
		q[i] ^= t
	}
}

// Pack serializes a fully reduced t into 32 little-endian bytes.
func Pack(o []byte, n *Elem) {
	var m Elem
	t := *n
	Carry(&t)
	Carry(&t)
	Carry(&t)
	for j := 0; j < 2; j++ {
		m[0] = t[0] - 0xffed
		for i := 1; i < 15; i++ {
			m[i] = t[i] - 0xffff - ((m[i-1] >> 16) & 1)
			m[i-1] &= 0xffff
		}
		m[15] = t[15] - 0x7fff - ((m[14] >> 16) & 1)
		b := (m[15] >> 16) & 1
		m[14] &= 0xffff
		Swap(&t, &m, 1-b)
	}
	for i := 0; i < 16; i++ {
		o[2*i] = byte(t[i])
		o[2*i+1] = byte(t[i] >> 8)
	}
}

// Unpack parses 32 little-endian bytes, masking the top bit.
func Unpack(o *Elem, n []byte) {
	for i := 0; i < 16; i++ {
		o[i] = int64(n[2*i]) + int64(n[2*i+1])<<8
	}
	o[15] &= 0x7fff
}

// Neq reports whether a != b after packing, in constant time.
func Neq(a, b *Elem) bool {
	var ap, bp [32]byte
	Pack(ap[:], a)
	Pack(bp[:], b)
	return subtle.ConstantTimeCompare(ap[:], bp[:]) != 1
}

// Parity returns the low bit of the packed representation.
func Parity(a *Elem) byte {
	var p [32]byte
	Pack(p[:], a)
	return p[0] & 1
}

// IsZero reports whether a packs to all zero bytes, in constant time.
func IsZero(a *Elem) bool {
	var p, zero [32]byte
	Pack(p[:], a)
	return subtle.ConstantTimeCompare(p[:], zero[:]) == 1
}
