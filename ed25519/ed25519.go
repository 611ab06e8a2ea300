// ed25519.go - Ed25519 signatures
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package ed25519 implements the Ed25519 signature scheme of RFC 8032
// over extended twisted-Edwards coordinates. Verify returns a bool, not
// an error; a false result carries no further detail by design of the
// scheme.
package ed25519

import (
	"crypto/rand"
	"errors"
	"io"

	"gitlab.com/auklet/cryptkit.git/internal/gf25519"
	"gitlab.com/auklet/cryptkit.git/sha2"
)

const (
	// SeedSize is the private seed length in bytes.
	SeedSize = 32
	// PublicKeySize is the public key length in bytes.
	PublicKeySize = 32
	// PrivateKeySize is the seed || public key length in bytes.
	PrivateKeySize = 64
	// SignatureSize is the R || S signature length in bytes.
	SignatureSize = 64
)

var (
	// ErrInvalidKeySize is returned for keys of the wrong length.
	ErrInvalidKeySize = errors.New("ed25519: invalid key size")

	// order is the group order ℓ in the limb layout modL consumes.
	order = [32]int64{
		0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
		0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x10,
	}
)

// PublicKey is a compressed Edwards point.
type PublicKey []byte

// PrivateKey is the seed followed by the public key, matching the wire
// layout used by most Ed25519 deployments.
type PrivateKey []byte

// Public returns the public half.
func (p PrivateKey) Public() PublicKey {
	return PublicKey(append([]byte{}, p[SeedSize:]...))
}

// Seed returns the 32-byte seed.
func (p PrivateKey) Seed() []byte {
	return append([]byte{}, p[:SeedSize]...)
}

// point is an extended twisted-Edwards point (X, Y, Z, T).
type point [4]gf25519.Elem

// GenerateKey produces a key pair from rng (crypto/rand when nil).
func GenerateKey(rng io.Reader) (PublicKey, PrivateKey, error) {
	if rng == nil {
		rng = rand.Reader
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, nil, err
	}
	priv := NewKeyFromSeed(seed)
	return priv.Public(), priv, nil
}

// NewKeyFromSeed derives the private key from a 32-byte seed.
func NewKeyFromSeed(seed []byte) PrivateKey {
	if len(seed) != SeedSize {
		panic(ErrInvalidKeySize)
	}
	h := sha2.Sum512(seed)
	clamp(h[:32])

	var p point
	scalarBase(&p, h[:32])
	var pub [PublicKeySize]byte
	packPoint(pub[:], &p)

	priv := make([]byte, PrivateKeySize)
	copy(priv, seed)
	copy(priv[SeedSize:], pub[:])
	return priv
}

// Sign produces the deterministic 64-byte R || S signature of message.
func Sign(priv PrivateKey, message []byte) []byte {
	if len(priv) != PrivateKeySize {
		panic(ErrInvalidKeySize)
	}
	expanded := sha2.Sum512(priv[:SeedSize])
	clamp(expanded[:32])

	// r = H(prefix || M) mod ℓ
	d := sha2.New512()
	d.Write(expanded[32:])
	d.Write(message)
	var r [64]byte
	copy(r[:], d.Sum(nil))
	reduce(&r)

	var p point
	scalarBase(&p, r[:32])
	sig := make([]byte, SignatureSize)
	packPoint(sig[:32], &p)

	// k = H(R || A || M) mod ℓ
	d = sha2.New512()
	d.Write(sig[:32])
	d.Write(priv[SeedSize:])
	d.Write(message)
	var k [64]byte
	copy(k[:], d.Sum(nil))
	reduce(&k)

	// S = r + k*a mod ℓ
	var x [64]int64
	for i := 0; i < 32; i++ {
		x[i] = int64(r[i])
	}
	for i := 0; i < 32; i++ {
		for j := 0; j < 32; j++ {
			x[i+j] += int64(k[i]) * int64(expanded[j])
		}
	}
	modL(sig[32:], &x)
	return sig
}

// Verify reports whether sig is a valid signature of message by pub.
func Verify(pub PublicKey, message, sig []byte) bool {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	if !scalarLessThanOrder(sig[32:]) {
		return false
	}

	var negA point
	if !unpackNeg(&negA, pub) {
		return false
	}

	d := sha2.New512()
	d.Write(sig[:32])
	d.Write(pub)
	d.Write(message)
	var k [64]byte
	copy(k[:], d.Sum(nil))
	reduce(&k)

	// R' = k*(-A) + S*B; valid iff R' == R.
	var p, q point
	scalarMult(&p, &negA, k[:32])
	scalarBase(&q, sig[32:])
	addPoints(&p, &q)

	var checkR [32]byte
	packPoint(checkR[:], &p)
	for i := range checkR {
		if checkR[i] != sig[i] {
			return false
		}
	}
	return true
}

func clamp(a []byte) {
	a[0] &= 248
	a[31] &= 127
	a[31] |= 64
}

// scalarLessThanOrder checks S < ℓ, rejecting malleable encodings.
func scalarLessThanOrder(s []byte) bool {
	for i := 31; i >= 0; i-- {
		v, l := int64(s[i]), order[i]
		if v < l {
			return true
		}
		if v > l {
			return false
		}
	}
	return false
}

// addPoints sets p = p + q with the unified extended-coordinate formulas.
func addPoints(p, q *point) {
	var a, b, c, d, t, e, f, g, h gf25519.Elem
	gf25519.Sub(&a, &p[1], &p[0])
	gf25519.Sub(&t, &q[1], &q[0])
	gf25519.Mul(&a, &a, &t)
	gf25519.Add(&b, &p[0], &p[1])
	gf25519.Add(&t, &q[0], &q[1])
	gf25519.Mul(&b, &b, &t)
	gf25519.Mul(&c, &p[3], &q[3])
	gf25519.Mul(&c, &c, &gf25519.D2)
	gf25519.Mul(&d, &p[2], &q[2])
	gf25519.Add(&d, &d, &d)
	gf25519.Sub(&e, &b, &a)
	gf25519.Sub(&f, &d, &c)
	gf25519.Add(&g, &d, &c)
	gf25519.Add(&h, &b, &a)
	gf25519.Mul(&p[0], &e, &f)
	gf25519.Mul(&p[1], &h, &g)
	gf25519.Mul(&p[2], &g, &f)
	gf25519.Mul(&p[3], &e, &h)
}

func cswapPoints(p, q *point, b int64) {
	for i := range p {
		gf25519.Swap(&p[i], &q[i], b)
	}
}

// scalarMult sets p = s*q by the constant-time double-and-add ladder.
func scalarMult(p *point, q *point, s []byte) {
	p[0] = gf25519.Zero
	p[1] = gf25519.One
	p[2] = gf25519.One
	p[3] = gf25519.Zero
	for i := 255; i >= 0; i-- {
		b := int64(s[i/8]>>(uint(i)&7)) & 1
		cswapPoints(p, q, b)
		addPoints(q, p)
		addPoints(p, p)
		cswapPoints(p, q, b)
	}
}

// scalarBase sets p = s*B.
func scalarBase(p *point, s []byte) {
	var q point
	q[0] = gf25519.BaseX
	q[1] = gf25519.BaseY
	q[2] = gf25519.One
	gf25519.Mul(&q[3], &gf25519.BaseX, &gf25519.BaseY)
	scalarMult(p, &q, s)
}

// packPoint compresses p to 32 bytes: y with the parity of x in the top
// bit.
func packPoint(r []byte, p *point) {
	var tx, ty, zi gf25519.Elem
	gf25519.Inv(&zi, &p[2])
	gf25519.Mul(&tx, &p[0], &zi)
	gf25519.Mul(&ty, &p[1], &zi)
	gf25519.Pack(r, &ty)
	r[31] ^= gf25519.Parity(&tx) << 7
}

// unpackNeg decompresses a public key into -A, validating that the
// recovered x actually satisfies the curve equation.
func unpackNeg(r *point, p []byte) bool {
	var num, den, den2, den4, den6, t, chk gf25519.Elem
	r[2] = gf25519.One
	gf25519.Unpack(&r[1], p)

	gf25519.Sqr(&num, &r[1])
	gf25519.Mul(&den, &num, &gf25519.D)
	gf25519.Sub(&num, &num, &r[2])
	gf25519.Add(&den, &r[2], &den)

	gf25519.Sqr(&den2, &den)
	gf25519.Sqr(&den4, &den2)
	gf25519.Mul(&den6, &den4, &den2)
	gf25519.Mul(&t, &den6, &num)
	gf25519.Mul(&t, &t, &den)

	gf25519.Pow2523(&t, &t)
	gf25519.Mul(&t, &t, &num)
	gf25519.Mul(&t, &t, &den)
	gf25519.Mul(&t, &t, &den)
	gf25519.Mul(&r[0], &t, &den)

	gf25519.Sqr(&chk, &r[0])
	gf25519.Mul(&chk, &chk, &den)
	if gf25519.Neq(&chk, &num) {
		gf25519.Mul(&r[0], &r[0], &gf25519.SqrtM1)
	}
	gf25519.Sqr(&chk, &r[0])
	gf25519.Mul(&chk, &chk, &den)
	if gf25519.Neq(&chk, &num) {
		return false
	}

	if gf25519.Parity(&r[0]) == p[31]>>7 {
		gf25519.Sub(&r[0], &gf25519.Zero, &r[0])
	}
	gf25519.Mul(&r[3], &r[0], &r[1])
	return true
}

// reduce folds a 64-byte hash to a scalar mod ℓ in place.
func reduce(r *[64]byte) {
	var x [64]int64
	for i, v := range r {
		x[i] = int64(v)
	}
	for i := range r {
		r[i] = 0
	}
	modL(r[:32], &x)
}

// modL reduces a 64-limb little-endian value mod ℓ into 32 bytes.
func modL(r []byte, x *[64]int64) {
	var carry int64
	for i := 63; i >= 32; i-- {
		carry = 0
		j := i - 32
		for ; j < i-12; j++ {
			x[j] += carry - 16*x[i]*order[j-(i-32)]
			carry = (x[j] + 128) >> 8
			x[j] -= carry << 8
		}
		x[j] += carry
		x[i] = 0
	}
	carry = 0
	for j := 0; j < 32; j++ {
		x[j] += carry - (x[31]>>4)*order[j]
		carry = x[j] >> 8
		x[j] &= 255
	}
	for j := 0; j < 32; j++ {
		x[j] -= carry * order[j]
	}
	for i := 0; i < 32; i++ {
		x[i+1] += x[i] >> 8
		r[i] = byte(x[i] & 255)
	}
}
