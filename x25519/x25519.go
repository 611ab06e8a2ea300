// x25519.go - X25519 Diffie-Hellman
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package x25519 implements the X25519 Diffie-Hellman function of
// RFC 7748 with a constant-time Montgomery ladder over GF(2^255-19).
package x25519

import (
	"crypto/rand"
	"errors"
	"io"

	"gitlab.com/auklet/cryptkit.git/internal/gf25519"
)

const (
	// ScalarSize is the private scalar length in bytes.
	ScalarSize = 32
	// PointSize is the public u-coordinate length in bytes.
	PointSize = 32
)

var (
	// ErrInvalidSize is returned when a scalar or point is not 32 bytes.
	ErrInvalidSize = errors.New("x25519: invalid scalar or point size")

	// ErrLowOrderPoint is returned when the shared secret is all zeros,
	// meaning the peer's public key is a low-order point.
	ErrLowOrderPoint = errors.New("x25519: low-order point")

	// Basepoint is the canonical generator, u = 9.
	Basepoint = []byte{9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
)

// X25519 computes scalar * point and returns the little-endian u
// coordinate. The all-zero output produced by low-order points is
// rejected, except for the fixed basepoint where it cannot occur.
func X25519(scalar, point []byte) ([]byte, error) {
	if len(scalar) != ScalarSize || len(point) != PointSize {
		return nil, ErrInvalidSize
	}
	var out [PointSize]byte
	scalarMult(&out, scalar, point)

	var acc byte
	for _, b := range out {
		acc |= b
	}
	if acc == 0 {
		return nil, ErrLowOrderPoint
	}
	return out[:], nil
}

// ScalarBaseMult computes scalar * basepoint.
func ScalarBaseMult(scalar []byte) ([]byte, error) {
	if len(scalar) != ScalarSize {
		return nil, ErrInvalidSize
	}
	var out [PointSize]byte
	scalarMult(&out, scalar, Basepoint)
	return out[:], nil
}

// GenerateKey returns a fresh private scalar and the matching public key.
// A nil rng falls back to crypto/rand.
func GenerateKey(rng io.Reader) (priv, pub []byte, err error) {
	if rng == nil {
		rng = rand.Reader
	}
	priv = make([]byte, ScalarSize)
	if _, err = io.ReadFull(rng, priv); err != nil {
		return nil, nil, err
	}
	pub, err = ScalarBaseMult(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// scalarMult runs the 255-iteration Montgomery ladder with a clamped copy
// of the scalar.
func scalarMult(out *[PointSize]byte, scalar, point []byte) {
	var z [ScalarSize]byte
	copy(z[:], scalar)
	z[0] &= 248
	z[31] &= 127
	z[31] |= 64

	var x, a, b, c, d, e, f gf25519.Elem
	gf25519.Unpack(&x, point)
	b = x
	a[0], d[0] = 1, 1

	for i := 254; i >= 0; i-- {
		r := int64(z[i>>3]>>(uint(i)&7)) & 1
		gf25519.Swap(&a, &b, r)
		gf25519.Swap(&c, &d, r)
		gf25519.Add(&e, &a, &c)
		gf25519.Sub(&a, &a, &c)
		gf25519.Add(&c, &b, &d)
		gf25519.Sub(&b, &b, &d)
		gf25519.Sqr(&d, &e)
		gf25519.Sqr(&f, &a)
		gf25519.Mul(&a, &c, &a)
		gf25519.Mul(&c, &b, &e)
		gf25519.Add(&e, &a, &c)
		gf25519.Sub(&a, &a, &c)
		gf25519.Sqr(&b, &a)
		gf25519.Sub(&c, &d, &f)
		gf25519.Mul(&a, &c, &gf25519.C121665)
		gf25519.Add(&a, &a, &d)
		gf25519.Mul(&c, &c, &a)
		gf25519.Mul(&a, &d, &f)
		gf25519.Mul(&d, &b, &x)
		gf25519.Sqr(&b, &e)
		gf25519.Swap(&a, &b, r)
		gf25519.Swap(&c, &d, r)
	}
	gf25519.Inv(&c, &c)
	gf25519.Mul(&a, &a, &c)
	gf25519.Pack(out[:], &a)
}
