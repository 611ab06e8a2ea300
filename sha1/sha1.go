// sha1.go - SHA-1
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package sha1 implements the SHA-1 hash function (FIPS 180-4) as a
// streaming hash.Hash sink. SHA-1 is broken for collision resistance and is
// provided only for PBKDF2/HMAC interop with legacy parameter sets.
package sha1

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

const (
	// Size is the digest length in bytes.
	Size = 20
	// BlockSize is the block size in bytes.
	BlockSize = 64
)

// New returns a SHA-1 sink.
func New() hash.Hash {
	d := &digest{}
	d.Reset()
	return d
}

// Sum returns the SHA-1 digest of data.
func Sum(data []byte) [Size]byte {
	var out [Size]byte
	d := New()
	d.Write(data)
	copy(out[:], d.Sum(nil))
	return out
}

type digest struct {
	h      [5]uint32
	x      [BlockSize]byte
	nx     int
	length uint64
}

func (d *digest) Reset() {
	d.h = [5]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0}
	d.nx = 0
	d.length = 0
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (n int, err error) {
	n = len(p)
	d.length += uint64(n)
	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		if d.nx == BlockSize {
			d.block(d.x[:])
			d.nx = 0
		}
		p = p[c:]
	}
	for len(p) >= BlockSize {
		d.block(p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

func (d *digest) Sum(in []byte) []byte {
	dd := *d
	var pad [BlockSize + 8]byte
	pad[0] = 0x80
	padLen := 56 - int(dd.length%BlockSize)
	if padLen <= 0 {
		padLen += BlockSize
	}
	binary.BigEndian.PutUint64(pad[padLen:], dd.length<<3)
	dd.Write(pad[:padLen+8])

	out := make([]byte, Size)
	for i, v := range dd.h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return append(in, out...)
}

func (d *digest) block(p []byte) {
	var w [80]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}
	for i := 16; i < 80; i++ {
		w[i] = bits.RotateLeft32(w[i-3]^w[i-8]^w[i-14]^w[i-16], 1)
	}

	a, b, c, dd, e := d.h[0], d.h[1], d.h[2], d.h[3], d.h[4]
	for i := 0; i < 80; i++ {
		var f, k uint32
		switch {
		case i < 20:
			f = (b & c) | (^b & dd)
			k = 0x5a827999
		case i < 40:
			f = b ^ c ^ dd
			k = 0x6ed9eba1
		case i < 60:
			f = (b & c) | (b & dd) | (c & dd)
			k = 0x8f1bbcdc
		default:
			f = b ^ c ^ dd
			k = 0xca62c1d6
		}
		t := bits.RotateLeft32(a, 5) + f + e + k + w[i]
		e, dd, c, b, a = dd, c, bits.RotateLeft32(b, 30), a, t
	}
	d.h[0] += a
	d.h[1] += b
	d.h[2] += c
	d.h[3] += dd
	d.h[4] += e
}
