// poly1305.go - Poly1305 one-time MAC
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package poly1305 implements the Poly1305 one-time authenticator of
// RFC 7539, evaluating the polynomial mod 2^130-5 over 26-bit limbs.
//
// A key must never authenticate more than one message.
package poly1305

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	// KeySize is the one-time key length in bytes.
	KeySize = 32
	// TagSize is the authenticator length in bytes.
	TagSize = 16

	mask26 = 0x3ffffff
)

var (
	// ErrInvalidKeySize is thrown via a panic when the key is not 32 bytes.
	ErrInvalidKeySize = errors.New("poly1305: invalid key size")
	// ErrSinkClosed is thrown via a panic when a finalized MAC is reused.
	ErrSinkClosed = errors.New("poly1305: sink already finalized")
)

// MAC is a streaming Poly1305 sink. It is single-use: after Sum the sink
// is closed and further Write or Sum calls panic.
type MAC struct {
	r      [5]uint32
	s      [4]uint32
	h      [5]uint32
	buf    [TagSize]byte
	nx     int
	closed bool
}

// New returns a sink keyed with a one-time 32-byte key.
func New(key []byte) *MAC {
	if len(key) != KeySize {
		panic(ErrInvalidKeySize)
	}
	m := &MAC{}
	// Clamp r per RFC 7539 §2.5.
	m.r[0] = binary.LittleEndian.Uint32(key[0:]) & 0x3ffffff
	m.r[1] = (binary.LittleEndian.Uint32(key[3:]) >> 2) & 0x3ffff03
	m.r[2] = (binary.LittleEndian.Uint32(key[6:]) >> 4) & 0x3ffc0ff
	m.r[3] = (binary.LittleEndian.Uint32(key[9:]) >> 6) & 0x3f03fff
	m.r[4] = (binary.LittleEndian.Uint32(key[12:]) >> 8) & 0x00fffff
	for i := range m.s {
		m.s[i] = binary.LittleEndian.Uint32(key[16+i*4:])
	}
	return m
}

// Sum computes the tag over msg in one shot.
func Sum(key, msg []byte) [TagSize]byte {
	m := New(key)
	m.Write(msg)
	return m.Sum()
}

// Verify reports in constant time whether tag authenticates msg under key.
func Verify(key, msg, tag []byte) bool {
	want := Sum(key, msg)
	return subtle.ConstantTimeCompare(want[:], tag) == 1
}

// Size returns the tag length.
func (m *MAC) Size() int { return TagSize }

// Write absorbs more message bytes.
func (m *MAC) Write(p []byte) (n int, err error) {
	if m.closed {
		panic(ErrSinkClosed)
	}
	n = len(p)
	if m.nx > 0 {
		c := copy(m.buf[m.nx:], p)
		m.nx += c
		if m.nx < TagSize {
			return
		}
		m.block(m.buf[:], 1<<24)
		m.nx = 0
		p = p[c:]
	}
	for len(p) >= TagSize {
		m.block(p[:TagSize], 1<<24)
		p = p[TagSize:]
	}
	if len(p) > 0 {
		m.nx = copy(m.buf[:], p)
	}
	return
}

// Sum finalizes the sink and returns the tag.
func (m *MAC) Sum() [TagSize]byte {
	if m.closed {
		panic(ErrSinkClosed)
	}
	m.closed = true
	if m.nx > 0 {
		// Pad the partial block with a 1-bit at the message end.
		m.buf[m.nx] = 1
		for i := m.nx + 1; i < TagSize; i++ {
			m.buf[i] = 0
		}
		m.block(m.buf[:], 0)
	}
	return m.finalize()
}

// block absorbs one 16-byte block; hibit is 1<<24 for a full block and 0
// for the padded final block (the 1-bit is then already in the data).
func (m *MAC) block(b []byte, hibit uint32) {
	h0 := m.h[0] + binary.LittleEndian.Uint32(b[0:])&mask26
	h1 := m.h[1] + (binary.LittleEndian.Uint32(b[3:])>>2)&mask26
	h2 := m.h[2] + (binary.LittleEndian.Uint32(b[6:])>>4)&mask26
	h3 := m.h[3] + (binary.LittleEndian.Uint32(b[9:])>>6)&mask26
	h4 := m.h[4] + (binary.LittleEndian.Uint32(b[12:])>>8) + hibit

	r0, r1, r2, r3, r4 := uint64(m.r[0]), uint64(m.r[1]), uint64(m.r[2]), uint64(m.r[3]), uint64(m.r[4])
	s1, s2, s3, s4 := r1*5, r2*5, r3*5, r4*5

	d0 := uint64(h0)*r0 + uint64(h1)*s4 + uint64(h2)*s3 + uint64(h3)*s2 + uint64(h4)*s1
	d1 := uint64(h0)*r1 + uint64(h1)*r0 + uint64(h2)*s4 + uint64(h3)*s3 + uint64(h4)*s2
	d2 := uint64(h0)*r2 + uint64(h1)*r1 + uint64(h2)*r0 + uint64(h3)*s4 + uint64(h4)*s3
	d3 := uint64(h0)*r3 + uint64(h1)*r2 + uint64(h2)*r1 + uint64(h3)*r0 + uint64(h4)*s4
	d4 := uint64(h0)*r4 + uint64(h1)*r3 + uint64(h2)*r2 + uint64(h3)*r1 + uint64(h4)*r0

	c := d0 >> 26
	m.h[0] = uint32(d0) & mask26
	d1 += c
	c = d1 >> 26
	m.h[1] = uint32(d1) & mask26
	d2 += c
	c = d2 >> 26
	m.h[2] = uint32(d2) & mask26
	d3 += c
	c = d3 >> 26
	m.h[3] = uint32(d3) & mask26
	d4 += c
	c = d4 >> 26
	m.h[4] = uint32(d4) & mask26
	m.h[0] += uint32(c) * 5
	m.h[1] += m.h[0] >> 26
	m.h[0] &= mask26
}

func (m *MAC) finalize() [TagSize]byte {
	h0, h1, h2, h3, h4 := m.h[0], m.h[1], m.h[2], m.h[3], m.h[4]

	// Fully carry h.
	c := h1 >> 26
	h1 &= mask26
	h2 += c
	c = h2 >> 26
	h2 &= mask26
	h3 += c
	c = h3 >> 26
	h3 &= mask26
	h4 += c
	c = h4 >> 26
	h4 &= mask26
	h0 += c * 5
	c = h0 >> 26
	h0 &= mask26
	h1 += c

	// Compute h + 5 - 2^130 and select it in constant time iff there was
	// no borrow.
	g0 := h0 + 5
	c = g0 >> 26
	g0 &= mask26
	g1 := h1 + c
	c = g1 >> 26
	g1 &= mask26
	g2 := h2 + c
	c = g2 >> 26
	g2 &= mask26
	g3 := h3 + c
	c = g3 >> 26
	g3 &= mask26
	g4 := h4 + c - (1 << 26)

	sel := (g4 >> 31) - 1 // all-ones if h + 5 >= 2^130
	h0 = (h0 &^ sel) | (g0 & sel)
	h1 = (h1 &^ sel) | (g1 & sel)
	h2 = (h2 &^ sel) | (g2 & sel)
	h3 = (h3 &^ sel) | (g3 & sel)
	h4 = (h4 &^ sel) | (g4 & sel)

	// h mod 2^128, then add s with carries.
	f0 := uint64(h0|h1<<26) + uint64(m.s[0])
	f1 := uint64(h1>>6|h2<<20) + uint64(m.s[1]) + f0>>32
	f2 := uint64(h2>>12|h3<<14) + uint64(m.s[2]) + f1>>32
	f3 := uint64(h3>>18|h4<<8) + uint64(m.s[3]) + f2>>32

	var tag [TagSize]byte
	binary.LittleEndian.PutUint32(tag[0:], uint32(f0))
	binary.LittleEndian.PutUint32(tag[4:], uint32(f1))
	binary.LittleEndian.PutUint32(tag[8:], uint32(f2))
	binary.LittleEndian.PutUint32(tag[12:], uint32(f3))
	return tag
}
