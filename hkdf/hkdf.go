// hkdf.go - HKDF
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package hkdf implements the HMAC-based extract-and-expand key derivation
// function of RFC 5869.
package hkdf

import (
	"errors"
	"hash"
	"io"

	"gitlab.com/auklet/cryptkit.git/hmacx"
)

// ErrLimitExceeded is returned when more than 255 * hash-size bytes of
// output keying material are requested.
var ErrLimitExceeded = errors.New("hkdf: output limit exceeded")

// Extract condenses the input keying material into a pseudo-random key.
// A nil salt is treated as a string of zero bytes of hash length.
func Extract(h func() hash.Hash, ikm, salt []byte) []byte {
	if salt == nil {
		salt = make([]byte, h().Size())
	}
	return hmacx.Sum(h, salt, ikm)
}

// Expand derives length bytes of output keying material from a PRK.
func Expand(h func() hash.Hash, prk, info []byte, length int) ([]byte, error) {
	hashLen := h().Size()
	if length > 255*hashLen {
		return nil, ErrLimitExceeded
	}
	out := make([]byte, 0, length)
	var t []byte
	for i := byte(1); len(out) < length; i++ {
		hm := hmacx.New(h, prk)
		hm.Write(t)
		hm.Write(info)
		hm.Write([]byte{i})
		t = hm.Sum(nil)
		out = append(out, t...)
	}
	return out[:length], nil
}

// Key runs extract-then-expand in one call.
func Key(h func() hash.Hash, ikm, salt, info []byte, length int) ([]byte, error) {
	return Expand(h, Extract(h, ikm, salt), info, length)
}

// New returns an io.Reader yielding the HKDF output stream, for callers
// that consume keying material incrementally.
func New(h func() hash.Hash, ikm, salt, info []byte) io.Reader {
	return &reader{h: h, prk: Extract(h, ikm, salt), info: info}
}

type reader struct {
	h     func() hash.Hash
	prk   []byte
	info  []byte
	t     []byte
	buf   []byte
	count byte
}

func (r *reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			if r.count == 255 {
				return n, ErrLimitExceeded
			}
			r.count++
			hm := hmacx.New(r.h, r.prk)
			hm.Write(r.t)
			hm.Write(r.info)
			hm.Write([]byte{r.count})
			r.t = hm.Sum(nil)
			r.buf = r.t
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}
