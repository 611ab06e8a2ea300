// hmac.go - HMAC
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package hmacx implements HMAC (RFC 2104) over any hash.Hash constructor,
// as a streaming sink holding an inner and an outer hash primed with the
// ipad and opad keys.
package hmacx

import (
	"crypto/subtle"
	"hash"
)

// New returns an HMAC sink keyed with key over the hash returned by h.
// Keys longer than the hash block size are hashed down first.
func New(h func() hash.Hash, key []byte) hash.Hash {
	hm := &hmac{
		inner: h(),
		outer: h(),
	}
	blockSize := hm.inner.BlockSize()
	if len(key) > blockSize {
		hm.outer.Write(key)
		key = hm.outer.Sum(nil)
		hm.outer.Reset()
	}
	hm.ipad = make([]byte, blockSize)
	hm.opad = make([]byte, blockSize)
	copy(hm.ipad, key)
	copy(hm.opad, key)
	for i := range hm.ipad {
		hm.ipad[i] ^= 0x36
		hm.opad[i] ^= 0x5c
	}
	hm.inner.Write(hm.ipad)
	return hm
}

// Sum computes HMAC(key, msg) in one shot.
func Sum(h func() hash.Hash, key, msg []byte) []byte {
	hm := New(h, key)
	hm.Write(msg)
	return hm.Sum(nil)
}

// Equal compares two MACs in constant time.
func Equal(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

type hmac struct {
	inner, outer hash.Hash
	ipad, opad   []byte
}

func (h *hmac) Size() int      { return h.outer.Size() }
func (h *hmac) BlockSize() int { return h.inner.BlockSize() }

func (h *hmac) Write(p []byte) (int, error) {
	return h.inner.Write(p)
}

func (h *hmac) Sum(in []byte) []byte {
	inner := h.inner.Sum(nil)
	h.outer.Reset()
	h.outer.Write(h.opad)
	h.outer.Write(inner)
	return h.outer.Sum(in)
}

func (h *hmac) Reset() {
	h.inner.Reset()
	h.inner.Write(h.ipad)
}
