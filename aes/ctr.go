// ctr.go - AES counter mode
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package aes

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidCTRParams is returned when the nonce and counter width do not
// fit a 16-byte counter block.
var ErrInvalidCTRParams = errors.New("aes: invalid CTR nonce/counter width")

// CTR is an AES counter-mode keystream. The counter block is the nonce,
// zero-extended on the left of the counter, with a big-endian counter of
// the configured width in the trailing bytes.
type CTR struct {
	c            *Cipher
	block        [BlockSize]byte
	counterBytes int
	buf          [BlockSize]byte
	leftover     int
}

// NewCTR builds a counter-mode stream over c. counterBits is the counter
// width (default callers pass 64); the nonce must fit in the remaining
// leading bytes.
func NewCTR(c *Cipher, nonce []byte, counterBits int) (*CTR, error) {
	if counterBits <= 0 || counterBits > 128 || counterBits%8 != 0 {
		return nil, ErrInvalidCTRParams
	}
	counterBytes := counterBits / 8
	if len(nonce) > BlockSize-counterBytes {
		return nil, ErrInvalidCTRParams
	}
	s := &CTR{c: c, counterBytes: counterBytes}
	copy(s.block[:], nonce)
	return s, nil
}

// SetKeyStreamIndex positions the stream at byte offset idx: the counter
// becomes idx/16 and the first idx%16 keystream bytes of that block are
// discarded.
func (s *CTR) SetKeyStreamIndex(idx uint64) {
	s.setCounter(idx / BlockSize)
	s.leftover = 0
	if skip := int(idx % BlockSize); skip > 0 {
		var junk [BlockSize]byte
		s.XORKeyStream(junk[:skip], junk[:skip])
	}
}

// SetCounter positions the counter at n, discarding buffered keystream.
func (s *CTR) SetCounter(n uint64) {
	s.setCounter(n)
	s.leftover = 0
}

func (s *CTR) setCounter(n uint64) {
	start := BlockSize - s.counterBytes
	for i := range s.block[start:] {
		s.block[start+i] = 0
	}
	if s.counterBytes >= 8 {
		binary.BigEndian.PutUint64(s.block[BlockSize-8:], n)
	} else {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], n)
		copy(s.block[start:], tmp[8-s.counterBytes:])
	}
}

// increment steps the big-endian counter in the trailing bytes.
func (s *CTR) increment() {
	for i := BlockSize - 1; i >= BlockSize-s.counterBytes; i-- {
		s.block[i]++
		if s.block[i] != 0 {
			break
		}
	}
}

// XORKeyStream XORs src with the keystream into dst, which may alias src.
func (s *CTR) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic(errors.New("aes: dst too short"))
	}
	for len(src) > 0 {
		if s.leftover == 0 {
			s.c.EncryptBlock(s.buf[:], s.block[:])
			s.increment()
			s.leftover = BlockSize
		}
		stream := s.buf[BlockSize-s.leftover:]
		n := len(src)
		if n > len(stream) {
			n = len(stream)
		}
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ stream[i]
		}
		s.leftover -= n
		dst, src = dst[n:], src[n:]
	}
}
