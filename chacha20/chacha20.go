// chacha20.go - ChaCha20 stream cipher
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package chacha20 implements the ChaCha20 stream cipher of RFC 7539,
// together with the HChaCha20 subkey function and the XChaCha20 extended
// nonce variant.
package chacha20

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

const (
	// KeySize is the key length in bytes.
	KeySize = 32
	// NonceSize is the ChaCha20 nonce length in bytes.
	NonceSize = 12
	// NonceSizeX is the XChaCha20 nonce length in bytes.
	NonceSizeX = 24
	// HNonceSize is the HChaCha20 input length in bytes.
	HNonceSize = 16
	// BlockSize is the keystream block size in bytes.
	BlockSize = 64
)

var (
	// ErrInvalidKeySize is returned for keys that are not 32 bytes.
	ErrInvalidKeySize = errors.New("chacha20: invalid key size")
	// ErrInvalidNonceSize is returned for nonces of unsupported length.
	ErrInvalidNonceSize = errors.New("chacha20: invalid nonce size")
	// ErrShortDst is thrown via a panic when dst is shorter than src.
	ErrShortDst = errors.New("chacha20: dst too short")

	// "expand 32-byte k"
	constants = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}
)

// Cipher is a keyed ChaCha20 keystream positioned at some offset.
type Cipher struct {
	input [16]uint32
	buf   [BlockSize]byte
	// leftover is how many tail bytes of buf are still unconsumed keystream.
	leftover int
}

// New returns a ChaCha20 cipher for a 32-byte key and a 12-byte (RFC 7539)
// or 24-byte (XChaCha20) nonce, positioned at keystream offset 0.
func New(key, nonce []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	switch len(nonce) {
	case NonceSize:
	case NonceSizeX:
		subkey := HChaCha20(key, nonce[:HNonceSize])
		var inner [NonceSize]byte
		copy(inner[4:], nonce[HNonceSize:])
		return New(subkey[:], inner[:])
	default:
		return nil, ErrInvalidNonceSize
	}

	c := &Cipher{}
	copy(c.input[:4], constants[:])
	for i := 0; i < 8; i++ {
		c.input[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	c.input[13] = binary.LittleEndian.Uint32(nonce[0:])
	c.input[14] = binary.LittleEndian.Uint32(nonce[4:])
	c.input[15] = binary.LittleEndian.Uint32(nonce[8:])
	return c, nil
}

// SetCounter positions the keystream at block n, discarding buffered
// keystream bytes.
func (c *Cipher) SetCounter(n uint32) {
	c.input[12] = n
	c.leftover = 0
}

// SetKeyStreamIndex positions the keystream at byte offset idx: the counter
// becomes idx/64 and the first idx%64 bytes of that block are discarded.
func (c *Cipher) SetKeyStreamIndex(idx uint64) {
	c.SetCounter(uint32(idx / BlockSize))
	if skip := int(idx % BlockSize); skip > 0 {
		var junk [BlockSize]byte
		c.XORKeyStream(junk[:skip], junk[:skip])
	}
}

// XORKeyStream XORs src with the keystream into dst, which may alias src.
func (c *Cipher) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic(ErrShortDst)
	}
	if c.leftover > 0 {
		n := xorBytes(dst, src, c.buf[BlockSize-c.leftover:])
		c.leftover -= n
		dst, src = dst[n:], src[n:]
	}
	for len(src) > 0 {
		c.block()
		n := xorBytes(dst, src, c.buf[:])
		c.leftover = BlockSize - n
		dst, src = dst[n:], src[n:]
	}
}

// KeyStream writes raw keystream bytes to dst.
func (c *Cipher) KeyStream(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	c.XORKeyStream(dst, dst)
}

// block generates the next keystream block into c.buf and advances the
// counter.
func (c *Cipher) block() {
	x := c.input
	rounds(&x)
	for i, v := range c.input {
		x[i] += v
	}
	for i, v := range x {
		binary.LittleEndian.PutUint32(c.buf[i*4:], v)
	}
	c.input[12]++
}

// HChaCha20 derives a 256-bit subkey from a key and a 16-byte nonce by
// running the 20 rounds without the final state addition and returning
// words 0..3 and 12..15 (RFC 8439 §2.2 construction).
func HChaCha20(key, nonce []byte) [KeySize]byte {
	if len(key) != KeySize {
		panic(ErrInvalidKeySize)
	}
	if len(nonce) != HNonceSize {
		panic(ErrInvalidNonceSize)
	}

	var x [16]uint32
	copy(x[:4], constants[:])
	for i := 0; i < 8; i++ {
		x[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	for i := 0; i < 4; i++ {
		x[12+i] = binary.LittleEndian.Uint32(nonce[i*4:])
	}
	rounds(&x)

	var out [KeySize]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], x[i])
		binary.LittleEndian.PutUint32(out[16+i*4:], x[12+i])
	}
	return out
}

// rounds applies the 10 double rounds in place.
func rounds(x *[16]uint32) {
	for i := 0; i < 10; i++ {
		quarterRound(x, 0, 4, 8, 12)
		quarterRound(x, 1, 5, 9, 13)
		quarterRound(x, 2, 6, 10, 14)
		quarterRound(x, 3, 7, 11, 15)
		quarterRound(x, 0, 5, 10, 15)
		quarterRound(x, 1, 6, 11, 12)
		quarterRound(x, 2, 7, 8, 13)
		quarterRound(x, 3, 4, 9, 14)
	}
}

func quarterRound(x *[16]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 16)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 12)
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 8)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 7)
}

// xorBytes XORs min(len(dst), len(src), len(stream)) bytes of src with
// stream into dst and returns the count.
func xorBytes(dst, src, stream []byte) int {
	n := len(src)
	if len(stream) < n {
		n = len(stream)
	}
	for i := 0; i < n; i++ {
		dst[i] = src[i] ^ stream[i]
	}
	return n
}
