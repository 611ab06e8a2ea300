// gcm.go - AES-GCM AEAD
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package aes

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	// GCMTagSize is the authentication tag length in bytes.
	GCMTagSize = 16
	// GCMNonceSize is the recommended nonce length in bytes.
	GCMNonceSize = 12
	// GCMMinNonceSize is the smallest accepted nonce length in bytes.
	GCMMinNonceSize = 4
)

var (
	// ErrInvalidGCMNonce is thrown via a panic when a nonce is shorter
	// than 4 bytes.
	ErrInvalidGCMNonce = errors.New("aes: invalid GCM nonce size")

	// ErrGCMOpen is the error returned when the message authentication
	// fails during an Open call.
	ErrGCMOpen = errors.New("aes: GCM message authentication failed")
)

// GCM is an AES-GCM instance, implementing crypto/cipher.AEAD for 12-byte
// nonces and additionally accepting any nonce of at least 4 bytes.
type GCM struct {
	c *Cipher
	h [BlockSize]byte
}

// NewGCM wraps c in Galois/Counter Mode. The hash subkey H is the
// encryption of the zero block.
func NewGCM(c *Cipher) *GCM {
	g := &GCM{c: c}
	var zero [BlockSize]byte
	c.EncryptBlock(g.h[:], zero[:])
	return g
}

// NonceSize returns the recommended nonce size.
func (g *GCM) NonceSize() int { return GCMNonceSize }

// Overhead returns the tag length.
func (g *GCM) Overhead() int { return GCMTagSize }

// Seal encrypts and authenticates plaintext, authenticates the additional
// data, and appends ciphertext || tag to dst.
func (g *GCM) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) < GCMMinNonceSize {
		panic(ErrInvalidGCMNonce)
	}

	var j0 [BlockSize]byte
	g.deriveCounter(&j0, nonce)

	ret, out := sliceForAppend(dst, len(plaintext)+GCMTagSize)
	ctr := g.payloadStream(&j0)
	ctr.XORKeyStream(out, plaintext)

	tag := g.authTag(&j0, additionalData, out[:len(plaintext)])
	copy(out[len(plaintext):], tag[:])
	return ret
}

// Open authenticates and decrypts ciphertext. The tag comparison is
// constant-time and happens before any plaintext is produced.
func (g *GCM) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) < GCMMinNonceSize {
		panic(ErrInvalidGCMNonce)
	}
	if len(ciphertext) < GCMTagSize {
		return nil, ErrGCMOpen
	}
	ct, expected := ciphertext[:len(ciphertext)-GCMTagSize], ciphertext[len(ciphertext)-GCMTagSize:]

	var j0 [BlockSize]byte
	g.deriveCounter(&j0, nonce)

	tag := g.authTag(&j0, additionalData, ct)
	if subtle.ConstantTimeCompare(tag[:], expected) != 1 {
		return nil, ErrGCMOpen
	}

	ret, out := sliceForAppend(dst, len(ct))
	ctr := g.payloadStream(&j0)
	ctr.XORKeyStream(out, ct)
	return ret, nil
}

// deriveCounter computes J0: nonce || 0^31 || 1 for 12-byte nonces, else
// GHASH_H(nonce zero-padded || len(nonce) in bits).
func (g *GCM) deriveCounter(j0 *[BlockSize]byte, nonce []byte) {
	if len(nonce) == GCMNonceSize {
		copy(j0[:], nonce)
		j0[BlockSize-1] = 1
		return
	}
	gh := NewGHASH(g.h[:])
	gh.Write(nonce)
	gh.PadZero()
	var lens [BlockSize]byte
	binary.BigEndian.PutUint64(lens[8:], uint64(len(nonce))<<3)
	gh.Write(lens[:])
	sum := gh.Sum()
	copy(j0[:], sum[:])
}

// payloadStream returns the counter stream starting at inc32(J0), the
// first payload counter block.
func (g *GCM) payloadStream(j0 *[BlockSize]byte) *CTR {
	ctr, err := NewCTR(g.c, j0[:12], 32)
	if err != nil {
		panic("aes: gcm counter construction: " + err.Error())
	}
	ctr.setCounter(uint64(binary.BigEndian.Uint32(j0[12:])) + 1)
	return ctr
}

// authTag computes GHASH over aad || ct with length framing, then masks it
// with E(K, J0).
func (g *GCM) authTag(j0 *[BlockSize]byte, aad, ct []byte) [GCMTagSize]byte {
	gh := NewGHASH(g.h[:])
	gh.Write(aad)
	gh.PadZero()
	gh.Write(ct)
	gh.WriteLengths(uint64(len(aad)), uint64(len(ct)))
	tag := gh.Sum()

	var mask [BlockSize]byte
	g.c.EncryptBlock(mask[:], j0[:])
	for i := range tag {
		tag[i] ^= mask[i]
	}
	return tag
}

// Shamelessly stolen from the Go runtime library.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
