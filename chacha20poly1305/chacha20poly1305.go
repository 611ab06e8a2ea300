// chacha20poly1305.go - ChaCha20-Poly1305 AEAD
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package chacha20poly1305 implements the ChaCha20-Poly1305 AEAD of
// RFC 7539 and its XChaCha20-Poly1305 extended-nonce variant, as
// crypto/cipher.AEAD instances.
package chacha20poly1305

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"gitlab.com/auklet/cryptkit.git/chacha20"
	"gitlab.com/auklet/cryptkit.git/poly1305"
)

const (
	// KeySize is the key length in bytes.
	KeySize = 32
	// NonceSize is the nonce length of ChaCha20-Poly1305 in bytes.
	NonceSize = 12
	// NonceSizeX is the nonce length of XChaCha20-Poly1305 in bytes.
	NonceSizeX = 24
	// TagSize is the Poly1305 tag length in bytes.
	TagSize = 16
)

var (
	// ErrInvalidKeySize is the error thrown via a panic when a key is an
	// invalid size.
	ErrInvalidKeySize = errors.New("chacha20poly1305: invalid key size")

	// ErrInvalidNonceSize is the error thrown via a panic when a nonce is
	// an invalid size.
	ErrInvalidNonceSize = errors.New("chacha20poly1305: invalid nonce size")

	// ErrOpen is the error returned when the message authentication fails
	// during an Open call.
	ErrOpen = errors.New("chacha20poly1305: message authentication failed")
)

// AEAD is a keyed ChaCha20-Poly1305 instance, implementing
// crypto/cipher.AEAD.
type AEAD struct {
	key       []byte
	nonceSize int
}

// New returns a ChaCha20-Poly1305 instance for a 32-byte key.
func New(key []byte) *AEAD {
	if len(key) != KeySize {
		panic(ErrInvalidKeySize)
	}
	return &AEAD{key: append([]byte{}, key...), nonceSize: NonceSize}
}

// NewX returns an XChaCha20-Poly1305 instance for a 32-byte key, taking
// 24-byte nonces.
func NewX(key []byte) *AEAD {
	if len(key) != KeySize {
		panic(ErrInvalidKeySize)
	}
	return &AEAD{key: append([]byte{}, key...), nonceSize: NonceSizeX}
}

// NonceSize returns the size of the nonce that must be passed to Seal and
// Open.
func (ae *AEAD) NonceSize() int {
	return ae.nonceSize
}

// Overhead returns the difference between the lengths of a plaintext and
// its ciphertext.
func (ae *AEAD) Overhead() int {
	return TagSize
}

// Seal encrypts and authenticates plaintext, authenticates the additional
// data and appends ciphertext || tag to dst, returning the updated slice.
func (ae *AEAD) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != ae.nonceSize {
		panic(ErrInvalidNonceSize)
	}

	ret, out := sliceForAppend(dst, len(plaintext)+TagSize)
	stream, polyKey := ae.initStream(nonce)
	stream.XORKeyStream(out, plaintext)

	tag := computeTag(polyKey, additionalData, out[:len(plaintext)])
	copy(out[len(plaintext):], tag[:])
	return ret
}

// Open decrypts and authenticates ciphertext, authenticates the additional
// data and, if the tag verifies, appends the plaintext to dst. The tag
// comparison is constant-time; on failure any written plaintext is purged.
func (ae *AEAD) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != ae.nonceSize {
		panic(ErrInvalidNonceSize)
	}
	if len(ciphertext) < TagSize {
		return nil, ErrOpen
	}
	ct, expected := ciphertext[:len(ciphertext)-TagSize], ciphertext[len(ciphertext)-TagSize:]

	stream, polyKey := ae.initStream(nonce)
	tag := computeTag(polyKey, additionalData, ct)
	if subtle.ConstantTimeCompare(tag[:], expected) != 1 {
		return nil, ErrOpen
	}

	ret, out := sliceForAppend(dst, len(ct))
	stream.XORKeyStream(out, ct)
	return ret, nil
}

// initStream keys the cipher, takes block 0 for the Poly1305 key, and
// leaves the stream at counter 1 for the payload.
func (ae *AEAD) initStream(nonce []byte) (*chacha20.Cipher, []byte) {
	stream, err := chacha20.New(ae.key, nonce)
	if err != nil {
		panic("chacha20poly1305: failed to instantiate chacha20: " + err.Error())
	}
	polyKey := make([]byte, poly1305.KeySize)
	var block0 [chacha20.BlockSize]byte
	stream.KeyStream(block0[:])
	copy(polyKey, block0[:])
	return stream, polyKey
}

// computeTag MACs pad16(aad) || pad16(ct) || len64(aad) || len64(ct).
func computeTag(polyKey, aad, ct []byte) [TagSize]byte {
	var pad [16]byte
	var lens [16]byte
	binary.LittleEndian.PutUint64(lens[0:], uint64(len(aad)))
	binary.LittleEndian.PutUint64(lens[8:], uint64(len(ct)))

	mac := poly1305.New(polyKey)
	mac.Write(aad)
	if n := len(aad) % 16; n != 0 {
		mac.Write(pad[n:])
	}
	mac.Write(ct)
	if n := len(ct) % 16; n != 0 {
		mac.Write(pad[n:])
	}
	mac.Write(lens[:])
	return mac.Sum()
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
