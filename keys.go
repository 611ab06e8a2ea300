// keys.go - Key containers
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cryptkit

import (
	"crypto/subtle"
	"fmt"
)

// KeyPairType identifies the algorithm a key belongs to.
type KeyPairType int

const (
	// KeyPairX25519 is a Curve25519 Diffie-Hellman key.
	KeyPairX25519 KeyPairType = iota
	// KeyPairEd25519 is an Ed25519 signing key.
	KeyPairEd25519
	// KeyPairP256 is a NIST P-256 key. No primitive in this module consumes
	// it; the tag exists so containers can carry foreign keys.
	KeyPairP256
	// KeyPairP384 is a NIST P-384 key.
	KeyPairP384
	// KeyPairP521 is a NIST P-521 key.
	KeyPairP521
)

// publicKeyLen maps a key type to its serialized public key length.
func publicKeyLen(t KeyPairType) int {
	switch t {
	case KeyPairX25519, KeyPairEd25519:
		return 32
	case KeyPairP256:
		return 65
	case KeyPairP384:
		return 97
	case KeyPairP521:
		return 133
	}
	return -1
}

// Zeroizer is anything holding derived key material that must be wiped
// together with the key that produced it, such as an expanded AES key
// schedule.
type Zeroizer interface {
	Zeroize()
}

// SecretKey is an owned secret byte sequence. Comparisons are constant-time.
// When zeroize-on-destroy is requested, Zeroize wipes the bytes and every
// cache attached with AttachCache.
type SecretKey struct {
	b         []byte
	destroyed bool
	caches    []Zeroizer
}

// NewSecretKey copies b into a fresh SecretKey.
func NewSecretKey(b []byte) *SecretKey {
	return &SecretKey{b: append([]byte{}, b...)}
}

// Bytes returns the key material. The caller must not hold the slice past
// the key's lifetime.
func (k *SecretKey) Bytes() []byte {
	if k.destroyed {
		panic(ErrState)
	}
	return k.b
}

// Len returns the key length in bytes.
func (k *SecretKey) Len() int { return len(k.b) }

// Equal compares two keys in constant time.
func (k *SecretKey) Equal(other *SecretKey) bool {
	if len(k.b) != len(other.b) {
		return false
	}
	return subtle.ConstantTimeCompare(k.b, other.b) == 1
}

// AttachCache registers derived material to be wiped with the key.
func (k *SecretKey) AttachCache(z Zeroizer) {
	k.caches = append(k.caches, z)
}

// Zeroize wipes the key bytes and all attached caches. Any use of the key
// afterwards panics with ErrState.
func (k *SecretKey) Zeroize() {
	for i := range k.b {
		k.b[i] = 0
	}
	for _, z := range k.caches {
		z.Zeroize()
	}
	k.caches = nil
	k.destroyed = true
}

// PublicKey is a byte sequence tagged with its algorithm. The tag/length
// invariant is checked at construction.
type PublicKey struct {
	Type KeyPairType
	b    []byte
}

// NewPublicKey validates the length of b against the key type.
func NewPublicKey(t KeyPairType, b []byte) (*PublicKey, error) {
	if want := publicKeyLen(t); want != len(b) {
		return nil, fmt.Errorf("%w: public key type %d wants %d bytes, got %d",
			ErrInvalidArgument, t, want, len(b))
	}
	return &PublicKey{Type: t, b: append([]byte{}, b...)}, nil
}

// Bytes returns the serialized public key.
func (k *PublicKey) Bytes() []byte { return k.b }

// Equal compares two public keys in constant time.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k.Type != other.Type || len(k.b) != len(other.b) {
		return false
	}
	return subtle.ConstantTimeCompare(k.b, other.b) == 1
}

// Mac is a fixed-length authentication tag. Comparisons are constant-time.
type Mac []byte

// Equal compares two tags in constant time.
func (m Mac) Equal(other Mac) bool {
	if len(m) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(m, other) == 1
}
