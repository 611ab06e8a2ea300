// suite.go - Noise algorithm suite
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package noise implements the Noise Protocol Framework handshake engine
// over the module's own primitives: X25519 for DH, AES-GCM or
// ChaCha20-Poly1305 for the transport cipher, SHA-256 or BLAKE2s for the
// handshake hash. Supported one-way and interactive patterns are N, K, X,
// NK, NK1, KK, IK, XX and X1X, plus psk0..psk3 modifiers.
package noise

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	cryptkit "gitlab.com/auklet/cryptkit.git"
	"gitlab.com/auklet/cryptkit.git/aes"
	"gitlab.com/auklet/cryptkit.git/blake2s"
	"gitlab.com/auklet/cryptkit.git/chacha20poly1305"
	"gitlab.com/auklet/cryptkit.git/sha2"
	"gitlab.com/auklet/cryptkit.git/x25519"
)

const (
	// DHLen is the X25519 public key and shared secret length.
	DHLen = 32
	// KeyLen is the transport cipher key length.
	KeyLen = 32
	// TagLen is the AEAD tag length.
	TagLen = 16
)

var (
	// ErrUnknownProtocol is returned for protocol names naming an
	// unsupported pattern, cipher, hash or DH function.
	ErrUnknownProtocol = errors.New("noise: unknown protocol name")
)

// DHKey is an X25519 key pair.
type DHKey struct {
	Private []byte
	Public  []byte
}

// GenerateKeypair makes a fresh X25519 key pair from rng (crypto/rand
// when nil).
func GenerateKeypair(rng io.Reader) (DHKey, error) {
	if rng == nil {
		rng = rand.Reader
	}
	priv, pub, err := x25519.GenerateKey(rng)
	if err != nil {
		return DHKey{}, err
	}
	return DHKey{Private: priv, Public: pub}, nil
}

// GenerateKeypairFromPrivate derives the public half of a fixed private
// scalar, for pinning ephemerals in test fixtures and key stores.
func GenerateKeypairFromPrivate(priv []byte) (*DHKey, error) {
	pub, err := x25519.ScalarBaseMult(priv)
	if err != nil {
		return nil, err
	}
	return &DHKey{Private: append([]byte{}, priv...), Public: pub}, nil
}

// dh computes the X25519 shared secret.
func dh(priv, pub []byte) ([]byte, error) {
	return x25519.X25519(priv, pub)
}

// cipherFunc seals and opens with a counter-derived nonce: four zero
// bytes followed by the little-endian message counter.
type cipherFunc interface {
	name() string
	encrypt(k []byte, n uint64, ad, plaintext []byte) []byte
	decrypt(k []byte, n uint64, ad, ciphertext []byte) ([]byte, error)
}

func counterNonce(n uint64) [12]byte {
	var nonce [12]byte
	binary.LittleEndian.PutUint64(nonce[4:], n)
	return nonce
}

type chachaPolyFunc struct{}

func (chachaPolyFunc) name() string { return "ChaChaPoly" }

func (chachaPolyFunc) encrypt(k []byte, n uint64, ad, plaintext []byte) []byte {
	nonce := counterNonce(n)
	return chacha20poly1305.New(k).Seal(nil, nonce[:], plaintext, ad)
}

func (chachaPolyFunc) decrypt(k []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	nonce := counterNonce(n)
	pt, err := chacha20poly1305.New(k).Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, cryptkit.ErrAuthentication
	}
	return pt, nil
}

type aesGCMFunc struct{}

func (aesGCMFunc) name() string { return "AESGCM" }

func (aesGCMFunc) aead(k []byte) *aes.GCM {
	c, err := aes.New(k)
	if err != nil {
		panic("noise: aes key: " + err.Error())
	}
	return aes.NewGCM(c)
}

func (f aesGCMFunc) encrypt(k []byte, n uint64, ad, plaintext []byte) []byte {
	nonce := counterNonce(n)
	return f.aead(k).Seal(nil, nonce[:], plaintext, ad)
}

func (f aesGCMFunc) decrypt(k []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	nonce := counterNonce(n)
	pt, err := f.aead(k).Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, cryptkit.ErrAuthentication
	}
	return pt, nil
}

// hashFunc names a handshake hash and builds its sinks.
type hashFunc struct {
	hashName string
	new      func() hash.Hash
	size     int
	block    int
}

var (
	hashSHA256 = hashFunc{"SHA256", sha2.New256, sha2.Size256, sha2.BlockSize256}
	hashBLAKE2s = hashFunc{"BLAKE2s", func() hash.Hash {
		d, _ := blake2s.New(blake2s.Size, nil)
		return d
	}, blake2s.Size, blake2s.BlockSize}
)

// protocol binds the parsed protocol name to its algorithm suite.
type protocol struct {
	name    string
	pattern handshakePattern
	cipher  cipherFunc
	hash    hashFunc
}

// parseProtocol resolves "Noise_<pattern>_<dh>_<cipher>_<hash>".
func parseProtocol(name string) (*protocol, error) {
	var parts [5]string
	n := 0
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '_' {
			if n == 5 {
				return nil, ErrUnknownProtocol
			}
			parts[n] = name[start:i]
			n++
			start = i + 1
		}
	}
	if n != 5 || parts[0] != "Noise" {
		return nil, ErrUnknownProtocol
	}
	if parts[2] != "25519" {
		return nil, fmt.Errorf("%w: DH %q", ErrUnknownProtocol, parts[2])
	}

	pattern, err := lookupPattern(parts[1])
	if err != nil {
		return nil, err
	}

	var cf cipherFunc
	switch parts[3] {
	case "ChaChaPoly":
		cf = chachaPolyFunc{}
	case "AESGCM":
		cf = aesGCMFunc{}
	default:
		return nil, fmt.Errorf("%w: cipher %q", ErrUnknownProtocol, parts[3])
	}

	var hf hashFunc
	switch parts[4] {
	case "SHA256":
		hf = hashSHA256
	case "BLAKE2s":
		hf = hashBLAKE2s
	default:
		return nil, fmt.Errorf("%w: hash %q", ErrUnknownProtocol, parts[4])
	}

	return &protocol{name: name, pattern: pattern, cipher: cf, hash: hf}, nil
}
