// aescbc.go - AES-CBC with attached MAC
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package aescbc implements AES-CBC in an encrypt-then-MAC construction.
// CBC is only offered with the MAC attached: Seal produces the
// (ciphertext, nonce, mac) triple and Open verifies the MAC before it
// touches the ciphertext. Padding errors are reported distinctly from
// authentication errors so callers can tell corruption from tampering.
package aescbc

import (
	"fmt"
	"hash"

	cryptkit "gitlab.com/auklet/cryptkit.git"
	"gitlab.com/auklet/cryptkit.git/aes"
	"gitlab.com/auklet/cryptkit.git/blake2b"
	"gitlab.com/auklet/cryptkit.git/blake2s"
	"gitlab.com/auklet/cryptkit.git/hmacx"
)

const (
	// NonceSize is the CBC IV length in bytes.
	NonceSize = 16
)

// Padding selects how plaintext is extended to the block boundary.
type Padding int

const (
	// PaddingPKCS7 appends 1..16 bytes, each holding the pad length.
	PaddingPKCS7 Padding = iota
	// PaddingZero appends zero bytes; the pad is not stripped on Open
	// since it is not self-describing.
	PaddingZero
)

// MacAlgorithm computes the attached tag over the AAD and ciphertext.
type MacAlgorithm interface {
	// Size returns the tag length in bytes.
	Size() int
	// Sum MACs aad || ciphertext under key.
	Sum(key, aad, ciphertext []byte) cryptkit.Mac
}

// HMAC returns a MacAlgorithm computing HMAC over h.
func HMAC(h func() hash.Hash) MacAlgorithm { return hmacAlg{h} }

type hmacAlg struct{ h func() hash.Hash }

func (a hmacAlg) Size() int { return a.h().Size() }

func (a hmacAlg) Sum(key, aad, ct []byte) cryptkit.Mac {
	hm := hmacx.New(a.h, key)
	hm.Write(aad)
	hm.Write(ct)
	return cryptkit.Mac(hm.Sum(nil))
}

// Blake2b returns a MacAlgorithm using keyed BLAKE2b with the given tag
// size.
func Blake2b(size int) MacAlgorithm { return blake2bAlg{size} }

type blake2bAlg struct{ size int }

func (a blake2bAlg) Size() int { return a.size }

func (a blake2bAlg) Sum(key, aad, ct []byte) cryptkit.Mac {
	if len(key) > blake2b.MaxKeySize {
		key = key[:blake2b.MaxKeySize]
	}
	d, err := blake2b.New(a.size, key)
	if err != nil {
		panic("aescbc: blake2b mac: " + err.Error())
	}
	d.Write(aad)
	d.Write(ct)
	return cryptkit.Mac(d.Sum(nil))
}

// Blake2s returns a MacAlgorithm using keyed BLAKE2s with the given tag
// size.
func Blake2s(size int) MacAlgorithm { return blake2sAlg{size} }

type blake2sAlg struct{ size int }

func (a blake2sAlg) Size() int { return a.size }

func (a blake2sAlg) Sum(key, aad, ct []byte) cryptkit.Mac {
	if len(key) > blake2s.MaxKeySize {
		key = key[:blake2s.MaxKeySize]
	}
	d, err := blake2s.New(a.size, key)
	if err != nil {
		panic("aescbc: blake2s mac: " + err.Error())
	}
	d.Write(aad)
	d.Write(ct)
	return cryptkit.Mac(d.Sum(nil))
}

// AEAD is an AES-CBC + MAC instance.
type AEAD struct {
	key     []byte
	cipher  *aes.Cipher
	mac     MacAlgorithm
	padding Padding
}

// New builds an AEAD for a 16, 24 or 32-byte key with PKCS#7 padding.
func New(key []byte, mac MacAlgorithm) (*AEAD, error) {
	return NewWithPadding(key, mac, PaddingPKCS7)
}

// NewWithPadding is New with an explicit padding algorithm.
func NewWithPadding(key []byte, mac MacAlgorithm, padding Padding) (*AEAD, error) {
	c, err := aes.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: cbc key length %d", cryptkit.ErrInvalidArgument, len(key))
	}
	return &AEAD{
		key:     append([]byte{}, key...),
		cipher:  c,
		mac:     mac,
		padding: padding,
	}, nil
}

// NonceSize returns the IV length.
func (ae *AEAD) NonceSize() int { return NonceSize }

// Overhead returns the attached tag length.
func (ae *AEAD) Overhead() int { return ae.mac.Size() }

// Seal pads and encrypts plaintext under the 16-byte nonce and MACs the
// resulting ciphertext together with the AAD.
func (ae *AEAD) Seal(plaintext, nonce, aad []byte) (*cryptkit.SecretBox, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: cbc nonce length %d", cryptkit.ErrInvalidArgument, len(nonce))
	}

	padded := pad(plaintext, ae.padding)
	if err := aes.CBCEncrypt(ae.cipher, nonce, padded, padded); err != nil {
		return nil, err
	}
	return &cryptkit.SecretBox{
		Ciphertext: padded,
		Nonce:      append([]byte{}, nonce...),
		Mac:        ae.mac.Sum(ae.key, aad, padded),
	}, nil
}

// Open verifies the MAC, then decrypts and unpads. A MAC mismatch returns
// the authentication error without decrypting; bad padding after a valid
// MAC returns the distinct padding error.
func (ae *AEAD) Open(box *cryptkit.SecretBox, aad []byte) ([]byte, error) {
	if len(box.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: cbc nonce length %d", cryptkit.ErrInvalidArgument, len(box.Nonce))
	}
	if len(box.Ciphertext) == 0 || len(box.Ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: cbc ciphertext length %d", cryptkit.ErrInvalidArgument, len(box.Ciphertext))
	}

	want := ae.mac.Sum(ae.key, aad, box.Ciphertext)
	if !want.Equal(box.Mac) {
		return nil, cryptkit.ErrAuthentication
	}

	plain := make([]byte, len(box.Ciphertext))
	if err := aes.CBCDecrypt(ae.cipher, box.Nonce, plain, box.Ciphertext); err != nil {
		return nil, err
	}
	return unpad(plain, ae.padding)
}

// Zeroize wipes the key and the expanded schedules.
func (ae *AEAD) Zeroize() {
	for i := range ae.key {
		ae.key[i] = 0
	}
	ae.cipher.Zeroize()
}

func pad(p []byte, alg Padding) []byte {
	if alg == PaddingZero {
		n := aes.BlockSize - len(p)%aes.BlockSize
		if n == aes.BlockSize && len(p) > 0 {
			return append([]byte{}, p...)
		}
		out := make([]byte, len(p)+n)
		copy(out, p)
		return out
	}
	n := aes.BlockSize - len(p)%aes.BlockSize
	out := make([]byte, len(p)+n)
	copy(out, p)
	for i := len(p); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(p []byte, alg Padding) ([]byte, error) {
	if alg == PaddingZero {
		// Zero padding is not self-describing; the caller sees it.
		return p, nil
	}
	n := int(p[len(p)-1])
	if n == 0 || n > aes.BlockSize || n > len(p) {
		return nil, cryptkit.ErrPadding
	}
	for _, b := range p[len(p)-n:] {
		if int(b) != n {
			return nil, cryptkit.ErrPadding
		}
	}
	return p[:len(p)-n], nil
}
