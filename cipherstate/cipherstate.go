// cipherstate.go - Streaming cipher state
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package cipherstate provides the unified chunked convert-and-MAC
// pipeline over the module's ciphers. A CipherState is initialized per
// message, fed chunks whose concatenation equals the one-shot input, and
// finalized into the ciphertext (or plaintext) plus the message tag. The
// MAC is always computed over ciphertext: encrypt-then-MAC for AES-CBC
// and AES-CTR, the AEAD tag construction otherwise.
//
// A CipherState also enforces the per-key message budget: a single state
// starts at most 2^47 messages and refuses any message after that.
package cipherstate

import (
	"fmt"
	"hash"

	cryptkit "gitlab.com/auklet/cryptkit.git"
	"gitlab.com/auklet/cryptkit.git/chacha20"
)

// maxMessages is the message budget of one state.
const maxMessages = uint64(1) << 47

// Algorithm selects the cipher + MAC pipeline.
type Algorithm int

const (
	// AESGCM is AES in Galois/Counter Mode.
	AESGCM Algorithm = iota
	// AESCTRHMAC is AES-CTR with an HMAC tag over the AAD and ciphertext.
	AESCTRHMAC
	// AESCBCHMAC is AES-CBC with PKCS#7 padding and an HMAC tag over the
	// AAD and ciphertext.
	AESCBCHMAC
	// ChaCha20Poly1305 is the RFC 7539 AEAD.
	ChaCha20Poly1305
	// XChaCha20Poly1305 is the extended-nonce variant.
	XChaCha20Poly1305
)

// NonceSize returns the nonce length the algorithm requires.
func (a Algorithm) NonceSize() int {
	switch a {
	case AESGCM:
		return 12
	case AESCTRHMAC:
		return 8
	case AESCBCHMAC:
		return 16
	case ChaCha20Poly1305:
		return 12
	case XChaCha20Poly1305:
		return 24
	}
	return -1
}

// CipherState is a per-message convert pipeline. Initialize, then any
// number of ConvertChunk calls, then Convert. Reuse after Convert without
// a fresh Initialize is a state error.
type CipherState struct {
	alg  Algorithm
	key  []byte
	hash func() hash.Hash

	encrypting  bool
	initialized bool
	messages    uint64

	engine engine
}

// engine is one message's worth of keystream + MAC state.
type engine interface {
	// convert transforms a chunk; for block modes the returned slice may
	// be shorter than the input while bytes sit in the block buffer.
	convert(p []byte) []byte
	// finalize flushes buffered bytes and returns (tail, mac, padding
	// error). The padding error is reported only after the tag check.
	finalize() ([]byte, cryptkit.Mac, error)
}

// New builds a CipherState for the algorithm and key. HMAC-carrying
// algorithms hash with h; AEAD algorithms ignore it.
func New(alg Algorithm, key []byte, h func() hash.Hash) (*CipherState, error) {
	switch alg {
	case AESGCM, AESCTRHMAC, AESCBCHMAC:
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: aes key length %d", cryptkit.ErrInvalidArgument, len(key))
		}
	case ChaCha20Poly1305, XChaCha20Poly1305:
		if len(key) != chacha20.KeySize {
			return nil, fmt.Errorf("%w: chacha20 key length %d", cryptkit.ErrInvalidArgument, len(key))
		}
	default:
		return nil, cryptkit.ErrUnimplemented
	}
	if (alg == AESCTRHMAC || alg == AESCBCHMAC) && h == nil {
		return nil, fmt.Errorf("%w: missing mac hash", cryptkit.ErrInvalidArgument)
	}
	return &CipherState{alg: alg, key: append([]byte{}, key...), hash: h}, nil
}

// Initialize starts a new message. keyStreamIndex offsets the keystream
// for resumable stream modes and must be zero for AES-CBC.
func (cs *CipherState) Initialize(encrypting bool, nonce, aad []byte, keyStreamIndex uint64) error {
	if cs.messages >= maxMessages {
		return fmt.Errorf("%w: message budget exhausted", cryptkit.ErrState)
	}
	if len(nonce) != cs.alg.NonceSize() {
		return fmt.Errorf("%w: nonce length %d", cryptkit.ErrInvalidArgument, len(nonce))
	}
	if cs.alg == AESCBCHMAC && keyStreamIndex != 0 {
		return fmt.Errorf("%w: cbc has no keystream", cryptkit.ErrInvalidArgument)
	}

	var err error
	switch cs.alg {
	case AESGCM:
		cs.engine, err = newGCMEngine(cs.key, nonce, aad, keyStreamIndex, encrypting)
	case AESCTRHMAC:
		cs.engine, err = newCTREngine(cs.key, cs.hash, nonce, aad, keyStreamIndex, encrypting)
	case AESCBCHMAC:
		cs.engine, err = newCBCEngine(cs.key, cs.hash, nonce, aad, encrypting)
	case ChaCha20Poly1305, XChaCha20Poly1305:
		cs.engine, err = newChaChaEngine(cs.key, nonce, aad, keyStreamIndex, encrypting)
	}
	if err != nil {
		return err
	}
	cs.encrypting = encrypting
	cs.initialized = true
	cs.messages++
	return nil
}

// ConvertChunk transforms the next chunk of the message. Stream modes
// overwrite p in place and return it; block modes may buffer a tail.
func (cs *CipherState) ConvertChunk(p []byte) ([]byte, error) {
	if !cs.initialized {
		return nil, fmt.Errorf("%w: cipher state not initialized", cryptkit.ErrState)
	}
	return cs.engine.convert(p), nil
}

// Convert consumes the final chunk (which may be empty), finalizes the
// message and returns the remaining output and the tag. On the decrypt
// path a non-nil expectedMac that does not match the computed tag fails
// with the authentication error; the comparison is constant-time.
func (cs *CipherState) Convert(p []byte, expectedMac cryptkit.Mac) ([]byte, cryptkit.Mac, error) {
	if !cs.initialized {
		return nil, nil, fmt.Errorf("%w: cipher state not initialized", cryptkit.ErrState)
	}
	cs.initialized = false

	out := cs.engine.convert(p)
	tail, mac, padErr := cs.engine.finalize()
	cs.engine = nil
	out = append(out, tail...)

	// The tag decides before the padding does, so a tampered message is
	// always an authentication failure.
	if expectedMac != nil && !mac.Equal(expectedMac) {
		return nil, nil, cryptkit.ErrAuthentication
	}
	if padErr != nil {
		return nil, nil, padErr
	}
	return out, mac, nil
}
