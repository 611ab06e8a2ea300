// cipherstate.go - Noise cipher state
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package noise

import (
	"fmt"

	cryptkit "gitlab.com/auklet/cryptkit.git"
)

// maxNonce is the forbidden counter value; encrypting with it would reuse
// the rekey nonce.
const maxNonce = ^uint64(0)

// CipherState is a key plus a message counter. Without a key, encrypt and
// decrypt pass data through unchanged, which is how handshake payloads
// travel before any DH output has been mixed.
type CipherState struct {
	cf cipherFunc
	k  []byte
	n  uint64
}

// InitializeKey sets the key (nil clears it) and resets the counter.
func (cs *CipherState) InitializeKey(k []byte) {
	if k == nil {
		cs.k = nil
	} else {
		cs.k = append(cs.k[:0], k[:KeyLen]...)
	}
	cs.n = 0
}

// HasKey reports whether a key is set.
func (cs *CipherState) HasKey() bool { return cs.k != nil }

// SetNonce overrides the counter, for out-of-order transports.
func (cs *CipherState) SetNonce(n uint64) { cs.n = n }

// Nonce returns the current counter.
func (cs *CipherState) Nonce() uint64 { return cs.n }

// EncryptWithAd encrypts plaintext bound to ad under the current counter
// and increments it. At the counter ceiling the state refuses to encrypt.
func (cs *CipherState) EncryptWithAd(ad, plaintext []byte) ([]byte, error) {
	if cs.k == nil {
		return append([]byte{}, plaintext...), nil
	}
	if cs.n == maxNonce {
		return nil, fmt.Errorf("%w: noise nonce exhausted", cryptkit.ErrState)
	}
	ct := cs.cf.encrypt(cs.k, cs.n, ad, plaintext)
	cs.n++
	return ct, nil
}

// DecryptWithAd authenticates and decrypts ciphertext bound to ad. The
// counter is only advanced when authentication succeeds.
func (cs *CipherState) DecryptWithAd(ad, ciphertext []byte) ([]byte, error) {
	if cs.k == nil {
		return append([]byte{}, ciphertext...), nil
	}
	if cs.n == maxNonce {
		return nil, fmt.Errorf("%w: noise nonce exhausted", cryptkit.ErrState)
	}
	pt, err := cs.cf.decrypt(cs.k, cs.n, ad, ciphertext)
	if err != nil {
		return nil, err
	}
	cs.n++
	return pt, nil
}

// Rekey replaces the key with ENCRYPT(k, maxNonce, "", zeros32)[:32],
// leaving the counter untouched.
func (cs *CipherState) Rekey() {
	if cs.k == nil {
		return
	}
	var zeros [KeyLen]byte
	ct := cs.cf.encrypt(cs.k, maxNonce, nil, zeros[:])
	cs.k = append(cs.k[:0], ct[:KeyLen]...)
}
