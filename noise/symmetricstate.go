// symmetricstate.go - Noise symmetric state
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package noise

import (
	"gitlab.com/auklet/cryptkit.git/hmacx"
)

// symmetricState is the chaining key, the transcript hash and the
// handshake cipher state.
type symmetricState struct {
	proto *protocol
	cs    CipherState
	ck    []byte
	h     []byte
}

// newSymmetricState seeds h with the protocol name (zero-padded when it
// fits the hash output length, hashed otherwise) and ck with h.
func newSymmetricState(proto *protocol) *symmetricState {
	ss := &symmetricState{proto: proto}
	ss.cs.cf = proto.cipher

	name := []byte(proto.name)
	if len(name) <= proto.hash.size {
		ss.h = make([]byte, proto.hash.size)
		copy(ss.h, name)
	} else {
		d := proto.hash.new()
		d.Write(name)
		ss.h = d.Sum(nil)
	}
	ss.ck = append([]byte{}, ss.h...)
	return ss
}

// mixHash absorbs data into the transcript hash.
func (ss *symmetricState) mixHash(data []byte) {
	d := ss.proto.hash.new()
	d.Write(ss.h)
	d.Write(data)
	ss.h = d.Sum(ss.h[:0])
}

// mixKey ratchets the chaining key and installs a fresh cipher key.
func (ss *symmetricState) mixKey(ikm []byte) {
	out := ss.hkdf(ikm, 2)
	ss.ck = out[0]
	ss.cs.InitializeKey(out[1][:KeyLen])
}

// mixKeyAndHash ratchets ck, mixes the middle output into h and installs
// a fresh cipher key; used by the psk token.
func (ss *symmetricState) mixKeyAndHash(ikm []byte) {
	out := ss.hkdf(ikm, 3)
	ss.ck = out[0]
	ss.mixHash(out[1])
	ss.cs.InitializeKey(out[2][:KeyLen])
}

// encryptAndHash encrypts bound to the transcript and absorbs the
// ciphertext.
func (ss *symmetricState) encryptAndHash(plaintext []byte) ([]byte, error) {
	ct, err := ss.cs.EncryptWithAd(ss.h, plaintext)
	if err != nil {
		return nil, err
	}
	ss.mixHash(ct)
	return ct, nil
}

// decryptAndHash decrypts bound to the transcript and absorbs the
// ciphertext. On authentication failure h is left untouched.
func (ss *symmetricState) decryptAndHash(ciphertext []byte) ([]byte, error) {
	pt, err := ss.cs.DecryptWithAd(ss.h, ciphertext)
	if err != nil {
		return nil, err
	}
	ss.mixHash(ciphertext)
	return pt, nil
}

// split derives the two transport cipher states. The first is keyed for
// initiator-to-responder traffic.
func (ss *symmetricState) split() (*CipherState, *CipherState) {
	out := ss.hkdf(nil, 2)
	c1 := &CipherState{cf: ss.proto.cipher}
	c2 := &CipherState{cf: ss.proto.cipher}
	c1.InitializeKey(out[0][:KeyLen])
	c2.InitializeKey(out[1][:KeyLen])
	return c1, c2
}

// hkdf is the Noise HKDF: chained HMACs keyed with ck over ikm.
func (ss *symmetricState) hkdf(ikm []byte, numOutputs int) [][]byte {
	newHash := ss.proto.hash.new
	tempKey := hmacx.Sum(newHash, ss.ck, ikm)

	out := make([][]byte, numOutputs)
	var prev []byte
	for i := 0; i < numOutputs; i++ {
		hm := hmacx.New(newHash, tempKey)
		hm.Write(prev)
		hm.Write([]byte{byte(i + 1)})
		out[i] = hm.Sum(nil)
		prev = out[i]
	}
	return out
}
