// cipherstate_test.go - Streaming cipher state tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cipherstate

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	cryptkit "gitlab.com/auklet/cryptkit.git"
	"gitlab.com/auklet/cryptkit.git/aes"
	"gitlab.com/auklet/cryptkit.git/chacha20poly1305"
	"gitlab.com/auklet/cryptkit.git/sha2"
)

var allAlgorithms = []struct {
	name string
	alg  Algorithm
}{
	{"AESGCM", AESGCM},
	{"AESCTRHMAC", AESCTRHMAC},
	{"AESCBCHMAC", AESCBCHMAC},
	{"ChaCha20Poly1305", ChaCha20Poly1305},
	{"XChaCha20Poly1305", XChaCha20Poly1305},
}

func newState(t *testing.T, alg Algorithm) *CipherState {
	key := make([]byte, 32)
	rand.Read(key)
	cs, err := New(alg, key, sha2.New256)
	require.NoError(t, err)
	return cs
}

func runOneShot(t *testing.T, cs *CipherState, encrypting bool, nonce, aad, data []byte, mac cryptkit.Mac) ([]byte, cryptkit.Mac) {
	require.NoError(t, cs.Initialize(encrypting, nonce, aad, 0))
	out, gotMac, err := cs.Convert(append([]byte{}, data...), mac)
	require.NoError(t, err)
	return out, gotMac
}

func TestRoundTripAndChunking(t *testing.T) {
	for _, tc := range allAlgorithms {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)

			cs := newState(t, tc.alg)
			nonce := make([]byte, tc.alg.NonceSize())
			aad := []byte("chunked aad")
			msg := make([]byte, 333)
			rand.Read(nonce)
			rand.Read(msg)

			ct, mac := runOneShot(t, cs, true, nonce, aad, msg, nil)

			// Any chunking of the same input converts identically.
			for _, chunks := range [][]int{{333}, {1, 332}, {16, 16, 301}, {100, 100, 100, 33}, {333, 0}} {
				require.NoError(cs.Initialize(true, nonce, aad, 0))
				var got []byte
				rest := append([]byte{}, msg...)
				for _, n := range chunks[:len(chunks)-1] {
					out, err := cs.ConvertChunk(rest[:n])
					require.NoError(err)
					got = append(got, out...)
					rest = rest[n:]
				}
				tail, gotMac, err := cs.Convert(rest, nil)
				require.NoError(err)
				got = append(got, tail...)
				require.Equal(ct, got, "chunks %v", chunks)
				require.Equal(mac, gotMac, "mac for chunks %v", chunks)
			}

			// Decrypt path with tag verification.
			pt, _ := runOneShot(t, cs, false, nonce, aad, ct, mac)
			require.Equal(msg, pt, "round trip")

			// A wrong tag is an authentication error.
			badMac := append(cryptkit.Mac{}, mac...)
			badMac[0] ^= 1
			require.NoError(cs.Initialize(false, nonce, aad, 0))
			_, _, err := cs.Convert(append([]byte{}, ct...), badMac)
			require.ErrorIs(err, cryptkit.ErrAuthentication, "bad mac")
		})
	}
}

// The AEAD-shaped pipelines must agree with the one-shot AEAD packages.
func TestMatchesOneShotAEADs(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 32)
	msg := make([]byte, 117)
	aad := []byte("binding")
	rand.Read(key)
	rand.Read(msg)

	// ChaCha20-Poly1305.
	nonce := make([]byte, 12)
	rand.Read(nonce)
	cs, err := New(ChaCha20Poly1305, key, nil)
	require.NoError(err)
	require.NoError(cs.Initialize(true, nonce, aad, 0))
	ct, mac, err := cs.Convert(append([]byte{}, msg...), nil)
	require.NoError(err)
	sealed := chacha20poly1305.New(key).Seal(nil, nonce, msg, aad)
	require.Equal(sealed[:len(msg)], ct, "chachapoly ciphertext")
	require.Equal(cryptkit.Mac(sealed[len(msg):]), mac, "chachapoly tag")

	// AES-GCM.
	rand.Read(nonce)
	cs, err = New(AESGCM, key, nil)
	require.NoError(err)
	require.NoError(cs.Initialize(true, nonce, aad, 0))
	ct, mac, err = cs.Convert(append([]byte{}, msg...), nil)
	require.NoError(err)
	c, err := aes.New(key)
	require.NoError(err)
	sealed = aes.NewGCM(c).Seal(nil, nonce, msg, aad)
	require.Equal(sealed[:len(msg)], ct, "gcm ciphertext")
	require.Equal(cryptkit.Mac(sealed[len(msg):]), mac, "gcm tag")
}

func TestKeyStreamIndexResume(t *testing.T) {
	require := require.New(t)

	for _, alg := range []Algorithm{AESCTRHMAC, ChaCha20Poly1305} {
		cs := newState(t, alg)
		nonce := make([]byte, alg.NonceSize())
		rand.Read(nonce)
		msg := make([]byte, 200)
		rand.Read(msg)

		whole, _ := runOneShot(t, cs, true, nonce, nil, msg, nil)

		// Resuming at offset k must produce the same keystream suffix.
		const k = 77
		require.NoError(cs.Initialize(true, nonce, nil, k))
		out, _, err := cs.Convert(append([]byte{}, msg[k:]...), nil)
		require.NoError(err)
		require.Equal(whole[k:], out, "alg %d resume", alg)
	}
}

func TestCBCPaddingDistinctFromAuth(t *testing.T) {
	require := require.New(t)

	key := make([]byte, 16)
	rand.Read(key)
	cs, err := New(AESCBCHMAC, key, sha2.New256)
	require.NoError(err)

	nonce := make([]byte, 16)
	rand.Read(nonce)

	// Encrypt a valid message.
	require.NoError(cs.Initialize(true, nonce, nil, 0))
	ct, mac, err := cs.Convert([]byte("hello cbc"), nil)
	require.NoError(err)

	// Chop the last block off (here the only one, leaving an empty
	// ciphertext, which is itself a padding error) and keep the old tag:
	// the state reports padding only after the tag decides, so the tag
	// check fires first.
	require.NoError(cs.Initialize(false, nonce, nil, 0))
	_, _, err = cs.Convert(ct[:len(ct)-aes.BlockSize], mac)
	require.ErrorIs(err, cryptkit.ErrAuthentication)
}

func TestStateDiscipline(t *testing.T) {
	require := require.New(t)

	cs := newState(t, ChaCha20Poly1305)
	_, err := cs.ConvertChunk([]byte("x"))
	require.ErrorIs(err, cryptkit.ErrState, "chunk before initialize")
	_, _, err = cs.Convert(nil, nil)
	require.ErrorIs(err, cryptkit.ErrState, "convert before initialize")

	nonce := make([]byte, 12)
	require.NoError(cs.Initialize(true, nonce, nil, 0))
	_, _, err = cs.Convert(nil, nil)
	require.NoError(err)
	_, _, err = cs.Convert(nil, nil)
	require.ErrorIs(err, cryptkit.ErrState, "convert after finalize")
}

func TestArgumentValidation(t *testing.T) {
	require := require.New(t)

	_, err := New(AESGCM, make([]byte, 17), nil)
	require.ErrorIs(err, cryptkit.ErrInvalidArgument, "bad aes key")
	_, err = New(ChaCha20Poly1305, make([]byte, 16), nil)
	require.ErrorIs(err, cryptkit.ErrInvalidArgument, "bad chacha key")
	_, err = New(AESCBCHMAC, make([]byte, 16), nil)
	require.ErrorIs(err, cryptkit.ErrInvalidArgument, "missing hash")

	cs := newState(t, AESGCM)
	err = cs.Initialize(true, make([]byte, 11), nil, 0)
	require.ErrorIs(err, cryptkit.ErrInvalidArgument, "bad nonce size")

	cbc, err := New(AESCBCHMAC, make([]byte, 16), sha2.New256)
	require.NoError(err)
	err = cbc.Initialize(true, make([]byte, 16), nil, 5)
	require.ErrorIs(err, cryptkit.ErrInvalidArgument, "cbc keystream index")
}
