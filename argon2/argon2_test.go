// argon2_test.go - Argon2id tests
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package argon2

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	xargon2 "golang.org/x/crypto/argon2"
)

// RFC 9106 §5.3: the Argon2id reference vector with secret and
// associated data.
func TestRFC9106KAT(t *testing.T) {
	require := require.New(t)

	password := bytes.Repeat([]byte{0x01}, 32)
	salt := bytes.Repeat([]byte{0x02}, 16)
	secret := bytes.Repeat([]byte{0x03}, 8)
	data := bytes.Repeat([]byte{0x04}, 12)

	s, err := NewState(3, 32, 4, 32)
	require.NoError(err)
	tag, err := s.DeriveKey(password, salt, secret, data)
	require.NoError(err)

	expect, err := hex.DecodeString(
		"0d640df58d78766c08c037a34a8b53c9d01ef0452d75b65eb52520e96b01e659")
	require.NoError(err)
	require.Equal(expect, tag, "RFC 9106 §5.3")
}

func TestAgainstOracle(t *testing.T) {
	require := require.New(t)

	cases := []struct {
		time, memory uint32
		threads      uint8
		keyLen       uint32
	}{
		{1, 64, 1, 32},
		{3, 32, 4, 32},
		{2, 64, 2, 24},
		{1, 1024, 4, 64},
		{2, 96, 3, 117},
	}
	for _, c := range cases {
		password := make([]byte, 16)
		salt := make([]byte, 16)
		rand.Read(password)
		rand.Read(salt)

		got := Key(password, salt, c.time, c.memory, c.threads, c.keyLen)
		want := xargon2.IDKey(password, salt, c.time, c.memory, c.threads, c.keyLen)
		require.Equal(want, got, "t=%d m=%d p=%d τ=%d",
			c.time, c.memory, c.threads, c.keyLen)
	}
}

func TestWorkerCountIsInvisible(t *testing.T) {
	require := require.New(t)

	password := []byte("worker invariance")
	salt := []byte("fixed salt value")

	var reference []byte
	for _, workers := range []int{1, 2, 4, 8} {
		s, err := NewState(2, 64, 4, 32)
		require.NoError(err)
		s.MaxWorkers = workers
		tag, err := s.DeriveKey(password, salt, nil, nil)
		require.NoError(err)
		if reference == nil {
			reference = tag
			continue
		}
		require.Equal(reference, tag, "workers=%d", workers)
	}
}

func TestArenaReuse(t *testing.T) {
	require := require.New(t)

	s, err := NewState(1, 32, 4, 32)
	require.NoError(err)

	first, err := s.DeriveKey([]byte("pw"), []byte("salt0123"), nil, nil)
	require.NoError(err)
	// The second call reuses the arena; leftover state from the first
	// call must not leak into the result.
	again, err := s.DeriveKey([]byte("pw"), []byte("salt0123"), nil, nil)
	require.NoError(err)
	require.Equal(first, again, "determinism across arena reuse")

	other, err := s.DeriveKey([]byte("pw"), []byte("salt4567"), nil, nil)
	require.NoError(err)
	require.NotEqual(first, other, "salt must matter")
}

func TestOverlappingCallsRejected(t *testing.T) {
	require := require.New(t)

	s, err := NewState(4, 4096, 1, 32)
	require.NoError(err)

	var wg sync.WaitGroup
	var busyErrs int
	var mu sync.Mutex
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			_, err := s.DeriveKey([]byte("pw"), []byte("salt0123"), nil, nil)
			if err != nil {
				mu.Lock()
				busyErrs++
				mu.Unlock()
				require.ErrorIs(err, ErrArenaInUse)
			}
		}()
	}
	wg.Wait()
	// At least the winner succeeded; any loser saw the in-use error.
	require.Less(busyErrs, 4, "one call must win the arena")
}

func TestParameterValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewState(0, 32, 4, 32)
	require.ErrorIs(err, ErrInvalidParams, "time 0")
	_, err = NewState(1, 32, 0, 32)
	require.ErrorIs(err, ErrInvalidParams, "threads 0")
	_, err = NewState(1, 7, 1, 32)
	require.ErrorIs(err, ErrInvalidParams, "memory below 8p")
	_, err = NewState(1, 32, 1, 3)
	require.ErrorIs(err, ErrInvalidParams, "tag below 4")
}
