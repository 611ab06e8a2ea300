// argon2.go - Argon2id key derivation
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package argon2 implements the Argon2id memory-hard key derivation
// function of RFC 9106 (version 0x13).
//
// Within a slice, lanes are filled by parallel workers; slice boundaries
// are hard synchronization points because later slices reference blocks
// written in earlier ones. A State owns a reusable memory arena so
// repeated derivations with the same parameters do not reallocate.
package argon2

import (
	"encoding/binary"
	"errors"
	"runtime"
	"sync"

	"gitlab.com/auklet/cryptkit.git/blake2b"
)

const (
	// Version is the implemented Argon2 version.
	Version = 0x13

	blockLength = 128 // uint64 words per 1024-byte block
	syncPoints  = 4

	modeID = 2 // Argon2id mode tag in the pre-hashing digest
)

var (
	// ErrInvalidParams is returned when time < 1, threads < 1,
	// memory < 8*threads or keyLen < 4.
	ErrInvalidParams = errors.New("argon2: invalid parameters")

	// ErrArenaInUse is returned when a State is asked to derive while a
	// previous call still owns its memory buffer.
	ErrArenaInUse = errors.New("argon2: memory arena in use")
)

type block [blockLength]uint64

// Key derives keyLen bytes from password and salt with Argon2id using t
// iterations, memory KiB of memory and the given lane count. It is the
// one-shot form of (*State).DeriveKey with no secret or associated data.
func Key(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte {
	s, err := NewState(time, memory, threads, keyLen)
	if err != nil {
		panic(err)
	}
	out, err := s.DeriveKey(password, salt, nil, nil)
	if err != nil {
		panic(err)
	}
	return out
}

// State carries the Argon2id parameters and a reusable memory arena.
type State struct {
	time    uint32
	memory  uint32 // actual block count after rounding
	memKiB  uint32 // memory parameter as given, hashed into H0
	threads uint32
	keyLen  uint32

	// MaxWorkers caps intra-call parallelism; 0 means GOMAXPROCS. A cap
	// of 1 runs the whole derivation on the calling goroutine.
	MaxWorkers int

	mu    sync.Mutex
	inUse bool
	arena []block
}

// NewState validates the parameters and prepares a state whose arena is
// allocated lazily on the first derivation.
func NewState(time, memory uint32, threads uint8, keyLen uint32) (*State, error) {
	if time < 1 || threads < 1 || keyLen < 4 || memory < 8*uint32(threads) {
		return nil, ErrInvalidParams
	}
	p := uint32(threads)
	// Round m down to a multiple of 4p.
	m := memory / (syncPoints * p) * (syncPoints * p)
	if m < 2*syncPoints*p {
		m = 2 * syncPoints * p
	}
	return &State{time: time, memory: m, memKiB: memory, threads: p, keyLen: keyLen}, nil
}

// DeriveKey runs Argon2id over password, salt, optional secret K and
// optional associated data X, returning the tag. Overlapping calls on one
// State are rejected with ErrArenaInUse.
func (s *State) DeriveKey(password, salt, secret, data []byte) ([]byte, error) {
	s.mu.Lock()
	if s.inUse {
		s.mu.Unlock()
		return nil, ErrArenaInUse
	}
	s.inUse = true
	if s.arena == nil {
		s.arena = make([]block, s.memory)
	} else {
		for i := range s.arena {
			s.arena[i] = block{}
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inUse = false
		s.mu.Unlock()
	}()

	h0 := s.initHash(password, salt, secret, data)
	s.initBlocks(&h0)
	s.processBlocks()
	return s.extractKey(), nil
}

// initHash computes the pre-hashing digest H0.
func (s *State) initHash(password, salt, secret, data []byte) [blake2b.Size + 8]byte {
	var (
		h0  [blake2b.Size + 8]byte
		buf [4]byte
	)
	d, _ := blake2b.New(blake2b.Size, nil)
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		d.Write(buf[:])
	}
	writeU32(s.threads)
	writeU32(s.keyLen)
	writeU32(s.memKiB)
	writeU32(s.time)
	writeU32(Version)
	writeU32(modeID)
	writeU32(uint32(len(password)))
	d.Write(password)
	writeU32(uint32(len(salt)))
	d.Write(salt)
	writeU32(uint32(len(secret)))
	d.Write(secret)
	writeU32(uint32(len(data)))
	d.Write(data)
	d.Sum(h0[:0])
	return h0
}

// initBlocks fills the first two blocks of every lane with
// H'^1024(H0 || LE32(j) || LE32(lane)) for j in {0, 1}.
func (s *State) initBlocks(h0 *[blake2b.Size + 8]byte) {
	var buf [1024]byte
	lanes := s.memory / s.threads
	for lane := uint32(0); lane < s.threads; lane++ {
		for j := uint32(0); j < 2; j++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], j)
			binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], lane)
			varHash(buf[:], h0[:])
			b := &s.arena[lane*lanes+j]
			for i := range b {
				b[i] = binary.LittleEndian.Uint64(buf[i*8:])
			}
		}
	}
}

// processBlocks runs the iterations. Lanes within a slice run on up to
// min(threads, MaxWorkers) workers; every slice ends in a full barrier.
func (s *State) processBlocks() {
	workers := s.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if uint32(workers) > s.threads {
		workers = int(s.threads)
	}

	for n := uint32(0); n < s.time; n++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			if workers <= 1 {
				for lane := uint32(0); lane < s.threads; lane++ {
					s.processSegment(n, slice, lane)
				}
				continue
			}
			var wg sync.WaitGroup
			laneCh := make(chan uint32, s.threads)
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for lane := range laneCh {
						s.processSegment(n, slice, lane)
					}
				}()
			}
			for lane := uint32(0); lane < s.threads; lane++ {
				laneCh <- lane
			}
			close(laneCh)
			wg.Wait()
		}
	}
}

// processSegment fills one lane's part of one slice.
func (s *State) processSegment(n, slice, lane uint32) {
	lanes := s.memory / s.threads
	segments := lanes / syncPoints

	var addresses, in, zero block
	// Argon2id: data-independent addressing for the first half of the
	// first iteration, data-dependent everywhere else.
	independent := n == 0 && slice < syncPoints/2
	if independent {
		in[0] = uint64(n)
		in[1] = uint64(lane)
		in[2] = uint64(slice)
		in[3] = uint64(s.memory)
		in[4] = uint64(s.time)
		in[5] = uint64(modeID)
	}

	index := uint32(0)
	if n == 0 && slice == 0 {
		index = 2 // the first two blocks of each lane are pre-filled
		if independent {
			in[6]++
			processBlock(&addresses, &in, &zero, false)
			processBlock(&addresses, &addresses, &zero, false)
		}
	}

	offset := lane*lanes + slice*segments + index
	var random uint64
	for index < segments {
		prev := offset - 1
		if index == 0 && slice == 0 {
			prev += lanes // wrap to the last block of the lane
		}
		if independent {
			if index%blockLength == 0 {
				in[6]++
				processBlock(&addresses, &in, &zero, false)
				processBlock(&addresses, &addresses, &zero, false)
			}
			random = addresses[index%blockLength]
		} else {
			random = s.arena[prev][0]
		}
		newOffset := s.indexAlpha(random, lanes, segments, n, slice, lane, index)
		processBlock(&s.arena[offset], &s.arena[prev], &s.arena[newOffset], n > 0)
		index, offset = index+1, offset+1
	}
}

// indexAlpha maps the J1 || J2 pair to a reference block index per RFC
// 9106 §3.4.
func (s *State) indexAlpha(rand uint64, lanes, segments, n, slice, lane, index uint32) uint32 {
	refLane := uint32(rand>>32) % s.threads
	if n == 0 && slice == 0 {
		refLane = lane
	}
	m, start := 3*segments, ((slice+1)%syncPoints)*segments
	if lane == refLane {
		m += index
	}
	if n == 0 {
		m, start = slice*segments, 0
		if slice == 0 || lane == refLane {
			m += index
		}
	}
	if index == 0 || lane == refLane {
		m--
	}
	return phi(rand, uint64(m), uint64(start), refLane, lanes)
}

// phi picks z = start + W - 1 - floor(W * J1^2 / 2^64) within the window.
func phi(rand, m, start uint64, refLane, lanes uint32) uint32 {
	p := rand & 0xFFFFFFFF
	p = (p * p) >> 32
	p = (p * m) >> 32
	return refLane*lanes + uint32((start+m-(p+1))%uint64(lanes))
}

// extractKey XORs the last block of every lane and applies H'^keyLen.
func (s *State) extractKey() []byte {
	lanes := s.memory / s.threads
	var acc block
	for lane := uint32(0); lane < s.threads; lane++ {
		b := &s.arena[lane*lanes+lanes-1]
		for i, v := range b {
			acc[i] ^= v
		}
	}

	var raw [1024]byte
	for i, v := range acc {
		binary.LittleEndian.PutUint64(raw[i*8:], v)
	}
	out := make([]byte, s.keyLen)
	varHash(out, raw[:])
	return out
}

// varHash is the variable-length hash H' of RFC 9106 §3.3.
func varHash(out, in []byte) {
	var pre [4]byte
	binary.LittleEndian.PutUint32(pre[:], uint32(len(out)))

	if len(out) <= blake2b.Size {
		d, _ := blake2b.New(len(out), nil)
		d.Write(pre[:])
		d.Write(in)
		d.Sum(out[:0])
		return
	}

	d, _ := blake2b.New(blake2b.Size, nil)
	d.Write(pre[:])
	d.Write(in)
	v := d.Sum(nil)
	copy(out, v[:32])
	pos, remaining := 32, len(out)-32
	for remaining > blake2b.Size {
		v2 := blake2b.Sum512(v)
		v = v2[:]
		copy(out[pos:], v[:32])
		pos += 32
		remaining -= 32
	}
	last, _ := blake2b.New(remaining, nil)
	last.Write(v)
	last.Sum(out[pos:pos])
}
