// sha2.go - SHA-2 family
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package sha2 implements the SHA-224, SHA-256, SHA-384 and SHA-512 hash
// functions as specified in FIPS 180-4, as streaming hash.Hash sinks.
package sha2

import "hash"

const (
	// Size224 is the SHA-224 digest length in bytes.
	Size224 = 28
	// Size256 is the SHA-256 digest length in bytes.
	Size256 = 32
	// Size384 is the SHA-384 digest length in bytes.
	Size384 = 48
	// Size512 is the SHA-512 digest length in bytes.
	Size512 = 64

	// BlockSize256 is the block size of SHA-224 and SHA-256.
	BlockSize256 = 64
	// BlockSize512 is the block size of SHA-384 and SHA-512.
	BlockSize512 = 128
)

// New224 returns a SHA-224 sink.
func New224() hash.Hash { return newDigest32(true) }

// New256 returns a SHA-256 sink.
func New256() hash.Hash { return newDigest32(false) }

// New384 returns a SHA-384 sink.
func New384() hash.Hash { return newDigest64(true) }

// New512 returns a SHA-512 sink.
func New512() hash.Hash { return newDigest64(false) }

// Sum224 returns the SHA-224 digest of data.
func Sum224(data []byte) [Size224]byte {
	var out [Size224]byte
	d := New224()
	d.Write(data)
	copy(out[:], d.Sum(nil))
	return out
}

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) [Size256]byte {
	var out [Size256]byte
	d := New256()
	d.Write(data)
	copy(out[:], d.Sum(nil))
	return out
}

// Sum384 returns the SHA-384 digest of data.
func Sum384(data []byte) [Size384]byte {
	var out [Size384]byte
	d := New384()
	d.Write(data)
	copy(out[:], d.Sum(nil))
	return out
}

// Sum512 returns the SHA-512 digest of data.
func Sum512(data []byte) [Size512]byte {
	var out [Size512]byte
	d := New512()
	d.Write(data)
	copy(out[:], d.Sum(nil))
	return out
}
