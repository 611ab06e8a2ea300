// pbkdf2.go - PBKDF2
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package pbkdf2 implements the password-based key derivation function 2 as
// specified in RFC 8018, with HMAC over a caller-chosen hash as the PRF.
package pbkdf2

import (
	"context"
	"encoding/binary"
	"hash"
	"runtime"

	"gitlab.com/auklet/cryptkit.git/hmacx"
)

// yieldEvery is how many PRF iterations run between cooperative yield
// points in KeyContext.
const yieldEvery = 2000

// Key derives keyLen bytes from the password and salt using iter rounds of
// HMAC over h.
func Key(h func() hash.Hash, password, salt []byte, iter, keyLen int) []byte {
	out, _ := derive(context.Background(), h, password, salt, iter, keyLen, false)
	return out
}

// KeyContext is Key with cancellation: every ~2000 inner iterations it
// checks ctx and yields the processor. Cancellation abandons the partially
// derived key.
func KeyContext(ctx context.Context, h func() hash.Hash, password, salt []byte, iter, keyLen int) ([]byte, error) {
	return derive(ctx, h, password, salt, iter, keyLen, true)
}

func derive(ctx context.Context, h func() hash.Hash, password, salt []byte, iter, keyLen int, yield bool) ([]byte, error) {
	prf := hmacx.New(h, password)
	hashLen := prf.Size()
	numBlocks := (keyLen + hashLen - 1) / hashLen

	out := make([]byte, 0, numBlocks*hashLen)
	var buf [4]byte
	sinceYield := 0
	for block := 1; block <= numBlocks; block++ {
		// U_1 = PRF(P, S || INT(block)).
		prf.Reset()
		prf.Write(salt)
		binary.BigEndian.PutUint32(buf[:], uint32(block))
		prf.Write(buf[:])
		u := prf.Sum(nil)

		t := append([]byte{}, u...)
		for n := 2; n <= iter; n++ {
			prf.Reset()
			prf.Write(u)
			u = prf.Sum(u[:0])
			for i := range t {
				t[i] ^= u[i]
			}
			if yield {
				if sinceYield++; sinceYield >= yieldEvery {
					sinceYield = 0
					if err := ctx.Err(); err != nil {
						return nil, err
					}
					runtime.Gosched()
				}
			}
		}
		out = append(out, t...)
	}
	return out[:keyLen], nil
}
