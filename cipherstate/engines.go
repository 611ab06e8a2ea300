// engines.go - Per-algorithm convert pipelines
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cipherstate

import (
	"encoding/binary"
	"hash"

	cryptkit "gitlab.com/auklet/cryptkit.git"
	"gitlab.com/auklet/cryptkit.git/aes"
	"gitlab.com/auklet/cryptkit.git/chacha20"
	"gitlab.com/auklet/cryptkit.git/hmacx"
	"gitlab.com/auklet/cryptkit.git/poly1305"
)

// chachaEngine drives (X)ChaCha20 with a streaming Poly1305 over the
// ciphertext, RFC 7539 framing.
type chachaEngine struct {
	stream     *chacha20.Cipher
	mac        *poly1305.MAC
	encrypting bool
	aadLen     uint64
	ctLen      uint64
}

func newChaChaEngine(key, nonce, aad []byte, keyStreamIndex uint64, encrypting bool) (engine, error) {
	stream, err := chacha20.New(key, nonce)
	if err != nil {
		return nil, err
	}
	var block0 [chacha20.BlockSize]byte
	stream.KeyStream(block0[:])
	mac := poly1305.New(block0[:poly1305.KeySize])

	// Payload keystream starts after block 0, plus any resume offset.
	if keyStreamIndex > 0 {
		stream.SetKeyStreamIndex(chacha20.BlockSize + keyStreamIndex)
	}

	mac.Write(aad)
	writePad16(mac, uint64(len(aad)))
	return &chachaEngine{
		stream:     stream,
		mac:        mac,
		encrypting: encrypting,
		aadLen:     uint64(len(aad)),
	}, nil
}

func (e *chachaEngine) convert(p []byte) []byte {
	if len(p) == 0 {
		return p
	}
	if e.encrypting {
		e.stream.XORKeyStream(p, p)
		e.mac.Write(p)
	} else {
		e.mac.Write(p)
		e.stream.XORKeyStream(p, p)
	}
	e.ctLen += uint64(len(p))
	return p
}

func (e *chachaEngine) finalize() ([]byte, cryptkit.Mac, error) {
	writePad16(e.mac, e.ctLen)
	var lens [16]byte
	binary.LittleEndian.PutUint64(lens[0:], e.aadLen)
	binary.LittleEndian.PutUint64(lens[8:], e.ctLen)
	e.mac.Write(lens[:])
	tag := e.mac.Sum()
	return nil, cryptkit.Mac(tag[:]), nil
}

func writePad16(mac *poly1305.MAC, n uint64) {
	if rem := n % 16; rem != 0 {
		var pad [16]byte
		mac.Write(pad[:16-rem])
	}
}

// gcmEngine drives AES-CTR from inc32(J0) with a streaming GHASH.
type gcmEngine struct {
	ctr        *aes.CTR
	ghash      *aes.GHASH
	tagMask    [16]byte
	encrypting bool
	aadLen     uint64
	ctLen      uint64
}

func newGCMEngine(key, nonce, aad []byte, keyStreamIndex uint64, encrypting bool) (engine, error) {
	c, err := aes.New(key)
	if err != nil {
		return nil, err
	}
	var zero, h [aes.BlockSize]byte
	c.EncryptBlock(h[:], zero[:])
	gh := aes.NewGHASH(h[:])

	var j0 [aes.BlockSize]byte
	copy(j0[:], nonce)
	j0[aes.BlockSize-1] = 1

	e := &gcmEngine{ghash: gh, encrypting: encrypting, aadLen: uint64(len(aad))}
	c.EncryptBlock(e.tagMask[:], j0[:])

	ctr, err := aes.NewCTR(c, j0[:12], 32)
	if err != nil {
		return nil, err
	}
	// Counter 0 never fires; 1 is the tag mask block; the payload starts
	// at inc32(J0), counter 2.
	ctr.SetKeyStreamIndex(2*aes.BlockSize + keyStreamIndex)
	e.ctr = ctr

	gh.Write(aad)
	gh.PadZero()
	return e, nil
}

func (e *gcmEngine) convert(p []byte) []byte {
	if len(p) == 0 {
		return p
	}
	if e.encrypting {
		e.ctr.XORKeyStream(p, p)
		e.ghash.Write(p)
	} else {
		e.ghash.Write(p)
		e.ctr.XORKeyStream(p, p)
	}
	e.ctLen += uint64(len(p))
	return p
}

func (e *gcmEngine) finalize() ([]byte, cryptkit.Mac, error) {
	e.ghash.WriteLengths(e.aadLen, e.ctLen)
	tag := e.ghash.Sum()
	for i := range tag {
		tag[i] ^= e.tagMask[i]
	}
	return nil, cryptkit.Mac(tag[:]), nil
}

// ctrEngine drives AES-CTR with an HMAC tag over aad || ciphertext.
type ctrEngine struct {
	ctr        *aes.CTR
	mac        hash.Hash
	encrypting bool
}

func newCTREngine(key []byte, h func() hash.Hash, nonce, aad []byte, keyStreamIndex uint64, encrypting bool) (engine, error) {
	c, err := aes.New(key)
	if err != nil {
		return nil, err
	}
	ctr, err := aes.NewCTR(c, nonce, 64)
	if err != nil {
		return nil, err
	}
	if keyStreamIndex > 0 {
		ctr.SetKeyStreamIndex(keyStreamIndex)
	}
	mac := hmacx.New(h, key)
	mac.Write(aad)
	return &ctrEngine{ctr: ctr, mac: mac, encrypting: encrypting}, nil
}

func (e *ctrEngine) convert(p []byte) []byte {
	if len(p) == 0 {
		return p
	}
	if e.encrypting {
		e.ctr.XORKeyStream(p, p)
		e.mac.Write(p)
	} else {
		e.mac.Write(p)
		e.ctr.XORKeyStream(p, p)
	}
	return p
}

func (e *ctrEngine) finalize() ([]byte, cryptkit.Mac, error) {
	return nil, cryptkit.Mac(e.mac.Sum(nil)), nil
}

// cbcEngine buffers to block boundaries; on encrypt it pads at finalize,
// on decrypt it withholds the final block until the pad can be stripped.
type cbcEngine struct {
	c          *aes.Cipher
	mac        hash.Hash
	iv         [aes.BlockSize]byte
	buf        []byte
	encrypting bool
}

func newCBCEngine(key []byte, h func() hash.Hash, nonce, aad []byte, encrypting bool) (engine, error) {
	c, err := aes.New(key)
	if err != nil {
		return nil, err
	}
	e := &cbcEngine{c: c, mac: hmacx.New(h, key), encrypting: encrypting}
	copy(e.iv[:], nonce)
	e.mac.Write(aad)
	return e, nil
}

func (e *cbcEngine) convert(p []byte) []byte {
	e.buf = append(e.buf, p...)
	var keep int
	if e.encrypting {
		// Hold a partial block back for padding.
		keep = len(e.buf) % aes.BlockSize
	} else {
		// Hold at least one full block back for unpadding.
		keep = len(e.buf)%aes.BlockSize + aes.BlockSize
	}
	if len(e.buf) <= keep {
		return nil
	}
	n := len(e.buf) - keep
	out := make([]byte, n)
	if e.encrypting {
		aes.CBCEncrypt(e.c, e.iv[:], out, e.buf[:n])
		copy(e.iv[:], out[n-aes.BlockSize:])
		e.mac.Write(out)
	} else {
		e.mac.Write(e.buf[:n])
		next := e.buf[n-aes.BlockSize : n]
		var nextIV [aes.BlockSize]byte
		copy(nextIV[:], next)
		aes.CBCDecrypt(e.c, e.iv[:], out, e.buf[:n])
		e.iv = nextIV
	}
	e.buf = append(e.buf[:0], e.buf[n:]...)
	return out
}

func (e *cbcEngine) finalize() ([]byte, cryptkit.Mac, error) {
	if e.encrypting {
		// PKCS#7 pad the tail.
		padLen := aes.BlockSize - len(e.buf)%aes.BlockSize
		for i := 0; i < padLen; i++ {
			e.buf = append(e.buf, byte(padLen))
		}
		out := make([]byte, len(e.buf))
		aes.CBCEncrypt(e.c, e.iv[:], out, e.buf)
		e.mac.Write(out)
		return out, cryptkit.Mac(e.mac.Sum(nil)), nil
	}

	if len(e.buf)%aes.BlockSize != 0 || len(e.buf) == 0 {
		return nil, cryptkit.Mac(e.mac.Sum(nil)), cryptkit.ErrPadding
	}
	e.mac.Write(e.buf)
	out := make([]byte, len(e.buf))
	aes.CBCDecrypt(e.c, e.iv[:], out, e.buf)
	mac := cryptkit.Mac(e.mac.Sum(nil))

	padLen := int(out[len(out)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(out) {
		return nil, mac, cryptkit.ErrPadding
	}
	for _, b := range out[len(out)-padLen:] {
		if int(b) != padLen {
			return nil, mac, cryptkit.ErrPadding
		}
	}
	return out[:len(out)-padLen], mac, nil
}
