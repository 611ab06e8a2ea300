// cryptkit.go - Common types
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Package cryptkit provides the shared key, tag and error types used by the
// primitive packages and the Noise handshake engine in this module.
//
// The sub-packages implement the primitives themselves: aes, aescbc,
// chacha20, chacha20poly1305, poly1305, blake2b, blake2s, sha1, sha2, hmacx,
// hkdf, pbkdf2, argon2, x25519, ed25519, cipherstate and noise.
package cryptkit
