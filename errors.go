// errors.go - Error kinds
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cryptkit

import "errors"

var (
	// ErrInvalidArgument is returned (or thrown via a panic by constructors)
	// when a key, nonce or parameter has an unusable length or range. It is
	// raised before any cryptographic work happens.
	ErrInvalidArgument = errors.New("cryptkit: invalid argument")

	// ErrAuthentication is returned when a MAC or AEAD tag does not match.
	// The comparison leading to it is constant-time.
	ErrAuthentication = errors.New("cryptkit: message authentication failed")

	// ErrPadding is returned when CBC padding is invalid after a successful
	// MAC check, so callers can tell corruption from tampering.
	ErrPadding = errors.New("cryptkit: invalid padding")

	// ErrState is returned on reuse of a finalized sink, an out-of-turn
	// handshake call, or a message-counter overflow.
	ErrState = errors.New("cryptkit: invalid state")

	// ErrUnimplemented is returned for algorithm identifiers this module
	// knows about but deliberately does not ship.
	ErrUnimplemented = errors.New("cryptkit: not implemented")
)
