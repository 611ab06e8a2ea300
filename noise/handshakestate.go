// handshakestate.go - Noise handshake state machine
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package noise

import (
	"errors"
	"fmt"
	"io"

	cryptkit "gitlab.com/auklet/cryptkit.git"
)

var (
	// ErrOutOfTurn describes a write on the reader's turn or a read on the
	// writer's turn. The error returned for such a call wraps
	// cryptkit.ErrState and carries this message as text only, so
	// errors.Is matches ErrState, not ErrOutOfTurn.
	ErrOutOfTurn = errors.New("noise: handshake call out of turn")

	// ErrHandshakeComplete is returned when a message call arrives after
	// the pattern queue has drained.
	ErrHandshakeComplete = errors.New("noise: handshake already complete")

	// ErrShortMessage is returned when a handshake message is truncated.
	ErrShortMessage = errors.New("noise: short handshake message")

	// ErrMissingKey is returned when the pattern requires key material
	// the config did not supply.
	ErrMissingKey = errors.New("noise: missing key material for pattern")

	// ErrRemoteStaticRejected is wrapped by the error returned when the
	// OnRemoteStatic callback rejects a key; the callback's own error is
	// included as text only.
	ErrRemoteStaticRejected = errors.New("noise: remote static key rejected")
)

// Config assembles everything a HandshakeState needs.
type Config struct {
	// ProtocolName is the full name, e.g.
	// "Noise_XX_25519_ChaChaPoly_BLAKE2s".
	ProtocolName string
	// Initiator marks the side that writes the first message.
	Initiator bool
	// Prologue is mixed into the transcript before any message.
	Prologue []byte
	// StaticKeypair is the local static key, when the pattern uses one.
	StaticKeypair *DHKey
	// EphemeralKeypair pins the ephemeral key; nil generates a fresh one.
	// Fixed ephemerals exist for test vectors only.
	EphemeralKeypair *DHKey
	// RemoteStatic is the peer's static public key for patterns that
	// assume it pre-handshake.
	RemoteStatic []byte
	// PresharedKey is the 32-byte PSK for psk-modified patterns.
	PresharedKey []byte
	// OnRemoteStatic fires as soon as the peer's static key is read; a
	// non-nil return aborts the handshake.
	OnRemoteStatic func(publicKey []byte) error
	// Random sources ephemeral keys; nil means crypto/rand.
	Random io.Reader
}

// HandshakeState interprets a message pattern token by token.
type HandshakeState struct {
	proto *protocol
	ss    *symmetricState

	localStatic     *DHKey
	localEphemeral  *DHKey
	remoteStatic    []byte
	remoteEphemeral []byte
	preshared       []byte

	isInitiator    bool
	myTurn         bool
	messageIndex   int
	onRemoteStatic func([]byte) error
	rng            io.Reader

	finished bool
}

// NewHandshakeState parses the protocol name, hashes the prologue and the
// pre-message public keys, and leaves the state ready for the first
// message.
func NewHandshakeState(cfg Config) (*HandshakeState, error) {
	proto, err := parseProtocol(cfg.ProtocolName)
	if err != nil {
		return nil, err
	}
	if proto.pattern.hasPSK && len(cfg.PresharedKey) != KeyLen {
		return nil, fmt.Errorf("%w: preshared key", ErrMissingKey)
	}

	hs := &HandshakeState{
		proto:          proto,
		ss:             newSymmetricState(proto),
		localStatic:    cfg.StaticKeypair,
		localEphemeral: cfg.EphemeralKeypair,
		remoteStatic:   append([]byte{}, cfg.RemoteStatic...),
		preshared:      append([]byte{}, cfg.PresharedKey...),
		isInitiator:    cfg.Initiator,
		myTurn:         cfg.Initiator,
		onRemoteStatic: cfg.OnRemoteStatic,
		rng:            cfg.Random,
	}
	if len(hs.remoteStatic) == 0 {
		hs.remoteStatic = nil
	}

	hs.ss.mixHash(cfg.Prologue)

	// Pre-message public keys, initiator's first.
	pat := proto.pattern
	for _, t := range pat.initiatorPreMessages {
		pub, err := hs.preMessageKey(t, cfg.Initiator)
		if err != nil {
			return nil, err
		}
		hs.ss.mixHash(pub)
	}
	for _, t := range pat.responderPreMessages {
		pub, err := hs.preMessageKey(t, !cfg.Initiator)
		if err != nil {
			return nil, err
		}
		hs.ss.mixHash(pub)
	}
	return hs, nil
}

// preMessageKey picks the local or remote public key a pre-message names.
func (hs *HandshakeState) preMessageKey(t token, local bool) ([]byte, error) {
	if t != tokenS {
		return nil, fmt.Errorf("%w: pre-message token", ErrUnknownProtocol)
	}
	if local {
		if hs.localStatic == nil {
			return nil, fmt.Errorf("%w: local static", ErrMissingKey)
		}
		return hs.localStatic.Public, nil
	}
	if hs.remoteStatic == nil {
		return nil, fmt.Errorf("%w: remote static", ErrMissingKey)
	}
	return hs.remoteStatic, nil
}

// ChannelBinding returns the transcript hash, which both sides share once
// the handshake (or any prefix of it) has been processed symmetrically.
func (hs *HandshakeState) ChannelBinding() []byte {
	return append([]byte{}, hs.ss.h...)
}

// RemoteStatic returns the peer's static key, once known.
func (hs *HandshakeState) RemoteStatic() []byte { return hs.remoteStatic }

// LocalEphemeral returns the ephemeral key pair in use, once generated.
func (hs *HandshakeState) LocalEphemeral() *DHKey { return hs.localEphemeral }

// WriteMessage processes the next pattern line as the writer, appending
// the encrypted payload. On the final message it also returns the two
// transport cipher states, initiator-to-responder first.
func (hs *HandshakeState) WriteMessage(payload []byte) (msg []byte, c1, c2 *CipherState, err error) {
	if hs.finished {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if !hs.myTurn {
		return nil, nil, nil, fmt.Errorf("%w: %v", cryptkit.ErrState, ErrOutOfTurn)
	}

	for _, t := range hs.proto.pattern.messages[hs.messageIndex] {
		switch t {
		case tokenE:
			if hs.localEphemeral == nil {
				var key DHKey
				if key, err = GenerateKeypair(hs.rng); err != nil {
					return nil, nil, nil, err
				}
				hs.localEphemeral = &key
			}
			msg = append(msg, hs.localEphemeral.Public...)
			hs.ss.mixHash(hs.localEphemeral.Public)
			if hs.proto.pattern.hasPSK {
				hs.ss.mixKey(hs.localEphemeral.Public)
			}
		case tokenS:
			if hs.localStatic == nil {
				return nil, nil, nil, fmt.Errorf("%w: local static", ErrMissingKey)
			}
			var ct []byte
			if ct, err = hs.ss.encryptAndHash(hs.localStatic.Public); err != nil {
				return nil, nil, nil, err
			}
			msg = append(msg, ct...)
		case tokenPSK:
			hs.ss.mixKeyAndHash(hs.preshared)
		default:
			if err = hs.mixDH(t); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	ct, err := hs.ss.encryptAndHash(payload)
	if err != nil {
		return nil, nil, nil, err
	}
	msg = append(msg, ct...)

	c1, c2 = hs.advance()
	return msg, c1, c2, nil
}

// ReadMessage processes the next pattern line as the reader, returning
// the decrypted payload, plus the transport cipher states on the final
// message.
func (hs *HandshakeState) ReadMessage(message []byte) (payload []byte, c1, c2 *CipherState, err error) {
	if hs.finished {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if hs.myTurn {
		return nil, nil, nil, fmt.Errorf("%w: %v", cryptkit.ErrState, ErrOutOfTurn)
	}

	for _, t := range hs.proto.pattern.messages[hs.messageIndex] {
		switch t {
		case tokenE:
			if len(message) < DHLen {
				return nil, nil, nil, ErrShortMessage
			}
			hs.remoteEphemeral = append([]byte{}, message[:DHLen]...)
			message = message[DHLen:]
			hs.ss.mixHash(hs.remoteEphemeral)
			if hs.proto.pattern.hasPSK {
				hs.ss.mixKey(hs.remoteEphemeral)
			}
		case tokenS:
			n := DHLen
			if hs.ss.cs.HasKey() {
				n += TagLen
			}
			if len(message) < n {
				return nil, nil, nil, ErrShortMessage
			}
			var pub []byte
			if pub, err = hs.ss.decryptAndHash(message[:n]); err != nil {
				return nil, nil, nil, err
			}
			message = message[n:]
			hs.remoteStatic = pub
			if hs.onRemoteStatic != nil {
				if cbErr := hs.onRemoteStatic(pub); cbErr != nil {
					return nil, nil, nil, fmt.Errorf("%w: %v", ErrRemoteStaticRejected, cbErr)
				}
			}
		case tokenPSK:
			hs.ss.mixKeyAndHash(hs.preshared)
		default:
			if err = hs.mixDH(t); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	payload, err = hs.ss.decryptAndHash(message)
	if err != nil {
		return nil, nil, nil, err
	}

	c1, c2 = hs.advance()
	return payload, c1, c2, nil
}

// mixDH performs the DH named by a two-letter token. The first letter is
// the initiator's key, the second the responder's.
func (hs *HandshakeState) mixDH(t token) error {
	var localKey *DHKey
	var remotePub []byte
	switch t {
	case tokenEE:
		localKey, remotePub = hs.localEphemeral, hs.remoteEphemeral
	case tokenSS:
		localKey, remotePub = hs.localStatic, hs.remoteStatic
	case tokenES:
		if hs.isInitiator {
			localKey, remotePub = hs.localEphemeral, hs.remoteStatic
		} else {
			localKey, remotePub = hs.localStatic, hs.remoteEphemeral
		}
	case tokenSE:
		if hs.isInitiator {
			localKey, remotePub = hs.localStatic, hs.remoteEphemeral
		} else {
			localKey, remotePub = hs.localEphemeral, hs.remoteStatic
		}
	default:
		return fmt.Errorf("%w: token", ErrUnknownProtocol)
	}
	if localKey == nil || remotePub == nil {
		return ErrMissingKey
	}
	shared, err := dh(localKey.Private, remotePub)
	if err != nil {
		return err
	}
	hs.ss.mixKey(shared)
	return nil
}

// advance flips the turn and, when the queue has drained, splits into the
// transport cipher states.
func (hs *HandshakeState) advance() (*CipherState, *CipherState) {
	hs.messageIndex++
	hs.myTurn = !hs.myTurn
	if hs.messageIndex < len(hs.proto.pattern.messages) {
		return nil, nil
	}
	hs.finished = true
	return hs.ss.split()
}
