// patterns.go - Handshake pattern tables
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package noise

import (
	"fmt"
	"strconv"
	"strings"
)

// token is a single handshake token.
type token int

const (
	tokenE token = iota
	tokenS
	tokenEE
	tokenES
	tokenSE
	tokenSS
	tokenPSK
)

// handshakePattern is the pre-message knowledge plus the message token
// lists, in transmission order starting with the initiator.
type handshakePattern struct {
	name string
	// initiatorPreMessages and responderPreMessages list the public keys
	// assumed known before the handshake; they are hashed into h during
	// initialization, initiator side first.
	initiatorPreMessages []token
	responderPreMessages []token
	messages             [][]token
	hasPSK               bool
}

var basePatterns = map[string]handshakePattern{
	"N": {
		name:                 "N",
		responderPreMessages: []token{tokenS},
		messages:             [][]token{{tokenE, tokenES}},
	},
	"K": {
		name:                 "K",
		initiatorPreMessages: []token{tokenS},
		responderPreMessages: []token{tokenS},
		messages:             [][]token{{tokenE, tokenES, tokenSS}},
	},
	"X": {
		name:                 "X",
		responderPreMessages: []token{tokenS},
		messages:             [][]token{{tokenE, tokenES, tokenS, tokenSS}},
	},
	"NK": {
		name:                 "NK",
		responderPreMessages: []token{tokenS},
		messages: [][]token{
			{tokenE, tokenES},
			{tokenE, tokenEE},
		},
	},
	"NK1": {
		name:                 "NK1",
		responderPreMessages: []token{tokenS},
		messages: [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenES},
		},
	},
	"KK": {
		name:                 "KK",
		initiatorPreMessages: []token{tokenS},
		responderPreMessages: []token{tokenS},
		messages: [][]token{
			{tokenE, tokenES, tokenSS},
			{tokenE, tokenEE, tokenSE},
		},
	},
	"IK": {
		name:                 "IK",
		responderPreMessages: []token{tokenS},
		messages: [][]token{
			{tokenE, tokenES, tokenS, tokenSS},
			{tokenE, tokenEE, tokenSE},
		},
	},
	"XX": {
		name: "XX",
		messages: [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenS, tokenES},
			{tokenS, tokenSE},
		},
	},
	"X1X": {
		name: "X1X",
		messages: [][]token{
			{tokenE},
			{tokenE, tokenEE, tokenS, tokenES},
			{tokenS},
			{tokenSE},
		},
	},
}

// lookupPattern resolves a pattern name with optional psk modifiers, e.g.
// "XXpsk3" or "KKpsk0+psk2".
func lookupPattern(name string) (handshakePattern, error) {
	base := name
	var modifiers string
	if i := strings.Index(name, "psk"); i >= 0 {
		base, modifiers = name[:i], name[i:]
	}
	p, ok := basePatterns[base]
	if !ok {
		return handshakePattern{}, fmt.Errorf("%w: pattern %q", ErrUnknownProtocol, name)
	}
	if modifiers == "" {
		return p, nil
	}

	// Deep-copy the message lists before editing them.
	msgs := make([][]token, len(p.messages))
	for i, m := range p.messages {
		msgs[i] = append([]token{}, m...)
	}
	p.messages = msgs
	p.hasPSK = true
	p.name = name

	for _, mod := range strings.Split(modifiers, "+") {
		if !strings.HasPrefix(mod, "psk") {
			return handshakePattern{}, fmt.Errorf("%w: modifier %q", ErrUnknownProtocol, mod)
		}
		n, err := strconv.Atoi(mod[3:])
		if err != nil || n < 0 || n > len(p.messages) {
			return handshakePattern{}, fmt.Errorf("%w: modifier %q", ErrUnknownProtocol, mod)
		}
		if n == 0 {
			// psk0 prepends to the first message.
			p.messages[0] = append([]token{tokenPSK}, p.messages[0]...)
		} else {
			// pskN appends to the Nth message.
			p.messages[n-1] = append(p.messages[n-1], tokenPSK)
		}
	}
	return p, nil
}
