// secretbox.go - AEAD output triple
//
// To the extent possible under law, the cryptkit authors have waived all
// copyright and related or neighboring rights to the software, using the
// Creative Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cryptkit

// SecretBox is the (ciphertext, nonce, mac) triple emitted by every AEAD
// encryption in this module. Field lengths are fixed by the cipher that
// produced the box.
type SecretBox struct {
	Ciphertext []byte
	Nonce      []byte
	Mac        Mac
}

// Concat serializes the box as nonce || ciphertext || mac, the layout used
// when a box travels over a byte stream.
func (b *SecretBox) Concat() []byte {
	out := make([]byte, 0, len(b.Nonce)+len(b.Ciphertext)+len(b.Mac))
	out = append(out, b.Nonce...)
	out = append(out, b.Ciphertext...)
	out = append(out, b.Mac...)
	return out
}

// ParseSecretBox splits nonce || ciphertext || mac back into a box given the
// cipher's nonce and mac lengths.
func ParseSecretBox(raw []byte, nonceLen, macLen int) (*SecretBox, error) {
	if len(raw) < nonceLen+macLen {
		return nil, ErrInvalidArgument
	}
	return &SecretBox{
		Nonce:      append([]byte{}, raw[:nonceLen]...),
		Ciphertext: append([]byte{}, raw[nonceLen:len(raw)-macLen]...),
		Mac:        Mac(append([]byte{}, raw[len(raw)-macLen:]...)),
	}, nil
}
