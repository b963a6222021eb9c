/*
Package stego hides a byte payload inside ordinary text by substituting
homoglyphs for some of its characters, and recovers it again.

The payload is prefixed with a one-byte length header. Each byte is hidden
least significant bit first in consecutive characters of the cover text; a
character that is a symbol of the glyph table carries one to three bits by way
of the homoglyph chosen for it (see package radix), while any other character
is passed over and carries nothing. A byte never shares a character with the
next byte. The stego text has exactly as many characters as the cover.

	stegoText, err := stego.Hide(payload, cover)
	// err check
	payload, err = stego.Seek(stegoText)
	// err check

Steganographize and Unsteganographize add the six-bit packing of the message
and a Transform applied to the packed buffer.

Seek detects a stego text that ends too early (MessageTruncatedError), and a
stego text that cannot have been produced by Hide for the bytes it yields
(MessageCorruptedError). An edit that swaps one glyph for another of the same
width yields a different payload that is indistinguishable from a genuine one;
use an authenticating Transform when that matters.
*/
package stego

import (
	"github.com/mukswilly/stegman/glyphs"
	"github.com/mukswilly/stegman/radix"
)

// MaxPayload is the largest payload the length header can describe.
const MaxPayload = 255

// Hide hides payload in cover and returns the resulting stego text.
func Hide(payload []byte, cover string) (string, error) {
	if len(payload) > MaxPayload {
		return "", ErrPayloadTooLong
	}

	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)

	runes := []rune(cover)
	cursor := 0
	for i, b := range buf {
		var ok bool
		cursor, ok = hideByte(b, runes, cursor)
		if !ok {
			return "", &CoverTooShortError{Hidden: i, Needed: len(buf) - i}
		}
	}

	return string(runes), nil
}

// hideByte hides the 8 bits of b in runes, in place, starting at cursor. It
// returns the cursor just past the last rune used, and false if runes ran out
// first. A rune that is already a homoglyph is treated as its base symbol.
func hideByte(b byte, runes []rune, cursor int) (int, bool) {
	hidden := 0
	for hidden < 8 {
		if cursor >= len(runes) {
			return cursor, false
		}
		c := runes[cursor]
		if base, ok := glyphs.BaseOf(c); ok {
			c = base
		}
		width, sub := radix.Encode(b, hidden, c)
		if width > 0 {
			runes[cursor] = sub
		}
		cursor++
		hidden += width
	}
	return cursor, true
}

// Seek recovers the payload hidden in stego.
func Seek(stego string) ([]byte, error) {
	runes := []rune(stego)

	buf, cursor, err := seekBytes(runes)
	if err != nil {
		return nil, err
	}
	if err := verify(runes[:cursor], buf); err != nil {
		return nil, err
	}

	return buf[1:], nil
}

// seekBytes decodes runes until the header and the number of bytes it
// declares have been recovered. It returns the bytes, header included, and
// the number of runes consumed.
func seekBytes(runes []rune) ([]byte, int, error) {
	var buf []byte
	var temp uint
	pos := 0
	need := 1
	cursor := 0

	for len(buf) < need {
		if cursor >= len(runes) {
			return nil, cursor, &MessageTruncatedError{Seeked: len(buf), Needed: need}
		}
		width, value := radix.Decode(runes[cursor])
		cursor++
		if width == 0 {
			continue
		}

		temp |= uint(value) << uint(pos)
		pos += width
		if pos < 8 {
			continue
		}
		buf = append(buf, byte(temp))
		temp >>= 8
		pos -= 8
		if pos != 0 {
			// This glyph straddles two bytes, which Hide never does.
			return nil, cursor, &MessageCorruptedError{
				Expected:   int(buf[0]),
				Calculated: max(len(buf)-2, 0),
			}
		}
		if len(buf) == 1 {
			need = int(buf[0]) + 1
		}
	}

	return buf, cursor, nil
}

// verify hides buf again in the canonical form of stego and checks that the
// result is stego, glyph for glyph. stego is the prefix of the stego text that
// seekBytes consumed for buf.
func verify(stego []rune, buf []byte) error {
	canonical := make([]rune, len(stego))
	copy(canonical, stego)
	glyphs.Canonical(canonical)

	cursor := 0
	for i, b := range buf {
		start := cursor
		var ok bool
		cursor, ok = hideByte(b, canonical, cursor)
		if !ok || !equalRunes(canonical[start:cursor], stego[start:cursor]) {
			return &MessageCorruptedError{
				Expected:   int(buf[0]),
				Calculated: max(i-1, 0),
			}
		}
	}
	return nil
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
