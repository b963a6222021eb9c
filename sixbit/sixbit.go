// Package sixbit packs text over the glyphs alphabet into a dense byte buffer,
// six bits per symbol.
//
// Symbol i of the text occupies bits [6*i, 6*i+6) of a bit stream that is
// filled least significant bit first, so a field that straddles a byte
// boundary continues in the low bits of the next byte. The buffer is
// ceil(6*n/8) bytes long and unused trailing bits are zero.
//
// When the buffer length is a multiple of 3 the bit stream is an exact number
// of fields, but a text one symbol shorter packs to the same length with six
// zero bits of padding. Unpack resolves this by treating a final all-zero field
// as padding in that case, so a text whose length is a multiple of 4 and that
// ends in a space does not survive a round trip with its final space.
package sixbit

import (
	"fmt"

	"github.com/mukswilly/stegman/glyphs"
)

const fieldBits = 6

// InvalidCharacterError is returned by Pack when the text contains a rune that
// is not in the alphabet.
type InvalidCharacterError struct {
	Char   rune
	Offset int // rune offset within the text
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d, only %q are supported",
		e.Char, e.Offset, string(glyphs.Alphabet))
}

// InvalidCodeError is returned by Unpack when a six-bit field does not index a
// symbol of the alphabet.
type InvalidCodeError struct {
	Code   byte
	Offset int // field offset within the buffer
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid character code %d at offset %d, max %d",
		e.Code, e.Offset, len(glyphs.Alphabet)-1)
}

// PackedLen returns the length of the buffer Pack produces for a text of n
// symbols.
func PackedLen(n int) int {
	return (n*fieldBits + 7) / 8
}

// Pack encodes s into a six-bit packed buffer.
func Pack(s string) ([]byte, error) {
	runes := []rune(s)
	buf := make([]byte, PackedLen(len(runes)))

	for i, r := range runes {
		alpha, ok := glyphs.Index(r)
		if !ok {
			return nil, &InvalidCharacterError{Char: r, Offset: i}
		}
		index, bit := i*fieldBits/8, uint(i*fieldBits%8)
		value := uint16(alpha) << bit
		buf[index] |= byte(value)
		if bit > 8-fieldBits {
			// The field straddles into the next byte.
			buf[index+1] |= byte(value >> 8)
		}
	}

	return buf, nil
}

// Unpack decodes a buffer produced by Pack. Trailing bits too few to hold a
// field are ignored.
func Unpack(buf []byte) (string, error) {
	n := len(buf) * 8 / fieldBits
	if n > 0 && len(buf)%3 == 0 && field(buf, n-1) == 0 {
		n--
	}

	runes := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		code := field(buf, i)
		if int(code) >= len(glyphs.Alphabet) {
			return "", &InvalidCodeError{Code: code, Offset: i}
		}
		runes = append(runes, glyphs.Alphabet[code])
	}

	return string(runes), nil
}

// field extracts the i'th six-bit field of buf. The field must lie within buf.
func field(buf []byte, i int) byte {
	index, bit := i*fieldBits/8, uint(i*fieldBits%8)
	value := uint16(buf[index])
	if index+1 < len(buf) {
		value |= uint16(buf[index+1]) << 8
	}
	return byte(value>>bit) & (1<<fieldBits - 1)
}
