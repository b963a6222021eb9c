package radix

import (
	"testing"

	"github.com/mukswilly/stegman/glyphs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tables must be permutations of their value spaces.
func TestBitsArePermutations(t *testing.T) {
	for w := 1; w <= MaxWidth; w++ {
		require.Len(t, Bits[w], 1<<uint(w))
		seen := make(map[byte]bool)
		for _, v := range Bits[w] {
			assert.Less(t, int(v), 1<<uint(w))
			assert.False(t, seen[v], "width %d repeats %d", w, v)
			seen[v] = true
		}
	}
}

func TestEncode(t *testing.T) {
	for _, test := range []struct {
		bits   byte
		offset int
		c      rune
		width  int
		sub    rune
	}{
		// 'o' has four permutations: two bits fit, three do not.
		{0b1111, 0, 'o', 2, '\uff4f'},
		// ' ' has eleven; 0b011 is rank 4 of the three-bit range.
		{0b1111, 2, ' ', 3, '\u3000'},
		// Only one bit remains at offset 7.
		{0b10000000, 7, ' ', 1, '\u2000'},
		{0b00000000, 7, ' ', 1, ' '},
		// Two bits remain at offset 6; 0b00 is rank 3, index 5.
		{0b00000000, 6, ' ', 2, '\u2004'},
		// 'a' has three permutations: index 2 is 0b10 in the two-bit range.
		{0b10, 0, 'a', 2, '\uff41'},
		{0b11, 0, 'a', 1, '\u0430'},
		{0b00, 0, 'a', 1, 'a'},
		// Symbols without homoglyphs and non-symbols carry nothing.
		{0b1, 0, '7', 0, 0},
		{0b0, 0, '7', 0, 0},
		{0b1, 0, '-', 0, 0},
		{0b1, 0, 'T', 0, 0},
		{0b1, 0, '\uff4f', 0, 0},
	} {
		width, sub := Encode(test.bits, test.offset, test.c)
		assert.Equal(t, test.width, width, "Encode(%08b, %d, %q)", test.bits, test.offset, test.c)
		assert.Equal(t, test.sub, sub, "Encode(%08b, %d, %q) -> %q", test.bits, test.offset, test.c, sub)
	}
}

func TestDecode(t *testing.T) {
	for _, test := range []struct {
		r     rune
		width int
		value byte
	}{
		{'\uff4f', 2, 0b11},
		{'\u3000', 3, 0b011},
		{'o', 1, 0},
		{'\u03bf', 1, 1},
		{'\u0555', 1, 1},
		{'0', 1, 0},
		{'\u2005', 3, 0b111},
		{'\u2006', 3, 0b110},
		{'7', 0, 0},
		{'-', 0, 0},
		{'T', 0, 0},
		{'\n', 0, 0},
	} {
		width, value := Decode(test.r)
		assert.Equal(t, test.width, width, "Decode(%q)", test.r)
		assert.Equal(t, test.value, value, "Decode(%q)", test.r)
	}
}

// Decode inverts Encode for every symbol, byte value and offset.
func TestEncodeDecode(t *testing.T) {
	for _, c := range glyphs.Alphabet {
		for offset := 0; offset < 8; offset++ {
			for b := 0; b < 256; b++ {
				width, sub := Encode(byte(b), offset, c)
				if width == 0 {
					assert.Less(t, len(glyphs.Permutations(c)), 2, "%q", c)
					continue
				}
				assert.LessOrEqual(t, offset+width, 8)
				base, ok := glyphs.BaseOf(sub)
				require.True(t, ok)
				assert.Equal(t, c, base)

				dw, value := Decode(sub)
				expected := byte(b) >> uint(offset) & (1<<uint(width) - 1)
				assert.Equal(t, width, dw, "%q %08b@%d -> %q", c, b, offset, sub)
				assert.Equal(t, expected, value, "%q %08b@%d -> %q", c, b, offset, sub)
			}
		}
	}
}

// Every glyph in the table decodes to a width within the symbol's capacity.
func TestDecodeAllGlyphs(t *testing.T) {
	for _, c := range glyphs.Alphabet {
		for _, r := range glyphs.Permutations(c) {
			width, _ := Decode(r)
			assert.LessOrEqual(t, width, Capacity(c), "%U", r)
		}
	}
}

func TestCapacity(t *testing.T) {
	for _, test := range []struct {
		c        rune
		capacity int
	}{
		{' ', 3},
		{'c', 2},
		{'o', 2},
		{'a', 2},
		{'s', 2},
		{'0', 1},
		{'z', 1},
		{'7', 0},
		{'-', 0},
		{'T', 0},
	} {
		assert.Equal(t, test.capacity, Capacity(test.c), "%q", test.c)
	}
}
