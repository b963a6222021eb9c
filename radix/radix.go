// Package radix maps runs of one to three bits onto the choice of one glyph
// from a symbol's permutation list, and back.
//
// A permutation list of length m is divided into consecutive index ranges, one
// per width: index 0-1 carries one bit, 2-5 carries two bits and 6-13 carries
// three bits. Within a range, the rank of a glyph is translated into a value
// through the fixed permutation tables in Bits. Because the ranges are
// disjoint, the width of a glyph is known from its index alone, and every glyph
// decodes independently of its neighbours.
package radix

import (
	"github.com/mukswilly/stegman/glyphs"
)

// MaxWidth is the largest number of bits a single glyph carries.
const MaxWidth = 3

// Bits holds, for each width w, the value represented by each rank within
// that width's index range. The orderings are part of the stego format and
// must not be changed, even though they are not the obvious ones.
var Bits = [MaxWidth + 1][]byte{
	nil,
	{0b0, 0b1},
	{0b10, 0b11, 0b01, 0b00},
	{0b111, 0b110, 0b101, 0b100, 0b011, 0b010, 0b001, 0b000},
}

// rangeStart returns the first permutation index of the range for width w:
// the total size of all narrower ranges, 2 + 4 + ... + 2^(w-1).
func rangeStart(w int) int {
	return 1<<w - 2
}

// rankOf returns the position of v in Bits[w].
func rankOf(w int, v byte) (int, bool) {
	for rank, x := range Bits[w] {
		if x == v {
			return rank, true
		}
	}
	return 0, false
}

// Encode chooses a substitute for the symbol c that carries the bits of bits
// starting at bit offset offset (0 is the least significant bit). It tries
// the widest width first, never reaching past bit 7, and returns the number of
// bits consumed and the substitute glyph, which may be c itself. A width of 0
// means c carries nothing and must be left as it is: c is not a symbol, or it
// has no homoglyphs.
func Encode(bits byte, offset int, c rune) (int, rune) {
	perms := glyphs.Permutations(c)
	if len(perms) < 2 || offset < 0 || offset >= 8 {
		return 0, 0
	}

	w := MaxWidth
	if 8-offset < w {
		w = 8 - offset
	}
	for ; w > 0; w-- {
		v := (bits >> uint(offset)) & (1<<uint(w) - 1)
		rank, ok := rankOf(w, v)
		if !ok {
			continue
		}
		index := rangeStart(w) + rank
		if index > len(perms)-1 {
			// Not enough homoglyphs for this width.
			continue
		}
		return w, perms[index]
	}
	return 0, 0
}

// Decode returns the number of bits carried by the glyph r and their value. A
// width of 0 means r carries nothing: it is outside the table, or it belongs
// to a symbol with no homoglyphs.
func Decode(r rune) (int, byte) {
	base, index, ok := glyphs.Position(r)
	if !ok || len(glyphs.Permutations(base)) < 2 {
		return 0, 0
	}
	for w := 1; w <= MaxWidth; w++ {
		rank := index - rangeStart(w)
		if rank < len(Bits[w]) {
			return w, Bits[w][rank]
		}
	}
	return 0, 0
}

// Capacity returns the widest run of bits that the symbol c can carry at
// some bit offset.
func Capacity(c rune) int {
	m := len(glyphs.Permutations(c))
	if m < 2 {
		return 0
	}
	for w := MaxWidth; w > 0; w-- {
		if m > rangeStart(w) {
			return w
		}
	}
	return 0
}
