// Package glyphs holds the homoglyph table: the restricted alphabet of symbols
// that may appear in a hidden message, and for each symbol the ordered list of
// code points that render the same as it.
//
// A symbol's permutation list is the symbol itself followed by its
// homoglyphs. The position of a code point within its permutation list is
// what carries hidden bits; see package radix.
//
// Homoglyphs from https://www.irongeek.com/homoglyph-attack-generator.php.
package glyphs

import (
	"fmt"
)

type entry struct {
	base       rune
	homoglyphs []rune
}

// table is ordered; the order of bases defines the alphabet index of each
// symbol and must never change.
var table = []entry{
	{' ', []rune{'\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005', '\u2006', '\u2007', '\u2008', '\u3000'}},
	{'!', []rune{'\u01c3', '\uff01'}},
	{'.', []rune{'\u0702'}},
	{',', []rune{'\u201a'}},
	{'-', []rune{}},
	{'0', []rune{'\u0555'}},
	{'1', []rune{'\uff11'}},
	{'2', []rune{'\uff12'}},
	{'3', []rune{'\uff13'}},
	{'4', []rune{'\uff14'}},
	{'5', []rune{'\uff15'}},
	{'6', []rune{'\uff16'}},
	{'7', []rune{}},
	{'8', []rune{'\uff18'}},
	{'9', []rune{'\uff19'}},
	{'a', []rune{'\u0430', '\uff41'}},
	{'b', []rune{'\uff42'}},
	{'c', []rune{'\u03f2', '\u0441', '\u217d', '\uff43'}},
	{'d', []rune{'\u0501', '\u217e', '\uff44'}},
	{'e', []rune{'\u0435', '\uff45'}},
	{'f', []rune{'\uff46'}},
	{'g', []rune{'\u0261', '\uff47'}},
	{'h', []rune{'\u04bb', '\uff48'}},
	{'i', []rune{'\u0456', '\u2170', '\uff49'}},
	{'j', []rune{'\u03f3', '\u0458', '\u0575', '\uff4a'}},
	{'k', []rune{'\uff4b'}},
	{'l', []rune{'\u0627', '\u217c', '\uff4c'}},
	{'m', []rune{'\u217f', '\uff4d'}},
	{'n', []rune{'\uff4e'}},
	{'o', []rune{'\u03bf', '\u043e', '\uff4f'}},
	{'p', []rune{'\u0440', '\uff50'}},
	{'q', []rune{'\uff51'}},
	{'r', []rune{'\uff52'}},
	{'s', []rune{'\u0455', '\uff53'}},
	{'t', []rune{'\uff54'}},
	{'u', []rune{'\uff55'}},
	{'v', []rune{'\u03bd', '\u2174', '\uff56'}},
	{'w', []rune{'\u0461', '\uff57'}},
	{'x', []rune{'\u0445', '\u2179', '\uff58'}},
	{'y', []rune{'\u028f', '\u03b3', '\u0443', '\uff59'}},
	{'z', []rune{'\uff5a'}},
}

// position locates a code point within the table.
type position struct {
	base  rune
	index int // index within the permutation list of base
}

var (
	// Alphabet is the ordered set of symbols a hidden message may contain.
	// A symbol's alphabet index is its offset in this slice.
	Alphabet []rune

	alphabetIndex map[rune]int
	forward       map[rune][]rune
	reverse       map[rune]position
)

func init() {
	Alphabet = make([]rune, 0, len(table))
	alphabetIndex = make(map[rune]int, len(table))
	forward = make(map[rune][]rune, len(table))
	reverse = make(map[rune]position)

	for i, e := range table {
		perms := make([]rune, 0, len(e.homoglyphs)+1)
		perms = append(perms, e.base)
		perms = append(perms, e.homoglyphs...)
		Alphabet = append(Alphabet, e.base)
		alphabetIndex[e.base] = i
		forward[e.base] = perms
	}
	// Bases go in first so that a homoglyph equal to any base is caught.
	for _, e := range table {
		reverse[e.base] = position{base: e.base, index: 0}
	}
	for _, e := range table {
		for i, h := range e.homoglyphs {
			if p, ok := reverse[h]; ok {
				panic(fmt.Sprintf("glyphs: %U is listed for both %q and %q", h, p.base, e.base))
			}
			reverse[h] = position{base: e.base, index: i + 1}
		}
	}
	if len(Alphabet) >= 64 {
		panic(fmt.Sprintf("glyphs: alphabet has %d symbols, does not fit in 6 bits", len(Alphabet)))
	}
}

// Index returns the alphabet index of the symbol r.
func Index(r rune) (int, bool) {
	i, ok := alphabetIndex[r]
	return i, ok
}

// Homoglyphs returns the homoglyphs of the symbol r, in table order. The
// result is empty for symbols without homoglyphs and nil for runes that are
// not symbols. The caller must not modify it.
func Homoglyphs(r rune) []rune {
	perms := forward[r]
	if perms == nil {
		return nil
	}
	return perms[1:]
}

// Permutations returns the permutation list of the symbol r: r followed by
// its homoglyphs. It returns nil if r is not a symbol. The caller must not
// modify it.
func Permutations(r rune) []rune {
	return forward[r]
}

// BaseOf returns the symbol that r is a permutation of. Symbols are their own
// base.
func BaseOf(r rune) (rune, bool) {
	p, ok := reverse[r]
	return p.base, ok
}

// Position returns the symbol that r is a permutation of, and the index of r
// within that symbol's permutation list.
func Position(r rune) (base rune, index int, ok bool) {
	p, ok := reverse[r]
	return p.base, p.index, ok
}

// Canonical replaces every glyph in runes with its base symbol, in place.
// Runes outside the table are left alone.
func Canonical(runes []rune) {
	for i, r := range runes {
		if p, ok := reverse[r]; ok {
			runes[i] = p.base
		}
	}
}
