package glyphs

import (
	"golang.org/x/text/unicode/norm"
)

// Unstable counts the table glyphs in s that Unicode normalization in the
// given form would rewrite. Stego text that passes through a normalizing
// channel loses the bits carried by those glyphs. Under NFC only the quad
// spaces U+2000 and U+2001 are affected; NFKC folds most of the table.
func Unstable(s string, form norm.Form) int {
	n := 0
	for _, r := range s {
		if _, ok := reverse[r]; !ok {
			continue
		}
		if !form.IsNormalString(string(r)) {
			n++
		}
	}
	return n
}
