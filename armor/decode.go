package armor

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
)

// decoder is the io.Reader returned by NewDecoder.
type decoder struct {
	z *html.Tokenizer
	// pending is text already extracted from a pre element and not yet
	// returned by Read.
	pending []byte
	// inPre is true while the tokenizer is inside a pre element, and
	// atStart is true until the first text of that element is seen.
	inPre, atStart bool
	err            error
}

// NewDecoder returns an io.Reader that reads the text contents of the pre
// elements of the HTML document in r, with the leading newline of each
// removed. It streams; the document is never held in memory as a whole.
func NewDecoder(r io.Reader) (io.Reader, error) {
	return &decoder{z: html.NewTokenizer(r)}, nil
}

func (dec *decoder) Read(p []byte) (int, error) {
	for len(dec.pending) == 0 {
		if dec.err != nil {
			return 0, dec.err
		}
		dec.next()
	}
	n := copy(p, dec.pending)
	dec.pending = dec.pending[n:]
	return n, nil
}

// next advances the tokenizer by one token, leaving any text it finds in
// pending.
func (dec *decoder) next() {
	switch dec.z.Next() {
	case html.ErrorToken:
		dec.err = dec.z.Err()
		if dec.err == io.EOF && dec.inPre {
			dec.err = io.ErrUnexpectedEOF
		}
	case html.StartTagToken:
		name, _ := dec.z.TagName()
		if string(name) == "pre" {
			dec.inPre, dec.atStart = true, true
		}
	case html.EndTagToken:
		name, _ := dec.z.TagName()
		if string(name) == "pre" {
			dec.inPre = false
		}
	case html.TextToken:
		if !dec.inPre {
			break
		}
		// Text returns a slice that is only valid until the next call
		// to Next, and unescape may shrink it in place.
		text := bytes.Clone(dec.z.Text())
		if dec.atStart {
			text = bytes.TrimPrefix(text, []byte("\n"))
			dec.atStart = false
		}
		dec.pending = text
	}
}
