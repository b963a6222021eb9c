package armor

import (
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	boilerplateStart = `<!doctype html>
<html amp>
<head>
<meta charset="utf-8">
<script async src="https://cdn.ampproject.org/v0.js"></script>
<link rel="canonical" href="#">
<meta name="viewport" content="width=device-width">
<style amp-boilerplate>body{-webkit-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-moz-animation:-amp-start 8s steps(1,end) 0s 1 normal both;-ms-animation:-amp-start 8s steps(1,end) 0s 1 normal both;animation:-amp-start 8s steps(1,end) 0s 1 normal both}@-webkit-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-moz-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-ms-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@-o-keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}@keyframes -amp-start{from{visibility:hidden}to{visibility:visible}}</style><noscript><style amp-boilerplate>body{-webkit-animation:none;-moz-animation:none;-ms-animation:none;animation:none}</style></noscript>
</head>
<body>
`
	boilerplateEnd = `</body>
</html>
`
)

const (
	// The maximum number of bytes of unescaped text in a pre element.
	maxPreLen = 64 * 1024
)

// encoder is the io.WriteCloser returned by NewEncoder.
type encoder struct {
	w io.Writer
	// partial holds the incomplete UTF-8 sequence at the end of the last
	// Write.
	partial []byte
	// preLen is the length of text in the open pre element, or -1 when
	// no pre element is open.
	preLen int
}

// NewEncoder returns an io.WriteCloser that writes the text written to it
// as an AMP HTML document to w. It writes the document head at once. The
// caller must call Close to finish the document.
func NewEncoder(w io.Writer) (io.WriteCloser, error) {
	_, err := io.WriteString(w, boilerplateStart)
	if err != nil {
		return nil, err
	}
	return &encoder{w: w, preLen: -1}, nil
}

func (enc *encoder) Write(p []byte) (int, error) {
	buf := append(enc.partial, p...)
	enc.partial = nil

	// Hold back an incomplete UTF-8 sequence at the end until the next
	// Write or Close.
	complete := len(buf)
	if i := lastRuneStart(buf); !utf8.FullRune(buf[i:]) {
		complete = i
	}
	if err := enc.writeText(buf[:complete]); err != nil {
		return 0, err
	}
	if complete < len(buf) {
		enc.partial = append([]byte(nil), buf[complete:]...)
	}
	return len(p), nil
}

// writeText writes escaped text into pre elements, opening and closing them
// so that none holds more than maxPreLen bytes.
func (enc *encoder) writeText(text []byte) error {
	for len(text) > 0 {
		if enc.preLen < 0 {
			if _, err := io.WriteString(enc.w, "<pre>\n"); err != nil {
				return err
			}
			enc.preLen = 0
		}
		size := min(maxPreLen-enc.preLen, len(text))
		// Do not split a UTF-8 sequence between two pre elements.
		for size > 0 && size < len(text) && !utf8.RuneStart(text[size]) {
			size--
		}
		if size == 0 {
			if enc.preLen > 0 {
				if err := enc.closePre(); err != nil {
					return err
				}
				continue
			}
			// Not valid UTF-8 at all; split it anywhere.
			size = min(maxPreLen, len(text))
		}

		if _, err := io.WriteString(enc.w, html.EscapeString(string(text[:size]))); err != nil {
			return err
		}
		enc.preLen += size
		text = text[size:]
		if enc.preLen >= maxPreLen {
			if err := enc.closePre(); err != nil {
				return err
			}
		}
	}
	return nil
}

// lastRuneStart returns the index of the byte that starts the last UTF-8
// sequence of p, or 0 if p is empty.
func lastRuneStart(p []byte) int {
	i := len(p) - 1
	for i > 0 && len(p)-i < utf8.UTFMax && !utf8.RuneStart(p[i]) {
		i--
	}
	return max(i, 0)
}

func (enc *encoder) closePre() error {
	_, err := io.WriteString(enc.w, "</pre>\n")
	enc.preLen = -1
	return err
}

// Close writes any buffered text, closes the open pre element, and writes the
// end of the document. It does not close the underlying io.Writer.
func (enc *encoder) Close() error {
	// An incomplete sequence at the very end is written as it is.
	partial := enc.partial
	enc.partial = nil
	if err := enc.writeText(partial); err != nil {
		return err
	}
	if enc.preLen >= 0 {
		if err := enc.closePre(); err != nil {
			return err
		}
	}
	_, err := io.WriteString(enc.w, boilerplateEnd)
	return err
}
