package stego

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLong is returned by Hide when the payload does not fit the
// one-byte length header.
var ErrPayloadTooLong = fmt.Errorf("payload longer than %d bytes", MaxPayload)

// ErrChecksum is returned by the inverse of Checksum when the recovered
// payload does not match its checksum.
var ErrChecksum = errors.New("payload checksum mismatch")

// CoverTooShortError is returned by Hide when the cover text runs out of
// glyph positions before the whole payload is hidden. Byte counts include the
// length header.
type CoverTooShortError struct {
	// Hidden is the number of bytes completely hidden, which is also the
	// index of the byte that did not fit.
	Hidden int
	// Needed is the number of bytes still to be hidden.
	Needed int
}

func (e *CoverTooShortError) Error() string {
	return fmt.Sprintf("cover text too short, need space for %d more bytes", e.Needed)
}

// MessageTruncatedError is returned by Seek when the stego text ends before
// the declared number of bytes is recovered. Byte counts include the length
// header; Needed is 1 when not even the header could be recovered.
type MessageTruncatedError struct {
	Seeked int
	Needed int
}

func (e *MessageTruncatedError) Error() string {
	return fmt.Sprintf("message truncated, recovered %d of %d bytes", e.Seeked, e.Needed)
}

// MessageCorruptedError is returned by Seek when the recovered bits are not
// consistent with the declared length, which happens when the stego text was
// edited after hiding.
type MessageCorruptedError struct {
	// Expected is the payload length declared in the header.
	Expected int
	// Calculated is the number of payload bytes recovered consistently
	// before the damage.
	Calculated int
}

func (e *MessageCorruptedError) Error() string {
	return fmt.Sprintf("message corrupted, expected %d bytes, calculated %d", e.Expected, e.Calculated)
}
