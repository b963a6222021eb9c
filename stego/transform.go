package stego

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/mukswilly/stegman/sixbit"
)

// Transform is applied to the packed message before it is hidden, and
// inverted after it is recovered. Inverse(Forward(p)) must equal p.
type Transform interface {
	Forward(p []byte) ([]byte, error)
	Inverse(p []byte) ([]byte, error)
}

type identity struct{}

func (identity) Forward(p []byte) ([]byte, error) { return p, nil }
func (identity) Inverse(p []byte) ([]byte, error) { return p, nil }

// Identity is the Transform that leaves the buffer as it is.
var Identity Transform = identity{}

var crcTable = crc32.MakeTable(crc32.IEEE)

const checksumLen = 4

type checksum struct{}

func (checksum) Forward(p []byte) ([]byte, error) {
	out := make([]byte, 0, len(p)+checksumLen)
	out = append(out, p...)
	return binary.BigEndian.AppendUint32(out, crc32.Checksum(p, crcTable)), nil
}

func (checksum) Inverse(p []byte) ([]byte, error) {
	if len(p) < checksumLen {
		return nil, ErrChecksum
	}
	n := len(p) - checksumLen
	if crc32.Checksum(p[:n], crcTable) != binary.BigEndian.Uint32(p[n:]) {
		return nil, ErrChecksum
	}
	return p[:n], nil
}

// Checksum is a Transform that appends a big-endian CRC-32 (IEEE) of the
// buffer, and verifies and removes it on the way back. It costs four bytes of
// payload and detects the edits Seek alone cannot.
var Checksum Transform = checksum{}

// Steganographize packs message, applies t and hides the result in cover. A
// nil t is the same as Identity, which gives no integrity protection: an edit
// that swaps a glyph for another of the same width yields a different message
// without an error. Use Checksum or a sealing Transform to detect that.
func Steganographize(t Transform, message, cover string) (string, error) {
	if t == nil {
		t = Identity
	}
	packed, err := sixbit.Pack(message)
	if err != nil {
		return "", err
	}
	payload, err := t.Forward(packed)
	if err != nil {
		return "", fmt.Errorf("transform: %w", err)
	}
	return Hide(payload, cover)
}

// Unsteganographize recovers the message that Steganographize hid in stego
// using the same t.
func Unsteganographize(t Transform, stego string) (string, error) {
	if t == nil {
		t = Identity
	}
	payload, err := Seek(stego)
	if err != nil {
		return "", err
	}
	packed, err := t.Inverse(payload)
	if err != nil {
		return "", fmt.Errorf("inverse transform: %w", err)
	}
	return sixbit.Unpack(packed)
}
