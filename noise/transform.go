package noise

import (
	"errors"
)

var errNoSealer = errors.New("no recipient public key to seal with")
var errNoOpener = errors.New("no private key to open with")

// Transform adapts a Sealer and an Opener to the payload transform of package
// stego. Forward needs Sealer and Inverse needs Opener; either may be nil when
// only one direction is used.
type Transform struct {
	Sealer *Sealer
	Opener *Opener
}

// Forward seals p.
func (t Transform) Forward(p []byte) ([]byte, error) {
	if t.Sealer == nil {
		return nil, errNoSealer
	}
	return t.Sealer.Seal(nil, p)
}

// Inverse opens p.
func (t Transform) Inverse(p []byte) ([]byte, error) {
	if t.Opener == nil {
		return nil, errNoOpener
	}
	return t.Opener.Open(nil, p)
}
