/*
A Sealer encrypts payloads to a recipient's public key, and an Opener holding
the matching private key decrypts them. A sealed message is a complete
Noise_N handshake message: the sender's ephemeral public key followed by the
encryption of a 64-bit big-endian sequence number and the payload. No reply is
ever needed, so a sealed message can travel inside a stego text.

The sender only needs the recipient's public key.
	sealer, err := NewSealer(pubkey)
	// err check
	msg, err := sealer.Seal(nil, payload)
	// err check
	// hide msg in a cover text
The recipient opens the messages it recovers with its private key.
	opener, err := NewOpener(privkey)
	// err check
	payload, err := opener.Open(nil, msg)
	// err check
*/
package noise

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flynn/noise"
)

// Overhead is how many bytes longer a sealed message is than its payload: a
// 32-byte ephemeral key, an 8-byte sequence number and a 16-byte
// authentication tag.
const Overhead = KeyLen + 8 + 16

var errMissingSeq = errors.New("payload is too short to contain a sequence number")
var errReplay = errors.New("sequence number is already used or out of window")

// Sealer seals messages to one recipient. It is safe for concurrent use.
type Sealer struct {
	pubkey []byte
	lock   sync.Mutex
	seq    uint64
}

// NewSealer returns a Sealer for the recipient whose public key is pubkey. The
// sequence numbers of its messages start at the current time in nanoseconds,
// so that a restarted sender stays ahead of the recipient's replay window.
func NewSealer(pubkey []byte) (*Sealer, error) {
	if len(pubkey) != KeyLen {
		return nil, fmt.Errorf("pubkey length is %d, expected %d", len(pubkey), KeyLen)
	}
	return &Sealer{
		pubkey: pubkey,
		seq:    uint64(time.Now().UnixNano()),
	}, nil
}

// Seal encrypts p, appends the sealed message to out and returns out.
func (sealer *Sealer) Seal(out, p []byte) ([]byte, error) {
	sealer.lock.Lock()
	seq := sealer.seq
	sealer.seq++
	sealer.lock.Unlock()

	config := newConfig()
	config.Initiator = true
	config.PeerStatic = sealer.pubkey
	handshakeState, err := noise.NewHandshakeState(config)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, 8, 8+len(p))
	binary.BigEndian.PutUint64(payload, seq)
	payload = append(payload, p...)

	// -> e, es
	out, _, _, err = handshakeState.WriteMessage(out, payload)
	return out, err
}

// Opener opens messages sealed to its private key. It is safe for concurrent
// use.
type Opener struct {
	keypair noise.DHKey
	lock    sync.Mutex
	replay  replayWindow
}

// NewOpener returns an Opener for the recipient whose private key is privkey.
func NewOpener(privkey []byte) (*Opener, error) {
	if len(privkey) != KeyLen {
		return nil, fmt.Errorf("privkey length is %d, expected %d", len(privkey), KeyLen)
	}
	return &Opener{
		keypair: noise.DHKey{
			Private: privkey,
			Public:  PubkeyFromPrivkey(privkey),
		},
	}, nil
}

// Open decrypts a sealed message, appends the payload to out and returns out.
// It returns a non-nil error when the message cannot be authenticated or its
// sequence number has already been seen or is out of window.
func (opener *Opener) Open(out, msg []byte) ([]byte, error) {
	config := newConfig()
	config.Initiator = false
	config.StaticKeypair = opener.keypair
	handshakeState, err := noise.NewHandshakeState(config)
	if err != nil {
		return nil, err
	}

	// -> e, es
	payload, _, _, err := handshakeState.ReadMessage(nil, msg)
	if err != nil {
		return nil, err
	}
	if len(payload) < 8 {
		return nil, errMissingSeq
	}
	seq := binary.BigEndian.Uint64(payload[:8])

	// The message was authenticated; is its sequence number acceptable? It
	// is important to do this check only after successful decryption.
	opener.lock.Lock()
	ok := opener.replay.CheckAndUpdate(seq)
	opener.lock.Unlock()
	if !ok {
		return nil, errReplay
	}

	return append(out, payload[8:]...), nil
}
