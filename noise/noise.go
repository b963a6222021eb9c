// Package noise seals payloads to a recipient's public key with the one-way
// handshake Noise_N_25519_ChaChaPoly_BLAKE2s, so that a hidden message can be
// read only by the holder of the matching private key. Each sealed message is
// a single self-contained Noise handshake message carrying a sequence number,
// which the recipient checks against a replay window.
//
// https://noiseprotocol.org/noise.html#one-way-handshake-patterns
package noise

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/flynn/noise"
	"golang.org/x/crypto/curve25519"
)

// The length of public and private keys as returned by GeneratePrivkey.
const KeyLen = 32

// cipherSuite represents 25519_ChaChaPoly_BLAKE2s.
var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashBLAKE2s)

// newConfig instantiates configuration settings that are common to senders and
// recipients.
func newConfig() noise.Config {
	return noise.Config{
		CipherSuite: cipherSuite,
		Pattern:     noise.HandshakeN,
		Prologue:    []byte("stegman 2026-10-18"),
	}
}

// GeneratePrivkey generates a private key. The corresponding public key can be
// generated using PubkeyFromPrivkey.
func GeneratePrivkey() ([]byte, error) {
	pair, err := noise.DH25519.GenerateKeypair(rand.Reader)
	return pair.Private, err
}

// PubkeyFromPrivkey returns the public key that corresponds to privkey.
func PubkeyFromPrivkey(privkey []byte) []byte {
	pubkey, err := curve25519.X25519(privkey, curve25519.Basepoint)
	if err != nil {
		panic(err)
	}
	return pubkey
}

// ReadKey reads a hex-encoded key from r. r must consist of a single line, with
// or without a '\n' line terminator. The line must consist of KeyLen
// hex-encoded bytes.
func ReadKey(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(io.LimitReader(r, 100))
	line, err := br.ReadString('\n')
	if err == io.EOF {
		err = nil
	}
	if err == nil {
		// Check that we're at EOF.
		_, err = br.ReadByte()
		if err == io.EOF {
			err = nil
		} else if err == nil {
			err = fmt.Errorf("file contains more than one line")
		}
	}
	if err != nil {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\n")
	return DecodeKey(line)
}

// ReadKeyFile reads a key from a named file.
func ReadKeyFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKey(f)
}

// WriteKey writes the hex-encoded key in a single line to w.
func WriteKey(w io.Writer, key []byte) error {
	_, err := fmt.Fprintf(w, "%x\n", key)
	return err
}

// DecodeKey decodes a hex-encoded private or public key.
func DecodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err == nil && len(key) != KeyLen {
		err = fmt.Errorf("length is %d, expected %d", len(key), KeyLen)
	}
	return key, err
}

// EncodeKey encodes a hex-encoded private or public key.
func EncodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

// GenerateKeypairFiles generates a new keypair and returns it. Each key is
// also saved to its file when the filename is not empty. Existing files are
// never overwritten.
func GenerateKeypairFiles(privkeyFilename, pubkeyFilename string) (privkey, pubkey []byte, err error) {
	if privkeyFilename != "" && privkeyFilename == pubkeyFilename {
		return nil, nil, errors.New("privkey and pubkey filenames must be different")
	}

	privkey, err = GeneratePrivkey()
	if err != nil {
		return nil, nil, err
	}
	pubkey = PubkeyFromPrivkey(privkey)

	if privkeyFilename != "" {
		// Save the privkey to a file, readable only by the owner.
		if err := writeKeyFile(privkeyFilename, privkey, 0400); err != nil {
			return nil, nil, err
		}
	}
	if pubkeyFilename != "" {
		if err := writeKeyFile(pubkeyFilename, pubkey, 0666); err != nil {
			return nil, nil, err
		}
	}

	return privkey, pubkey, nil
}

func writeKeyFile(filename string, key []byte, perm os.FileMode) (err error) {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()
	return WriteKey(f, key)
}
