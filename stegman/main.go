package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mukswilly/stegman/armor"
	"github.com/mukswilly/stegman/config"
	"github.com/mukswilly/stegman/glyphs"
	"github.com/mukswilly/stegman/noise"
	"github.com/mukswilly/stegman/stego"
	"golang.org/x/text/unicode/norm"
)

// The most stego text read in -seek mode.
const maxStegoLength = 16 * 1024 * 1024

// readKey returns the key given either directly as hex or in a named file.
// It returns nil if neither is given.
func readKey(keyString, keyFilename, name string) ([]byte, error) {
	if keyString != "" && keyFilename != "" {
		return nil, fmt.Errorf("only one of -%[1]s and -%[1]s-file may be used", name)
	} else if keyFilename != "" {
		key, err := noise.ReadKeyFile(keyFilename)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s from file: %w", name, err)
		}
		return key, nil
	} else if keyString != "" {
		key, err := noise.DecodeKey(keyString)
		if err != nil {
			return nil, fmt.Errorf("%s format error: %w", name, err)
		}
		return key, nil
	}
	return nil, nil
}

// makeTransform chooses the payload transform: sealing when a key is given,
// otherwise a checksum if asked for, otherwise none.
func makeTransform(checksum bool, pubkey, privkey []byte) (stego.Transform, error) {
	if pubkey == nil && privkey == nil {
		if checksum {
			return stego.Checksum, nil
		}
		return stego.Identity, nil
	}
	if checksum {
		return nil, errors.New("-checksum is redundant with a key, sealed messages are already authenticated")
	}

	var t noise.Transform
	var err error
	if pubkey != nil {
		t.Sealer, err = noise.NewSealer(pubkey)
		if err != nil {
			return nil, err
		}
	}
	if privkey != nil {
		t.Opener, err = noise.NewOpener(privkey)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// hide hides message in cover and writes the stego text to w.
func hide(w io.Writer, t stego.Transform, message, cover string, armored bool) error {
	stegoText, err := stego.Steganographize(t, message, cover)
	if err != nil {
		return err
	}
	if n := glyphs.Unstable(stegoText, norm.NFC); n > 0 {
		log.Printf("warning: %d glyphs of the stego text are changed by NFC normalization", n)
	}

	if !armored {
		_, err := io.WriteString(w, stegoText)
		return err
	}
	enc, err := armor.NewEncoder(w)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(enc, stegoText); err != nil {
		return err
	}
	return enc.Close()
}

// seek reads stego text from r and writes the message hidden in it to w,
// followed by a newline.
func seek(w io.Writer, r io.Reader, t stego.Transform, armored bool) error {
	if armored {
		var err error
		r, err = armor.NewDecoder(r)
		if err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	_, err := io.Copy(&buf, io.LimitReader(r, maxStegoLength))
	if err != nil {
		return err
	}

	message, err := stego.Unsteganographize(t, buf.String())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, message)
	return err
}

func main() {
	var genKey bool
	var seekMode bool
	var checksum bool
	var armored bool
	var coverFilename string
	var configFilename string
	var privkeyFilename string
	var privkeyString string
	var pubkeyFilename string
	var pubkeyString string

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage:
  %[1]s -gen-key [-privkey-file PRIVKEYFILE] [-pubkey-file PUBKEYFILE]
  %[1]s [-pubkey-file PUBKEYFILE] [-checksum] [-armor] -cover COVERFILE MESSAGE
  %[1]s -seek [-privkey-file PRIVKEYFILE] [-checksum] [-armor] [STEGOFILE]

Example:
  %[1]s -gen-key -privkey-file stegman.key -pubkey-file stegman.pub
  %[1]s -pubkey-file stegman.pub -cover letter.txt "meet at noon" > stego.txt
  %[1]s -seek -privkey-file stegman.key stego.txt

`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.BoolVar(&genKey, "gen-key", false, "generate a keypair; print to stdout or save to files")
	flag.BoolVar(&seekMode, "seek", false, "recover a message instead of hiding one")
	flag.BoolVar(&checksum, "checksum", false, "append a checksum to the message (without a key)")
	flag.BoolVar(&armored, "armor", false, "wrap stego text in AMP HTML")
	flag.StringVar(&coverFilename, "cover", "", "read cover text from file")
	flag.StringVar(&configFilename, "config", "", "read settings from a TOML, YAML or JSON file")
	flag.StringVar(&privkeyString, "privkey", "", fmt.Sprintf("recipient private key (%d hex digits)", noise.KeyLen*2))
	flag.StringVar(&privkeyFilename, "privkey-file", "", "read recipient private key from file (with -gen-key, write to file)")
	flag.StringVar(&pubkeyString, "pubkey", "", fmt.Sprintf("recipient public key (%d hex digits)", noise.KeyLen*2))
	flag.StringVar(&pubkeyFilename, "pubkey-file", "", "read recipient public key from file (with -gen-key, write to file)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.LUTC)

	if configFilename != "" {
		cfg, err := config.Load(configFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
			os.Exit(1)
		}
		// Flags given on the command line take precedence.
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["checksum"] {
			checksum = cfg.Checksum
		}
		if !set["armor"] {
			armored = cfg.Armor
		}
		if !set["privkey-file"] && !set["privkey"] && seekMode {
			privkeyFilename = cfg.PrivkeyFile
		}
		if !set["pubkey-file"] && !set["pubkey"] && !seekMode {
			pubkeyFilename = cfg.PubkeyFile
		}
	}

	if genKey {
		// -gen-key mode.

		if flag.NArg() != 0 || privkeyString != "" || pubkeyString != "" || seekMode {
			flag.Usage()
			os.Exit(1)
		}

		privkey, pubkey, err := noise.GenerateKeypairFiles(privkeyFilename, pubkeyFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot generate keypair: %v\n", err)
			os.Exit(1)
		}
		if privkeyFilename != "" {
			fmt.Printf("privkey written to %s\n", privkeyFilename)
		} else {
			fmt.Printf("privkey %s\n", noise.EncodeKey(privkey))
		}
		if pubkeyFilename != "" {
			fmt.Printf("pubkey  written to %s\n", pubkeyFilename)
		} else {
			fmt.Printf("pubkey  %s\n", noise.EncodeKey(pubkey))
		}
		return
	}

	if seekMode {
		// Recover a message.

		if flag.NArg() > 1 || coverFilename != "" || pubkeyString != "" || pubkeyFilename != "" {
			flag.Usage()
			os.Exit(1)
		}
		privkey, err := readKey(privkeyString, privkeyFilename, "privkey")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		t, err := makeTransform(checksum, nil, privkey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var r io.Reader = os.Stdin
		if flag.NArg() == 1 && flag.Arg(0) != "-" {
			f, err := os.Open(flag.Arg(0))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer f.Close()
			r = f
		}
		if err := seek(os.Stdout, r, t, armored); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Hide a message.

	if flag.NArg() != 1 || coverFilename == "" || privkeyString != "" || privkeyFilename != "" {
		flag.Usage()
		os.Exit(1)
	}
	pubkey, err := readKey(pubkeyString, pubkeyFilename, "pubkey")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	t, err := makeTransform(checksum, pubkey, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cover, err := os.ReadFile(coverFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read cover text: %v\n", err)
		os.Exit(1)
	}

	// The alphabet has no capitals.
	message := strings.ToLower(flag.Arg(0))
	if err := hide(os.Stdout, t, message, string(cover), armored); err != nil {
		log.Fatal(err)
	}
}
