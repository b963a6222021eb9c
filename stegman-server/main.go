package main

import (
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mukswilly/stegman/armor"
	"github.com/mukswilly/stegman/config"
	"github.com/mukswilly/stegman/glyphs"
	"github.com/mukswilly/stegman/noise"
	"github.com/mukswilly/stegman/stego"
	"golang.org/x/text/unicode/norm"
)

const (
	// net/http Server.ReadTimeout, the maximum time allowed to read an
	// entire request, including the body. Everything is in the URL, so
	// we expect requests to be small, with no streaming body.
	serverReadTimeout = 10 * time.Second
	// net/http Server.WriteTimeout, the maximum time allowed to write an
	// entire response, including the body.
	serverWriteTimeout = 20 * time.Second
	// net/http Server.IdleTimeout, how long to keep a keep-alive HTTP
	// connection open, awaiting another request.
	serverIdleTimeout = 2 * time.Minute
)

type Handler struct {
	// opener opens sealed messages in seek requests. It is nil when the
	// server has no private key.
	opener *noise.Opener
	// checksum is the default for requests that do not seal.
	checksum       bool
	maxCoverLength int
}

// decodeRequest extracts the operation from an incoming HTTP request. It
// returns "" if the request is not for a known version and operation.
func decodeRequest(req *http.Request) string {
	// Check the version indicator of the incoming client-server protocol.
	switch {
	case strings.HasPrefix(req.URL.Path, "/0"):
		// Version "0"'s operation is the final path component (earlier
		// path components are ignored). The arguments are in the
		// query string.
		_, op := path.Split(req.URL.Path[2:]) // Remove "/0" prefix.
		switch op {
		case "hide", "seek":
			return op
		}
	}
	return ""
}

// statusError is an error with the HTTP status it should be reported with.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

// status returns the HTTP status code for an error returned by hide or seek.
func status(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}
	return http.StatusUnprocessableEntity
}

// hide hides the message of the request in its cover. A request with a pubkey
// argument has its message sealed to that key.
func (handler *Handler) hide(req *http.Request) (string, error) {
	query := req.URL.Query()
	// The alphabet has no capitals.
	message := strings.ToLower(query.Get("message"))
	cover := query.Get("cover")
	if len(cover) > handler.maxCoverLength {
		return "", &statusError{http.StatusRequestEntityTooLarge,
			fmt.Errorf("cover text longer than %d bytes", handler.maxCoverLength)}
	}

	var t stego.Transform = stego.Identity
	if handler.checksum {
		t = stego.Checksum
	}
	if s := query.Get("pubkey"); s != "" {
		pubkey, err := noise.DecodeKey(s)
		if err != nil {
			return "", &statusError{http.StatusBadRequest, fmt.Errorf("pubkey format error: %w", err)}
		}
		sealer, err := noise.NewSealer(pubkey)
		if err != nil {
			return "", &statusError{http.StatusBadRequest, err}
		}
		t = noise.Transform{Sealer: sealer}
	}

	stegoText, err := stego.Steganographize(t, message, cover)
	if err != nil {
		return "", err
	}
	if n := glyphs.Unstable(stegoText, norm.NFC); n > 0 {
		log.Printf("hide: %d glyphs are changed by NFC normalization", n)
	}
	return stegoText, nil
}

// seek recovers the message hidden in the stego argument of the request.
func (handler *Handler) seek(req *http.Request) (string, error) {
	stegoText := req.URL.Query().Get("stego")
	if len(stegoText) > handler.maxCoverLength {
		return "", &statusError{http.StatusRequestEntityTooLarge,
			fmt.Errorf("stego text longer than %d bytes", handler.maxCoverLength)}
	}

	var t stego.Transform = stego.Identity
	if handler.opener != nil {
		t = noise.Transform{Opener: handler.opener}
	} else if handler.checksum {
		t = stego.Checksum
	}
	return stego.Unsteganographize(t, stegoText)
}

func (handler *Handler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if req.Method != "GET" {
		http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var result string
	var err error
	switch decodeRequest(req) {
	case "hide":
		result, err = handler.hide(req)
	case "seek":
		result, err = handler.seek(req)
	default:
		http.Error(rw, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("%s: %v", req.URL.Path, err)
		http.Error(rw, err.Error(), status(err))
		return
	}

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Attempt to hint to an AMP cache not to waste resources caching this
	// document. "The Google AMP Cache considers any document fresh for at
	// least 15 seconds."
	// https://developers.google.com/amp/cache/overview#google-amp-cache-updates
	rw.Header().Set("Cache-Control", "max-age=15")
	rw.WriteHeader(http.StatusOK)

	enc, err := armor.NewEncoder(rw)
	if err != nil {
		log.Printf("armor.NewEncoder: %v", err)
		return
	}
	defer enc.Close()
	if _, err := io.WriteString(enc, result); err != nil {
		log.Printf("armor write: %v", err)
	}
}

func run(listen, hostname string, handler *Handler) error {
	server := &http.Server{
		Addr:         listen,
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
		// The default MaxHeaderBytes is plenty for our purposes.
	}
	defer server.Close()

	if hostname == "" {
		log.Printf("listening on http://%s", listen)
		return server.ListenAndServe()
	}

	// Generate a self-signed certificate.
	certPEM, keyPEM, err := GenerateWebServerCertificate(hostname)
	if err != nil {
		return fmt.Errorf("failed to generate certificate: %w", err)
	}
	cert, err := tls.X509KeyPair([]byte(certPEM), []byte(keyPEM))
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	log.Printf("listening on https://%s", listen)
	// Empty strings here because the certificate is already loaded.
	return server.ListenAndServeTLS("", "")
}

func main() {
	var genKey bool
	var checksum bool
	var configFilename string
	var privkeyFilename string
	var privkeyString string
	var pubkeyFilename string
	var hostname string

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage:
  %[1]s -gen-key -privkey-file PRIVKEYFILE -pubkey-file PUBKEYFILE
  %[1]s [-privkey-file PRIVKEYFILE] [-hostname HOSTNAME] LISTENADDR

Example:
  %[1]s -gen-key -privkey-file server.key -pubkey-file server.pub
  %[1]s -privkey-file server.key 127.0.0.1:8080

`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.BoolVar(&genKey, "gen-key", false, "generate a server keypair; print to stdout or save to files")
	flag.BoolVar(&checksum, "checksum", false, "checksum messages that are not sealed")
	flag.StringVar(&configFilename, "config", "", "read settings from a TOML, YAML or JSON file")
	flag.StringVar(&privkeyString, "privkey", "", fmt.Sprintf("server private key (%d hex digits)", noise.KeyLen*2))
	flag.StringVar(&privkeyFilename, "privkey-file", "", "read server private key from file (with -gen-key, write to file)")
	flag.StringVar(&pubkeyFilename, "pubkey-file", "", "with -gen-key, write server public key to file")
	flag.StringVar(&hostname, "hostname", "", "serve TLS with a self-signed certificate for this hostname")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.LUTC)

	cfg := config.DefaultConfig()
	if configFilename != "" {
		var err error
		cfg, err = config.Load(configFilename)
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
		if !set["hostname"] {
			hostname = cfg.Hostname
		}
		if !set["privkey-file"] && !set["privkey"] {
			privkeyFilename = cfg.PrivkeyFile
		}
		if !set["pubkey-file"] {
			pubkeyFilename = cfg.PubkeyFile
		}
	}

	if genKey {
		// -gen-key mode.

		if flag.NArg() != 0 || privkeyString != "" {
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

	// Ordinary server mode.

	listen := cfg.Listen
	if flag.NArg() == 1 {
		listen = flag.Arg(0)
	} else if flag.NArg() != 0 || configFilename == "" {
		flag.Usage()
		os.Exit(1)
	}

	handler := &Handler{
		checksum:       checksum,
		maxCoverLength: cfg.MaxCoverLength,
	}

	var privkey []byte
	if privkeyFilename != "" && privkeyString != "" {
		fmt.Fprintf(os.Stderr, "only one of -privkey and -privkey-file may be used\n")
		os.Exit(1)
	} else if privkeyFilename != "" {
		var err error
		privkey, err = noise.ReadKeyFile(privkeyFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot read privkey from file: %v\n", err)
			os.Exit(1)
		}
	} else if privkeyString != "" {
		var err error
		privkey, err = noise.DecodeKey(privkeyString)
		if err != nil {
			fmt.Fprintf(os.Stderr, "privkey format error: %v\n", err)
			os.Exit(1)
		}
	}
	if privkey != nil {
		opener, err := noise.NewOpener(privkey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		handler.opener = opener
		log.Printf("pubkey %x", noise.PubkeyFromPrivkey(privkey))
	} else {
		log.Println("no private key; seek requests are not opened")
		log.Println("use the -privkey or -privkey-file option to receive sealed messages")
	}

	err := run(listen, hostname, handler)
	if err != nil {
		log.Fatal(err)
	}
}
