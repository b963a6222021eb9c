package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mukswilly/stegman/armor"
	"github.com/mukswilly/stegman/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cover = strings.Repeat("The quick brown fox jumps over the lazy dog, then naps. ", 80)

func mustNewRequest(method, path string) *http.Request {
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		panic(err)
	}
	return req
}

func TestDecodeRequest(t *testing.T) {
	for _, test := range []struct {
		path       string
		expectedOp string
	}{
		// Good tests.
		{"/0/hide", "hide"},
		{"/0/seek", "seek"},
		{"/0/hide?message=abc&cover=xyz", "hide"},
		{"/0/XXXX/seek", "seek"},
		{"/0hide", "hide"}, // no slash necessary after version

		// Bad tests.
		{"/0", ""},
		{"/0/", ""},
		{"//0/hide", ""}, // extra slash at start
		{"0/hide", ""},   // no slash at start
		{"/0/hide/", ""}, // trailing slash
		{"/0/HIDE", ""},  // operations are lowercase
		{"/0/unhide", ""},
		{"/1/hide", ""}, // unknown version
	} {
		req := mustNewRequest("GET", test.path)
		op := decodeRequest(req)
		if op != test.expectedOp {
			t.Errorf("%+q -> %+q, expected %+q", test.path, op, test.expectedOp)
		}
	}
}

// get performs a GET request on handler and returns the status and, for a
// successful request, the unarmored body.
func get(t *testing.T, handler http.Handler, path string, query url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	resp := rec.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	dec, err := armor.NewDecoder(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(dec)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandlerHideSeek(t *testing.T) {
	for _, checksum := range []bool{false, true} {
		handler := &Handler{checksum: checksum, maxCoverLength: 64 * 1024}

		status, stegoText := get(t, handler, "/0/hide", url.Values{
			"message": {"meet at noon"},
			"cover":   {cover},
		})
		require.Equal(t, http.StatusOK, status, stegoText)
		assert.Equal(t, len([]rune(cover)), len([]rune(stegoText)))
		assert.NotEqual(t, cover, stegoText)

		status, message := get(t, handler, "/0/seek", url.Values{"stego": {stegoText}})
		require.Equal(t, http.StatusOK, status, message)
		assert.Equal(t, "meet at noon", message)
	}
}

// Messages are lowercased before hiding, as the command line does.
func TestHandlerHideMixedCase(t *testing.T) {
	handler := &Handler{maxCoverLength: 64 * 1024}

	status, stegoText := get(t, handler, "/0/hide", url.Values{
		"message": {"Meet At NOON"},
		"cover":   {cover},
	})
	require.Equal(t, http.StatusOK, status, stegoText)

	status, message := get(t, handler, "/0/seek", url.Values{"stego": {stegoText}})
	require.Equal(t, http.StatusOK, status, message)
	assert.Equal(t, "meet at noon", message)
}

func TestHandlerSealed(t *testing.T) {
	privkey, err := noise.GeneratePrivkey()
	require.NoError(t, err)
	opener, err := noise.NewOpener(privkey)
	require.NoError(t, err)
	handler := &Handler{opener: opener, maxCoverLength: 64 * 1024}

	status, stegoText := get(t, handler, "/0/hide", url.Values{
		"message": {"meet at noon"},
		"cover":   {cover},
		"pubkey":  {noise.EncodeKey(noise.PubkeyFromPrivkey(privkey))},
	})
	require.Equal(t, http.StatusOK, status, stegoText)

	status, message := get(t, handler, "/0/seek", url.Values{"stego": {stegoText}})
	require.Equal(t, http.StatusOK, status, message)
	assert.Equal(t, "meet at noon", message)

	// A replayed stego text is refused.
	status, _ = get(t, handler, "/0/seek", url.Values{"stego": {stegoText}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// A malformed pubkey is a bad request.
	status, _ = get(t, &Handler{maxCoverLength: 64 * 1024}, "/0/hide", url.Values{
		"message": {"meet at noon"},
		"cover":   {cover},
		"pubkey":  {"0123"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandlerErrors(t *testing.T) {
	handler := &Handler{maxCoverLength: 1000}

	req := httptest.NewRequest("POST", "/0/hide?message=a&cover=a", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, test := range []struct {
		path   string
		query  url.Values
		status int
		body   string
	}{
		{"/1/hide", url.Values{"message": {"a"}, "cover": {"a"}}, http.StatusNotFound, ""},
		{"/0/unhide", nil, http.StatusNotFound, ""},
		{"/0/hide", url.Values{"message": {"what?"}, "cover": {cover[:1000]}},
			http.StatusUnprocessableEntity, "invalid character '?' at offset 4"},
		{"/0/hide", url.Values{"message": {"a"}, "cover": {"short"}},
			http.StatusUnprocessableEntity, "cover text too short, need space for 2 more bytes"},
		{"/0/hide", url.Values{"message": {"a"}, "cover": {cover}},
			http.StatusRequestEntityTooLarge, "cover text longer than 1000 bytes"},
		{"/0/seek", url.Values{"stego": {"NO GLYPHS HERE? NOPE!"}},
			http.StatusUnprocessableEntity, "message truncated, recovered 0 of 1 bytes"},
		{"/0/seek", nil, http.StatusUnprocessableEntity, "message truncated"},
	} {
		status, body := get(t, handler, test.path, test.query)
		assert.Equal(t, test.status, status, test.path)
		assert.Contains(t, body, test.body, test.path)
	}
}

func TestGenerateWebServerCertificate(t *testing.T) {
	certPEM, keyPEM, err := GenerateWebServerCertificate("stego.example")
	require.NoError(t, err)

	_, err = tls.X509KeyPair([]byte(certPEM), []byte(keyPEM))
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(certPEM))
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "stego.example", cert.Subject.CommonName)
	assert.NoError(t, cert.VerifyHostname("stego.example"))
	assert.True(t, cert.NotBefore.Before(cert.NotAfter))
}
