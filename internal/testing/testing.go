// package testing contains shared testing utilities
package testing

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// FResponseWriter is an [http.ResponseWriter] whose body writes always fail.
type FResponseWriter struct {
	FWriter
	Status int
	header http.Header
}

func NewFResponseWriter() *FResponseWriter {
	return &FResponseWriter{header: http.Header{}}
}

func (w *FResponseWriter) Header() http.Header { return w.header }

func (w *FResponseWriter) WriteHeader(status int) { w.Status = status }

// RedirectingOpener stands in for a browser and identity provider.
//
// OpenURL reads redirect_uri and state from the authorization URL and, in the background, requests
// the redirect URI with Query plus the echoed state (unless State overrides it).
type RedirectingOpener struct {
	Query url.Values
	State *string

	mu     sync.Mutex
	opened []string
	done   chan error
}

// NewRedirectingOpener creates a [RedirectingOpener] that adds query to every redirect.
func NewRedirectingOpener(query url.Values) *RedirectingOpener {
	return &RedirectingOpener{Query: query, done: make(chan error, 4)}
}

func (o *RedirectingOpener) OpenURL(raw string) error {
	o.mu.Lock()
	o.opened = append(o.opened, raw)
	o.mu.Unlock()

	authURL, err := url.Parse(raw)
	if err != nil {
		return err
	}
	redirect, err := url.Parse(authURL.Query().Get("redirect_uri"))
	if err != nil {
		return err
	}

	q := url.Values{}
	for k, v := range o.Query {
		q[k] = v
	}
	state := authURL.Query().Get("state")
	if o.State != nil {
		state = *o.State
	}
	if state != "" {
		q.Set("state", state)
	}
	redirect.RawQuery = q.Encode()

	go func() {
		client := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
		resp, err := client.Get(redirect.String())
		if err == nil {
			resp.Body.Close()
		}
		o.done <- err
	}()
	return nil
}

// Opened returns every URL passed to OpenURL.
func (o *RedirectingOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Wait blocks until the background redirect finishes.
func (o *RedirectingOpener) Wait(t *testing.T) {
	t.Helper()
	select {
	case err := <-o.done:
		if err != nil {
			t.Errorf("redirect request failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("redirect request did not finish")
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
