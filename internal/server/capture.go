package server

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
)

// confirmationPage is written back to the browser after the redirect is captured.
const confirmationPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Authorization Received</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #333; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization Received</h1>
        <p>You can close this window and return to the application.</p>
    </div>
</body>
</html>
`

// Callback is the redirect captured by a [CaptureHandler].
type Callback struct {
	Query url.Values
	// WriteErr is set when the confirmation page could not be delivered.
	WriteErr error
}

// CaptureHandler accepts exactly one redirect request and publishes it on [CaptureHandler.Callback].
//
// Later requests are answered with 400 and dropped.
type CaptureHandler struct {
	hit  atomic.Bool
	once sync.Once
	ch   chan Callback
}

// NewCaptureHandler creates a one-shot [CaptureHandler].
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{ch: make(chan Callback, 1)}
}

// ServeHTTP writes the confirmation page, then publishes the callback whether or not the write succeeded.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.hit.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	cb := Callback{Query: r.URL.Query()}
	defer func() { h.send(cb) }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(confirmationPage)))
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(confirmationPage)); err != nil {
		cb.WriteErr = err
		return
	}
	if err := http.NewResponseController(w).Flush(); err != nil {
		cb.WriteErr = err
	}
}

func (h *CaptureHandler) send(cb Callback) {
	h.once.Do(func() {
		h.ch <- cb
		close(h.ch)
	})
}

// Callback returns the channel receiving the single captured redirect.
func (h *CaptureHandler) Callback() <-chan Callback {
	return h.ch
}
