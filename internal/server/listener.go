package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/loopauth/internal/shared"
)

const defaultShutdownTimeout = 5 * time.Second

// Config is the immutable input of a [Listener].
type Config struct {
	// Port is the loopback port. Zero allocates an ephemeral port once, in [NewListener].
	Port uint16
	// Path is the redirect path, "/" when empty.
	Path string
}

// Option customizes a [Listener].
type Option func(*Listener)

// WithLogger sets the logger used for every state transition. Defaults to [shared.NewLogger].
func WithLogger(logger *log.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOpener sets the user agent launcher. Defaults to [shared.BrowserOpener].
func WithOpener(opener Opener) Option {
	return func(l *Listener) {
		if opener != nil {
			l.opener = opener
		}
	}
}

// WithShutdownTimeout bounds how long a graceful shutdown may take before connections are closed.
func WithShutdownTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.shutdownTimeout = d
		}
	}
}

// Listener captures one OAuth2 authorization code redirect per [Listener.Start] call.
//
// Start calls on the same Listener must not overlap; an overlapping call fails with [ErrListenerBusy].
// Accessors are safe to call at any time.
type Listener struct {
	mu          sync.Mutex
	redirectURI string
	result      Result

	inflight        atomic.Bool
	logger          *log.Logger
	opener          Opener
	shutdownTimeout time.Duration
}

// NewListener builds the redirect endpoint from cfg, allocating a free port when cfg.Port is zero.
func NewListener(cfg Config, opts ...Option) (*Listener, error) {
	l := &Listener{
		logger:          shared.NewLogger(nil),
		opener:          shared.BrowserOpener{},
		shutdownTimeout: defaultShutdownTimeout,
		result:          Result{Outcome: OutcomePending},
	}
	for _, opt := range opts {
		opt(l)
	}

	port := cfg.Port
	if port == 0 {
		allocated, err := AllocatePort()
		if err != nil {
			return nil, err
		}
		port = allocated
	}

	l.redirectURI = RedirectURI(port, cfg.Path)
	return l, nil
}

// RedirectURI returns the URI the provider must redirect to.
func (l *Listener) RedirectURI() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.redirectURI
}

// SetRedirectURI replaces the redirect URI. A Start already in flight keeps the endpoint it bound.
func (l *Listener) SetRedirectURI(uri string) {
	l.mu.Lock()
	old := l.redirectURI
	l.redirectURI = uri
	l.mu.Unlock()

	if old != uri {
		l.logger.Info("redirect uri changed", "from", old, "to", uri)
	}
}

// Result returns a copy of the most recent result.
func (l *Listener) Result() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Code returns the captured authorization code, empty unless the last Start succeeded.
func (l *Listener) Code() string { return l.Result().Code }

// Successful reports whether the last Start captured a valid code.
func (l *Listener) Successful() bool { return l.Result().Successful }

func (l *Listener) setResult(r Result) {
	l.mu.Lock()
	l.result = r
	l.mu.Unlock()
}

// Start binds the redirect endpoint, opens serviceURL and waits for one redirect.
//
// An empty expectedState skips the state comparison, though the state parameter must still be present.
// Rejected redirects are reported through the returned [Result] with a nil error. Errors are returned for
// bind failures ([BindError]), overlapping calls ([ErrListenerBusy]), server failures ([ErrServe]) and ctx ending.
func (l *Listener) Start(ctx context.Context, serviceURL, expectedState string) (Result, error) {
	if !l.inflight.CompareAndSwap(false, true) {
		return Result{}, ErrListenerBusy
	}
	defer l.inflight.Store(false)

	l.setResult(Result{Outcome: OutcomePending})
	if err := ctx.Err(); err != nil {
		return l.Result(), err
	}
	endpoint := l.RedirectURI()

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return l.Result(), fmt.Errorf("%w: redirect uri %q", shared.ErrInvalidArgument, endpoint)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		l.logger.Error("failed to bind redirect endpoint", "addr", u.Host, "error", err)
		return l.Result(), &BindError{Addr: u.Host, Err: err}
	}

	capture := NewCaptureHandler()
	var router Router = NewBasicRouter()
	router.Use(LogRequests(l.logger), NoStore)
	router.Handle(http.MethodGet, path, capture)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          l.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	// Serve closes ln on return, so the port is free once it has been drained.
	served := false
	defer func() {
		l.stop(srv, ln, ctx.Err() != nil)
		if !served {
			<-serveErr
		}
	}()

	l.logger.Info("listening for redirect", "redirect_uri", endpoint)

	if err := l.opener.OpenURL(serviceURL); err != nil {
		l.logger.Warn("could not open browser automatically, open this URL manually", "url", serviceURL, "error", err)
	}

	select {
	case cb := <-capture.Callback():
		if cb.WriteErr != nil {
			l.logger.Warn("failed to write confirmation page", "error", cb.WriteErr)
		}
		res := validate(cb.Query, expectedState, l.logger)
		l.setResult(res)
		return res, nil
	case err := <-serveErr:
		served = true
		return l.Result(), fmt.Errorf("%w: %v", ErrServe, err)
	case <-ctx.Done():
		l.logger.Warn("stopped waiting for redirect", "reason", ctx.Err())
		res := Result{Outcome: OutcomeCancelled}
		l.setResult(res)
		return res, ctx.Err()
	}
}

// stop shuts srv down once. force skips the graceful phase.
//
// ln is closed as well because srv.Close does not see a listener that Serve has not tracked yet.
func (l *Listener) stop(srv *http.Server, ln net.Listener, force bool) {
	if force {
		if err := srv.Close(); err != nil {
			l.logger.Warn("error closing redirect server", "error", err)
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			l.logger.Warn("error closing redirect socket", "error", err)
		}
		l.logger.Info("redirect listener stopped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.logger.Warn("error shutting down redirect server", "error", err)
		if cerr := srv.Close(); cerr != nil && !errors.Is(cerr, http.ErrServerClosed) {
			l.logger.Warn("error closing redirect server", "error", cerr)
		}
	}
	l.logger.Info("redirect listener stopped")
}
