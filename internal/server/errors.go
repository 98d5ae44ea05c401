package server

import (
	"errors"
	"fmt"
)

var (
	// ErrBind matches every [BindError].
	ErrBind = errors.New("cannot bind redirect endpoint")
	// ErrListenerBusy is returned by Start while another Start on the same listener is in flight.
	ErrListenerBusy = errors.New("listener already waiting for a redirect")
	// ErrServe reports that the HTTP server stopped before a redirect arrived.
	ErrServe = errors.New("redirect server stopped unexpectedly")

	ErrProviderError     = errors.New("provider returned an error")
	ErrMalformedResponse = errors.New("authorization response is missing code or state")
	ErrStateMismatch     = errors.New("state parameter does not match")
	ErrCancelled         = errors.New("wait for redirect was cancelled")
	ErrNoCallback        = errors.New("no redirect captured")
)

// BindError reports that the redirect endpoint could not be bound, e.g. port in use or permission denied.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrBind, e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Is reports true for [ErrBind].
func (e *BindError) Is(target error) bool { return target == ErrBind }
