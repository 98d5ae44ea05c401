// Package server captures OAuth2 authorization code redirects on a transient loopback HTTP listener.
//
// # Loopback Listener
//
// [Listener] owns a redirect endpoint of the form http://127.0.0.1:<port>/.
// When no port is configured, [AllocatePort] asks the OS for a free ephemeral port once, at construction.
// The port is released before the real bind, so another process can claim it in between; allocation is best effort.
//
// [Listener.Start] resets the [Result], binds the endpoint, opens the provider's authorization URL through an
// [Opener], and blocks until exactly one redirect arrives. The redirect receives a static confirmation page and the
// listener is shut down in a deferred block whether or not that write succeeded.
//
// # Validation
//
// The captured query is checked in order: an error parameter, a missing code or state, a state mismatch.
// The first match decides the [Outcome]. These rejections are reported through the [Result], never as errors;
// Start only returns errors when the plumbing fails (see [BindError], [ErrListenerBusy]) or the context ends.
//
// # Cancellation
//
// The wait has no built-in deadline. Pass a context with a deadline to bound it; on expiry the listener is closed.
//
// # Router Infrastructure
//
// The capture handler is mounted on a [BasicRouter], which filters by method and wraps handlers with [Middleware]
// in reverse order (last added executes first).
package server
