package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Opener hands a URL to the user's external user agent. It is fire-and-forget.
type Opener interface {
	OpenURL(url string) error
}

// OpenerFunc adapts a function to the [Opener] interface.
type OpenerFunc func(url string) error

// OpenURL calls f(url).
func (f OpenerFunc) OpenURL(url string) error { return f(url) }
