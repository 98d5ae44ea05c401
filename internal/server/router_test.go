package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/loopauth/internal/testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("method filter", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/cb", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cb", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if rec.Header().Get("Allow") != http.MethodGet {
			t.Errorf("expected Allow: GET, got %q", rec.Header().Get("Allow"))
		}
	})
}

func TestCaptureHandler(t *testing.T) {
	h := NewCaptureHandler()

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/?code=XYZ&state=s", nil))

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/?code=OTHER&state=s", nil))

	if first.Code != http.StatusOK || first.Body.String() != confirmationPage {
		t.Errorf("unexpected first response %d", first.Code)
	}
	if first.Header().Get("Content-Length") == "" {
		t.Error("expected fixed content length")
	}
	if second.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for second request, got %d", second.Code)
	}

	cb, ok := <-h.Callback()
	if !ok || cb.Query.Get("code") != "XYZ" {
		t.Fatalf("expected first callback, got %+v", cb)
	}
	if _, ok := <-h.Callback(); ok {
		t.Error("callback channel should be closed after one result")
	}
}

func TestCaptureHandlerWriteFailure(t *testing.T) {
	h := NewCaptureHandler()
	w := tu.NewFResponseWriter()

	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?code=XYZ&state=s", nil))

	if w.Status != http.StatusOK {
		t.Errorf("expected status to be sent before the body, got %d", w.Status)
	}

	select {
	case cb := <-h.Callback():
		if cb.WriteErr == nil {
			t.Error("expected WriteErr to be set")
		}
		if cb.Query.Get("code") != "XYZ" {
			t.Errorf("callback should still carry the query, got %v", cb.Query)
		}
	default:
		t.Fatal("callback must be published when the page write fails")
	}
}
