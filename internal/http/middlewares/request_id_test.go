package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mw "github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
)

func TestWithRequestID_PropagatesClientID(t *testing.T) {
	var seen string
	h := mw.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mw.GetRequestID(r.Context())
	}), mw.WithRequestID())

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" {
		t.Fatalf("context id = %q, want the client's", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("response header = %q, want the client's", got)
	}
}

func TestWithRequestID_GeneratesWhenAbsentOrOversized(t *testing.T) {
	h := mw.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		mw.WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	generated := rec.Header().Get("X-Request-ID")
	if len(generated) != 32 {
		t.Fatalf("generated id = %q, want 32 hex chars", generated)
	}

	// un id kilométrico del cliente se descarta
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("z", 300))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); len(got) != 32 {
		t.Fatalf("oversized client id must be replaced, got %q", got)
	}
}

func TestChain_Order(t *testing.T) {
	var trace []string
	tag := func(name string) mw.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := mw.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))

	want := []string{"outer", "inner", "handler"}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}
