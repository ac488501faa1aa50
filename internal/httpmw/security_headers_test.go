package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/northpier/northpier-web/internal/policy"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveWithPolicy(t *testing.T, p HeaderPolicy, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	SecurityHeaders(p)(okHandler()).ServeHTTP(rec, req)
	return rec
}

func defaultTestPolicy() HeaderPolicy {
	return HeaderPolicy{
		CSP:      policy.DefaultCSP().Render(),
		Baseline: policy.BaselineHeaders(),
	}
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	rec := serveWithPolicy(t, defaultTestPolicy(), "/")

	for k, want := range policy.BaselineHeaders() {
		if got := rec.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestSecurityHeaders_CSPAlwaysPresent(t *testing.T) {
	for _, target := range []string{"/", "/style.css", "/does-not-exist"} {
		rec := serveWithPolicy(t, defaultTestPolicy(), target)
		if got := rec.Header().Get("Content-Security-Policy"); got == "" {
			t.Errorf("target %s: missing Content-Security-Policy", target)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyWhenSet(t *testing.T) {
	rec := serveWithPolicy(t, defaultTestPolicy(), "/")
	if got := rec.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS = %q, want unset outside production", got)
	}

	p := defaultTestPolicy()
	p.HSTS = policy.HSTS
	rec = serveWithPolicy(t, p, "/")
	if got := rec.Header().Get("Strict-Transport-Security"); got != policy.HSTS {
		t.Fatalf("HSTS = %q, want %q", got, policy.HSTS)
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	called := false
	h := SecurityHeaders(defaultTestPolicy())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("next handler not invoked")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}
