package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFixed(t *testing.T) {
	if err := Fixed(true, "").Check(context.Background()); err != nil {
		t.Fatalf("Fixed(true) = %v", err)
	}

	err := Fixed(false, "maintenance").Check(context.Background())
	if err == nil || err.Error() != "maintenance" {
		t.Fatalf("Fixed(false, maintenance) = %v", err)
	}

	err = Fixed(false, "").Check(context.Background())
	if err == nil || err.Error() != "unhealthy" {
		t.Fatalf("Fixed(false, \"\") = %v", err)
	}
}

func TestAll(t *testing.T) {
	ctx := context.Background()

	if err := All(Fixed(true, ""), Fixed(true, "")).Check(ctx); err != nil {
		t.Fatalf("all passing = %v", err)
	}
	if err := All(Fixed(true, ""), Fixed(false, "db down")).Check(ctx); err == nil || err.Error() != "db down" {
		t.Fatalf("one failing = %v", err)
	}
	if err := All(Fixed(false, "first"), Fixed(false, "second")).Check(ctx); err == nil || err.Error() != "first" {
		t.Fatalf("want first failure, got %v", err)
	}
	if err := All(nil, Fixed(true, ""), nil).Check(ctx); err != nil {
		t.Fatalf("nil probes skipped = %v", err)
	}
	if err := All().Check(ctx); err != nil {
		t.Fatalf("empty All = %v", err)
	}
}

func TestAny(t *testing.T) {
	ctx := context.Background()

	if err := Any(Fixed(false, "a"), Fixed(true, "")).Check(ctx); err != nil {
		t.Fatalf("one passing = %v", err)
	}
	if err := Any(Fixed(false, "a"), Fixed(false, "b")).Check(ctx); err == nil || err.Error() != "b" {
		t.Fatalf("want last failure, got %v", err)
	}
	if err := Any().Check(ctx); err != nil {
		t.Fatalf("empty Any = %v", err)
	}
	if err := Any(nil, nil).Check(ctx); err != nil {
		t.Fatalf("all-nil Any = %v", err)
	}
}

func TestShutdownGate(t *testing.T) {
	var g ShutdownGate
	p := g.Probe()
	ctx := context.Background()

	if err := p.Check(ctx); err != nil {
		t.Fatalf("zero-value gate = %v, want open", err)
	}

	g.Set("draining")
	err := p.Check(ctx)
	if err == nil || err.Error() != "draining" {
		t.Fatalf("closed gate = %v", err)
	}

	g.Clear()
	if err := p.Check(ctx); err != nil {
		t.Fatalf("reopened gate = %v", err)
	}

	g.Set("")
	if err := p.Check(ctx); err == nil || err.Error() != "shutting down" {
		t.Fatalf("default reason = %v", err)
	}
}

func TestHealthzHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthzHandler(Fixed(true, ""))(rec, httptest.NewRequest(http.MethodGet, "/-/healthy", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthy: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HealthzHandler(Fixed(false, "broken"))(rec, httptest.NewRequest(http.MethodGet, "/-/healthy", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "broken") {
		t.Fatalf("body = %q, want reason", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	HealthzHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/-/healthy", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("nil probe status = %d", rec.Code)
	}
}

func TestProbeHandlers_NeverCacheable(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"healthz passing": HealthzHandler(Fixed(true, "")),
		"healthz failing": HealthzHandler(Fixed(false, "broken")),
		"readyz passing":  ReadyzHandler(Fixed(true, "")),
		"readyz failing":  ReadyzHandler(Fixed(false, "draining")),
	}

	for name, h := range handlers {
		rec := httptest.NewRecorder()
		// simulate the long-lived directive assigned upstream of routing
		rec.Header().Set("Cache-Control", "public, max-age=2592000, immutable")
		h(rec, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

		if got := rec.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("%s: Cache-Control = %q, want no-store", name, got)
		}
	}
}

func TestReadyzHandler(t *testing.T) {
	var g ShutdownGate
	h := ReadyzHandler(g.Probe())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/-/ready", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ready\n" {
		t.Fatalf("ready: %d %q", rec.Code, rec.Body.String())
	}

	g.Set("draining")
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/-/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("draining status = %d", rec.Code)
	}
}
