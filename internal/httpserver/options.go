package httpserver

import (
	"net/http"

	"github.com/northpier/northpier-web/internal/health"
	"github.com/northpier/northpier-web/internal/httpmw"
	"github.com/northpier/northpier-web/internal/log"
)

type Options struct {
	Logger log.Logger
	Port   int

	// Production gates the access log (off) and HSTS (on, via HeaderPolicy).
	Production bool

	// HeaderPolicy carries the startup-rendered CSP, the baseline security
	// headers, and the HSTS value (empty outside production).
	HeaderPolicy httpmw.HeaderPolicy

	ClientIPOpts httpmw.ClientIPOptions

	// SiteHandler terminates the pipeline: static resolution, root document,
	// and the 404 fallback.
	SiteHandler http.Handler

	Health    health.Probe
	Readiness health.Probe

	MetricsMW   func(http.Handler) http.Handler
	RateLimitMW func(http.Handler) http.Handler

	UseRecoverMW bool
	OnPanic      func()

	// OnCanonicalRedirect is invoked per www -> apex redirect (metrics).
	OnCanonicalRedirect func()
}
