// Package httpserver assembles the request pipeline and owns the public
// listener lifecycle.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/northpier/northpier-web/internal/health"
	"github.com/northpier/northpier-web/internal/httpmw"
	"github.com/northpier/northpier-web/internal/xerrors"
)

// NewHandler builds the HTTP handler: an explicit ordered list of stateless
// stages terminating in the static site handler. Each stage either passes
// control on or terminates the response; none loop or revisit.
func NewHandler(opts *Options) http.Handler {
	r := chi.NewRouter()

	// Compress text responses when the client advertises support. Content
	// and status are unaffected; only transport bytes and Content-Encoding.
	r.Use(middleware.Compress(5,
		"text/html",
		"text/css",
		"application/javascript",
		"text/javascript",
		"application/json",
		"application/manifest+json",
		"image/svg+xml",
		"image/x-icon",
	))

	r.Use(httpmw.AnnotateHTTPRoute)

	// Access log is a development aid only; production serves too much
	// traffic per instance to log every asset hit.
	if !opts.Production {
		r.Use(httpmw.AccessLog())
	}

	r.Use(httpmw.MaxBody(1024)) // nobody should be sending bodies to a static site

	// Forced MIME types and the long-lived cache directive are assigned
	// before static resolution runs.
	r.Use(httpmw.MIMEOverride)
	r.Use(httpmw.AssetCache)

	if opts.Health != nil {
		r.Get("/-/healthy", health.HealthzHandler(opts.Health))
	}
	if opts.Readiness != nil {
		r.Get("/-/ready", health.ReadyzHandler(opts.Readiness))
	}

	// The site handler is the catch-all: static resolution, root document,
	// and the 404 fallback.
	if opts.SiteHandler != nil {
		r.NotFound(opts.SiteHandler.ServeHTTP)
		r.MethodNotAllowed(opts.SiteHandler.ServeHTTP)
	}

	// Decide which requests get traced: skip well-known noise and static
	// asset extensions.
	shouldTrace := func(p string) bool {
		if p == "/favicon.ico" || p == "/favicon.svg" || p == "/robots.txt" {
			return false
		}
		if p == "/-/healthy" || p == "/-/ready" {
			return false
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".css", ".js", ".png", ".jpg", ".jpeg", ".webp", ".svg", ".ico", ".woff", ".woff2", ".map":
			return false
		}
		return true
	}

	var recoverMW func(http.Handler) http.Handler
	if opts.UseRecoverMW {
		recoverMW = httpmw.Recover(opts.Logger, opts.OnPanic)
	}

	// Outer pipeline, outermost first. Security headers lead so every
	// terminal response (including redirects, 404s, and recovered 500s)
	// carries them.
	return httpmw.Chain(r,
		httpmw.SecurityHeaders(opts.HeaderPolicy),
		recoverMW,
		httpmw.RequestID("X-Request-Id"),
		httpmw.ClientIPWithOptions(opts.ClientIPOpts),
		opts.RateLimitMW,
		func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(
				next,
				"http.server",
				otelhttp.WithFilter(func(r *http.Request) bool {
					return shouldTrace(r.URL.Path)
				}),
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					// AnnotateHTTPRoute renames the span to the route pattern
					return r.Method + " " + r.URL.Path
				}),
				otelhttp.WithPublicEndpointFn(func(r *http.Request) bool { return true }),
			)
		},
		httpmw.CanonicalHost(opts.OnCanonicalRedirect),
		httpmw.TraceResponseHeaders("X-Trace-Id", "X-Span-Id"),
		opts.MetricsMW,
		httpmw.WithLogger(opts.Logger),
	)
}

// Server timeout defaults, shared with opshttp.
const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1 MB
)

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
	}
}

// Start the public HTTP server. Returns stop(ctx) for graceful shutdown.
func Start(ctx context.Context, opts *Options) (func(context.Context) error, error) {
	port := opts.Port
	if port == 0 {
		port = 3000
	}
	addr := fmt.Sprintf(":%d", port)

	handler := NewHandler(opts)
	srv := NewServer(addr, handler)

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, xerrors.EnsureTrace(err)
	}

	go func() {
		opts.Logger.Info(ctx, "http server listening", "addr", addr)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			opts.Logger.Error(ctx, err, "http server error")
		}
	}()

	var once sync.Once
	stop := func(sctx context.Context) (retErr error) {
		once.Do(func() {
			opts.Logger.Info(sctx, "http server shutting down")
			c, cancel := context.WithTimeout(sctx, 5*time.Second)
			defer cancel()
			retErr = srv.Shutdown(c)
		})
		return retErr
	}
	return stop, nil
}
