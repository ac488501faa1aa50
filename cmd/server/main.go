package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/northpier/northpier-web/internal/cfg"
	"github.com/northpier/northpier-web/internal/health"
	"github.com/northpier/northpier-web/internal/httpmw"
	"github.com/northpier/northpier-web/internal/httpserver"
	"github.com/northpier/northpier-web/internal/log"
	"github.com/northpier/northpier-web/internal/metrics"
	"github.com/northpier/northpier-web/internal/opshttp"
	"github.com/northpier/northpier-web/internal/otelx"
	"github.com/northpier/northpier-web/internal/policy"
	"github.com/northpier/northpier-web/internal/prof"
	"github.com/northpier/northpier-web/internal/ratelimit"
	"github.com/northpier/northpier-web/internal/sitehandler"
	v "github.com/northpier/northpier-web/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vi := v.Get()

	var conf cfg.App
	var showVersion bool

	// Parse config from flags and env
	cfg.Register(flag.CommandLine, &conf)
	flag.BoolVar(&showVersion, "V", false, "Print version+build information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf(
			"%s %s (commit=%s, build_date=%s, go=%s, dirty=%v)\n",
			vi.AppName, vi.Version, vi.Commit, vi.BuildDate, vi.GoVersion,
			vi.VCSDirty != nil && *vi.VCSDirty,
		)
		os.Exit(0)
	}

	// Fill in config from environment variables with prefix NORTHPIER_
	cfg.FillFromEnv(flag.CommandLine, "NORTHPIER_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := cfg.Validate(conf); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	// Setup logging
	lvl, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %s: %v\n", conf.LogLevel, err)
		os.Exit(1)
	}
	lg, err := log.New(log.Options{
		App:        v.AppName,
		Version:    vi.Version,
		Commit:     vi.Commit,
		Level:      lvl,
		JsonFormat: conf.LogJSON,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
		os.Exit(1)
	}
	defer lg.Sync()
	L := lg.With("component", "server")
	ctx = log.WithContext(ctx, L)

	L.Info(ctx, "initializing application",
		"version", vi.Version,
		"commit", vi.Commit,
		"build_date", vi.BuildDate,
		"go_version", vi.GoVersion,
		"vcs_dirty", vi.VCSDirty,
		"port", conf.Port,
		"admin_port", conf.AdminPort,
		"production", conf.Production,
		"site_dir", conf.SiteDir,
		"trusted_hops", conf.TrustedHops,
		"enable_pprof", conf.EnablePprof,
		"enable_pyroscope", conf.EnablePyroscope,
		"enable_tracing", conf.EnableTracing,
		"otlp_endpoint", conf.OTLPEndpoint,
		"trace_sample", conf.TraceSample,
	)

	// Setup pyroscope profiling
	stopProf, err := prof.Start(ctx, prof.Options{
		Enabled:       conf.EnablePyroscope,
		AppName:       v.AppName,
		ServerAddress: conf.PyroServer,
		TenantID:      conf.PyroTenantID,
		Tags: map[string]string{
			"app":       v.AppName,
			"component": "server",
			"version":   vi.Version,
			"commit":    vi.Commit,
		},
	})
	if err != nil {
		L.Error(ctx, err, "pyroscope start failed", "pyro_server", conf.PyroServer)
	}
	defer func() { stopProf() }()

	// Setup otel for tracing
	// Insecure is true because we only write to a collector on localhost
	shutdownOTEL, err := otelx.Init(ctx, otelx.Options{
		Enabled:   conf.EnableTracing,
		Endpoint:  conf.OTLPEndpoint,
		Insecure:  true,
		Sample:    conf.TraceSample,
		Service:   v.AppName,
		Component: "server",
		Version:   vi.Version,
	})
	if err != nil {
		L.Error(ctx, err, "otel init failed")
	}
	defer func() { _ = shutdownOTEL(context.Background()) }()

	// Setup metrics
	m := metrics.New()
	m.SetBuildInfoFromVersion(v.AppName, "server", vi)

	// Resolve the Asset Root once; it is immutable for the process lifetime.
	siteFS := os.DirFS(conf.SiteDir)

	siteHandler, err := sitehandler.New(sitehandler.Options{
		Logger:     L,
		Site:       siteFS,
		OnNotFound: m.IncNotFound,
	})
	if err != nil {
		L.Error(ctx, err, "failed to create site handler", "site_dir", conf.SiteDir)
		os.Exit(1)
	}

	// Build the response header policy once at startup.
	headerPolicy := httpmw.HeaderPolicy{
		CSP:      policy.DefaultCSP().Render(),
		Baseline: policy.BaselineHeaders(),
	}
	if conf.Production {
		headerPolicy.HSTS = policy.HSTS
	}

	// Readiness: shutdown gate AND root document readable.
	var gate health.ShutdownGate
	readiness := health.All(
		gate.Probe(),
		health.CheckFunc(func(ctx context.Context) error {
			if _, err := fs.Stat(siteFS, "index.html"); err != nil {
				return fmt.Errorf("asset root: %w", err)
			}
			return nil
		}),
	)

	// Per-IP rate limiter for the site listener
	limiter := ratelimit.New(ctx,
		ratelimit.WithOnDenied(func(ip string) {
			m.IncRateLimitDenied()
		}),
		ratelimit.WithOnFirstDenied(func(ip string) {
			L.Warn(ctx, "rate limit triggered", "ip", ip)
		}),
		ratelimit.WithOnCapacity(func() {
			m.IncRateLimitCapacity()
			L.Warn(ctx, "rate limit capacity reached, rejecting new visitors until some are evicted")
		}),
	)

	siteHTTPStop, err := httpserver.Start(ctx, &httpserver.Options{
		Logger:              L,
		Port:                conf.Port,
		Production:          conf.Production,
		HeaderPolicy:        headerPolicy,
		ClientIPOpts:        httpmw.ClientIPOptions{TrustedHops: conf.TrustedHops},
		SiteHandler:         siteHandler,
		Health:              health.Fixed(true, ""),
		Readiness:           readiness,
		MetricsMW:           m.Middleware,
		RateLimitMW:         limiter.Middleware,
		UseRecoverMW:        true,
		OnPanic:             m.IncHttpPanic,
		OnCanonicalRedirect: m.IncCanonicalRedirect,
	})
	if err != nil {
		L.Error(ctx, err, "failed to start site http listener")
		os.Exit(1)
	}
	defer func() { _ = siteHTTPStop(context.Background()) }()

	// Admin/ops listener for metrics, health checks, and pprof. Firewalled
	// off from the public; opshttp rejects public peers as a second layer.
	opsHTTPStop, err := opshttp.Start(ctx, L, opshttp.Options{
		Port:        conf.AdminPort,
		Metrics:     m.Handler(),
		EnablePprof: conf.EnablePprof,
		Health:      health.Fixed(true, ""),
		Readiness:   readiness,
	})
	if err != nil {
		L.Error(ctx, err, "failed to start ops http listener")
		os.Exit(1)
	}
	defer func() { _ = opsHTTPStop(context.Background()) }()

	// notify systemd that we started successfully if started under systemd
	if err := notifySystemd(); err != nil {
		L.Warn(ctx, "failed to notify systemd of readiness", "error", err)
	}

	// wait for ctrl+c / sigterm
	sigCtx, sigStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer sigStop()
	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	L.Info(context.Background(), "shutdown signal received")

	// fail readiness so the load balancer drains connections before the
	// listener closes; a second signal skips the drain
	gate.Set("draining")
	L.Info(context.Background(), "shutdown gate closed, draining")

	forceCh := make(chan os.Signal, 1)
	signal.Notify(forceCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(30 * time.Second):
		L.Info(context.Background(), "drain period complete")
	case <-forceCh:
		L.Warn(context.Background(), "second signal received, skipping drain")
	}
	signal.Stop(forceCh)

	if err := siteHTTPStop(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "site http server shutdown")
	}
	if err := opsHTTPStop(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "ops http server shutdown")
	}
	if err := shutdownOTEL(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "otel shutdown")
	}
	stopProf()

	L.Info(context.Background(), "shutdown complete")
	os.Exit(0)
}

func notifySystemd() error {
	// systemd sets NOTIFY_SOCKET when we were started with Type=notify
	addr := os.Getenv("NOTIFY_SOCKET")
	if addr == "" {
		return fmt.Errorf("NOTIFY_SOCKET not set, skipping systemd notify")
	}
	conn, err := net.Dial("unixgram", addr)
	if err != nil {
		return fmt.Errorf("systemd notify failed: dial failed: %w", err)
	}
	if _, err := conn.Write([]byte("READY=1")); err != nil {
		_ = conn.Close()
		return fmt.Errorf("systemd notify failed: write failed: %w", err)
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("systemd notify failed: close failed: %w", err)
	}
	return nil
}
