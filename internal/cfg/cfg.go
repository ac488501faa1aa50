// Package cfg defines the application configuration: one explicit struct
// resolved once at startup (cli flag > env var > default) and threaded
// through constructors. Nothing reads ambient process state at request time.
package cfg

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/northpier/northpier-web/internal/log"
)

type App struct {
	LogJSON  bool
	LogLevel string

	Port      int
	AdminPort int

	// Production gates access logging (off) and HSTS emission (on).
	Production bool

	// SiteDir is the Asset Root: the directory whose contents are the entire
	// addressable resource space.
	SiteDir string

	// TrustedHops is how many reverse proxies sit in front of us; their
	// X-Forwarded-* first hop is treated as authoritative.
	TrustedHops int

	EnablePprof     bool
	EnableTracing   bool
	EnablePyroscope bool
	PyroServer      string
	PyroTenantID    string
	OTLPEndpoint    string
	TraceSample     float64
}

// Register binds all config fields to the given FlagSet with defaults inline.
func Register(fs *flag.FlagSet, c *App) {
	fs.BoolVar(&c.LogJSON, "log-json", true, "JSON logs (true) or logfmt (false)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug|info|warn|error")
	fs.IntVar(&c.Port, "port", 3000, "listen TCP port (1..65535)")
	fs.IntVar(&c.AdminPort, "admin-port", 9100, "admin listen TCP port (1..65535)")
	fs.BoolVar(&c.Production, "production", false, "Production mode: disables the access log, enables HSTS")
	fs.StringVar(&c.SiteDir, "site-dir", "./public", "Directory of static site assets (must contain index.html)")
	fs.IntVar(&c.TrustedHops, "trusted-hops", 1, "Number of trusted reverse proxy hops for X-Forwarded-* (0 = none)")
	fs.BoolVar(&c.EnablePprof, "enable-pprof", true, "Enable pprof profiling (on admin port only)")
	fs.BoolVar(&c.EnableTracing, "enable-tracing", false, "Enable OTLP tracing and push to otlp-endpoint")
	fs.BoolVar(&c.EnablePyroscope, "enable-pyroscope", false, "Enable pushing Pyroscope data to server set in -pyro-server")
	fs.StringVar(&c.PyroServer, "pyro-server", "", "pyroscope server url to push to")
	fs.StringVar(&c.PyroTenantID, "pyro-tenant", "", "tenant (x-scope-orgid) to use for pyro-server")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", "", "OTLP endpoint to push to (gRPC) (host:port)")
	fs.Float64Var(&c.TraceSample, "trace-sample", 0.0, "trace sampling ratio (0..1)")
}

// FillFromEnv sets any flag not explicitly passed on the CLI from
// environment variables. Flag "foo-bar" maps to PREFIX_FOO_BAR.
// Precedence: cli flag > env var > default.
func FillFromEnv(fs *flag.FlagSet, prefix string, logf func(string, ...any)) {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fs.VisitAll(func(f *flag.Flag) {
		key := prefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
		envVal, envSet := os.LookupEnv(key)
		if !envSet {
			return
		}
		if explicit[f.Name] {
			if logf != nil {
				logf("flag -%s: cli value %q overrides env %s=%q", f.Name, f.Value.String(), key, envVal)
			}
			return
		}
		prev := f.Value.String()
		if err := fs.Set(f.Name, envVal); err != nil {
			fs.Set(f.Name, prev)
			if logf != nil {
				logf("flag -%s: ignoring invalid env %s=%q: %v", f.Name, key, envVal, err)
			}
		}
	})
}

// Validate checks that config values are within expected ranges and formats.
// Returns an error describing all invalid fields, or nil if all valid.
func Validate(c App) error {
	var errs []error

	// Ports
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d (must be 1..65535)", c.Port))
	}
	if c.AdminPort < 1 || c.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid ADMIN_PORT %d (must be 1..65535)", c.AdminPort))
	}
	if c.AdminPort == c.Port {
		errs = append(errs, fmt.Errorf("ADMIN_PORT and PORT must differ (both %d)", c.Port))
	}

	// Log level
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err))
	}

	// Asset Root
	if c.SiteDir == "" {
		errs = append(errs, fmt.Errorf("SITE_DIR is required"))
	} else if st, err := os.Stat(c.SiteDir); err != nil {
		errs = append(errs, fmt.Errorf("SITE_DIR %q: %v", c.SiteDir, err))
	} else if !st.IsDir() {
		errs = append(errs, fmt.Errorf("SITE_DIR %q is not a directory", c.SiteDir))
	}

	// Proxy trust
	if c.TrustedHops < 0 || c.TrustedHops > 8 {
		errs = append(errs, fmt.Errorf("invalid TRUSTED_HOPS %d (must be 0..8)", c.TrustedHops))
	}

	// Tracing sample
	if c.TraceSample < 0 || c.TraceSample > 1 {
		errs = append(errs, fmt.Errorf("invalid TRACE_SAMPLE %.3f (must be 0..1)", c.TraceSample))
	}

	// OTLP tracing (grpc exporter wants host:port, no scheme)
	if c.EnableTracing {
		if c.OTLPEndpoint == "" {
			errs = append(errs, fmt.Errorf("OTLP_ENDPOINT required when ENABLE_TRACING=true"))
		} else if _, _, err := net.SplitHostPort(c.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("OTLP_ENDPOINT must be host:port (got %q): %v", c.OTLPEndpoint, err))
		}
	}

	// Pyroscope (URL and tenant)
	if c.EnablePyroscope {
		if c.PyroServer == "" {
			errs = append(errs, fmt.Errorf("PYRO_SERVER required when ENABLE_PYROSCOPE=true"))
		} else if u, err := url.Parse(c.PyroServer); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("PYRO_SERVER must be a URL (got %q)", c.PyroServer))
		}
		if c.PyroTenantID == "" {
			errs = append(errs, fmt.Errorf("PYRO_TENANT required when ENABLE_PYROSCOPE=true"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
