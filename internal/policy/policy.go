// Package policy holds the response header policy for the site: the
// Content-Security-Policy directive table, the baseline security headers, and
// the HSTS value. Everything here is computed once at startup and treated as
// immutable for the process lifetime.
package policy

import "strings"

// Directive is one CSP directive and its allowed sources.
type Directive struct {
	Name    string
	Sources []string
}

// CSP is an ordered directive table. Order is preserved so the rendered
// header is byte-for-byte stable across restarts.
type CSP []Directive

// DefaultCSP is the directive table served on every response.
func DefaultCSP() CSP {
	return CSP{
		{Name: "default-src", Sources: []string{"'self'"}},
		{Name: "script-src", Sources: []string{"'self'"}},
		{Name: "style-src", Sources: []string{"'self'", "'unsafe-inline'"}},
		{Name: "img-src", Sources: []string{"'self'", "data:"}},
		{Name: "font-src", Sources: []string{"'self'"}},
		{Name: "connect-src", Sources: []string{"'self'"}},
		{Name: "base-uri", Sources: []string{"'self'"}},
		{Name: "form-action", Sources: []string{"'self'"}},
		{Name: "frame-ancestors", Sources: []string{"'none'"}},
		{Name: "object-src", Sources: []string{"'none'"}},
	}
}

// Render joins the table into the standard textual grammar:
// "key value1 value2; key2 value1; ...". Directives with no sources are
// emitted as the bare keyword.
func (c CSP) Render() string {
	parts := make([]string, 0, len(c))
	for _, d := range c {
		if d.Name == "" {
			continue
		}
		if len(d.Sources) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(d.Sources, " "))
	}
	return strings.Join(parts, "; ")
}

// SourcesFor returns the source list for a directive name, or nil.
func (c CSP) SourcesFor(name string) []string {
	for _, d := range c {
		if d.Name == name {
			return d.Sources
		}
	}
	return nil
}

// BaselineHeaders is the fixed protective header set attached to every
// response. CSP and HSTS are handled separately (CSP is rendered from the
// directive table, HSTS is production-only).
func BaselineHeaders() map[string]string {
	return map[string]string{
		"X-Content-Type-Options":            "nosniff",
		"X-Frame-Options":                   "DENY",
		"Referrer-Policy":                   "strict-origin-when-cross-origin",
		"Permissions-Policy":                "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
		"X-Permitted-Cross-Domain-Policies": "none",
		"Cross-Origin-Opener-Policy":        "same-origin",
		"Cross-Origin-Resource-Policy":      "same-origin",
	}
}

// HSTS is the Strict-Transport-Security value emitted in production.
// 30 days, subdomains included, deliberately without preload.
const HSTS = "max-age=2592000; includeSubDomains"
