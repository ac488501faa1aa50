package httpmw

import "net/http"

// Security note: CSRF protection is not implemented because it is not
// applicable. The server is stateless (no cookies, no sessions, no
// authentication) and read-only (GET/HEAD only).

// HeaderPolicy carries the precomputed header values attached to every
// response. CSP is rendered once at startup from the policy table; Baseline
// is the fixed protective set; HSTS is emitted only when non-empty
// (production).
type HeaderPolicy struct {
	CSP      string
	Baseline map[string]string
	HSTS     string
}

// SecurityHeaders sets the protective headers on every response. Values come
// from the immutable HeaderPolicy rather than being rebuilt per request.
func SecurityHeaders(p HeaderPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			for k, v := range p.Baseline {
				hdr.Set(k, v)
			}
			if p.CSP != "" {
				hdr.Set("Content-Security-Policy", p.CSP)
			}
			if p.HSTS != "" {
				hdr.Set("Strict-Transport-Security", p.HSTS)
			}
			next.ServeHTTP(w, r)
		})
	}
}
