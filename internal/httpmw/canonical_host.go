package httpmw

import (
	"net/http"
	"strings"
)

// CanonicalHost redirects www-prefixed hosts to the bare apex domain over
// HTTPS with a 301, preserving path and query. The decision rule is a string
// prefix match on the literal "www." with no wildcard or subdomain-depth
// handling. onRedirect, when non-nil, is invoked per redirect (metrics).
func CanonicalHost(onRedirect func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Host, "www.") {
				apex := strings.TrimPrefix(r.Host, "www.")
				target := "https://" + apex + r.URL.RequestURI()
				if onRedirect != nil {
					onRedirect()
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
