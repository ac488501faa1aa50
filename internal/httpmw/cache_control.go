package httpmw

import (
	"net/http"
	"strings"
)

// Cache lifetimes. HTML must never be cached because it references hashed or
// frequently updated assets; everything else is immutable for 30 days.
const (
	AssetCacheControl = "public, max-age=2592000, immutable"
	HTMLCacheControl  = "no-store, max-age=0"
)

// AssetCache assigns the long-lived immutable directive to every request
// whose URL path does not end in ".html". It runs before static resolution
// and is deliberately unaware of whether the path maps to a real file; the
// site handler overwrites it for the root path and ".html" paths.
func AssetCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".html") {
			w.Header().Set("Cache-Control", AssetCacheControl)
		}
		next.ServeHTTP(w, r)
	})
}
