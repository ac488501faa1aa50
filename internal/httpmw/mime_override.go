package httpmw

import (
	"net/http"
	"path"
	"strings"
)

// mimeOverrides forces the registered MIME type for extensions the file
// server's table guesses wrong (or not at all) on some platforms.
var mimeOverrides = map[string]string{
	".webmanifest": "application/manifest+json",
	".svg":         "image/svg+xml",
	".webp":        "image/webp",
}

// MIMEOverride pre-sets Content-Type for the override extensions before the
// file server runs. http.ServeContent keeps a Content-Type that is already
// present, so the forced value wins over the extension guess.
func MIMEOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := strings.ToLower(path.Ext(r.URL.Path))
		if ct, ok := mimeOverrides[ext]; ok {
			w.Header().Set("Content-Type", ct)
		}
		next.ServeHTTP(w, r)
	})
}
