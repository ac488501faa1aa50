// Package sitehandler serves the static site from the Asset Root: path
// resolution (extensionless -> .html, directories -> index.html), the HTML
// freshness override, ETag computation, and the 404 fallback document.
package sitehandler

import (
	"io/fs"
	"net/http"
	"strings"
)

type Handler struct {
	opts Options
}

func New(opts Options) (*Handler, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Handler{opts: opts}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// hardening: only allow GET/HEAD
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// HTML freshness override: the root path and ".html" paths must never be
	// cached, regardless of the long-lived directive assigned upstream or of
	// whether resolution succeeds.
	if r.URL.Path == "/" || strings.HasSuffix(r.URL.Path, ".html") {
		w.Header().Set("Cache-Control", h.opts.HTMLCacheControl)
	}

	file, redirectTo, found := resolvePath(r.URL.Path, h.opts.Site)
	if redirectTo != "" {
		// 308 keeps the method even though we only serve GET/HEAD
		http.Redirect(w, r, redirectTo, http.StatusPermanentRedirect)
		return
	}
	if !found {
		h.serveNotFound(w, r)
		return
	}

	if fi, err := fs.Stat(h.opts.Site, file); err == nil {
		w.Header().Set("ETag", weakETag(fi))
	}

	http.ServeFileFS(w, r, h.opts.Site, file)
}

func (h *Handler) serveNotFound(w http.ResponseWriter, r *http.Request) {
	if h.opts.OnNotFound != nil {
		h.opts.OnNotFound()
	}

	// The upstream Cache-Control assignment is deliberately left intact here:
	// the long-lived directive is applied before resolution runs, and missing
	// files are the expected 404 trigger, not an error to repair headers for.

	if existsFile(h.opts.Site, h.opts.NotFoundFile) {
		serveFileWithStatus(w, r, http.StatusNotFound, h.opts.Site, h.opts.NotFoundFile)
		return
	}

	// last resort: plain text
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("404 Not Found"))
}

// http.ServeFileFS writes a status code on its own, so forcing 404 for the
// fallback document means wrapping ResponseWriter and overriding the first
// WriteHeader call.
type statusOverrideWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusOverrideWriter) WriteHeader(code int) {
	if w.wroteHeader {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(w.status)
}

func serveFileWithStatus(w http.ResponseWriter, r *http.Request, status int, fsys fs.FS, name string) {
	sw := &statusOverrideWriter{ResponseWriter: w, status: status}
	http.ServeFileFS(sw, r, fsys, name)
}
