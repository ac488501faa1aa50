package sitehandler

import (
	"fmt"
	"io/fs"

	"github.com/northpier/northpier-web/internal/log"
)

type Options struct {
	Logger log.Logger

	// Site is the Asset Root: the read-only filesystem holding everything
	// servable. Resolved once at startup (os.DirFS over the configured
	// directory) and never mutated.
	Site fs.FS

	// File names inside the Asset Root (relative paths).
	IndexFile    string // default: "index.html"
	NotFoundFile string // default: "404.html"

	// Cache-Control override for HTML-producing paths ("/" and "*.html").
	HTMLCacheControl string // default: "no-store, max-age=0"

	// OnNotFound is invoked per 404 response (metrics). Optional.
	OnNotFound func()
}

func (o *Options) setDefaults() {
	if o.IndexFile == "" {
		o.IndexFile = "index.html"
	}
	if o.NotFoundFile == "" {
		o.NotFoundFile = "404.html"
	}
	if o.HTMLCacheControl == "" {
		o.HTMLCacheControl = "no-store, max-age=0"
	}
}

func (o *Options) validate() error {
	if o.Site == nil {
		return fmt.Errorf("%w: Site is nil", ErrInvalidOptions)
	}
	// The root document is part of the filesystem contract; fail fast on
	// boot if the Asset Root is mispackaged.
	if _, err := fs.Stat(o.Site, o.IndexFile); err != nil {
		return fmt.Errorf("%w: missing %q in asset root: %v", ErrInvalidOptions, o.IndexFile, err)
	}
	// NotFoundFile is optional; we degrade to plain text if missing.
	return nil
}
