package sitehandler

import (
	"io/fs"
	"path"
	"strings"

	"github.com/northpier/northpier-web/internal/pathutil"
)

// resolvePath maps a URL path to a file within the Asset Root.
//
// Returns:
//   - file: relative file path within the FS (no leading slash)
//   - redirectTo: if non-empty, caller should redirect to this URL path
//   - ok: whether the mapping is valid/found
//
// Extensionless paths try the literal name first, then "<name>.html".
// Directory paths (trailing slash) try "<dir>/index.html".
func resolvePath(urlPath string, fsys fs.FS) (file string, redirectTo string, ok bool) {
	p := urlPath
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	// basic rejection of ambiguous/unsafe paths
	if strings.Contains(p, "\x00") || strings.Contains(p, "\\") {
		return "", "", false
	}
	if pathutil.HasDotSegments(p) {
		return "", "", false
	}

	trailingSlash := strings.HasSuffix(p, "/")

	clean := path.Clean(p)
	if trailingSlash && clean != "/" {
		clean += "/"
	}

	// root -> index.html
	if clean == "/" {
		if existsFile(fsys, "index.html") {
			return "index.html", "", true
		}
		return "", "", false
	}

	// directory -> <dir>/index.html
	if strings.HasSuffix(clean, "/") {
		name := strings.TrimPrefix(clean, "/") + "index.html"
		if existsFile(fsys, name) {
			return name, "", true
		}
		return "", "", false
	}

	name := strings.TrimPrefix(clean, "/")

	// paths with an extension resolve to the literal file only
	if path.Ext(clean) != "" {
		if existsFile(fsys, name) {
			return name, "", true
		}
		return "", "", false
	}

	// extensionless: literal file, then the .html twin
	if existsFile(fsys, name) {
		return name, "", true
	}
	if existsFile(fsys, name+".html") {
		return name + ".html", "", true
	}

	// pretty URL for a directory: redirect to the canonical slash form
	if existsFile(fsys, name+"/index.html") {
		return "", clean + "/", true
	}

	return "", "", false
}

func existsFile(fsys fs.FS, name string) bool {
	if name == "" || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
