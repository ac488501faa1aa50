package sitehandler

import (
	"testing"
	"testing/fstest"
)

func siteFixture() fstest.MapFS {
	return fstest.MapFS{
		"index.html":            {Data: []byte("<html>home</html>")},
		"404.html":              {Data: []byte("<html>lost</html>")},
		"about.html":            {Data: []byte("<html>about</html>")},
		"pricing":               {Data: []byte("literal-no-extension")},
		"pricing.html":          {Data: []byte("<html>pricing</html>")},
		"css/site.css":          {Data: []byte("body{}")},
		"img/logo.svg":          {Data: []byte("<svg/>")},
		"docs/index.html":       {Data: []byte("<html>docs</html>")},
		"docs/guide.html":       {Data: []byte("<html>guide</html>")},
		"site.webmanifest":      {Data: []byte("{}")},
	}
}

func TestResolvePath(t *testing.T) {
	fsys := siteFixture()

	tests := []struct {
		name         string
		urlPath      string
		wantFile     string
		wantRedirect string
		wantOK       bool
	}{
		{"root", "/", "index.html", "", true},
		{"empty path", "", "index.html", "", true},
		{"literal html", "/about.html", "about.html", "", true},
		{"extensionless literal wins", "/pricing", "pricing", "", true},
		{"extensionless html twin", "/about", "about.html", "", true},
		{"asset with extension", "/css/site.css", "css/site.css", "", true},
		{"nested asset", "/img/logo.svg", "img/logo.svg", "", true},
		{"directory trailing slash", "/docs/", "docs/index.html", "", true},
		{"directory without slash redirects", "/docs", "", "/docs/", true},
		{"nested html", "/docs/guide.html", "docs/guide.html", "", true},
		{"nested extensionless", "/docs/guide", "docs/guide.html", "", true},
		{"missing file", "/nope.css", "", "", false},
		{"missing extensionless", "/nope", "", "", false},
		{"missing directory", "/nowhere/", "", "", false},
		{"dot segment", "/../etc/passwd", "", "", false},
		{"embedded dot segment", "/css/../index.html", "", "", false},
		{"backslash", "/css\\site.css", "", "", false},
		{"nul byte", "/css/\x00", "", "", false},
		{"directory name is not a file", "/css", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, redirect, ok := resolvePath(tt.urlPath, fsys)
			if file != tt.wantFile || redirect != tt.wantRedirect || ok != tt.wantOK {
				t.Fatalf("resolvePath(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.urlPath, file, redirect, ok, tt.wantFile, tt.wantRedirect, tt.wantOK)
			}
		})
	}
}

func TestExistsFile(t *testing.T) {
	fsys := siteFixture()

	if !existsFile(fsys, "index.html") {
		t.Error("index.html should exist")
	}
	if existsFile(fsys, "css") {
		t.Error("directories are not files")
	}
	if existsFile(fsys, "") {
		t.Error("empty name")
	}
	if existsFile(fsys, "../outside") {
		t.Error("invalid fs path")
	}
	if existsFile(fsys, "missing.txt") {
		t.Error("missing file")
	}
}
