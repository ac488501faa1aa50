package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAssetCache(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/css/site.css", AssetCacheControl},
		{"/js/app.js", AssetCacheControl},
		{"/img/logo.webp", AssetCacheControl},
		{"/favicon.ico", AssetCacheControl},
		{"/about", AssetCacheControl},        // extensionless: assigned here, may resolve to HTML later
		{"/no/such/file.png", AssetCacheControl}, // assignment happens before resolution
		{"/", AssetCacheControl},             // overwritten downstream by the site handler
		{"/index.html", ""},
		{"/docs/page.html", ""},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		AssetCache(okHandler()).ServeHTTP(rec, req)

		if got := rec.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("%s: Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAssetCache_DownstreamCanOverride(t *testing.T) {
	h := AssetCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", HTMLCacheControl)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Cache-Control"); got != HTMLCacheControl {
		t.Fatalf("Cache-Control = %q, want downstream override %q", got, HTMLCacheControl)
	}
}
