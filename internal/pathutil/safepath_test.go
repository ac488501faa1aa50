package pathutil

import "testing"

func TestHasDotSegments(t *testing.T) {
	tests := []struct {
		p    string
		want bool
	}{
		{"/", false},
		{"/index.html", false},
		{"/docs/guide.html", false},
		{"/..", true},
		{"/../etc", true},
		{"/a/../b", true},
		{"/a/./b", true},
		{"/.", true},
		{"/.well-known/security.txt", false},
		{"/file..name", false},
		{"/.hidden", false},
	}

	for _, tt := range tests {
		if got := HasDotSegments(tt.p); got != tt.want {
			t.Errorf("HasDotSegments(%q) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
