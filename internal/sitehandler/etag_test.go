package sitehandler

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestWeakETag(t *testing.T) {
	fsys := fstest.MapFS{
		"a.txt": {Data: []byte("hello"), ModTime: time.Unix(1700000000, 0)},
		"b.txt": {Data: []byte("hello"), ModTime: time.Unix(1700000000, 0)},
		"c.txt": {Data: []byte("hello!"), ModTime: time.Unix(1700000000, 0)},
		"d.txt": {Data: []byte("hello"), ModTime: time.Unix(1700000001, 0)},
	}

	tag := func(name string) string {
		fi, err := fs.Stat(fsys, name)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		return weakETag(fi)
	}

	a := tag("a.txt")
	if !strings.HasPrefix(a, `W/"`) || !strings.HasSuffix(a, `"`) {
		t.Fatalf("tag %q is not a quoted weak validator", a)
	}
	if b := tag("b.txt"); b != a {
		t.Fatalf("same size+mtime gave different tags: %q vs %q", a, b)
	}
	if c := tag("c.txt"); c == a {
		t.Fatalf("different size gave identical tag %q", c)
	}
	if d := tag("d.txt"); d == a {
		t.Fatalf("different mtime gave identical tag %q", d)
	}
}
