package sitehandler

import (
	"fmt"
	"io/fs"
)

// weakETag derives a validator from file size and mtime, the same identity
// the file server uses for Last-Modified. Weak because identical content
// re-deployed with a new mtime yields a new tag.
func weakETag(fi fs.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, fi.Size(), fi.ModTime().Unix())
}
