// Package assets holds the built-in email layouts.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed html/*.html
var embedded embed.FS

// Templates returns the bundled html directory.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "html")
	if err != nil {
		panic(err)
	}
	return sub
}
