// Package templates holds the files compiled into the binary: the built-in
// recipe and the companion tree its copy steps read from when no local or
// cloned template directory provides a file.
package templates

import (
	"embed"
	"io/fs"
)

// Recipe is the built-in rail-yard recipe.
//
//go:embed recipe.yaml
var Recipe []byte

//go:embed all:files
var files embed.FS

// Files returns the companion tree rooted at its top directory, so that
// "Procfile" and "app/models/user.rb" resolve directly.
func Files() fs.FS {
	sub, err := fs.Sub(files, "files")
	if err != nil {
		// fs.Sub only fails on an invalid path, and "files" is a constant.
		panic(err)
	}
	return sub
}
