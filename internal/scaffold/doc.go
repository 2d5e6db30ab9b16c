// Package scaffold copies template files into a Rails project. It backs the
// copy_file, directory and remove_file recipe steps: files are read from any
// fs.FS (the embedded tree, a local template directory or a fresh clone),
// ".tmpl" files are rendered with text/template, and existing files are only
// overwritten when the step asks for it.
package scaffold
