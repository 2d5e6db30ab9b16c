package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// tmplSuffix marks files rendered through text/template before writing.
const tmplSuffix = ".tmpl"

// excludedNames are never copied out of a template tree.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// Data holds the variables available to .tmpl files and recipe content.
type Data struct {
	AppName  string // e.g., "my_shop"
	AppConst string // e.g., "MyShop"
	Year     int
}

// NewData returns Data for an application with the current year filled in.
func NewData(appName, appConst string) *Data {
	return &Data{AppName: appName, AppConst: appConst, Year: time.Now().Year()}
}

// Options control a copy.
type Options struct {
	// Force overwrites destination files whose content differs.
	Force bool
	// Data is passed to .tmpl files. Nil renders against an empty Data.
	Data *Data
	// Root, when set, makes Result.Files relative to it.
	Root string
}

// Result holds the outcome of a copy.
type Result struct {
	Files     []string // written, relative to Options.Root when set
	Identical []string // skipped because the destination already matched
}

// ConflictError reports a destination that exists with different content
// while Force is off.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists with different content", e.Path)
}

// CopyFile copies name from src to dst. A name ending in .tmpl is rendered
// and written to dst with the suffix removed.
func CopyFile(src fs.FS, name, dst string, opts Options) (*Result, error) {
	res := &Result{}
	if err := copyOne(src, name, dst, opts, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CopyDir recursively copies the directory name from src into dst, skipping
// .git and .DS_Store. Conflicts are checked before anything is written, so a
// refused copy leaves the destination untouched.
func CopyDir(src fs.FS, name, dst string, opts Options) (*Result, error) {
	info, err := fs.Stat(src, name)
	if err != nil {
		return nil, fmt.Errorf("reading template directory %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", name)
	}

	type pair struct{ from, to string }
	var files []pair
	err = fs.WalkDir(src, name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if excludedNames[d.Name()] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Directories are created on demand; other special files are skipped.
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, name), "/")
		files = append(files, pair{from: p, to: filepath.Join(dst, filepath.FromSlash(rel))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking template directory %s: %w", name, err)
	}

	if !opts.Force {
		for _, f := range files {
			if err := checkConflict(src, f.from, outPath(f.to), opts); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{}
	for _, f := range files {
		if err := copyOne(src, f.from, f.to, opts, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Remove deletes the file at p. A missing file is not an error.
func Remove(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

func copyOne(src fs.FS, name, dst string, opts Options, res *Result) error {
	out := outPath(dst)
	data, mode, err := render(src, name, opts.Data)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(out)
	switch {
	case err == nil && bytes.Equal(existing, data):
		res.Identical = append(res.Identical, display(out, opts.Root))
		return nil
	case err == nil && !opts.Force:
		return &ConflictError{Path: display(out, opts.Root)}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", out, err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", out, err)
	}
	if err := os.WriteFile(out, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	res.Files = append(res.Files, display(out, opts.Root))
	return nil
}

func checkConflict(src fs.FS, name, out string, opts Options) error {
	existing, err := os.ReadFile(out)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", out, err)
	}
	data, _, err := render(src, name, opts.Data)
	if err != nil {
		return err
	}
	if !bytes.Equal(existing, data) {
		return &ConflictError{Path: display(out, opts.Root)}
	}
	return nil
}

// render returns the bytes to write for name and the file mode to use.
func render(src fs.FS, name string, data *Data) ([]byte, os.FileMode, error) {
	raw, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, 0, fmt.Errorf("reading template %s: %w", name, err)
	}

	mode := os.FileMode(0644)
	if info, err := fs.Stat(src, name); err == nil && info.Mode()&0111 != 0 {
		mode = 0755
	}

	if !strings.HasSuffix(name, tmplSuffix) {
		return raw, mode, nil
	}

	if data == nil {
		data = &Data{}
	}
	tmpl, err := template.New(path.Base(name)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, 0, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), mode, nil
}

func outPath(dst string) string {
	return strings.TrimSuffix(dst, tmplSuffix)
}

func display(p, root string) string {
	if root == "" {
		return p
	}
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

// RenderString renders text as a template against data. Text without
// template actions is returned unchanged.
func RenderString(name, text string, data *Data) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	if data == nil {
		data = &Data{}
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", name, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
