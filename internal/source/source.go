// Package source locates the template tree a recipe copies files from.
//
// A run searches, in order: a fresh clone of the template repository (when
// the recipe was given as an http(s) URL) or the directory holding a local
// recipe, then the tree embedded in the binary.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/railyard-labs/railyard/internal/branding"
	"github.com/railyard-labs/railyard/internal/config"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/railyard-labs/railyard/internal/templates"
)

// BuiltinName labels the embedded tree in Paths.
const BuiltinName = "builtin"

// defaultRecipeName is looked up in a template directory or clone.
const defaultRecipeName = "recipe.yaml"

var (
	urlPattern    = regexp.MustCompile(`\Ahttps?://`)
	branchPattern = regexp.MustCompile(`rail-yard/(.+)/template\.[a-z]+`)
)

// RepoURL returns the template repository URL, checking (in order):
// 1. <PREFIX>_TEMPLATE_REPO_URL env var
// 2. config key "template_repo"
// 3. branding.TemplateRepoURL() (from branding.yaml)
func RepoURL() string {
	if v := os.Getenv(branding.EnvVar("TEMPLATE_REPO_URL")); v != "" {
		return v
	}
	if v := config.Get(config.KeyTemplateRepo); v != "" {
		return v
	}
	return branding.TemplateRepoURL()
}

// IsURL reports whether location is an http(s) URL.
func IsURL(location string) bool {
	return urlPattern.MatchString(location)
}

// Branch extracts the branch from a raw template URL such as
// https://raw.githubusercontent.com/ankurp/rail-yard/main/template.rb.
func Branch(location string) string {
	if m := branchPattern.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	return ""
}

// Options configure Prepare.
type Options struct {
	// Location is a recipe file, a template directory or an http(s) URL.
	// Empty uses only the built-in recipe and tree.
	Location string
	// RepoURL overrides RepoURL() for clones.
	RepoURL string
	// Runner executes git. Required when Location is a URL.
	Runner shell.Runner
}

// Sources is the ordered list of template locations for one run.
type Sources struct {
	paths      []string
	fsys       []fs.FS
	recipePath string
	tmpDir     string
	closeOnce  sync.Once
	closeErr   error
}

// Prepare resolves opts.Location into search paths. The caller must Close
// the result, which removes any clone.
func Prepare(ctx context.Context, opts Options) (*Sources, error) {
	s := &Sources{}

	switch {
	case opts.Location == "":
	case IsURL(opts.Location):
		if err := s.clone(ctx, opts); err != nil {
			s.Close()
			return nil, err
		}
	default:
		if err := s.local(opts.Location); err != nil {
			return nil, err
		}
	}

	s.paths = append(s.paths, BuiltinName)
	s.fsys = append(s.fsys, templates.Files())
	return s, nil
}

func (s *Sources) clone(ctx context.Context, opts Options) error {
	if opts.Runner == nil {
		return fmt.Errorf("fetching %s: no command runner", opts.Location)
	}
	repo := opts.RepoURL
	if repo == "" {
		repo = RepoURL()
	}

	dir, err := os.MkdirTemp("", branding.TempDirPrefix())
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	s.tmpDir = dir

	if err := git(ctx, opts.Runner, "", "clone", "--quiet", repo, dir); err != nil {
		return fmt.Errorf("cloning template repository %s: %w", repo, err)
	}
	if branch := Branch(opts.Location); branch != "" {
		if err := git(ctx, opts.Runner, dir, "checkout", branch); err != nil {
			return fmt.Errorf("checking out %s: %w", branch, err)
		}
	}

	s.paths = append(s.paths, dir)
	s.fsys = append(s.fsys, os.DirFS(dir))

	// A URL naming a recipe file picks that file from the clone. Anything
	// else (the legacy template.rb entry point) uses the clone's default
	// recipe, or the built-in one when the clone has none.
	name := path.Base(strings.SplitN(opts.Location, "?", 2)[0])
	if !isRecipeFile(name) {
		name = defaultRecipeName
	}
	if p := filepath.Join(dir, name); fileExists(p) {
		s.recipePath = p
	}
	return nil
}

func (s *Sources) local(location string) error {
	abs, err := filepath.Abs(location)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", location, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("template location %s: %w", location, err)
	}

	dir := abs
	if info.IsDir() {
		if p := filepath.Join(abs, defaultRecipeName); fileExists(p) {
			s.recipePath = p
		}
	} else {
		dir = filepath.Dir(abs)
		s.recipePath = abs
	}

	s.paths = append(s.paths, dir)
	s.fsys = append(s.fsys, os.DirFS(dir))
	return nil
}

func git(ctx context.Context, r shell.Runner, dir string, args ...string) error {
	cmd := shell.Command{Name: "git", Args: args, Dir: dir}
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return err
	}
	return res.Err(cmd)
}

// Find returns the first search path that contains name.
func (s *Sources) Find(name string) (fs.FS, error) {
	name = path.Clean(filepath.ToSlash(name))
	for _, fsys := range s.fsys {
		if _, err := fs.Stat(fsys, name); err == nil {
			return fsys, nil
		}
	}
	return nil, fmt.Errorf("template %s not found in %s: %w", name, strings.Join(s.paths, ", "), fs.ErrNotExist)
}

// Paths lists the search paths in lookup order.
func (s *Sources) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// RecipePath returns the recipe file the location points at, or "" for the
// built-in recipe.
func (s *Sources) RecipePath() string {
	return s.recipePath
}

// Recipe loads and validates the recipe for this location.
func (s *Sources) Recipe() (*recipe.Recipe, error) {
	if s.recipePath == "" {
		return recipe.LoadBytes(templates.Recipe, recipe.DefaultOrigin)
	}
	return recipe.Load(s.recipePath)
}

// Close removes the clone, if any. It is safe to call more than once.
func (s *Sources) Close() error {
	s.closeOnce.Do(func() {
		if s.tmpDir == "" {
			return
		}
		if err := os.RemoveAll(s.tmpDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.closeErr = fmt.Errorf("removing %s: %w", s.tmpDir, err)
		}
	})
	return s.closeErr
}

func isRecipeFile(name string) bool {
	ext := path.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
