// Package project knows the layout of the Rails project a recipe runs
// against: where routes and environment settings live, how the application
// is named, and how a glob pattern narrows down to the one file a step edits.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Well-known paths, relative to the project root.
const (
	RoutesFile      = "config/routes.rb"
	ApplicationFile = "config/application.rb"
	Gemfile         = "Gemfile"
)

// Anchors used by the route and environment actions.
const (
	// RoutesAnchor matches the line opening the routes block.
	RoutesAnchor = `\.routes\.draw do[ \t]*\n`
	// ApplicationAnchor matches the application class line.
	ApplicationAnchor = `class [A-Za-z_:]+ < Rails::Application[ \t]*\n`
	// ConfigureAnchor matches the configure block in an environment file.
	ConfigureAnchor = `Rails\.application\.configure do[ \t]*\n`
)

// EnvironmentFile returns the path of the per-environment config file.
func EnvironmentFile(env string) string {
	return filepath.Join("config", "environments", env+".rb")
}

// Select narrows glob matches to one file.
type Select string

const (
	// Single requires exactly one match.
	Single Select = "single"
	// Latest picks the most recently modified match.
	Latest Select = "latest"
	// First picks the lexically first match.
	First Select = "first"
)

// NoMatchError reports a glob that matched nothing.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no file matches %s", e.Pattern)
}

// Resolve expands pattern relative to root and returns the path of the
// selected match. A pattern without glob characters is returned as-is
// (joined to root) so that a missing file surfaces from the edit itself.
func Resolve(root, pattern string, sel Select) (string, error) {
	full := filepath.Join(root, pattern)
	if !hasMeta(pattern) {
		return full, nil
	}

	matches, err := filepath.Glob(full)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", pattern, err)
	}
	matches = regularFiles(matches)
	if len(matches) == 0 {
		return "", &NoMatchError{Pattern: pattern}
	}
	sort.Strings(matches)

	switch sel {
	case First:
		return matches[0], nil
	case Latest:
		return latest(matches)
	case Single, "":
		if len(matches) > 1 {
			return "", fmt.Errorf("%s matches %d files, expected one", pattern, len(matches))
		}
		return matches[0], nil
	default:
		return "", fmt.Errorf("unknown select %q", sel)
	}
}

// latest returns the match with the newest modification time. Ties go to
// the lexically greater name, which for timestamped migrations is the newer
// one.
func latest(sorted []string) (string, error) {
	var best string
	var bestInfo os.FileInfo
	for _, m := range sorted {
		info, err := os.Stat(m)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", m, err)
		}
		if bestInfo == nil || !info.ModTime().Before(bestInfo.ModTime()) {
			best, bestInfo = m, info
		}
	}
	return best, nil
}

// regularFiles keeps regular, non-hidden files. Hidden names such as
// .keep or .DS_Store never count as matches.
func regularFiles(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), ".") {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			out = append(out, p)
		}
	}
	return out
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[`)
}

var moduleLine = regexp.MustCompile(`(?m)^module\s+([A-Z][A-Za-z0-9_]*)\s*$`)

// AppName returns the application module name declared in
// config/application.rb, or the camelized directory name when the file is
// missing or has no module line.
func AppName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, ApplicationFile))
	if err == nil {
		if m := moduleLine.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return Camelize(filepath.Base(abs))
}

// Camelize turns "my_app" or "my-app" into "MyApp".
func Camelize(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
