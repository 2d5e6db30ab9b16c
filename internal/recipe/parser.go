package recipe

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/railyard-labs/railyard/internal/templates"
	"go.yaml.in/yaml/v3"
)

// DefaultOrigin names the embedded recipe in error messages and plans.
const DefaultOrigin = "builtin:recipe.yaml"

// Parse reads a recipe file and returns the parsed recipe.
func Parse(path string) (*Recipe, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, path)
}

// ParseBytes parses raw YAML. Origin is recorded on the recipe and used in
// error messages.
func ParseBytes(data []byte, origin string) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe %s: %w", origin, err)
	}
	r.Origin = origin
	return &r, nil
}

// Default returns the built-in rail-yard recipe.
func Default() (*Recipe, error) {
	return ParseBytes(templates.Recipe, DefaultOrigin)
}

// Load parses and fully validates a recipe: schema first, then Check.
func Load(path string) (*Recipe, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data, path)
}

// LoadBytes is Load for in-memory documents.
func LoadBytes(data []byte, origin string) (*Recipe, error) {
	res, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating recipe %s: %w", origin, err)
	}
	if !res.Valid {
		return nil, &InvalidError{Origin: origin, Issues: res.Issues}
	}
	r, err := ParseBytes(data, origin)
	if err != nil {
		return nil, err
	}
	if err := r.Check(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", origin, err)
	}
	return r, nil
}

// InvalidError reports schema violations.
type InvalidError struct {
	Origin string
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("recipe %s is invalid", e.Origin)
	}
	first := e.Issues[0]
	msg := first.Message
	if first.Path != "" {
		msg = first.Path + ": " + msg
	}
	if len(e.Issues) > 1 {
		return fmt.Sprintf("recipe %s is invalid: %s (and %d more)", e.Origin, msg, len(e.Issues)-1)
	}
	return fmt.Sprintf("recipe %s is invalid: %s", e.Origin, msg)
}

// Check enforces rules the schema cannot express: unique step ids,
// per-action required fields and compilable regexp anchors. All problems are
// joined into one error.
func (r *Recipe) Check() error {
	var errs []error
	seen := make(map[string]bool, len(r.Steps))
	for i, s := range r.Steps {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("step %d: missing id", i))
		} else if seen[s.ID] {
			errs = append(errs, fmt.Errorf("step %d: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = true

		if err := s.check(); err != nil {
			errs = append(errs, fmt.Errorf("step %q: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s Step) check() error {
	if !slices.Contains(ValidActions, s.Action) {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if s.OnFailure != "" && s.OnFailure != OnFailureAbort && s.OnFailure != OnFailureWarn {
		return fmt.Errorf("on_failure must be %q or %q", OnFailureAbort, OnFailureWarn)
	}
	if s.Unless != "" && s.Unless != UnlessSkipGit {
		return fmt.Errorf("unknown condition %q", s.Unless)
	}

	if len(s.Creates) > 0 && !s.IsCommand() {
		return fmt.Errorf("creates is only valid on command steps")
	}

	switch s.Action {
	case ActionCopyFile, ActionDirectory:
		if s.Source == "" {
			return fmt.Errorf("%s requires source", s.Action)
		}
	case ActionRemoveFile, ActionAppend:
		if s.Path == "" {
			return fmt.Errorf("%s requires path", s.Action)
		}
	case ActionGenerate, ActionRails:
		if len(s.Args) == 0 {
			return fmt.Errorf("%s requires args", s.Action)
		}
	case ActionRun:
		if s.Command == "" {
			return fmt.Errorf("run requires command")
		}
	case ActionInsert:
		if s.Where != WhereBefore && s.Where != WhereAfter {
			return fmt.Errorf("insert requires where: %s or %s", WhereBefore, WhereAfter)
		}
		return s.checkAnchor()
	case ActionReplace:
		return s.checkAnchor()
	case ActionRoute, ActionEnvironment:
		if s.Content == "" {
			return fmt.Errorf("%s requires content", s.Action)
		}
	}
	return nil
}

func (s Step) checkAnchor() error {
	if s.Path == "" || s.Anchor == "" {
		return fmt.Errorf("%s requires path and anchor", s.Action)
	}
	if s.Regexp {
		if _, err := regexp.Compile(s.Anchor); err != nil {
			return fmt.Errorf("anchor: %w", err)
		}
	}
	return nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
