package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/railyard-labs/railyard/internal/templates"
)

func TestDefaultRecipe(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if r.Name != "rail-yard" {
		t.Errorf("Name = %q, want rail-yard", r.Name)
	}
	if r.Origin != DefaultOrigin {
		t.Errorf("Origin = %q, want %q", r.Origin, DefaultOrigin)
	}
	if len(r.Gems) != 16 {
		t.Errorf("Gems len = %d, want 16", len(r.Gems))
	}
	if err := r.Check(); err != nil {
		t.Errorf("Check() on built-in recipe: %v", err)
	}
}

func TestDefaultRecipeOrder(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	// Phases must appear in this order, each as one contiguous run.
	want := []string{
		"dependencies", "application-name", "reloader", "authentication",
		"authorization", "javascript", "announcements", "notifications",
		"background-jobs", "slugs", "hotwire", "templates", "scheduled-jobs",
		"sitemap", "storage", "database", "admin", "git",
	}
	var got []string
	for _, s := range r.Steps {
		if s.Phase == "" {
			continue
		}
		if len(got) == 0 || got[len(got)-1] != s.Phase {
			got = append(got, s.Phase)
		}
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("phase order:\n got  %v\n want %v", got, want)
	}

	if r.Steps[0].Action != ActionGems {
		t.Errorf("first step action = %q, want gems", r.Steps[0].Action)
	}
}

func TestDefaultRecipeGitSteps(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	var commit *Step
	for i, s := range r.Steps {
		if s.Command == "git" && s.Unless != UnlessSkipGit {
			t.Errorf("git step %q is not conditional on skip_git", s.ID)
		}
		if s.ID == "git-commit" {
			commit = &r.Steps[i]
		}
	}
	if commit == nil {
		t.Fatal("git-commit step missing")
	}
	if !commit.Warns() {
		t.Error("git-commit should warn instead of aborting")
	}
}

func TestParseBytesContentBlocks(t *testing.T) {
	r, err := ParseBytes(templates.Recipe, "test")
	if err != nil {
		t.Fatalf("ParseBytes error: %v", err)
	}
	byID := make(map[string]Step)
	for _, s := range r.Steps {
		byID[s.ID] = s
	}

	admin := byID["admin-routes"]
	if admin.Indent != 2 {
		t.Errorf("admin-routes indent = %d, want 2", admin.Indent)
	}
	if !strings.HasSuffix(admin.Content, "end\n\n\n") {
		t.Errorf("admin-routes content should keep trailing blank lines, got %q", admin.Content)
	}
	if got := byID["user-password-form"].Content; got != "FORM_ATTRIBUTES = [\n    :password," {
		t.Errorf("user-password-form content = %q", got)
	}
}

func TestParseFileNotFound(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := ParseBytes([]byte("steps: [unterminated"), "bad.yaml")
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "bad.yaml") {
		t.Errorf("error should name the origin, got: %v", err)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	doc := `name: tiny
version: 0.1.0
steps:
  - id: hello
    action: say
    content: hi
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if r.Origin != path {
		t.Errorf("Origin = %q, want %q", r.Origin, path)
	}
	if len(r.Steps) != 1 || r.Steps[0].Content != "hi" {
		t.Errorf("unexpected steps: %+v", r.Steps)
	}
}

func TestLoadBytesSchemaFailure(t *testing.T) {
	_, err := LoadBytes([]byte("name: x\nversion: 1\nsteps:\n  - id: a\n    action: teleport\n"), "bad")
	var invalid *InvalidError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidError, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		steps   []Step
		wantErr string
	}{
		{
			name:  "valid",
			steps: []Step{{ID: "a", Action: ActionRun, Command: "true"}},
		},
		{
			name:    "duplicate id",
			steps:   []Step{{ID: "a", Action: ActionSay}, {ID: "a", Action: ActionSay}},
			wantErr: "duplicate id",
		},
		{
			name:    "missing id",
			steps:   []Step{{Action: ActionSay}},
			wantErr: "missing id",
		},
		{
			name:    "insert without where",
			steps:   []Step{{ID: "a", Action: ActionInsert, Path: "f", Anchor: "x"}},
			wantErr: "requires where",
		},
		{
			name:    "replace without anchor",
			steps:   []Step{{ID: "a", Action: ActionReplace, Path: "f"}},
			wantErr: "requires path and anchor",
		},
		{
			name:    "bad regexp",
			steps:   []Step{{ID: "a", Action: ActionReplace, Path: "f", Anchor: "([", Regexp: true}},
			wantErr: "anchor",
		},
		{
			name:    "creates on file step",
			steps:   []Step{{ID: "a", Action: ActionCopyFile, Source: "x", Creates: []string{"y"}}},
			wantErr: "creates is only valid",
		},
		{
			name:    "run without command",
			steps:   []Step{{ID: "a", Action: ActionRun}},
			wantErr: "requires command",
		},
		{
			name:    "unknown condition",
			steps:   []Step{{ID: "a", Action: ActionSay, Unless: "full_moon"}},
			wantErr: "unknown condition",
		},
		{
			name:    "bad failure policy",
			steps:   []Step{{ID: "a", Action: ActionSay, OnFailure: "retry"}},
			wantErr: "on_failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Recipe{Name: "t", Version: "1", Steps: tt.steps}
			err := r.Check()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Check() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
