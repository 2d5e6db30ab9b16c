package runner

import (
	"path"
	"strings"

	"github.com/railyard-labs/railyard/internal/project"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/shell"
)

// Planned is one step as it would run.
type Planned struct {
	Index   int // 1-based
	Step    recipe.Step
	Detail  string
	Skipped bool
	Reason  string
}

// Plan lists the recipe's steps in execution order, marking the ones the
// current configuration skips. It touches nothing on disk.
func (r *Runner) Plan(rec *recipe.Recipe) []Planned {
	out := make([]Planned, len(rec.Steps))
	for i, s := range rec.Steps {
		p := Planned{Index: i + 1, Step: s, Detail: r.describe(s)}
		if reason := r.skipReason(s); reason != "" {
			p.Skipped = true
			p.Reason = reason
		}
		out[i] = p
	}
	return out
}

func (r *Runner) skipReason(s recipe.Step) string {
	if s.Unless == recipe.UnlessSkipGit && r.cfg.SkipGit {
		return "skip_git"
	}
	return ""
}

// describe renders a one-line summary of what the step does.
func (r *Runner) describe(s recipe.Step) string {
	switch s.Action {
	case recipe.ActionGems:
		return "Gemfile, bundle install"
	case recipe.ActionCopyFile, recipe.ActionDirectory:
		dest := s.Dest
		if dest == "" || dest == s.Source {
			return s.Source
		}
		return s.Source + " -> " + dest
	case recipe.ActionRemoveFile, recipe.ActionAppend:
		return s.Path
	case recipe.ActionInsert:
		return s.Path + " (" + s.Where + ")"
	case recipe.ActionReplace:
		return s.Path
	case recipe.ActionRoute:
		return project.RoutesFile
	case recipe.ActionEnvironment:
		if s.Env != "" {
			return path.Join("config", "environments", s.Env+".rb")
		}
		return project.ApplicationFile
	case recipe.ActionGenerate, recipe.ActionRails, recipe.ActionRun:
		return r.command(s).String()
	case recipe.ActionSay:
		return firstLine(s.Content)
	}
	return ""
}

// command builds the process a command step runs, before templating.
func (r *Runner) command(s recipe.Step) shell.Command {
	switch s.Action {
	case recipe.ActionGenerate:
		return shell.Command{Name: r.cfg.RailsBin, Args: append([]string{"generate"}, s.Args...)}
	case recipe.ActionRails:
		return shell.Command{Name: r.cfg.RailsBin, Args: append([]string(nil), s.Args...)}
	case recipe.ActionGems:
		return shell.Command{Name: "bundle", Args: []string{"install"}}
	default:
		return shell.Command{Name: s.Command, Args: append([]string(nil), s.Args...)}
	}
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
