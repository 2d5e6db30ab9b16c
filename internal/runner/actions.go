package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/railyard-labs/railyard/internal/edit"
	"github.com/railyard-labs/railyard/internal/project"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/scaffold"
)

// exec performs one step.
func (r *Runner) exec(ctx context.Context, s recipe.Step) error {
	if s.Action == recipe.ActionSay {
		msg, err := r.render(s.ID, s.Content)
		if err != nil {
			return err
		}
		r.out.Say(msg, s.Color)
		return nil
	}

	if s.IsCommand() {
		return r.execCommand(ctx, s)
	}
	if r.cfg.DryRun {
		return nil
	}

	switch s.Action {
	case recipe.ActionCopyFile:
		return r.copy(s, false)
	case recipe.ActionDirectory:
		return r.copy(s, true)
	case recipe.ActionRemoveFile:
		p, err := r.resolve(s)
		if err != nil {
			return err
		}
		return scaffold.Remove(p)
	case recipe.ActionInsert:
		mode := edit.After
		if s.Where == recipe.WhereBefore {
			mode = edit.Before
		}
		return r.editFile(s, mode)
	case recipe.ActionReplace:
		return r.editFile(s, edit.Replace)
	case recipe.ActionAppend:
		p, err := r.resolve(s)
		if err != nil {
			return err
		}
		content, err := r.content(s)
		if err != nil {
			return err
		}
		return edit.Append(p, content)
	case recipe.ActionRoute:
		return r.route(s)
	case recipe.ActionEnvironment:
		return r.environment(s)
	}
	return fmt.Errorf("unknown action %q", s.Action)
}

// execCommand runs a command step and checks its postconditions.
func (r *Runner) execCommand(ctx context.Context, s recipe.Step) error {
	if s.Action == recipe.ActionGems && !r.cfg.DryRun {
		if err := r.addGems(); err != nil {
			return err
		}
	}

	cmd := r.command(s)
	for i, a := range cmd.Args {
		arg, err := r.render(s.ID, a)
		if err != nil {
			return err
		}
		cmd.Args[i] = arg
	}
	cmd.Dir = r.cfg.TargetDir

	res, err := r.sh.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if err := res.Err(cmd); err != nil {
		return err
	}

	if r.cfg.DryRun {
		return nil
	}
	for _, pattern := range s.Creates {
		matches, err := filepath.Glob(filepath.Join(r.cfg.TargetDir, pattern))
		if err != nil {
			return fmt.Errorf("checking %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("%w: %s did not create %s", ErrPostcondition, cmd, pattern)
		}
	}
	return nil
}

// addGems appends one gem line per recipe gem to the Gemfile.
func (r *Runner) addGems() error {
	if len(r.gems) == 0 {
		return nil
	}
	var b strings.Builder
	for _, g := range r.gems {
		b.WriteString(GemLine(g))
		b.WriteByte('\n')
	}
	return edit.Append(filepath.Join(r.cfg.TargetDir, project.Gemfile), b.String())
}

// GemLine renders a Gemfile declaration.
func GemLine(g recipe.Gem) string {
	parts := []string{quote(g.Name)}
	for _, v := range g.Versions {
		parts = append(parts, quote(v))
	}
	if g.GitHub != "" {
		parts = append(parts, "github: "+quote(g.GitHub))
	}
	if g.Branch != "" {
		parts = append(parts, "branch: "+quote(g.Branch))
	}
	if g.Require != nil {
		parts = append(parts, fmt.Sprintf("require: %t", *g.Require))
	}
	return "gem " + strings.Join(parts, ", ")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func (r *Runner) copy(s recipe.Step, dir bool) error {
	if r.cfg.Sources == nil {
		return fmt.Errorf("no template sources configured")
	}
	name := s.Source
	fsys, err := r.cfg.Sources.Find(name)
	if err != nil && !dir && errors.Is(err, fs.ErrNotExist) {
		// A rendered file may only exist in its .tmpl form.
		var tmplErr error
		if fsys, tmplErr = r.cfg.Sources.Find(name + ".tmpl"); tmplErr == nil {
			name, err = name+".tmpl", nil
		}
	}
	if err != nil {
		return err
	}

	dest := s.Dest
	if dest == "" {
		dest = s.Source
	}
	dst := filepath.Join(r.cfg.TargetDir, filepath.FromSlash(dest))

	opts := scaffold.Options{Force: s.Force, Data: r.data, Root: r.cfg.TargetDir}
	var res *scaffold.Result
	if dir {
		res, err = scaffold.CopyDir(fsys, name, dst, opts)
	} else {
		res, err = scaffold.CopyFile(fsys, name, dst, opts)
	}
	if err != nil {
		return err
	}
	r.files = append(r.files, res.Files...)
	return nil
}

func (r *Runner) editFile(s recipe.Step, mode edit.Mode) error {
	p, err := r.resolve(s)
	if err != nil {
		return err
	}
	content, err := r.content(s)
	if err != nil {
		return err
	}
	return edit.ApplyFile(p, edit.Edit{Anchor: s.Anchor, Regexp: s.Regexp, Mode: mode, Content: content})
}

// route adds a line to the routes block.
func (r *Runner) route(s recipe.Step) error {
	content, err := r.render(s.ID, s.Content)
	if err != nil {
		return err
	}
	return edit.ApplyFile(filepath.Join(r.cfg.TargetDir, project.RoutesFile), edit.Edit{
		Anchor:  project.RoutesAnchor,
		Regexp:  true,
		Mode:    edit.After,
		Content: withNewline(edit.Reindent(content, 2)),
	})
}

// environment adds configuration to the application class, or to one
// environment's configure block when the step names an env.
func (r *Runner) environment(s recipe.Step) error {
	content, err := r.render(s.ID, s.Content)
	if err != nil {
		return err
	}
	file, anchor, indent := project.ApplicationFile, project.ApplicationAnchor, 4
	if s.Env != "" {
		file, anchor, indent = project.EnvironmentFile(s.Env), project.ConfigureAnchor, 2
	}
	return edit.ApplyFile(filepath.Join(r.cfg.TargetDir, file), edit.Edit{
		Anchor:  anchor,
		Regexp:  true,
		Mode:    edit.After,
		Content: withNewline(edit.Reindent(content, indent)),
	})
}

// resolve turns a step's path (possibly a glob) into one file.
func (r *Runner) resolve(s recipe.Step) (string, error) {
	return project.Resolve(r.cfg.TargetDir, s.Path, project.Select(s.Select))
}

// content renders the step's content and applies its indent.
func (r *Runner) content(s recipe.Step) (string, error) {
	c, err := r.render(s.ID, s.Content)
	if err != nil {
		return "", err
	}
	if s.Indent > 0 {
		c = edit.Reindent(c, s.Indent)
	}
	return c, nil
}

func (r *Runner) render(name, text string) (string, error) {
	return scaffold.RenderString(name, text, r.data)
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
