package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/railyard-labs/railyard/internal/config"
	"github.com/railyard-labs/railyard/internal/edit"
	"github.com/railyard-labs/railyard/internal/preflight"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/runner"
	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/railyard-labs/railyard/internal/source"
	"github.com/spf13/cobra"
)

// applyOptions are shared by apply and new.
type applyOptions struct {
	template      string
	appName       string
	skipGit       bool
	dryRun        bool
	skipPreflight bool
}

func bindApplyFlags(cmd *cobra.Command, o *applyOptions) {
	cmd.Flags().StringVarP(&o.template, "template", "m", "", "Recipe file, template directory or http(s) URL (default: built-in recipe)")
	cmd.Flags().StringVar(&o.appName, "app-name", "", "Application name used in messages (default: target directory name)")
	cmd.Flags().BoolVar(&o.skipGit, "skip-git", false, "Skip git init/add/commit (also SKIP_GIT)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print every step and command without running anything")
	cmd.Flags().BoolVar(&o.skipPreflight, "skip-preflight", false, "Do not check required tools before running")
}

var applyOpts applyOptions

func init() {
	bindApplyFlags(applyCmd, &applyOpts)
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply [target]",
	Short: "Run a recipe against an existing Rails project",
	Long: `Run a recipe against an existing Rails project (default: the current directory).

Steps run in order and the first failure stops the run. Anchored edits require
their anchor to match exactly once, so running a recipe twice on the same
project fails at the first edit that was already applied.

Examples:
  railyard apply
  railyard apply ../my_shop --skip-git
  railyard apply --template https://raw.githubusercontent.com/ankurp/rail-yard/main/template.rb`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}
		return runApply(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), target, applyOpts)
	},
}

func runApply(ctx context.Context, out, errOut io.Writer, target string, opts applyOptions) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving target: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return fmt.Errorf("target %s is not a directory", target)
	}

	sh := &shell.ExecRunner{Stdout: out, Stderr: errOut}
	src, err := source.Prepare(ctx, source.Options{Location: opts.template, Runner: sh})
	if err != nil {
		return err
	}
	defer src.Close()

	rec, err := src.Recipe()
	if err != nil {
		return err
	}

	skipGit := opts.skipGit || config.SkipGit()
	if !opts.skipPreflight && !opts.dryRun {
		if err := checkTools(ctx, errOut, requiredTools(rec, skipGit && !source.IsURL(opts.template))); err != nil {
			return err
		}
	}

	var run shell.Runner = sh
	var recorder *shell.DryRunner
	if opts.dryRun {
		recorder = &shell.DryRunner{}
		run = recorder
	}

	r := runner.New(runner.Config{
		TargetDir: abs,
		AppName:   opts.appName,
		Sources:   src,
		SkipGit:   skipGit,
		DryRun:    opts.dryRun,
		RailsBin:  config.Get(config.KeyRailsBin),
		Out:       out,
	}, run, newLogger())

	if _, err := r.Run(ctx, rec); err != nil {
		if errors.Is(err, edit.ErrPrecondition) {
			fmt.Fprintln(errOut, "The project is not in the state this step expects. Was the recipe already applied?")
		}
		return err
	}

	if recorder != nil {
		fmt.Fprintf(out, "\nDry run: %d command(s) would run, no files were changed.\n", len(recorder.Commands()))
	}
	return nil
}

// requiredTools returns the recipe's tools, without git when git steps are
// skipped and nothing needs to be cloned.
func requiredTools(rec *recipe.Recipe, dropGit bool) []recipe.Tool {
	if !dropGit {
		return rec.Requires
	}
	var tools []recipe.Tool
	for _, t := range rec.Requires {
		if t.Name != "git" {
			tools = append(tools, t)
		}
	}
	return tools
}

// checkTools runs the preflight check, printing the report only on failure.
func checkTools(ctx context.Context, w io.Writer, tools []recipe.Tool) error {
	checker := &preflight.Checker{Runner: &shell.ExecRunner{Stdout: io.Discard, Stderr: io.Discard}}
	report := checker.Check(ctx, tools)
	if err := report.Err(); err != nil {
		report.Print(w)
		return fmt.Errorf("%w (use --skip-preflight to run anyway)", err)
	}
	return nil
}
