package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/railyard-labs/railyard/internal/config"
	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/runner"
	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/railyard-labs/railyard/internal/source"
	"github.com/spf13/cobra"
)

var (
	planTemplate string
	planSkipGit  bool
)

func init() {
	planCmd.Flags().StringVarP(&planTemplate, "template", "m", "", "Recipe file, template directory or http(s) URL (default: built-in recipe)")
	planCmd.Flags().BoolVar(&planSkipGit, "skip-git", false, "Mark git steps as skipped (also SKIP_GIT)")
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [target]",
	Short: "List the steps a recipe would run",
	Long:  `Print the recipe's steps in execution order without touching any file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}

		sh := &shell.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
		src, err := source.Prepare(cmd.Context(), source.Options{Location: planTemplate, Runner: sh})
		if err != nil {
			return err
		}
		defer src.Close()

		rec, err := src.Recipe()
		if err != nil {
			return err
		}

		r := runner.New(runner.Config{
			TargetDir: target,
			Sources:   src,
			SkipGit:   planSkipGit || config.SkipGit(),
			RailsBin:  config.Get(config.KeyRailsBin),
		}, nil, nil)

		printPlan(cmd.OutOrStdout(), rec, src.Paths(), r.Plan(rec))
		return nil
	},
}

func printPlan(out io.Writer, rec *recipe.Recipe, paths []string, plan []runner.Planned) {
	fmt.Fprintf(out, "Recipe %s %s (%s)\n", rec.Name, rec.Version, rec.Origin)
	fmt.Fprintf(out, "Template search path: %s\n\n", strings.Join(paths, ", "))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "#\tSTEP\tACTION\tDETAIL")
	skipped := 0
	for _, p := range plan {
		detail := p.Detail
		if p.Skipped {
			detail += " (skipped: " + p.Reason + ")"
			skipped++
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Index, p.Step.ID, p.Step.Action, detail)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d step(s), %d skipped\n", len(plan), skipped)
}
