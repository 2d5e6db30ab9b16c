package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/railyard-labs/railyard/internal/config"
	"github.com/railyard-labs/railyard/internal/preflight"
	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/railyard-labs/railyard/internal/source"
	"github.com/spf13/cobra"
)

var doctorTemplate string

func init() {
	doctorCmd.Flags().StringVarP(&doctorTemplate, "template", "m", "", "Check the tools required by this recipe instead of the built-in one")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the tools a recipe needs are installed",
	Long: `Run diagnostic checks: the configuration in use and every tool the recipe
requires, with its version when the recipe sets a minimum.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		runConfigCheck(out)

		sh := &shell.ExecRunner{Stdout: io.Discard, Stderr: cmd.ErrOrStderr()}
		src, err := source.Prepare(cmd.Context(), source.Options{Location: doctorTemplate, Runner: sh})
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return err
		}
		defer src.Close()

		rec, err := src.Recipe()
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return err
		}

		fmt.Fprintln(out)
		checker := &preflight.Checker{Runner: &shell.ExecRunner{Stdout: io.Discard, Stderr: io.Discard}}
		report := checker.Check(cmd.Context(), requiredTools(rec, config.SkipGit()))
		report.Print(out)
		return report.Err()
	},
}

func runConfigCheck(w io.Writer) {
	fmt.Fprintln(w, "Config check:")
	path := config.FilePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  [INFO] No config file at %s (using defaults)\n", path)
	} else {
		fmt.Fprintf(w, "  [ OK ] Config file %s\n", path)
	}
	fmt.Fprintf(w, "  [INFO] Template repository: %s\n", source.RepoURL())
	fmt.Fprintf(w, "  [INFO] Rails binary: %s\n", config.Get(config.KeyRailsBin))
	if config.SkipGit() {
		fmt.Fprintln(w, "  [INFO] Git steps are skipped (SKIP_GIT or skip_git)")
	}
}
