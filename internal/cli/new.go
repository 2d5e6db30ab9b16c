package cli

import (
	"fmt"
	"path/filepath"

	"github.com/railyard-labs/railyard/internal/shell"
	"github.com/spf13/cobra"
)

var newOpts applyOptions

func init() {
	bindApplyFlags(newCmd, &newOpts)
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <name> [-- rails-new-args...]",
	Short: "Create a Rails app and apply the recipe to it",
	Long: `Run "rails new <name>" and then apply the recipe to the new directory.
Arguments after -- are passed to rails new.

Examples:
  railyard new my_shop
  railyard new my_shop -- -d postgresql --webpack=stimulus`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		var extra []string
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			if dash != 1 {
				return fmt.Errorf("expected exactly one name before --, got %d", dash)
			}
			extra = args[dash:]
		} else if len(args) > 1 {
			return fmt.Errorf("unexpected arguments %v; pass rails new options after --", args[1:])
		}

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		railsNew := shell.Command{Name: "rails", Args: append([]string{"new", name}, extra...)}
		if newOpts.dryRun {
			fmt.Fprintf(out, "Would run: %s\n", railsNew)
			return nil
		}

		sh := &shell.ExecRunner{Stdout: out, Stderr: errOut}
		res, err := sh.Run(cmd.Context(), railsNew)
		if err != nil {
			return err
		}
		if err := res.Err(railsNew); err != nil {
			return err
		}

		opts := newOpts
		if opts.appName == "" {
			opts.appName = filepath.Base(name)
		}
		return runApply(cmd.Context(), out, errOut, name, opts)
	},
}
