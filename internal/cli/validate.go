package cli

import (
	"fmt"

	"github.com/railyard-labs/railyard/internal/recipe"
	"github.com/railyard-labs/railyard/internal/templates"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [recipe]",
	Short: "Check a recipe against the schema and step rules",
	Long: `Validate a recipe file against the JSON Schema, then check the rules the
schema cannot express: unique step ids, required fields per action and
compilable anchors. Without an argument the built-in recipe is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		origin := recipe.DefaultOrigin
		var (
			res *recipe.ValidationResult
			err error
		)
		if len(args) == 1 {
			origin = args[0]
			res, err = recipe.ValidateFile(origin)
		} else {
			res, err = recipe.Validate(templates.Recipe)
		}

		fmt.Fprintf(out, "Recipe validation: %s\n", origin)
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return fmt.Errorf("recipe validation failed: %w", err)
		}

		if !res.Valid {
			fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(res.Issues))
			for _, issue := range res.Issues {
				if issue.Path != "" {
					fmt.Fprintf(out, "    - %s: %s\n", issue.Path, issue.Message)
				} else {
					fmt.Fprintf(out, "    - %s\n", issue.Message)
				}
			}
			return fmt.Errorf("recipe %s has %d validation issue(s)", origin, len(res.Issues))
		}

		var rec *recipe.Recipe
		if len(args) == 1 {
			rec, err = recipe.Parse(origin)
		} else {
			rec, err = recipe.Default()
		}
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return err
		}
		if err := rec.Check(); err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return fmt.Errorf("recipe %s: %w", origin, err)
		}

		fmt.Fprintf(out, "  [ OK ] Valid recipe: %s (v%s), %d step(s)\n", rec.Name, rec.Version, len(rec.Steps))
		return nil
	},
}
