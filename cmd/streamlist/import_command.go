package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var resolve bool

	cmd := &cobra.Command{
		Use:   "import <letterboxd-url>",
		Short: "List the titles on a public Letterboxd list or watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := ctx.ensureStack()
			if err != nil {
				return err
			}
			titles, err := stack.Importer.Import(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import list: %w", err)
			}

			if resolve {
				if len(titles) == 0 {
					return fmt.Errorf("import list: no titles found")
				}
				movies, err := stack.Runner.RunBatch(cmd.Context(), titles)
				if err != nil {
					return fmt.Errorf("resolve titles: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, movies)
				}
				renderMovies(cmd.OutOrStdout(), movies)
				return nil
			}

			if jsonOutput {
				return writeJSON(cmd, map[string][]string{"titles": titles})
			}
			out := cmd.OutOrStdout()
			for _, title := range titles {
				fmt.Fprintln(out, title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Resolve the imported titles and print availability")
	return cmd
}
