package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamlist/internal/taxonomy"
)

func newServicesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "services",
		Short:       "Show the streaming services StreamList recognizes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			services := taxonomy.All()
			if jsonOutput {
				return writeJSON(cmd, services)
			}
			rows := make([][]string, 0, len(services))
			for _, s := range services {
				rows = append(rows, []string{string(s.ID), s.DisplayName, s.Color, s.LogoRef})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Color", "Logo"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
