package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the example programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range programs {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", p.name, p.summary)
			}
			return nil
		},
	}
}
