package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlodf/roastetl/roast"
)

// newFieldsCmd creates the "roastetl fields" subcommand.
func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List every exportable field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, c := range roast.DefaultTable().Columns() {
				if _, err := fmt.Fprintln(w, c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
