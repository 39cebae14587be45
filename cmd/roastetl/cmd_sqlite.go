package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlodf/roastetl/sink"
)

// newSQLiteCmd creates the "roastetl sqlite" subcommand. Every run adds
// one export with all fields of every roast, whatever --fields selects.
func newSQLiteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sqlite [database]",
		Short: "Store every field of every roast in a SQLite database",
		Long: "Extract all fields of the roast directory into a SQLite database.\n" +
			"Each run is recorded as a new export together with its diagnostics.\n" +
			"The database defaults to the configured one (roasts.db).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			path := s.cfg.Database
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			recs, diags, err := s.extract(ctx)
			if err != nil {
				return err
			}
			store, err := sink.OpenSQLite(ctx, path, s.driver.Builder.Table())
			if err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			defer store.Close()

			id, err := store.Save(ctx, s.cfg.RoastDir, recs, diags)
			if err != nil {
				return fmt.Errorf("sqlite: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export %s: %d documents, %d diagnostics\n", id, len(recs), len(diags))
			return nil
		},
	}
}
