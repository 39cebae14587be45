package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/carlodf/roastetl/config"
	"github.com/carlodf/roastetl/extract"
	"github.com/carlodf/roastetl/roast"
	"github.com/carlodf/roastetl/sink"
)

// options holds the flags shared by every command.
type options struct {
	configPath  string
	dir         string
	fields      string
	timezone    string
	workers     int
	skipInvalid bool
	verbose     bool
	quiet       bool
}

// newRootCmd creates the roastetl command. Run without a subcommand it
// writes the selected fields of every roast in the roast directory as CSV.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "roastetl [output.csv]",
		Short: "Export roast logs as CSV",
		Long: "Extract a flat table from the JSON roast logs in the roast directory.\n" +
			"Rows are written to the named file, or to stdout.\n\n" +
			"Valid fields:\n  " + strings.Join(roast.DefaultTable().Columns(), "\n  "),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			var out string
			if len(args) == 1 {
				out = args[0]
			}
			return s.exportCSV(cmd.Context(), cmd.OutOrStdout(), out)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.fields, "fields", "f", "", "comma-separated fields to export (default "+strings.Join(config.DefaultFields, ",")+")")
	f.StringVar(&opts.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	f.StringVar(&opts.dir, "dir", "", "roast directory, glob or file URL")
	f.StringVar(&opts.timezone, "timezone", "", "zone for the date and time fields (Local, UTC or an IANA name)")
	f.IntVar(&opts.workers, "workers", 0, "documents built in parallel")
	f.BoolVar(&opts.skipInvalid, "skip-invalid", false, "skip files that are not roast logs")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "always print loading lines")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print diagnostics")

	cmd.AddCommand(
		newFieldsCmd(),
		newSQLiteCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

// session is a validated configuration ready to run extractions.
type session struct {
	cfg    config.Config
	driver *extract.Driver
	log    *log.Logger
	quiet  bool
}

// session loads the config and applies the flags the user set.
func (o *options) session(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.RoastDir = o.dir
	}
	if flags.Changed("fields") {
		cfg.Fields = config.SplitFields(o.fields)
	}
	if flags.Changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("skip-invalid") {
		cfg.SkipInvalid = o.skipInvalid
	}

	table := roast.DefaultTable()
	if err := cfg.Validate(table); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	stderr := cmd.ErrOrStderr()
	logger := log.New(stderr, "", 0)
	d := &extract.Driver{
		Builder:     roast.NewBuilder(table, roast.WithLocation(loc)),
		Workers:     cfg.Workers,
		SkipInvalid: cfg.SkipInvalid,
		OnSkip: func(name string, err error) {
			logger.Printf("skipping %s: %v", name, err)
		},
	}
	if o.verbose || isTerminal(stderr) {
		d.OnLoad = func(name string) { logger.Printf("loading %s", name) }
	}
	return &session{cfg: cfg, driver: d, log: logger, quiet: o.quiet}, nil
}

// extract runs the driver over the roast directory and reports the
// diagnostics of every document in source order.
func (s *session) extract(ctx context.Context) ([]roast.Record, []roast.Diagnostic, error) {
	results, err := s.driver.Run(ctx, s.cfg.RoastDir)
	if err != nil {
		return nil, nil, err
	}
	recs := make([]roast.Record, len(results))
	var diags []roast.Diagnostic
	for i, r := range results {
		recs[i] = r.Record
		diags = append(diags, r.Diagnostics...)
	}
	if !s.quiet {
		for _, d := range diags {
			s.log.Println(d.String())
		}
	}
	return recs, diags, nil
}

// exportCSV writes the configured fields to path, or to stdout when path
// is empty.
func (s *session) exportCSV(ctx context.Context, stdout io.Writer, path string) (err error) {
	recs, _, err := s.extract(ctx)
	if err != nil {
		return err
	}
	w := stdout
	if path != "" {
		var f *os.File
		if f, err = os.Create(path); err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		w = f
	}
	return sink.WriteCSV(w, s.cfg.Fields, recs)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
