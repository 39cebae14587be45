package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "roastetl watch" subcommand.
func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <output.csv>",
		Short: "Rewrite the CSV export whenever the roast directory changes",
		Long: "Export once, then watch the roast directory and export again after\n" +
			"each burst of changes. Stops on interrupt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			out, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			if !roastDirExists(s.cfg.RoastDir) {
				return fmt.Errorf("watch: %s is not a directory", s.cfg.RoastDir)
			}
			dir, err := filepath.Abs(s.cfg.RoastDir)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			ctx := cmd.Context()
			export := func() error {
				if err := s.exportCSV(ctx, nil, out); err != nil {
					return err
				}
				s.log.Printf("wrote %s", out)
				return nil
			}
			if err := export(); err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: create watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return watchLoop(ctx, watcher, debounce, s.log, relevantChange(out), export)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "quiet period before re-exporting")

	return cmd
}

// watchLoop calls run once the watcher has been quiet for debounce after
// a relevant event. Failed runs are logged and the loop keeps going. It
// returns nil when ctx is cancelled.
func watchLoop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	debounce time.Duration,
	logger *log.Logger,
	relevant func(name string) bool,
	run func() error,
) error {
	timer := newDebounceTimer()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if relevant != nil && !relevant(event.Name) {
				continue
			}
			resetDebounceTimer(timer, debounce)

		case <-timer.C:
			if err := run(); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Printf("export failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("fsnotify: watcher error: %v", err)
		}
	}
}

// relevantChange reports whether an event for name should trigger an
// export. Dot-files and the absolute output path out are ignored, however
// the event path is spelled.
func relevantChange(out string) func(name string) bool {
	return func(name string) bool {
		if strings.HasPrefix(filepath.Base(name), ".") {
			return false
		}
		abs, err := filepath.Abs(name)
		if err != nil {
			return true
		}
		return abs != out
	}
}

func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

func resetDebounceTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

// roastDirExists reports whether dir can be watched.
func roastDirExists(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}
