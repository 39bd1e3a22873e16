package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/desertwitch/rawsys/internal/configuration"
	"github.com/desertwitch/rawsys/internal/ui"
	"github.com/desertwitch/rawsys/internal/watch"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		recursive bool
		withUI    bool
		size      string
	)

	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Follow inotify events on directories",
		Long: `Print inotify events for the given paths until interrupted.

With --ui a live view shows the event stream with read statistics;
quitting the view with q keeps printing events to the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := newCommandContext(cmd)

			opts := watch.Options{
				BufSize:   app.settings.EventBufSize,
				Recursive: recursive,
			}

			if size != "" {
				n, err := configuration.ParseSize(size)
				if err != nil {
					return fmt.Errorf("(rawsys-watch) --buffer: %w", err)
				}
				opts.BufSize = n
			}

			if recursive {
				w, err := app.NewWalker("", true)
				if err != nil {
					return err
				}
				opts.Walker = w
			}

			watcher, err := watch.NewWatcher(app.backend, opts)
			if err != nil {
				return fmt.Errorf("(rawsys-watch) %w", err)
			}
			defer watcher.Close() //nolint:errcheck

			for _, path := range args {
				if err := watcher.Add(ctx, path); err != nil {
					return fmt.Errorf("(rawsys-watch) %w", err)
				}
			}

			slog.Info("Watching for events.",
				"paths", args,
				"watches", humanize.Comma(int64(watcher.Watches())),
				"buffer", humanize.IBytes(uint64(opts.BufSize)), //nolint:gosec
			)

			if withUI {
				err = app.runWatchUI(ctx, watcher, cmd.OutOrStdout())
			} else {
				err = watcher.Run(ctx, printRecord(cmd.OutOrStdout()))
			}

			s := watcher.Stats()
			slog.Info("Stopped watching.",
				"events", humanize.Comma(int64(s.Events)), //nolint:gosec
				"reads", humanize.Comma(int64(s.Reads)),   //nolint:gosec
				"read", humanize.IBytes(s.Bytes),
				"overflows", s.Overflows,
			)

			if err != nil {
				return fmt.Errorf("(rawsys-watch) %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "also watch all subdirectories")
	cmd.Flags().BoolVar(&withUI, "ui", false, "show a live view of the events")
	cmd.Flags().StringVar(&size, "buffer", "", "event buffer size, e.g. 64KiB")

	return cmd
}

func printRecord(out io.Writer) func(watch.Record) {
	return func(r watch.Record) {
		fmt.Fprintf(out, "%s %s\n", r.Time.Format(time.TimeOnly), r)
	}
}

// runWatchUI shows the watcher's events in a [ui.Handler] while it runs.
// Logs go to the view instead of the terminal until it is closed, after
// which events are printed to out.
func (app *App) runWatchUI(ctx context.Context, watcher *watch.Watcher, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	uiHandler := ui.NewHandler(ctx, cancel, watcher, app.settings.EventHistory)

	var uiActive atomic.Bool
	uiActive.Store(true)

	app.logs.AddHandler(handlerUI, newTintHandler(uiHandler.LogWriter, app.level, true))
	app.logs.RemoveHandler(handlerTerminal)

	printFn := printRecord(out)
	errChan := make(chan error, 1)

	go func() {
		errChan <- watcher.Run(ctx, func(r watch.Record) {
			if uiActive.Load() {
				uiHandler.Event(r)
			} else {
				printFn(r)
			}
		})
	}()

	uiErr := uiHandler.Launch()
	uiActive.Store(false)

	app.logs.AddHandler(handlerTerminal, newTintHandler(os.Stderr, app.level, false))
	app.logs.RemoveHandler(handlerUI)

	if uiErr != nil && ctx.Err() == nil {
		slog.Error("UI failure: falling back to terminal.",
			"err", uiErr,
		)
	}

	return <-errChan
}
