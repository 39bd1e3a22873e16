package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/configuration"
	"github.com/desertwitch/rawsys/internal/walk"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// App holds the state shared by all commands: the resolved settings, the
// selected backend and the process-wide helpers started for a command.
type App struct {
	settings configuration.Settings
	backend  backend.Backend
	level    *slog.LevelVar
	logs     *SlogManager

	configFile  string
	backendName string
	logLevel    string
	cpuprofile  string
	memprofile  string

	memObserver   *memoryObserver
	cpuProfiler   *CPUProfiler
	allocProfiler *AllocProfiler
}

// NewApp returns a pointer to a new [App] logging to stderr.
func NewApp() *App {
	app := &App{
		settings:   configuration.DefaultSettings(),
		level:      &slog.LevelVar{},
		logs:       NewSlogManager(),
		configFile: configuration.DefaultConfigFile,
	}

	app.logs.AddHandler(handlerTerminal, newTintHandler(os.Stderr, app.level, false))
	slog.SetDefault(slog.New(app.logs))

	return app
}

// Setup resolves the settings for cmd: the configuration file first, then
// any flags given on the command line.
func (app *App) Setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	settings, err := configuration.LoadSettings(
		configuration.NewHandler(&configuration.GodotenvProvider{}),
		app.configFile,
		flags.Changed("config"),
		backend.Names(),
	)
	if err != nil {
		return fmt.Errorf("(rawsys-setup) %w", err)
	}

	if flags.Changed("backend") {
		settings.Backend = app.backendName
	}

	if flags.Changed("log-level") {
		if err := settings.LogLevel.UnmarshalText([]byte(app.logLevel)); err != nil {
			return fmt.Errorf("(rawsys-setup) %w: --log-level %q", configuration.ErrInvalidSetting, app.logLevel)
		}
	}

	b, err := backend.Select(settings.Backend)
	if err != nil {
		return fmt.Errorf("(rawsys-setup) %w", err)
	}

	app.settings = settings
	app.backend = b
	app.level.Set(settings.LogLevel)

	ctx := newCommandContext(cmd)
	app.memObserver = newMemoryObserver(ctx)
	app.cpuProfiler = NewCPUProfiler(ctx, &app.cpuprofile)
	app.allocProfiler = NewAllocProfiler(ctx, &app.memprofile)

	slog.Debug("Settings established.",
		"backend", b.Name(),
		"dirBuffer", humanize.IBytes(uint64(settings.DirBufSize)),       //nolint:gosec
		"dirMaxBuffer", humanize.IBytes(uint64(settings.DirMaxBufSize)), //nolint:gosec
		"eventBuffer", humanize.IBytes(uint64(settings.EventBufSize)),   //nolint:gosec
	)

	return nil
}

// Stop ends the profilers and the memory observer, writing any profiles.
func (app *App) Stop() {
	if app.allocProfiler != nil {
		app.allocProfiler.Stop()
	}

	if app.cpuProfiler != nil {
		app.cpuProfiler.Stop()
	}

	if app.memObserver != nil {
		app.memObserver.Stop()
	}
}

// NewWalker returns a [walk.Walker] starting at the configured buffer size,
// or at size if given in the form accepted by [configuration.ParseSize].
func (app *App) NewWalker(size string, skipDots bool) (*walk.Walker, error) {
	opts := walk.Options{
		BufSize:    app.settings.DirBufSize,
		MaxBufSize: app.settings.DirMaxBufSize,
		SkipDots:   skipDots,
	}

	if size != "" {
		n, err := configuration.ParseSize(size)
		if err != nil {
			return nil, fmt.Errorf("(rawsys-walker) --buffer: %w", err)
		}
		opts.BufSize = n
	}

	return walk.NewWalker(app.backend, opts), nil
}

// newCommandContext returns the command's context, falling back to a
// background context for commands executed without one.
func newCommandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
