// Command rawsys lists, digests and watches directories through raw
// getdents64 and inotify streams, and reports the process' auxiliary
// vector and terminal settings.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/spf13/cobra"
)

const (
	stackTraceBufMax = 1 << 24
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string
)

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen]) //nolint:errcheck
		}
	}()

	sigChan3 := make(chan os.Signal, 1)
	signal.Notify(sigChan3, syscall.SIGUSR2)
	go func() {
		for range sigChan3 {
			runtime.GC()
		}
	}()
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rawsys",
		Short: "Raw directory, inotify and process-bootstrap tooling",
		Long: `rawsys reads kernel record streams (getdents64 directory listings and
inotify events) through fixed caller-owned buffers, using either direct
system calls or the golang.org/x/sys wrappers.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", app.configFile, "configuration file (env format)")
	flags.StringVar(&app.backendName, "backend", backend.Raw, "system call backend: raw or xsys")
	flags.StringVar(&app.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&app.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&app.memprofile, "memprofile", "", "write memory profile to this file")

	rootCmd.AddCommand(
		newLsCmd(app),
		newDirhashCmd(app),
		newWatchCmd(app),
		newAuxvCmd(app),
		newTTYCmd(app),
	)

	return rootCmd
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandlers(cancel)

	app := NewApp()
	defer app.Stop()

	if err := newRootCmd(app).ExecuteContext(ctx); err != nil {
		slog.Error("Command failed.",
			"err", err,
		)
		ExitCode = 1
	}
}
