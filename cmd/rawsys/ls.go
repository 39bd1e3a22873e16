package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/desertwitch/rawsys/internal/fs"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLsCmd(app *App) *cobra.Command {
	var (
		recursive bool
		all       bool
		long      bool
		size      string
	)

	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List a directory from its getdents64 stream",
		Long: `List the entries of a directory in the order the kernel returns them.

Example:
  rawsys ls -l --buffer 512 /etc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			w, err := app.NewWalker(size, !all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := 0

			visit := func(dir string, e fs.Entry) error {
				entries++

				name := e.FileName()
				if recursive {
					rel, err := filepath.Rel(root, dir)
					if err != nil {
						return fmt.Errorf("(rawsys-ls) %w", err)
					}
					name = filepath.Join(rel, name)
				}

				if long {
					fmt.Fprintf(out, "%12d %-8s %s\n", e.Ino(), e.Type(), name)
				} else {
					fmt.Fprintln(out, name)
				}

				return nil
			}

			ctx := newCommandContext(cmd)
			if recursive {
				err = w.Walk(ctx, root, visit)
			} else {
				err = w.Dir(ctx, root, visit)
			}

			if err != nil {
				return fmt.Errorf("(rawsys-ls) %w", err)
			}

			slog.Debug("Listed directory.",
				"path", root,
				"entries", humanize.Comma(int64(entries)),
				"buffer", humanize.IBytes(uint64(w.BufSize())), //nolint:gosec
				"grows", w.Grows(),
			)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include the . and .. entries")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show inode numbers and entry types")
	cmd.Flags().StringVar(&size, "buffer", "", "initial read buffer size, e.g. 4KiB")

	return cmd
}
