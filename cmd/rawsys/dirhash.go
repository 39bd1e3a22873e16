package main

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/rawsys/internal/dirhash"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDirhashCmd(app *App) *cobra.Command {
	var (
		opts dirhash.Options
		size string
	)

	cmd := &cobra.Command{
		Use:   "dirhash [dir]",
		Short: "Digest a directory's entry stream with BLAKE3",
		Long: `Digest the names and types of a directory's entries, in kernel order.

Runs over an unchanged tree agree regardless of --buffer and --backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			w, err := app.NewWalker(size, false)
			if err != nil {
				return err
			}

			res, err := dirhash.Sum(newCommandContext(cmd), w, root, opts)
			if err != nil {
				return fmt.Errorf("(rawsys-dirhash) %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", res.Hex(), root)

			slog.Info("Digested directory.",
				"path", root,
				"entries", humanize.Comma(int64(res.Entries)),
				"dirs", humanize.Comma(int64(res.Dirs)),
				"buffer", humanize.IBytes(uint64(w.BufSize())), //nolint:gosec
				"grows", w.Grows(),
			)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&opts.WithInodes, "inodes", false, "include inode numbers in the digest")
	cmd.Flags().StringVar(&size, "buffer", "", "initial read buffer size, e.g. 4KiB")

	return cmd
}
