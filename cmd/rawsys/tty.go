package main

import (
	"errors"
	"fmt"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/termios"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func newTTYCmd(app *App) *cobra.Command {
	var fdNum int

	cmd := &cobra.Command{
		Use:   "tty",
		Short: "Show the settings of a terminal",
		Long: `Show line speeds, modes, window size and foreground process group of
the terminal open on --fd (standard input by default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fd := backend.BorrowedFd(fdNum)

			if !termios.IsTerminal(app.backend, fd) {
				return fmt.Errorf("(rawsys-tty) fd %d: %w", fdNum, ErrNotATerminal)
			}

			attr, err := termios.GetAttr(app.backend, fd)
			if err != nil {
				return fmt.Errorf("(rawsys-tty) %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "speed:   %d baud in, %d baud out\n", attr.Ispeed, attr.Ospeed)
			fmt.Fprintf(out, "iflag:   %#x\n", attr.Iflag)
			fmt.Fprintf(out, "oflag:   %#x\n", attr.Oflag)
			fmt.Fprintf(out, "cflag:   %#x\n", attr.Cflag)
			fmt.Fprintf(out, "lflag:   %#x (echo=%t, canonical=%t)\n",
				attr.Lflag, attr.Lflag&unix.ECHO != 0, attr.Lflag&unix.ICANON != 0)

			ws, err := termios.GetWinsize(app.backend, fd)
			if err != nil {
				return fmt.Errorf("(rawsys-tty) %w", err)
			}
			fmt.Fprintf(out, "size:    %d rows, %d columns\n", ws.Row, ws.Col)

			pgrp, err := termios.ForegroundProcessGroup(app.backend, fd)
			switch {
			case errors.Is(err, unix.EOPNOTSUPP):
				fmt.Fprintln(out, "pgrp:    none")
			case err != nil:
				return fmt.Errorf("(rawsys-tty) %w", err)
			default:
				fmt.Fprintf(out, "pgrp:    %d\n", pgrp)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&fdNum, "fd", 0, "descriptor of the terminal")

	return cmd
}
