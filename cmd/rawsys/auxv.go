package main

import (
	"fmt"

	"github.com/desertwitch/rawsys/internal/auxv"
	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAuxvCmd(_ *App) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "auxv",
		Short: "Show the process' auxiliary vector",
		Long: `Show the values the kernel passed in the auxiliary vector at startup.

With --verify the vector is read again through every backend and compared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			v := auxv.Snapshot()
			hw, hw2 := auxv.HWCap()
			phdr, phnum := auxv.ProgramHeaders()

			fmt.Fprintf(out, "source:   %s\n", auxv.Source())
			fmt.Fprintf(out, "pagesize: %s (%d)\n", humanize.IBytes(uint64(v.PageSize)), auxv.PageSize())
			fmt.Fprintf(out, "hwcap:    %#x\n", hw)
			fmt.Fprintf(out, "hwcap2:   %#x\n", hw2)
			fmt.Fprintf(out, "phdr:     %#x (%d headers)\n", phdr, phnum)
			fmt.Fprintf(out, "vdso:     %#x\n", auxv.SysinfoEHdr())
			fmt.Fprintf(out, "execfn:   %s\n", auxv.ExecFn())

			if !verify {
				return nil
			}

			for _, name := range backend.Names() {
				b, err := backend.Select(name)
				if err != nil {
					return fmt.Errorf("(rawsys-auxv) %w", err)
				}

				pairs, err := b.Auxv()
				if err != nil {
					return fmt.Errorf("(rawsys-auxv) %s: %w", name, err)
				}

				got, err := auxv.ParsePairs(pairs)
				if err != nil {
					return fmt.Errorf("(rawsys-auxv) %s: %w", name, err)
				}

				if got != v {
					return fmt.Errorf("(rawsys-auxv) %s: %w", name, ErrVectorMismatch)
				}

				fmt.Fprintf(out, "verified: %s (%d pairs)\n", name, len(pairs))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "re-read the vector through every backend and compare")

	return cmd
}
