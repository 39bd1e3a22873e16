//go:build linux && (mips || mipsle || mips64 || mips64le)

package layout

const (
	// TCGETS2 is left unset; custom speeds are reported as unsupported.
	TCGETS2 = 0

	// TCGETSFillsSpeed reports whether TCGETS already writes the speed
	// fields of the termios structure.
	TCGETSFillsSpeed = false
)
