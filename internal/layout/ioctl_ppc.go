//go:build linux && (ppc64 || ppc64le)

package layout

const (
	// TCGETS2 is not needed here; TCGETS is the termios2 request.
	TCGETS2 = 0

	// TCGETSFillsSpeed reports whether TCGETS already writes the speed
	// fields of the termios structure.
	TCGETSFillsSpeed = true
)
