//go:build linux && (386 || amd64 || arm || arm64 || loong64 || riscv64 || s390x)

package layout

const (
	// TCGETS2 is _IOR('T', 0x2A, struct termios2) with the asm-generic
	// ioctl encoding.
	TCGETS2 = 0x802c542a

	// TCGETSFillsSpeed reports whether TCGETS already writes the speed
	// fields of the termios structure.
	TCGETSFillsSpeed = false
)
