package auxv

import "errors"

var (
	// ErrPhentMismatch occurs when the kernel reports a program header size
	// other than the one this build decodes.
	ErrPhentMismatch = errors.New("AT_PHENT does not match the program header layout")

	// ErrPhentMissing occurs when the vector has no AT_PHENT entry, so the
	// program header layout cannot be confirmed.
	ErrPhentMissing = errors.New("AT_PHENT missing from auxiliary vector")

	// ErrNoTerminator occurs when the environment array or the auxiliary
	// vector in a memory image runs out before its terminator.
	ErrNoTerminator = errors.New("auxiliary vector without terminator")

	// ErrNoSource occurs when none of the sources could supply a vector.
	ErrNoSource = errors.New("no auxiliary vector source available")
)
