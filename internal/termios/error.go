package termios

import "errors"

var (
	// ErrUnknownSpeed occurs when a control mode field encodes a speed
	// that is not in the B* table.
	ErrUnknownSpeed = errors.New("unknown encoded line speed")

	// ErrCustomSpeed occurs when a terminal uses a custom (BOTHER) speed on
	// a target without a TCGETS2 request to read it.
	ErrCustomSpeed = errors.New("custom line speed not readable on this target")
)
