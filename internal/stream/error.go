package stream

import "errors"

var (
	// ErrInvalidRefill occurs when a [Refiller] reports more bytes than the
	// buffer it was handed can hold, or a negative count.
	ErrInvalidRefill = errors.New("refill reported an impossible byte count")

	// ErrOverrun occurs when a decoder tries to consume bytes that are not
	// part of the valid region of the buffer.
	ErrOverrun = errors.New("record extends past valid data")
)
