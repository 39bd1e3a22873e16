package main

import "errors"

var (
	// ErrNotATerminal occurs when a terminal command runs without one.
	ErrNotATerminal = errors.New("not a terminal")

	// ErrVectorMismatch occurs when a backend's auxiliary vector differs
	// from the one read at startup.
	ErrVectorMismatch = errors.New("auxiliary vectors differ")
)
