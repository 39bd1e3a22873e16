//go:build linux

// Package termios reads terminal attributes, window sizes and foreground
// process groups through the ioctls of a [backend.Backend].
package termios

import (
	"fmt"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/layout"
	"golang.org/x/sys/unix"
)

type ioctlProvider interface {
	IoctlTermios(fd int, req uint) (*unix.Termios, error)
	IoctlWinsize(fd int) (*unix.Winsize, error)
	IoctlPgrp(fd int) (int, error)
}

// GetAttr returns the attributes of the terminal fd with Ispeed and Ospeed
// filled in.
//
// The plain TCGETS request is used first, as it is the one sandboxes and
// emulation layers reliably allow. It leaves the speed fields unset on most
// targets, so they are decoded from the control modes; only a custom
// (BOTHER) speed needs the TCGETS2 request.
func GetAttr(b ioctlProvider, fd backend.Fd) (*unix.Termios, error) {
	t, err := b.IoctlTermios(int(fd.Fd()), unix.TCGETS) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("(termios-getattr) failed to TCGETS: %w", err)
	}

	if layout.TCGETSFillsSpeed {
		return t, nil
	}

	encodedOut := t.Cflag & unix.CBAUD
	encodedIn := (t.Cflag & unix.CIBAUD) >> unix.IBSHIFT

	if encodedOut == unix.BOTHER || encodedIn == unix.BOTHER {
		if layout.TCGETS2 == 0 {
			return nil, fmt.Errorf("(termios-getattr) %w", ErrCustomSpeed)
		}

		t, err = b.IoctlTermios(int(fd.Fd()), layout.TCGETS2) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("(termios-getattr) failed to TCGETS2: %w", err)
		}

		return t, nil
	}

	if err := inferSpeeds(t, encodedIn, encodedOut); err != nil {
		return nil, fmt.Errorf("(termios-getattr) %w", err)
	}

	return t, nil
}

// inferSpeeds fills the speed fields from the encoded control mode bits.
// An input speed of B0 means "same as output".
func inferSpeeds(t *unix.Termios, encodedIn, encodedOut uint32) error {
	out, err := DecodeSpeed(encodedOut)
	if err != nil {
		return err
	}

	in := out
	if encodedIn != unix.B0 {
		if in, err = DecodeSpeed(encodedIn); err != nil {
			return err
		}
	}

	t.Ispeed = in
	t.Ospeed = out

	return nil
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(b ioctlProvider, fd backend.Fd) bool {
	_, err := b.IoctlTermios(int(fd.Fd()), unix.TCGETS) //nolint:gosec

	return err == nil
}

// GetWinsize returns the window size of the terminal fd.
func GetWinsize(b ioctlProvider, fd backend.Fd) (*unix.Winsize, error) {
	ws, err := b.IoctlWinsize(int(fd.Fd())) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("(termios-winsize) failed to TIOCGWINSZ: %w", err)
	}

	return ws, nil
}

// ForegroundProcessGroup returns the foreground process group of the
// terminal fd. The kernel reports 0 for a pseudo-terminal without one,
// which is returned as [unix.EOPNOTSUPP].
func ForegroundProcessGroup(b ioctlProvider, fd backend.Fd) (int, error) {
	pgrp, err := b.IoctlPgrp(int(fd.Fd())) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("(termios-pgrp) failed to TIOCGPGRP: %w", err)
	}

	if pgrp == 0 {
		return 0, fmt.Errorf("(termios-pgrp) no foreground process group: %w", unix.EOPNOTSUPP)
	}

	return pgrp, nil
}
