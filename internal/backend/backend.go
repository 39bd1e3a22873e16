//go:build linux

// Package backend defines the system call surface the decoders and
// wrappers are written against, and selects between the two
// implementations: [linuxraw], which issues system calls directly, and
// [xsys], which delegates to the typed wrappers of golang.org/x/sys/unix.
//
// Errors returned by either implementation are the kernel's [unix.Errno]
// values, unchanged.
package backend

import (
	"fmt"
	"time"

	"github.com/desertwitch/rawsys/internal/backend/linuxraw"
	"github.com/desertwitch/rawsys/internal/backend/xsys"
	"golang.org/x/sys/unix"
)

const (
	// Raw is the name of the direct system call backend.
	Raw = linuxraw.Name

	// Library is the name of the golang.org/x/sys/unix backend.
	Library = xsys.Name
)

// Fd is a borrowed handle to an open resource. The holder of an [Fd] never
// closes it; its lifetime stays with whoever opened it. [*os.File]
// satisfies this interface.
type Fd interface {
	Fd() uintptr
}

// BorrowedFd is a bare descriptor number used as an [Fd].
type BorrowedFd int

// Fd returns the descriptor number.
func (fd BorrowedFd) Fd() uintptr {
	return uintptr(fd)
}

// Backend is the full set of system calls this module issues.
type Backend interface {
	Name() string

	Getdents(fd int, buf []byte) (int, error)
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
	Close(fd int) error
	Openat(dirfd int, path string, flags int, mode uint32) (int, error)

	InotifyInit(flags int) (int, error)
	InotifyAddWatch(fd int, path string, mask uint32) (int, error)
	InotifyRmWatch(fd int, wd uint32) error

	Eventfd(initval uint, flags int) (int, error)
	Pipe(flags int) (r int, w int, err error)
	Poll(fds []unix.PollFd, timeout time.Duration) (int, error)

	IoctlTermios(fd int, req uint) (*unix.Termios, error)
	IoctlWinsize(fd int) (*unix.Winsize, error)
	IoctlPgrp(fd int) (int, error)

	Auxv() ([][2]uintptr, error)
}

var (
	_ Backend = (*linuxraw.Backend)(nil)
	_ Backend = (*xsys.Backend)(nil)
)

// Default returns the direct system call backend.
//
//nolint:ireturn
func Default() Backend {
	return linuxraw.New()
}

// Select returns the backend registered under name. An empty name selects
// [Default].
//
//nolint:ireturn
func Select(name string) (Backend, error) {
	switch name {
	case "", Raw:
		return linuxraw.New(), nil
	case Library:
		return xsys.New(), nil
	default:
		return nil, fmt.Errorf("(backend) %w: %q", ErrUnknownBackend, name)
	}
}

// Names returns the names of all available backends.
func Names() []string {
	return []string{Raw, Library}
}
