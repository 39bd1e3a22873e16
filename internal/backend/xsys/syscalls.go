//go:build linux

// Package xsys implements the system call surface by delegating to the
// typed wrappers of golang.org/x/sys/unix, the platform system library.
package xsys

import (
	"time"

	"golang.org/x/sys/unix"
)

// Name identifies this backend.
const Name = "xsys"

// Backend is the golang.org/x/sys/unix implementation.
type Backend struct{}

// New returns a new golang.org/x/sys/unix [Backend].
func New() *Backend {
	return &Backend{}
}

// Name returns [Name].
func (*Backend) Name() string {
	return Name
}

// Getdents wraps around [unix.Getdents].
func (*Backend) Getdents(fd int, buf []byte) (int, error) {
	return unix.Getdents(fd, buf) //nolint:wrapcheck
}

// Read wraps around [unix.Read].
func (*Backend) Read(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf) //nolint:wrapcheck
}

// Write wraps around [unix.Write].
func (*Backend) Write(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf) //nolint:wrapcheck
}

// Close wraps around [unix.Close].
func (*Backend) Close(fd int) error {
	return unix.Close(fd) //nolint:wrapcheck
}

// Openat wraps around [unix.Openat].
func (*Backend) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	return unix.Openat(dirfd, path, flags, mode) //nolint:wrapcheck
}

// InotifyInit wraps around [unix.InotifyInit1].
func (*Backend) InotifyInit(flags int) (int, error) {
	return unix.InotifyInit1(flags) //nolint:wrapcheck
}

// InotifyAddWatch wraps around [unix.InotifyAddWatch].
func (*Backend) InotifyAddWatch(fd int, path string, mask uint32) (int, error) {
	return unix.InotifyAddWatch(fd, path, mask) //nolint:wrapcheck
}

// InotifyRmWatch wraps around [unix.InotifyRmWatch].
func (*Backend) InotifyRmWatch(fd int, wd uint32) error {
	_, err := unix.InotifyRmWatch(fd, wd)

	return err //nolint:wrapcheck
}

// Eventfd wraps around [unix.Eventfd].
func (*Backend) Eventfd(initval uint, flags int) (int, error) {
	return unix.Eventfd(initval, flags) //nolint:wrapcheck
}

// Pipe wraps around [unix.Pipe2].
func (*Backend) Pipe(flags int) (int, int, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], flags); err != nil {
		return 0, 0, err //nolint:wrapcheck
	}

	return p[0], p[1], nil
}

// Poll wraps around [unix.Poll]. A negative timeout blocks indefinitely.
func (*Backend) Poll(fds []unix.PollFd, timeout time.Duration) (int, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}

	return unix.Poll(fds, ms) //nolint:wrapcheck
}

// IoctlTermios wraps around [unix.IoctlGetTermios].
func (*Backend) IoctlTermios(fd int, req uint) (*unix.Termios, error) {
	return unix.IoctlGetTermios(fd, req) //nolint:wrapcheck
}

// IoctlWinsize wraps around [unix.IoctlGetWinsize].
func (*Backend) IoctlWinsize(fd int) (*unix.Winsize, error) {
	return unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ) //nolint:wrapcheck
}

// IoctlPgrp wraps around [unix.IoctlGetInt] with TIOCGPGRP.
func (*Backend) IoctlPgrp(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP) //nolint:wrapcheck
}

// Auxv wraps around [unix.Auxv], the vector saved by the Go runtime at
// process start.
func (*Backend) Auxv() ([][2]uintptr, error) {
	return unix.Auxv() //nolint:wrapcheck
}
