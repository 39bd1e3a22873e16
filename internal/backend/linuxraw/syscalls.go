//go:build linux

// Package linuxraw issues Linux system calls directly by number, with no
// library wrapper in between. Buffers are handed to the kernel as they are
// and results come back as the raw return value or a [unix.Errno].
package linuxraw

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Name identifies this backend.
const Name = "raw"

// Backend is the direct system call implementation.
type Backend struct{}

// New returns a new direct system call [Backend].
func New() *Backend {
	return &Backend{}
}

// Name returns [Name].
func (*Backend) Name() string {
	return Name
}

//nolint:gochecknoglobals
var zero uintptr

// bufPtr returns a pointer the kernel may write len(buf) bytes to. An empty
// slice yields a valid but unusable address, as the kernel still validates
// the argument.
func bufPtr(buf []byte) unsafe.Pointer {
	if len(buf) > 0 {
		return unsafe.Pointer(&buf[0])
	}

	return unsafe.Pointer(&zero)
}

func ret(r uintptr, errno unix.Errno) (int, error) {
	if errno != 0 {
		return 0, errno
	}

	return int(r), nil //nolint:gosec
}

// Getdents issues getdents64(2), filling buf with linux_dirent64 records.
func (*Backend) Getdents(fd int, buf []byte) (int, error) {
	r, _, e := unix.Syscall(unix.SYS_GETDENTS64, uintptr(fd), uintptr(bufPtr(buf)), uintptr(len(buf)))

	return ret(r, e)
}

// Read issues read(2).
func (*Backend) Read(fd int, buf []byte) (int, error) {
	r, _, e := unix.Syscall(unix.SYS_READ, uintptr(fd), uintptr(bufPtr(buf)), uintptr(len(buf)))

	return ret(r, e)
}

// Write issues write(2).
func (*Backend) Write(fd int, buf []byte) (int, error) {
	r, _, e := unix.Syscall(unix.SYS_WRITE, uintptr(fd), uintptr(bufPtr(buf)), uintptr(len(buf)))

	return ret(r, e)
}

// Close issues close(2).
func (*Backend) Close(fd int) error {
	_, _, e := unix.Syscall(unix.SYS_CLOSE, uintptr(fd), 0, 0)
	if e != 0 {
		return e
	}

	return nil
}

// Openat issues openat(2).
func (*Backend) Openat(dirfd int, path string, flags int, mode uint32) (int, error) {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	r, _, e := unix.Syscall6(unix.SYS_OPENAT, uintptr(dirfd), uintptr(unsafe.Pointer(p)), uintptr(flags), uintptr(mode), 0, 0) //nolint:gosec

	return ret(r, e)
}

// InotifyInit issues inotify_init1(2).
func (*Backend) InotifyInit(flags int) (int, error) {
	r, _, e := unix.RawSyscall(unix.SYS_INOTIFY_INIT1, uintptr(flags), 0, 0) //nolint:gosec

	return ret(r, e)
}

// InotifyAddWatch issues inotify_add_watch(2).
func (*Backend) InotifyAddWatch(fd int, path string, mask uint32) (int, error) {
	p, err := unix.BytePtrFromString(path)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	r, _, e := unix.Syscall(unix.SYS_INOTIFY_ADD_WATCH, uintptr(fd), uintptr(unsafe.Pointer(p)), uintptr(mask))

	return ret(r, e)
}

// InotifyRmWatch issues inotify_rm_watch(2).
func (*Backend) InotifyRmWatch(fd int, wd uint32) error {
	_, _, e := unix.RawSyscall(unix.SYS_INOTIFY_RM_WATCH, uintptr(fd), uintptr(wd), 0)
	if e != 0 {
		return e
	}

	return nil
}

// Eventfd issues eventfd2(2).
func (*Backend) Eventfd(initval uint, flags int) (int, error) {
	r, _, e := unix.RawSyscall(unix.SYS_EVENTFD2, uintptr(initval), uintptr(flags), 0) //nolint:gosec

	return ret(r, e)
}

// Pipe issues pipe2(2). The kernel writes two 32-bit descriptors.
func (*Backend) Pipe(flags int) (int, int, error) {
	var fds [2]int32

	_, _, e := unix.RawSyscall(unix.SYS_PIPE2, uintptr(unsafe.Pointer(&fds)), uintptr(flags), 0) //nolint:gosec
	if e != 0 {
		return 0, 0, e
	}

	return int(fds[0]), int(fds[1]), nil
}

// Poll issues ppoll(2). A negative timeout blocks indefinitely.
func (*Backend) Poll(fds []unix.PollFd, timeout time.Duration) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	var p unsafe.Pointer
	if len(fds) > 0 {
		p = unsafe.Pointer(&fds[0])
	}

	r, _, e := unix.Syscall6(unix.SYS_PPOLL, uintptr(p), uintptr(len(fds)), uintptr(unsafe.Pointer(ts)), 0, 0, 0)

	return ret(r, e)
}

// IoctlTermios issues a termios read request such as TCGETS. The structure
// starts zeroed; requests that do not write every field leave the rest at
// zero.
func (*Backend) IoctlTermios(fd int, req uint) (*unix.Termios, error) {
	var t unix.Termios

	_, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(&t)))
	if e != 0 {
		return nil, e
	}

	return &t, nil
}

// IoctlWinsize issues TIOCGWINSZ.
func (*Backend) IoctlWinsize(fd int) (*unix.Winsize, error) {
	var ws unix.Winsize

	_, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.TIOCGWINSZ), uintptr(unsafe.Pointer(&ws)))
	if e != 0 {
		return nil, e
	}

	return &ws, nil
}

// IoctlPgrp issues TIOCGPGRP.
func (*Backend) IoctlPgrp(fd int) (int, error) {
	var pgrp int32

	_, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.TIOCGPGRP), uintptr(unsafe.Pointer(&pgrp)))
	if e != 0 {
		return 0, e
	}

	return int(pgrp), nil
}
