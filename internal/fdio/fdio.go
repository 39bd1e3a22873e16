//go:build linux

// Package fdio holds small descriptor helpers around pipes and eventfds,
// and a poll loop that makes blocking reads cancellable.
package fdio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/desertwitch/rawsys/internal/backend"
	"golang.org/x/sys/unix"
)

const counterSize = 8

type pipeProvider interface {
	Pipe(flags int) (int, int, error)
}

type eventfdProvider interface {
	Eventfd(initval uint, flags int) (int, error)
}

type readWriteProvider interface {
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
}

type pollProvider interface {
	readWriteProvider
	Poll(fds []unix.PollFd, timeout time.Duration) (int, error)
}

// Pipe creates a pipe and returns its read and write ends.
func Pipe(b pipeProvider, flags int) (int, int, error) {
	r, w, err := b.Pipe(flags)
	if err != nil {
		return -1, -1, fmt.Errorf("(fdio-pipe) failed to create pipe: %w", err)
	}

	return r, w, nil
}

// Eventfd creates an eventfd with the given initial counter.
func Eventfd(b eventfdProvider, initval uint, flags int) (int, error) {
	fd, err := b.Eventfd(initval, flags)
	if err != nil {
		return -1, fmt.Errorf("(fdio-eventfd) failed to create eventfd: %w", err)
	}

	return fd, nil
}

// Notify adds one to the counter of the eventfd efd.
func Notify(b readWriteProvider, efd backend.Fd) error {
	var buf [counterSize]byte
	binary.NativeEndian.PutUint64(buf[:], 1)

	if _, err := b.Write(int(efd.Fd()), buf[:]); err != nil { //nolint:gosec
		return fmt.Errorf("(fdio-notify) failed to write counter: %w", err)
	}

	return nil
}

// Drain reads and resets the counter of the eventfd efd.
func Drain(b readWriteProvider, efd backend.Fd) (uint64, error) {
	var buf [counterSize]byte

	n, err := b.Read(int(efd.Fd()), buf[:]) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("(fdio-drain) failed to read counter: %w", err)
	}

	if n != counterSize {
		return 0, fmt.Errorf("(fdio-drain) short counter read: %d bytes", n)
	}

	return binary.NativeEndian.Uint64(buf[:]), nil
}

// WaitReadable blocks until fd is readable or hung up, or until wake is
// notified. Cancelling ctx notifies wake. When woken, the wake counter is
// drained and ctx's error is returned, or [ErrWoken] if ctx is still live.
func WaitReadable(ctx context.Context, b pollProvider, fd backend.Fd, wake backend.Fd) error {
	notified := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(notified)
		_ = Notify(b, wake)
	})

	// The notification must be written before the caller may close wake.
	defer func() {
		if !stop() {
			<-notified
		}
	}()

	fds := []unix.PollFd{
		{Fd: int32(fd.Fd()), Events: unix.POLLIN},   //nolint:gosec
		{Fd: int32(wake.Fd()), Events: unix.POLLIN}, //nolint:gosec
	}

	for {
		fds[0].Revents = 0
		fds[1].Revents = 0

		if _, err := b.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}

			return fmt.Errorf("(fdio-wait) failed to poll: %w", err)
		}

		if fds[1].Revents&unix.POLLIN != 0 {
			if _, err := Drain(b, wake); err != nil {
				return fmt.Errorf("(fdio-wait) %w", err)
			}

			if err := ctx.Err(); err != nil {
				return err //nolint:wrapcheck
			}

			return ErrWoken
		}

		if fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			return nil
		}

		if (fds[0].Revents|fds[1].Revents)&unix.POLLNVAL != 0 {
			return fmt.Errorf("(fdio-wait) invalid descriptor: %w", unix.EBADF)
		}
	}
}
