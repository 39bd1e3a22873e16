//go:build linux

// Package inotify creates inotify instances, manages their watches and
// decodes the event stream read from them.
package inotify

import (
	"fmt"

	"github.com/desertwitch/rawsys/internal/backend"
)

type initProvider interface {
	InotifyInit(flags int) (int, error)
}

type watchProvider interface {
	InotifyAddWatch(fd int, path string, mask uint32) (int, error)
	InotifyRmWatch(fd int, wd uint32) error
}

// Init creates a new inotify instance. The returned descriptor belongs to
// the caller.
func Init(b initProvider, flags CreateFlags) (int, error) {
	fd, err := b.InotifyInit(int(flags))
	if err != nil {
		return -1, fmt.Errorf("(inotify-init) failed to init with %s: %w", flags, err)
	}

	return fd, nil
}

// AddWatch adds or modifies the watch on path and returns its watch
// descriptor.
func AddWatch(b watchProvider, fd backend.Fd, path string, mask WatchFlags) (int32, error) {
	wd, err := b.InotifyAddWatch(int(fd.Fd()), path, uint32(mask)) //nolint:gosec
	if err != nil {
		return -1, fmt.Errorf("(inotify-addwatch) failed to watch %q for %s: %w", path, mask, err)
	}

	return int32(wd), nil //nolint:gosec
}

// RemoveWatch removes the watch wd. The kernel queues an [EventIgnored]
// event for it.
func RemoveWatch(b watchProvider, fd backend.Fd, wd int32) error {
	if err := b.InotifyRmWatch(int(fd.Fd()), uint32(wd)); err != nil { //nolint:gosec
		return fmt.Errorf("(inotify-rmwatch) failed to remove watch %d: %w", wd, err)
	}

	return nil
}
