//go:build linux

package inotify

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// CreateFlags are the flags accepted by inotify_init1(2).
type CreateFlags int

const (
	CloseOnExec CreateFlags = unix.IN_CLOEXEC
	NonBlocking CreateFlags = unix.IN_NONBLOCK
)

// WatchFlags are the mask bits accepted by inotify_add_watch(2).
type WatchFlags uint32

const (
	Access       WatchFlags = unix.IN_ACCESS
	Attrib       WatchFlags = unix.IN_ATTRIB
	CloseWrite   WatchFlags = unix.IN_CLOSE_WRITE
	CloseNoWrite WatchFlags = unix.IN_CLOSE_NOWRITE
	Create       WatchFlags = unix.IN_CREATE
	Delete       WatchFlags = unix.IN_DELETE
	DeleteSelf   WatchFlags = unix.IN_DELETE_SELF
	Modify       WatchFlags = unix.IN_MODIFY
	MoveSelf     WatchFlags = unix.IN_MOVE_SELF
	MovedFrom    WatchFlags = unix.IN_MOVED_FROM
	MovedTo      WatchFlags = unix.IN_MOVED_TO
	Open         WatchFlags = unix.IN_OPEN

	Close      WatchFlags = unix.IN_CLOSE
	Move       WatchFlags = unix.IN_MOVE
	AllEvents  WatchFlags = unix.IN_ALL_EVENTS
	DontFollow WatchFlags = unix.IN_DONT_FOLLOW
	ExclUnlink WatchFlags = unix.IN_EXCL_UNLINK
	MaskAdd    WatchFlags = unix.IN_MASK_ADD
	Oneshot    WatchFlags = unix.IN_ONESHOT
	OnlyDir    WatchFlags = unix.IN_ONLYDIR
)

// ReadFlags are the mask bits the kernel reports in an event.
type ReadFlags uint32

const (
	EventAccess       ReadFlags = unix.IN_ACCESS
	EventAttrib       ReadFlags = unix.IN_ATTRIB
	EventCloseWrite   ReadFlags = unix.IN_CLOSE_WRITE
	EventCloseNoWrite ReadFlags = unix.IN_CLOSE_NOWRITE
	EventCreate       ReadFlags = unix.IN_CREATE
	EventDelete       ReadFlags = unix.IN_DELETE
	EventDeleteSelf   ReadFlags = unix.IN_DELETE_SELF
	EventModify       ReadFlags = unix.IN_MODIFY
	EventMoveSelf     ReadFlags = unix.IN_MOVE_SELF
	EventMovedFrom    ReadFlags = unix.IN_MOVED_FROM
	EventMovedTo      ReadFlags = unix.IN_MOVED_TO
	EventOpen         ReadFlags = unix.IN_OPEN

	EventIgnored   ReadFlags = unix.IN_IGNORED
	EventIsDir     ReadFlags = unix.IN_ISDIR
	EventQOverflow ReadFlags = unix.IN_Q_OVERFLOW
	EventUnmount   ReadFlags = unix.IN_UNMOUNT
)

type flagName struct {
	bit  uint32
	name string
}

var eventNames = []flagName{
	{unix.IN_ACCESS, "IN_ACCESS"},
	{unix.IN_MODIFY, "IN_MODIFY"},
	{unix.IN_ATTRIB, "IN_ATTRIB"},
	{unix.IN_CLOSE_WRITE, "IN_CLOSE_WRITE"},
	{unix.IN_CLOSE_NOWRITE, "IN_CLOSE_NOWRITE"},
	{unix.IN_OPEN, "IN_OPEN"},
	{unix.IN_MOVED_FROM, "IN_MOVED_FROM"},
	{unix.IN_MOVED_TO, "IN_MOVED_TO"},
	{unix.IN_CREATE, "IN_CREATE"},
	{unix.IN_DELETE, "IN_DELETE"},
	{unix.IN_DELETE_SELF, "IN_DELETE_SELF"},
	{unix.IN_MOVE_SELF, "IN_MOVE_SELF"},
}

var readNames = append(eventNames[:len(eventNames):len(eventNames)],
	flagName{unix.IN_UNMOUNT, "IN_UNMOUNT"},
	flagName{unix.IN_Q_OVERFLOW, "IN_Q_OVERFLOW"},
	flagName{unix.IN_IGNORED, "IN_IGNORED"},
	flagName{unix.IN_ISDIR, "IN_ISDIR"},
)

var watchNames = append(eventNames[:len(eventNames):len(eventNames)],
	flagName{unix.IN_ONLYDIR, "IN_ONLYDIR"},
	flagName{unix.IN_DONT_FOLLOW, "IN_DONT_FOLLOW"},
	flagName{unix.IN_EXCL_UNLINK, "IN_EXCL_UNLINK"},
	flagName{unix.IN_MASK_ADD, "IN_MASK_ADD"},
	flagName{unix.IN_ONESHOT, "IN_ONESHOT"},
)

var createNames = []flagName{
	{unix.IN_CLOEXEC, "IN_CLOEXEC"},
	{unix.IN_NONBLOCK, "IN_NONBLOCK"},
}

// formatMask renders mask as names joined by "|"; bits without a name are
// appended in hex.
func formatMask(mask uint32, names []flagName) string {
	if mask == 0 {
		return "0"
	}

	parts := make([]string, 0, len(names))
	for _, n := range names {
		if mask&n.bit != 0 {
			parts = append(parts, n.name)
			mask &^= n.bit
		}
	}

	if mask != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(mask), 16))
	}

	return strings.Join(parts, "|")
}

func (f CreateFlags) String() string {
	return formatMask(uint32(f), createNames) //nolint:gosec
}

func (f WatchFlags) String() string {
	return formatMask(uint32(f), watchNames)
}

func (f ReadFlags) String() string {
	return formatMask(uint32(f), readNames)
}

// Has reports whether every bit of other is set in f.
func (f ReadFlags) Has(other ReadFlags) bool {
	return f&other == other
}
