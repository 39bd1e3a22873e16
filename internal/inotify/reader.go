//go:build linux

package inotify

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/layout"
	"github.com/desertwitch/rawsys/internal/stream"
)

type readProvider interface {
	Read(fd int, buf []byte) (int, error)
}

// Reader decodes the events read from an inotify descriptor.
//
// Each call to [Reader.Next] either returns an event that is already
// buffered or performs exactly one read(2), which blocks unless the
// descriptor was created with [NonBlocking].
type Reader struct {
	read   readProvider
	fd     int
	cursor *stream.Cursor
}

// NewReader returns a [Reader] reading fd into buf. The start of buf is
// moved forward to the inotify_event alignment; the skipped bytes are never
// used. The descriptor is borrowed and never closed by the Reader.
func NewReader(b readProvider, fd backend.Fd, buf []byte) *Reader {
	skip := layout.AlignOffset(uintptr(unsafe.Pointer(unsafe.SliceData(buf))), layout.InotifyAlign)
	if skip > len(buf) {
		skip = len(buf)
	}

	return &Reader{
		read:   b,
		fd:     int(fd.Fd()), //nolint:gosec
		cursor: stream.NewCursor(buf[skip:]),
	}
}

// Cap returns the usable capacity of the buffer after alignment.
func (r *Reader) Cap() int {
	return r.cursor.Cap()
}

// Buffered returns the number of bytes the last read filled in.
func (r *Reader) Buffered() int {
	return r.cursor.Valid()
}

// IsBufferEmpty reports whether the next call to [Reader.Next] has to read
// from the descriptor.
func (r *Reader) IsBufferEmpty() bool {
	return r.cursor.Exhausted()
}

// Next returns the next event, reading from the descriptor if nothing is
// buffered. A read of zero bytes yields [ErrNoEvent].
func (r *Reader) Next() (Event, error) {
	if r.cursor.Exhausted() {
		n, err := r.cursor.Fill(stream.RefillFunc(r.refill))
		if err != nil {
			return Event{}, err
		}

		if n == 0 {
			return Event{}, fmt.Errorf("(inotify-next) %w", ErrNoEvent)
		}
	}

	return r.decode()
}

func (r *Reader) refill(buf []byte) (int, error) {
	n, err := r.read.Read(r.fd, buf)
	if err != nil {
		return 0, fmt.Errorf("(inotify-read) failed to read: %w", err)
	}

	return n, nil
}

func (r *Reader) decode() (Event, error) {
	rec := r.cursor.Remaining()
	if len(rec) < layout.InotifyHeaderSize {
		return Event{}, fmt.Errorf("(inotify-decode) %w: %d trailing bytes", ErrMalformedEvent, len(rec))
	}

	nameLen := binary.NativeEndian.Uint32(rec[layout.InotifyLenOffset:])
	if uint64(nameLen) > uint64(len(rec)-layout.InotifyHeaderSize) {
		return Event{}, fmt.Errorf("(inotify-decode) %w: name length %d with %d valid bytes", ErrMalformedEvent, nameLen, len(rec))
	}

	size := layout.InotifyHeaderSize + int(nameLen)

	ev := Event{
		wd:     int32(binary.NativeEndian.Uint32(rec[layout.InotifyWdOffset:])), //nolint:gosec
		mask:   ReadFlags(binary.NativeEndian.Uint32(rec[layout.InotifyMaskOffset:])),
		cookie: binary.NativeEndian.Uint32(rec[layout.InotifyCookieOffset:]),
	}

	if nameLen > 0 {
		area := rec[layout.InotifyHeaderSize:size]

		n := bytes.IndexByte(area, 0)
		if n < 0 {
			return Event{}, fmt.Errorf("(inotify-decode) %w: name without terminator", ErrMalformedEvent)
		}

		ev.name = area[:n:n]
		ev.hasName = true
	}

	if err := r.cursor.Advance(size); err != nil {
		return Event{}, fmt.Errorf("(inotify-decode) %w", err)
	}

	return ev, nil
}

// Event is one inotify event. Its name is a view into the buffer of the
// [Reader] that produced it and stays intact only until that Reader reads
// again; use [Event.FileName] or [Event.Clone] to keep it longer.
type Event struct {
	wd      int32
	mask    ReadFlags
	cookie  uint32
	name    []byte
	hasName bool
}

// Wd returns the watch descriptor the event belongs to.
func (e Event) Wd() int32 {
	return e.wd
}

// Events returns the event mask.
func (e Event) Events() ReadFlags {
	return e.mask
}

// Cookie returns the cookie that connects related rename events.
func (e Event) Cookie() uint32 {
	return e.cookie
}

// Name returns the name of the file inside the watched directory, if the
// event carries one.
func (e Event) Name() ([]byte, bool) {
	return e.name, e.hasName
}

// FileName returns a copy of the name, or "" if there is none.
func (e Event) FileName() string {
	return string(e.name)
}

// Clone returns a copy of e that no longer refers to the reader's buffer.
func (e Event) Clone() Event {
	if e.hasName {
		e.name = bytes.Clone(e.name)
	}

	return e
}

func (e Event) String() string {
	if e.hasName {
		return fmt.Sprintf("wd=%d mask=%s cookie=%d name=%q", e.wd, e.mask, e.cookie, e.name)
	}

	return fmt.Sprintf("wd=%d mask=%s cookie=%d", e.wd, e.mask, e.cookie)
}
