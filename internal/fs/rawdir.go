//go:build linux

// Package fs reads directories with getdents64(2) into a caller-supplied
// buffer and decodes the linux_dirent64 records in place.
package fs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/layout"
	"github.com/desertwitch/rawsys/internal/stream"
	"golang.org/x/sys/unix"
)

type getdentsProvider interface {
	Getdents(fd int, buf []byte) (int, error)
}

type openatProvider interface {
	Openat(dirfd int, path string, flags int, mode uint32) (int, error)
}

// OpenDir opens path for reading with a [RawDir]. The returned descriptor
// belongs to the caller.
func OpenDir(b openatProvider, path string) (int, error) {
	fd, err := b.Openat(unix.AT_FDCWD, path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("(fs-opendir) failed to open %q: %w", path, err)
	}

	return fd, nil
}

// RawDir iterates the entries of a directory descriptor.
//
// RawDir does not grow its buffer. When [ErrBufferTooSmall] is returned,
// drop the RawDir, grow the buffer and create a new one over the same
// descriptor: the kernel keeps the stream position on the descriptor, so
// the new RawDir continues where the old one stopped, provided nothing
// repositions the descriptor in between.
type RawDir struct {
	getdents getdentsProvider
	fd       int
	cursor   *stream.Cursor
	done     bool
}

// NewRawDir returns a [RawDir] reading fd into buf. The descriptor is
// borrowed and never closed by the RawDir.
func NewRawDir(b getdentsProvider, fd backend.Fd, buf []byte) *RawDir {
	return &RawDir{
		getdents: b,
		fd:       int(fd.Fd()), //nolint:gosec
		cursor:   stream.NewCursor(buf),
	}
}

// Entry is one directory entry. Its name is a view into the buffer of the
// [RawDir] that produced it and stays intact only until that RawDir
// refills; use [Entry.FileName] or [Entry.Clone] to keep it longer.
type Entry struct {
	name []byte
	typ  FileType
	ino  uint64
	next int64
}

// Name returns the entry's name without the NUL terminator, as a view into
// the decoder's buffer.
func (e Entry) Name() []byte {
	return e.name
}

// FileName returns a copy of the entry's name.
func (e Entry) FileName() string {
	return string(e.name)
}

// Type returns the entry's d_type.
func (e Entry) Type() FileType {
	return e.typ
}

// Ino returns the entry's inode number.
func (e Entry) Ino() uint64 {
	return e.ino
}

// NextCookie returns the d_off seek cookie of the entry after this one.
func (e Entry) NextCookie() int64 {
	return e.next
}

// IsDotOrDotDot reports whether the entry is "." or "..".
func (e Entry) IsDotOrDotDot() bool {
	return (len(e.name) == 1 && e.name[0] == '.') ||
		(len(e.name) == 2 && e.name[0] == '.' && e.name[1] == '.') //nolint:mnd
}

// Clone returns a copy of e that no longer refers to the decoder's buffer.
func (e Entry) Clone() Entry {
	e.name = bytes.Clone(e.name)

	return e
}

// Next returns the next entry. At the end of the directory it returns
// [io.EOF], and keeps returning it. A failed refill is returned as is; a
// buffer the kernel cannot fit one record into yields [ErrBufferTooSmall].
func (d *RawDir) Next() (Entry, error) {
	for {
		if !d.cursor.Exhausted() {
			return d.decode()
		}

		if d.done {
			return Entry{}, io.EOF
		}

		d.cursor.Reset()

		n, err := d.cursor.Fill(stream.RefillFunc(d.refill))
		if err != nil {
			return Entry{}, err
		}

		if n == 0 {
			d.done = true

			return Entry{}, io.EOF
		}
	}
}

// All returns an iterator over the remaining entries. Iteration ends at the
// end of the directory or after yielding the first error.
func (d *RawDir) All() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Buffered returns the number of bytes read from the kernel but not yet
// delivered as entries.
func (d *RawDir) Buffered() int {
	return d.cursor.Valid() - d.cursor.Offset()
}

func (d *RawDir) refill(buf []byte) (int, error) {
	n, err := d.getdents.Getdents(d.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EINVAL) {
			return 0, fmt.Errorf("(fs-rawdir) %w (%d bytes): %w", ErrBufferTooSmall, len(buf), err)
		}

		return 0, fmt.Errorf("(fs-rawdir) failed to getdents: %w", err)
	}

	return n, nil
}

// decode reads the record at the cursor. Only bytes inside the record's
// declared length, and inside the valid region, are looked at.
func (d *RawDir) decode() (Entry, error) {
	rec := d.cursor.Remaining()
	if len(rec) < layout.DirentPackedSize {
		return Entry{}, fmt.Errorf("(fs-rawdir) %w: %d trailing bytes", ErrMalformedRecord, len(rec))
	}

	reclen := int(binary.NativeEndian.Uint16(rec[layout.DirentReclenOffset:]))
	if reclen <= layout.DirentPackedSize || reclen > len(rec) {
		return Entry{}, fmt.Errorf("(fs-rawdir) %w: record length %d with %d valid bytes", ErrMalformedRecord, reclen, len(rec))
	}

	name := rec[layout.DirentNameOffset:reclen]

	nameLen := bytes.IndexByte(name, 0)
	if nameLen < 0 {
		return Entry{}, fmt.Errorf("(fs-rawdir) %w: name without terminator", ErrMalformedRecord)
	}

	e := Entry{
		name: name[:nameLen:nameLen],
		typ:  FileType(rec[layout.DirentTypeOffset]),
		ino:  binary.NativeEndian.Uint64(rec[layout.DirentInoOffset:]),
		next: int64(binary.NativeEndian.Uint64(rec[layout.DirentOffOffset:])), //nolint:gosec
	}

	if err := d.cursor.Advance(reclen); err != nil {
		return Entry{}, fmt.Errorf("(fs-rawdir) %w", err)
	}

	return e, nil
}
