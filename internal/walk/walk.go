//go:build linux

// Package walk lists and traverses directories with [fs.RawDir], growing
// the shared read buffer whenever an entry does not fit.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/fs"
)

const (
	DefaultBufSize    = 32 * 1024
	DefaultMaxBufSize = 4 * 1024 * 1024
)

type dirProvider interface {
	Getdents(fd int, buf []byte) (int, error)
	Openat(dirfd int, path string, flags int, mode uint32) (int, error)
	Close(fd int) error
}

// VisitFunc is called for every entry of the directory dir. The entry's
// name is only valid until the function returns.
type VisitFunc func(dir string, e fs.Entry) error

// Options configure a [Walker].
type Options struct {
	// BufSize is the initial buffer size.
	BufSize int

	// MaxBufSize caps buffer growth; zero means [DefaultMaxBufSize].
	MaxBufSize int

	// SkipDots hides the "." and ".." entries from the [VisitFunc].
	SkipDots bool
}

// Walker reads directories one at a time through a single buffer.
type Walker struct {
	b     dirProvider
	opts  Options
	buf   []byte
	grows int
}

// NewWalker returns a [Walker] reading through b.
func NewWalker(b dirProvider, opts Options) *Walker {
	if opts.BufSize <= 0 {
		opts.BufSize = DefaultBufSize
	}

	if opts.MaxBufSize <= 0 {
		opts.MaxBufSize = DefaultMaxBufSize
	}

	if opts.MaxBufSize < opts.BufSize {
		opts.MaxBufSize = opts.BufSize
	}

	return &Walker{
		b:    b,
		opts: opts,
		buf:  make([]byte, opts.BufSize),
	}
}

// BufSize returns the current buffer size.
func (w *Walker) BufSize() int {
	return len(w.buf)
}

// Grows returns how many times the buffer had to be grown.
func (w *Walker) Grows() int {
	return w.grows
}

// Dir calls fn for every entry of the directory at path, in the order the
// kernel returns them.
func (w *Walker) Dir(ctx context.Context, path string, fn VisitFunc) error {
	fd, err := fs.OpenDir(w.b, path)
	if err != nil {
		return fmt.Errorf("(walk-dir) %w", err)
	}
	defer w.b.Close(fd) //nolint:errcheck

	d := fs.NewRawDir(w.b, backend.BorrowedFd(fd), w.buf)

	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck
		}

		e, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if errors.Is(err, fs.ErrBufferTooSmall) {
			if err := w.grow(path); err != nil {
				return err
			}

			// The descriptor keeps its position, so a fresh decoder over
			// the larger buffer continues with the entry that did not fit.
			d = fs.NewRawDir(w.b, backend.BorrowedFd(fd), w.buf)

			continue
		}

		if err != nil {
			return fmt.Errorf("(walk-dir) failed to read %q: %w", path, err)
		}

		if w.opts.SkipDots && e.IsDotOrDotDot() {
			continue
		}

		if err := fn(path, e); err != nil {
			return err
		}
	}
}

func (w *Walker) grow(path string) error {
	if len(w.buf) >= w.opts.MaxBufSize {
		return fmt.Errorf("(walk-grow) %w: %d bytes for %q", ErrBufferLimit, len(w.buf), path)
	}

	size := min(2*len(w.buf), w.opts.MaxBufSize) //nolint:mnd

	slog.Debug("Growing directory buffer",
		"path", path,
		"from", len(w.buf),
		"to", size,
	)

	w.buf = make([]byte, size)
	w.grows++

	return nil
}

// Walk calls fn for every entry below root, directory by directory. Dot
// entries are never descended into. Subdirectories are visited after their
// parent has been read completely, so only one descriptor is open at a
// time.
func (w *Walker) Walk(ctx context.Context, root string, fn VisitFunc) error {
	pending := []string{root}

	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		var subdirs []string

		err := w.Dir(ctx, dir, func(dir string, e fs.Entry) error {
			err := fn(dir, e)
			if errors.Is(err, ErrSkipDir) {
				return nil
			}

			if err != nil {
				return err
			}

			if e.IsDotOrDotDot() {
				return nil
			}

			isDir, err := EntryIsDir(dir, e)
			if err != nil {
				return err
			}

			if isDir {
				subdirs = append(subdirs, filepath.Join(dir, e.FileName()))
			}

			return nil
		})
		if err != nil {
			return err
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			pending = append(pending, subdirs[i])
		}
	}

	return nil
}

// EntryIsDir reports whether e, an entry of dir, is a directory. Entries
// from filesystems that do not fill in d_type are resolved with lstat(2).
func EntryIsDir(dir string, e fs.Entry) (bool, error) {
	if e.Type() != fs.Unknown {
		return e.Type().IsDir(), nil
	}

	fi, err := os.Lstat(filepath.Join(dir, e.FileName()))
	if err != nil {
		return false, fmt.Errorf("(walk-type) failed to stat: %w", err)
	}

	return fi.IsDir(), nil
}
