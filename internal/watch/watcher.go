//go:build linux

// Package watch follows directory trees with inotify, decoding events with
// an [inotify.Reader] and waiting on the descriptor with a cancellable poll.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/fdio"
	"github.com/desertwitch/rawsys/internal/fs"
	"github.com/desertwitch/rawsys/internal/inotify"
	"github.com/desertwitch/rawsys/internal/walk"
	"golang.org/x/sys/unix"
)

const (
	DefaultBufSize = 64 * 1024
	DefaultMask    = inotify.Create | inotify.Delete | inotify.Modify | inotify.Move |
		inotify.CloseWrite | inotify.Attrib | inotify.DeleteSelf | inotify.MoveSelf
)

// Record is a decoded event together with the path of the directory it
// was reported for.
type Record struct {
	Dir   string
	Event inotify.Event
	Time  time.Time
}

// Path returns the directory joined with the event's file name.
func (r Record) Path() string {
	if _, ok := r.Event.Name(); ok {
		return filepath.Join(r.Dir, r.Event.FileName())
	}

	return r.Dir
}

// Kind returns the event mask without the IN_ISDIR bit.
func (r Record) Kind() string {
	return (r.Event.Events() &^ inotify.EventIsDir).String()
}

// Overflow reports whether the kernel dropped events before this one.
func (r Record) Overflow() bool {
	return r.Event.Events().Has(inotify.EventQOverflow)
}

// IsDir reports whether the event's subject is a directory.
func (r Record) IsDir() bool {
	return r.Event.Events().Has(inotify.EventIsDir)
}

func (r Record) String() string {
	if r.Overflow() {
		return r.Kind()
	}

	kind := r.Kind()
	if r.IsDir() {
		kind += " (dir)"
	}

	return fmt.Sprintf("%s %s", kind, r.Path())
}

// Options configure a [Watcher].
type Options struct {
	// BufSize is the size of the event buffer.
	BufSize int

	// Mask selects the events; zero means [DefaultMask].
	Mask inotify.WatchFlags

	// Recursive also watches every directory below an added path,
	// including directories created while the watcher runs.
	Recursive bool

	// Walker lists the directories of recursive watches.
	Walker *walk.Walker
}

// Watcher owns an inotify descriptor and the watches placed on it.
type Watcher struct {
	sync.Mutex

	b      backend.Backend
	opts   Options
	fd     int
	wake   int
	reader *inotify.Reader
	wds    map[int32]string
	walkMu sync.Mutex
	stats  *statistics
	closed atomic.Bool
}

// NewWatcher creates the inotify descriptor and the eventfd that wakes a
// waiting [Watcher.Run].
func NewWatcher(b backend.Backend, opts Options) (*Watcher, error) {
	if opts.BufSize <= 0 {
		opts.BufSize = DefaultBufSize
	}

	if opts.Mask == 0 {
		opts.Mask = DefaultMask
	}

	if opts.Recursive && opts.Walker == nil {
		opts.Walker = walk.NewWalker(b, walk.Options{SkipDots: true})
	}

	fd, err := inotify.Init(b, inotify.CloseOnExec|inotify.NonBlocking)
	if err != nil {
		return nil, fmt.Errorf("(watch-new) %w", err)
	}

	wake, err := fdio.Eventfd(b, 0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = b.Close(fd)

		return nil, fmt.Errorf("(watch-new) %w", err)
	}

	return &Watcher{
		b:      b,
		opts:   opts,
		fd:     fd,
		wake:   wake,
		reader: inotify.NewReader(b, backend.BorrowedFd(fd), make([]byte, opts.BufSize)),
		wds:    make(map[int32]string),
		stats:  newStatistics(),
	}, nil
}

// Add watches path, and with [Options.Recursive] every directory below it.
func (w *Watcher) Add(ctx context.Context, path string) error {
	if w.closed.Load() {
		return ErrClosed
	}

	if err := w.addOne(path); err != nil {
		return err
	}

	if !w.opts.Recursive {
		return nil
	}

	w.walkMu.Lock()
	defer w.walkMu.Unlock()

	if err := w.opts.Walker.Walk(ctx, path, func(dir string, e fs.Entry) error {
		isDir, err := walk.EntryIsDir(dir, e)
		if err != nil || !isDir {
			return nil //nolint:nilerr
		}

		sub := filepath.Join(dir, e.FileName())
		if err := w.addOne(sub); err != nil {
			if errors.Is(err, unix.ENOENT) {
				return walk.ErrSkipDir
			}

			return err
		}

		return nil
	}); err != nil {
		return fmt.Errorf("(watch-add) failed to walk %q: %w", path, err)
	}

	return nil
}

func (w *Watcher) addOne(path string) error {
	wd, err := inotify.AddWatch(w.b, backend.BorrowedFd(w.fd), path, w.opts.Mask)
	if err != nil {
		return fmt.Errorf("(watch-add) %w", err)
	}

	w.Lock()
	w.wds[wd] = path
	w.Unlock()

	return nil
}

// Remove drops the watch placed on path. Its IN_IGNORED event still
// arrives through [Watcher.Run].
func (w *Watcher) Remove(path string) error {
	w.Lock()
	wd, ok := int32(-1), false

	for k, v := range w.wds {
		if v == path {
			wd, ok = k, true

			break
		}
	}
	w.Unlock()

	if !ok {
		return fmt.Errorf("(watch-remove) %q is not watched: %w", path, unix.EINVAL)
	}

	if err := inotify.RemoveWatch(w.b, backend.BorrowedFd(w.fd), wd); err != nil {
		return fmt.Errorf("(watch-remove) %w", err)
	}

	return nil
}

// Run delivers events to fn until ctx is cancelled, which is not an error.
// The record is only valid until fn returns unless fn keeps a copy.
func (w *Watcher) Run(ctx context.Context, fn func(Record)) error {
	if w.closed.Load() {
		return ErrClosed
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		refill := w.reader.IsBufferEmpty()
		if refill {
			err := fdio.WaitReadable(ctx, w.b, backend.BorrowedFd(w.fd), backend.BorrowedFd(w.wake))
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, fdio.ErrWoken) {
				continue
			}

			if err != nil {
				return fmt.Errorf("(watch-run) %w", err)
			}
		}

		ev, err := w.reader.Next()
		if errors.Is(err, unix.EAGAIN) {
			continue
		}

		if err != nil {
			return fmt.Errorf("(watch-run) failed to read events: %w", err)
		}

		if refill {
			w.stats.read(w.reader.Buffered())
		}

		rec := w.resolve(ctx, ev)
		w.stats.record(rec)
		fn(rec)
	}
}

// resolve maps the event's watch descriptor to its directory and keeps the
// descriptor table in step with the kernel.
func (w *Watcher) resolve(ctx context.Context, ev inotify.Event) Record {
	w.Lock()
	dir := w.wds[ev.Wd()]
	if ev.Events().Has(inotify.EventIgnored) {
		delete(w.wds, ev.Wd())
	}
	w.Unlock()

	rec := Record{Dir: dir, Event: ev, Time: time.Now()}

	if w.opts.Recursive && rec.IsDir() && (ev.Events().Has(inotify.EventCreate) || ev.Events().Has(inotify.EventMovedTo)) {
		if err := w.Add(ctx, rec.Path()); err != nil && !errors.Is(err, unix.ENOENT) {
			slog.Warn("Failed to watch new directory",
				"path", rec.Path(),
				"err", err,
			)
		}
	}

	return rec
}

// Watches returns the number of active watches.
func (w *Watcher) Watches() int {
	w.Lock()
	defer w.Unlock()

	return len(w.wds)
}

// Stats returns a copy of the watcher's counters.
func (w *Watcher) Stats() Stats {
	s := w.stats.snapshot()
	s.Backend = w.b.Name()
	s.Watches = w.Watches()
	s.BufferCap = w.reader.Cap()

	return s
}

// Close releases both descriptors. [Watcher.Run] must have returned.
func (w *Watcher) Close() error {
	if w.closed.Swap(true) {
		return ErrClosed
	}

	return errors.Join(w.b.Close(w.fd), w.b.Close(w.wake)) //nolint:wrapcheck
}
