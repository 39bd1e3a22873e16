package inotify

import "errors"

var (
	// ErrNoEvent occurs when a read on the inotify descriptor returns zero
	// bytes. An inotify stream does not end, so this is never treated as a
	// graceful end of stream.
	ErrNoEvent = errors.New("inotify read returned no event")

	// ErrMalformedEvent occurs when the bytes in the buffer contradict the
	// inotify_event layout.
	ErrMalformedEvent = errors.New("malformed inotify event")
)
