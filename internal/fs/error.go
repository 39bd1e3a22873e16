package fs

import "errors"

var (
	// ErrBufferTooSmall occurs when the kernel cannot fit even one directory
	// entry into the supplied buffer. The caller should grow the buffer and
	// construct a new [RawDir] over the same descriptor.
	ErrBufferTooSmall = errors.New("buffer too small for a directory entry")

	// ErrMalformedRecord occurs when a record in the buffer contradicts the
	// linux_dirent64 layout, e.g. a record length that is zero, shorter than
	// the header or reaching past the valid bytes, or a name without NUL.
	ErrMalformedRecord = errors.New("malformed directory entry")
)
