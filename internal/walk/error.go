package walk

import "errors"

var (
	// ErrSkipDir can be returned by a [VisitFunc] for a directory entry to
	// keep [Walker.Walk] from descending into it.
	ErrSkipDir = errors.New("skip this directory")

	// ErrBufferLimit occurs when a directory entry does not fit even into a
	// buffer of the configured maximum size.
	ErrBufferLimit = errors.New("directory buffer limit reached")
)
