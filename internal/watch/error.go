package watch

import "errors"

// ErrClosed occurs when a [Watcher] is used after [Watcher.Close].
var ErrClosed = errors.New("watcher is closed")
