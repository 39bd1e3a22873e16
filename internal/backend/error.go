package backend

import "errors"

// ErrUnknownBackend occurs when a backend is requested by a name that no
// implementation answers to.
var ErrUnknownBackend = errors.New("unknown backend")
