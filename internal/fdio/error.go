package fdio

import "errors"

// ErrWoken occurs when [WaitReadable] returns because the wake descriptor
// was notified by someone other than its own context.
var ErrWoken = errors.New("woken before descriptor became readable")
