// Package stream implements the buffer-refill contract shared by the raw
// record decoders. A [Cursor] tracks which part of a caller-supplied buffer
// holds kernel-written bytes and how much of it has been consumed; a
// [Refiller] replenishes the buffer with one blocking read.
package stream

import "fmt"

// Refiller fills buf with fresh bytes from its source and reports how many
// leading bytes of buf are now valid. Zero means the source had nothing to
// give; what that implies is up to the decoder.
type Refiller interface {
	Refill(buf []byte) (int, error)
}

// RefillFunc adapts a plain function to a [Refiller].
type RefillFunc func(buf []byte) (int, error)

// Refill calls f(buf).
func (f RefillFunc) Refill(buf []byte) (int, error) {
	return f(buf)
}

// Cursor is the bookkeeping over a caller-owned buffer. The invariant
// 0 <= offset <= valid <= len(buf) holds after every method returns.
type Cursor struct {
	buf    []byte
	valid  int
	offset int
}

// NewCursor returns a [Cursor] over buf with nothing valid yet.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Cap returns the usable capacity of the underlying buffer.
func (c *Cursor) Cap() int {
	return len(c.buf)
}

// Offset returns the number of valid bytes already consumed.
func (c *Cursor) Offset() int {
	return c.offset
}

// Valid returns the number of bytes known to hold complete records.
func (c *Cursor) Valid() int {
	return c.valid
}

// Exhausted reports whether every valid byte has been consumed.
func (c *Cursor) Exhausted() bool {
	return c.offset >= c.valid
}

// Remaining returns the valid but not yet consumed bytes. The slice aliases
// the buffer and is only meaningful until the next [Cursor.Fill].
func (c *Cursor) Remaining() []byte {
	return c.buf[c.offset:c.valid]
}

// Advance consumes n bytes. It refuses to move past the valid region.
func (c *Cursor) Advance(n int) error {
	if n < 0 || n > c.valid-c.offset {
		return fmt.Errorf("(stream-advance) %w: need %d, have %d", ErrOverrun, n, c.valid-c.offset)
	}
	c.offset += n

	return nil
}

// Reset forgets all buffered bytes.
func (c *Cursor) Reset() {
	c.valid = 0
	c.offset = 0
}

// Fill asks r for fresh bytes. On error the cursor is left untouched so the
// caller can still inspect what was buffered. A zero count is returned as is
// and also leaves the cursor untouched. A positive count replaces the valid
// region and rewinds the offset.
func (c *Cursor) Fill(r Refiller) (int, error) {
	n, err := r.Refill(c.buf)
	if err != nil {
		return 0, err
	}

	if n < 0 || n > len(c.buf) {
		return 0, fmt.Errorf("(stream-fill) %w: %d for a %d byte buffer", ErrInvalidRefill, n, len(c.buf))
	}

	if n > 0 {
		c.valid = n
		c.offset = 0
	}

	return n, nil
}
