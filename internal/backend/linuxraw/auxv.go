//go:build linux

package linuxraw

import (
	"encoding/binary"
	"fmt"

	"github.com/desertwitch/rawsys/internal/layout"
	"golang.org/x/sys/unix"
)

const (
	procAuxvPath = "/proc/self/auxv"

	// auxvReadChunk covers the vector of every current kernel in one read.
	auxvReadChunk = 64 * layout.AuxvEntrySize
)

// Auxv reads the kernel's copy of this process' auxiliary vector from
// /proc/self/auxv with raw openat/read/close calls and splits it into
// (tag, value) word pairs, terminator included.
func (b *Backend) Auxv() ([][2]uintptr, error) {
	fd, err := b.Openat(unix.AT_FDCWD, procAuxvPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("(raw-auxv) failed to open: %w", err)
	}
	defer b.Close(fd) //nolint:errcheck

	data := make([]byte, 0, auxvReadChunk)
	for {
		if len(data) == cap(data) {
			data = append(data, make([]byte, auxvReadChunk)...)[:len(data)]
		}

		n, err := b.Read(fd, data[len(data):cap(data)])
		if err != nil {
			if err == unix.EINTR { //nolint:errorlint
				continue
			}

			return nil, fmt.Errorf("(raw-auxv) failed to read: %w", err)
		}
		if n == 0 {
			break
		}
		data = data[:len(data)+n]
	}

	return DecodeAuxv(data), nil
}

// DecodeAuxv splits raw Elf_auxv_t bytes, in native byte order, into word
// pairs. A trailing partial entry is dropped.
func DecodeAuxv(data []byte) [][2]uintptr {
	pairs := make([][2]uintptr, 0, len(data)/layout.AuxvEntrySize)

	for off := 0; off+layout.AuxvEntrySize <= len(data); off += layout.AuxvEntrySize {
		pairs = append(pairs, [2]uintptr{
			readWord(data[off:]),
			readWord(data[off+layout.WordSize:]),
		})
	}

	return pairs
}

func readWord(b []byte) uintptr {
	if layout.WordSize == 8 { //nolint:mnd
		return uintptr(binary.NativeEndian.Uint64(b))
	}

	return uintptr(binary.NativeEndian.Uint32(b))
}
