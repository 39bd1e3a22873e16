//go:build linux

// Package auxv holds the facts the kernel hands to every new process in
// its auxiliary vector: page size, hardware capability masks, the location
// of the program headers and the vDSO.
//
// The vector is parsed once, from the package's init function. Go runs
// package initialization on a single goroutine before any importing
// package's code, so every accessor observes the finished state and none
// of them needs locking. A vector that contradicts the program header
// layout this build was compiled for is fatal and panics during init.
package auxv

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/desertwitch/rawsys/internal/backend/linuxraw"
	"github.com/desertwitch/rawsys/internal/backend/xsys"
	"github.com/desertwitch/rawsys/internal/layout"
	"golang.org/x/sys/unix"
)

// Elf auxiliary vector tags, see <linux/auxvec.h> and <elf.h>.
const (
	TagNull        = 0
	TagPhdr        = 3
	TagPhent       = 4
	TagPhnum       = 5
	TagPagesz      = 6
	TagHWCap       = 16
	TagHWCap2      = 26
	TagExecFn      = 31
	TagSysinfoEHdr = 33
)

type pairSource interface {
	Name() string
	Auxv() ([][2]uintptr, error)
}

// Vector is the recognized subset of an auxiliary vector.
type Vector struct {
	PageSize    uintptr
	HWCap       uintptr
	HWCap2      uintptr
	SysinfoEHdr uintptr
	Phdr        uintptr
	Phnum       uintptr
	ExecFn      uintptr
}

var (
	process       Vector
	processExecFn string
	processSource string
)

func init() {
	process, processSource = mustLoad(linuxraw.New(), xsys.New())
	processExecFn = cString(process.ExecFn)
}

// PageSize returns the system page size.
func PageSize() int {
	return int(process.PageSize) //nolint:gosec
}

// HWCap returns the AT_HWCAP and AT_HWCAP2 capability masks.
func HWCap() (uintptr, uintptr) {
	return process.HWCap, process.HWCap2
}

// ProgramHeaders returns the address and count of the executable's program
// headers.
func ProgramHeaders() (uintptr, int) {
	return process.Phdr, int(process.Phnum) //nolint:gosec
}

// SysinfoEHdr returns the address of the vDSO ELF header, or zero.
func SysinfoEHdr() uintptr {
	return process.SysinfoEHdr
}

// ExecFn returns the path the executable was started with.
func ExecFn() string {
	return processExecFn
}

// Snapshot returns a copy of the process' vector.
func Snapshot() Vector {
	return process
}

// Source names the backend the process' vector was read through.
func Source() string {
	return processSource
}

// mustLoad parses the vector of the first source that can supply one. A
// vector that fails to parse is not retried with the next source: all of
// them describe the same process.
func mustLoad(sources ...pairSource) (Vector, string) {
	var errs []error

	for _, src := range sources {
		pairs, err := src.Auxv()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))

			continue
		}

		v, err := ParsePairs(pairs)
		if err != nil {
			panic(fmt.Sprintf("auxv: %s: %v", src.Name(), err))
		}

		return v, src.Name()
	}

	panic(fmt.Sprintf("auxv: %v", errors.Join(append([]error{ErrNoSource}, errs...)...)))
}

// ParsePairs builds a [Vector] from (tag, value) pairs. It stops at the
// first AT_NULL, or at the end of pairs, which is how the Go runtime keeps
// its copy. Unknown tags are skipped.
func ParsePairs(pairs [][2]uintptr) (Vector, error) {
	var v Vector

	phent := false

	for _, p := range pairs {
		tag, val := p[0], p[1]

		switch tag {
		case TagNull:
			return v, checkPhent(phent)
		case TagPagesz:
			v.PageSize = val
		case TagHWCap:
			v.HWCap = val
		case TagHWCap2:
			v.HWCap2 = val
		case TagSysinfoEHdr:
			v.SysinfoEHdr = val
		case TagPhdr:
			v.Phdr = val
		case TagPhnum:
			v.Phnum = val
		case TagExecFn:
			v.ExecFn = val
		case TagPhent:
			if val != uintptr(layout.PhdrSize) {
				return Vector{}, fmt.Errorf("(auxv-parse) %w: kernel %d, layout %d", ErrPhentMismatch, val, layout.PhdrSize)
			}
			phent = true
		}
	}

	return v, checkPhent(phent)
}

func checkPhent(seen bool) error {
	if !seen {
		return fmt.Errorf("(auxv-parse) %w", ErrPhentMissing)
	}

	return nil
}

// ParseEnvBlock parses the auxiliary vector from an image of the initial
// process stack, starting at the environment pointer array: the vector
// begins after the array's NULL terminator and ends at AT_NULL.
func ParseEnvBlock(words []uintptr) (Vector, error) {
	i := 0
	for i < len(words) && words[i] != 0 {
		i++
	}

	if i == len(words) {
		return Vector{}, fmt.Errorf("(auxv-envblock) %w: environment not terminated", ErrNoTerminator)
	}

	aux := words[i+1:]
	pairs := make([][2]uintptr, 0, len(aux)/2) //nolint:mnd

	for j := 0; ; j += 2 {
		if j+1 >= len(aux) {
			return Vector{}, fmt.Errorf("(auxv-envblock) %w: %d words after environment", ErrNoTerminator, len(aux))
		}

		pairs = append(pairs, [2]uintptr{aux[j], aux[j+1]})
		if aux[j] == TagNull {
			break
		}
	}

	return ParsePairs(pairs)
}

// cString reads the NUL-terminated string at addr, which must point into
// memory that stays mapped for the life of the process.
func cString(addr uintptr) string {
	if addr == 0 {
		return ""
	}

	return unix.BytePtrToString((*byte)(unsafe.Pointer(addr))) //nolint:govet
}
