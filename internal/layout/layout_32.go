//go:build 386 || arm || mips || mipsle

package layout

import (
	"debug/elf"
	"unsafe"
)

const (
	// WordSize is the size of a machine word (uintptr) in bytes.
	WordSize = 4

	// PhdrSize is the size of one program header, Elf32_Phdr.
	PhdrSize = int(unsafe.Sizeof(elf.Prog32{}))
)
