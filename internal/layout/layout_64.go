//go:build amd64 || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x

package layout

import (
	"debug/elf"
	"unsafe"
)

const (
	// WordSize is the size of a machine word (uintptr) in bytes.
	WordSize = 8

	// PhdrSize is the size of one program header, Elf64_Phdr.
	PhdrSize = int(unsafe.Sizeof(elf.Prog64{}))
)
