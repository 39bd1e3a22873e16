package fs

import "golang.org/x/sys/unix"

// FileType is the d_type of a directory entry.
type FileType uint8

const (
	Unknown         FileType = unix.DT_UNKNOWN
	Fifo            FileType = unix.DT_FIFO
	CharacterDevice FileType = unix.DT_CHR
	Directory       FileType = unix.DT_DIR
	BlockDevice     FileType = unix.DT_BLK
	RegularFile     FileType = unix.DT_REG
	Symlink         FileType = unix.DT_LNK
	Socket          FileType = unix.DT_SOCK
	Whiteout        FileType = 14 // DT_WHT
)

func (t FileType) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Fifo:
		return "fifo"
	case CharacterDevice:
		return "char"
	case Directory:
		return "dir"
	case BlockDevice:
		return "block"
	case RegularFile:
		return "file"
	case Symlink:
		return "symlink"
	case Socket:
		return "socket"
	case Whiteout:
		return "whiteout"
	default:
		return "invalid"
	}
}

// IsDir reports whether t is [Directory].
func (t FileType) IsDir() bool {
	return t == Directory
}
