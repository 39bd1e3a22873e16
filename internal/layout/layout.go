// Package layout holds the kernel record layouts that the raw decoders
// consume. Everything here is selected at build time, either as a plain
// constant (the layout is identical on every Linux target) or through a
// build-tagged file (word size, ioctl encoding).
package layout

// linux_dirent64, as written by getdents64(2):
//
//	struct linux_dirent64 {
//	    u64  d_ino;
//	    s64  d_off;
//	    u16  d_reclen;
//	    u8   d_type;
//	    char d_name[];
//	};
const (
	DirentInoOffset    = 0
	DirentOffOffset    = 8
	DirentReclenOffset = 16
	DirentTypeOffset   = 18
	DirentNameOffset   = 19

	// DirentPackedSize is the header size without trailing padding.
	DirentPackedSize = DirentNameOffset

	// DirentAlign is the record alignment. The kernel keeps 8 on 32-bit
	// targets as well, so it is not derived from the word size.
	DirentAlign = 8
)

// struct inotify_event, as returned by read(2) on an inotify descriptor:
//
//	struct inotify_event {
//	    s32  wd;
//	    u32  mask;
//	    u32  cookie;
//	    u32  len;
//	    char name[];
//	};
const (
	InotifyWdOffset     = 0
	InotifyMaskOffset   = 4
	InotifyCookieOffset = 8
	InotifyLenOffset    = 12
	InotifyHeaderSize   = 16
	InotifyAlign        = 4

	// InotifyNamePad is the granularity the kernel pads names to.
	InotifyNamePad = InotifyHeaderSize
)

// AuxvEntrySize is the size of one Elf_auxv_t (tag, value) pair.
const AuxvEntrySize = 2 * WordSize

// DirentRecLen returns the record length the kernel uses for a name of
// nameLen bytes (header, name, NUL, then padding to [DirentAlign]).
func DirentRecLen(nameLen int) int {
	return AlignUp(DirentPackedSize+nameLen+1, DirentAlign)
}

// AlignUp rounds n up to the next multiple of align, which must be a power
// of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// AlignOffset returns how many bytes must be skipped from addr to reach the
// next address that is a multiple of align (a power of two).
func AlignOffset(addr uintptr, align uintptr) int {
	return int((align - addr%align) % align)
}
