package layout

import "encoding/binary"

// Dirent describes one linux_dirent64 record for [AppendDirent].
type Dirent struct {
	Ino  uint64
	Off  int64
	Type uint8
	Name string

	// Reclen overrides the record length; zero means [DirentRecLen].
	Reclen int

	// Pad is written into every byte after the name's NUL terminator.
	Pad byte
}

// AppendDirent appends the kernel encoding of d to dst.
func AppendDirent(dst []byte, d Dirent) []byte {
	reclen := d.Reclen
	if reclen == 0 {
		reclen = DirentRecLen(len(d.Name))
	}

	start := len(dst)
	dst = append(dst, make([]byte, reclen)...)
	rec := dst[start:]

	binary.NativeEndian.PutUint64(rec[DirentInoOffset:], d.Ino)
	binary.NativeEndian.PutUint64(rec[DirentOffOffset:], uint64(d.Off)) //nolint:gosec
	binary.NativeEndian.PutUint16(rec[DirentReclenOffset:], uint16(reclen))
	rec[DirentTypeOffset] = d.Type

	n := copy(rec[DirentNameOffset:], d.Name)
	for i := DirentNameOffset + n + 1; i < reclen; i++ {
		rec[i] = d.Pad
	}

	return dst
}

// InotifyEvent describes one inotify_event record for [AppendInotifyEvent].
type InotifyEvent struct {
	Wd     int32
	Mask   uint32
	Cookie uint32
	Name   string

	// Len overrides the trailing length field. Zero with a non-empty name
	// means the kernel's rounding to [InotifyNamePad].
	Len int
}

// AppendInotifyEvent appends the kernel encoding of ev to dst. The trailing
// name area is NUL-filled past the name.
func AppendInotifyEvent(dst []byte, ev InotifyEvent) []byte {
	nameLen := ev.Len
	if nameLen == 0 && ev.Name != "" {
		nameLen = AlignUp(len(ev.Name)+1, InotifyNamePad)
	}

	start := len(dst)
	dst = append(dst, make([]byte, InotifyHeaderSize+nameLen)...)
	rec := dst[start:]

	binary.NativeEndian.PutUint32(rec[InotifyWdOffset:], uint32(ev.Wd)) //nolint:gosec
	binary.NativeEndian.PutUint32(rec[InotifyMaskOffset:], ev.Mask)
	binary.NativeEndian.PutUint32(rec[InotifyCookieOffset:], ev.Cookie)
	binary.NativeEndian.PutUint32(rec[InotifyLenOffset:], uint32(nameLen)) //nolint:gosec
	copy(rec[InotifyHeaderSize:], ev.Name)

	return dst
}
