//go:build linux

package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const poisonName = "POISON"

// fakeDir is a getdentsProvider serving synthetic records the way the
// kernel does: as many whole records as fit, EINVAL if not even one fits,
// zero once everything was delivered. With poison set, the bytes after the
// delivered records are filled with foreign records, like stale data from a
// previous fill.
type fakeDir struct {
	records [][]byte
	pos     int
	calls   int
	poison  bool
	err     error
}

func (f *fakeDir) Getdents(_ int, buf []byte) (int, error) {
	f.calls++

	if f.err != nil {
		return 0, f.err
	}

	n := 0
	for f.pos < len(f.records) && n+len(f.records[f.pos]) <= len(buf) {
		n += copy(buf[n:], f.records[f.pos])
		f.pos++
	}

	if n == 0 && f.pos < len(f.records) {
		return 0, unix.EINVAL
	}

	if f.poison {
		for off := n; off < len(buf); {
			off += copy(buf[off:], layout.AppendDirent(nil, layout.Dirent{Ino: 666, Name: poisonName}))
		}
	}

	return n, nil
}

type wantEntry struct {
	name string
	ino  uint64
	off  int64
	typ  FileType
}

func newFakeDir(dirents []layout.Dirent) (*fakeDir, []wantEntry) {
	f := &fakeDir{}
	want := make([]wantEntry, 0, len(dirents))

	for _, d := range dirents {
		f.records = append(f.records, layout.AppendDirent(nil, d))
		want = append(want, wantEntry{name: d.Name, ino: d.Ino, off: d.Off, typ: FileType(d.Type)})
	}

	return f, want
}

func variedDirents(count int) []layout.Dirent {
	dirents := make([]layout.Dirent, 0, count)

	for i := range count {
		dirents = append(dirents, layout.Dirent{
			Ino:  uint64(1000 + i), //nolint:gosec
			Off:  int64(i + 1),
			Type: uint8(Directory) + uint8(i%2)*4, //nolint:gosec
			Name: fmt.Sprintf("entry-%d-%s", i, strings.Repeat("x", i%37)),
			Pad:  0xFF,
		})
	}

	return dirents
}

func collect(t *testing.T, d *RawDir) []wantEntry {
	t.Helper()

	var got []wantEntry
	for {
		e, err := d.Next()
		if errors.Is(err, io.EOF) {
			return got
		}
		require.NoError(t, err)
		require.GreaterOrEqual(t, d.Buffered(), 0)

		got = append(got, wantEntry{name: e.FileName(), ino: e.Ino(), off: e.NextCookie(), typ: e.Type()})
	}
}

func TestRawDir_FiftyFortyByteRecords(t *testing.T) {
	t.Parallel()

	dirents := make([]layout.Dirent, 0, 50)
	for i := range 50 {
		dirents = append(dirents, layout.Dirent{
			Ino:    uint64(i + 1), //nolint:gosec
			Off:    int64(i + 1),
			Type:   uint8(RegularFile),
			Name:   fmt.Sprintf("f%04d", i),
			Reclen: 40,
		})
	}

	f, want := newFakeDir(dirents)
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 2048))

	got := collect(t, d)
	require.Len(t, got, 50)
	assert.Equal(t, want, got)
	assert.Equal(t, 2, f.calls, "one fill plus the zero-length end-of-stream fill")
}

func TestRawDir_EndOfStream_Sticky(t *testing.T) {
	t.Parallel()

	f, _ := newFakeDir(variedDirents(3))
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 4096))

	_ = collect(t, d)
	calls := f.calls

	for range 3 {
		_, err := d.Next()
		require.ErrorIs(t, err, io.EOF)
	}
	assert.Equal(t, calls, f.calls, "no further getdents after end of stream")
}

func TestRawDir_EmptyDirectory(t *testing.T) {
	t.Parallel()

	f := &fakeDir{}
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 64))

	_, err := d.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestRawDir_Resumability_Table(t *testing.T) {
	t.Parallel()

	dirents := variedDirents(200)
	_, want := newFakeDir(dirents)

	testCases := []struct {
		name    string
		bufSize int
	}{
		{"Success_Large", 1 << 16},
		{"Success_Medium", 4096},
		{"Success_Half", 2048},
		{"Success_Small", 512},
		{"Success_Tiny", 96},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f, _ := newFakeDir(dirents)
			f.poison = true
			d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, tc.bufSize))

			got := collect(t, d)
			assert.Equal(t, want, got)

			for _, e := range got {
				assert.NotEqual(t, poisonName, e.name)
			}
		})
	}
}

func TestRawDir_NameExtraction_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		entry   string
		padding int
		pad     byte
	}{
		{"Success_NoPadding", "abcd", 0, 0},
		{"Success_ZeroPadding", "abc", 4, 0},
		{"Success_GarbagePadding", "abc", 4, 0xEE},
		{"Success_MaxKernelPadding", "abcdef", 7, 0x41},
		{"Success_WidePadding", "abcde", 15, 0x00},
		{"Success_WideGarbagePadding", "abcde", 15, 'z'},
		{"Success_SingleChar", "a", 3, 'q'},
		{"Success_LongName", strings.Repeat("n", 255), 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reclen := layout.DirentPackedSize + len(tc.entry) + 1 + tc.padding
			first := layout.AppendDirent(nil, layout.Dirent{Ino: 1, Name: tc.entry, Reclen: reclen, Pad: tc.pad})
			next := layout.AppendDirent(nil, layout.Dirent{Ino: 2, Name: "next"})

			f := &fakeDir{records: [][]byte{append(first, next...)}}
			d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 1024))

			e, err := d.Next()
			require.NoError(t, err)
			assert.Equal(t, []byte(tc.entry), e.Name())
			assert.Len(t, e.Name(), len(tc.entry))

			e, err = d.Next()
			require.NoError(t, err)
			assert.Equal(t, "next", e.FileName())
		})
	}
}

func TestRawDir_BufferTooSmall_GrowAndResume(t *testing.T) {
	t.Parallel()

	dirents := variedDirents(40)
	dirents[10].Name = strings.Repeat("L", 200)
	f, want := newFakeDir(dirents)

	var got []wantEntry
	size := 64
	grown := 0

	for {
		d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, size))

		var err error
		for {
			var e Entry
			e, err = d.Next()
			if err != nil {
				break
			}
			got = append(got, wantEntry{name: e.FileName(), ino: e.Ino(), off: e.NextCookie(), typ: e.Type()})
		}

		if errors.Is(err, ErrBufferTooSmall) {
			require.ErrorIs(t, err, unix.EINVAL)
			size *= 2
			grown++

			continue
		}

		require.ErrorIs(t, err, io.EOF)

		break
	}

	assert.Equal(t, want, got, "no entry skipped or duplicated across decoders")
	assert.Positive(t, grown)
}

func TestRawDir_Malformed_Table(t *testing.T) {
	t.Parallel()

	withReclen := func(reclen uint16) []byte {
		rec := layout.AppendDirent(nil, layout.Dirent{Name: "abc"})
		binary.NativeEndian.PutUint16(rec[layout.DirentReclenOffset:], reclen)

		return rec
	}

	noNul := layout.AppendDirent(nil, layout.Dirent{Name: "abc"})
	for i := layout.DirentNameOffset; i < len(noNul); i++ {
		noNul[i] = 'x'
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{"Error_ZeroReclen", withReclen(0)},
		{"Error_ReclenInsideHeader", withReclen(layout.DirentPackedSize)},
		{"Error_ReclenPastValid", withReclen(512)},
		{"Error_NoTerminator", noNul},
		{"Error_TruncatedHeader", make([]byte, 10)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeDir{records: [][]byte{tc.data}}
			d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 256))

			_, err := d.Next()
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestRawDir_RefillError_Propagates(t *testing.T) {
	t.Parallel()

	f := &fakeDir{err: unix.EIO}
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 256))

	_, err := d.Next()
	require.ErrorIs(t, err, unix.EIO)
	require.NotErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, 1, f.calls)
}

func TestRawDir_All_StopsEarly(t *testing.T) {
	t.Parallel()

	f, want := newFakeDir(variedDirents(10))
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 4096))

	var names []string
	for e, err := range d.All() {
		require.NoError(t, err)
		names = append(names, e.FileName())
		if len(names) == 3 {
			break
		}
	}

	require.Len(t, names, 3)
	assert.Equal(t, want[2].name, names[2])

	e, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, want[3].name, e.FileName())
}

func TestRawDir_All_YieldsError(t *testing.T) {
	t.Parallel()

	f := &fakeDir{err: unix.EBADF}
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 256))

	count := 0
	for _, err := range d.All() {
		require.ErrorIs(t, err, unix.EBADF)
		count++
	}
	assert.Equal(t, 1, count)
}

func TestEntry_Clone_SurvivesRefill(t *testing.T) {
	t.Parallel()

	f, _ := newFakeDir([]layout.Dirent{{Ino: 1, Name: "first"}, {Ino: 2, Name: "other"}})
	d := NewRawDir(f, backend.BorrowedFd(3), make([]byte, 24+8))

	e, err := d.Next()
	require.NoError(t, err)

	view := e.Name()
	clone := e.Clone()

	e2, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, "other", e2.FileName())

	assert.Equal(t, "first", string(clone.Name()))
	assert.Equal(t, "other", string(view), "the view aliases the refilled buffer")
}

func TestEntry_IsDotOrDotDot_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want bool
	}{
		{"Success_Dot", ".", true},
		{"Success_DotDot", "..", true},
		{"Success_Hidden", ".hidden", false},
		{"Success_Plain", "a", false},
		{"Success_ThreeDots", "...", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Entry{name: []byte(tc.in)}.IsDotOrDotDot())
		})
	}
}

func TestFileType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dir", Directory.String())
	assert.Equal(t, "file", RegularFile.String())
	assert.Equal(t, "symlink", Symlink.String())
	assert.Equal(t, "invalid", FileType(99).String())
	assert.True(t, Directory.IsDir())
	assert.False(t, RegularFile.IsDir())
}

func TestRawDir_RealDirectory_BothBackends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := []string{".", "..", "sub"}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	for i := range 300 {
		name := fmt.Sprintf("file-%03d-%s", i, strings.Repeat("y", i%100))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
		want = append(want, name)
	}
	sort.Strings(want)

	for _, name := range backend.Names() {
		for _, size := range []int{512, 4096, 1 << 16} {
			t.Run(fmt.Sprintf("%s_%d", name, size), func(t *testing.T) {
				t.Parallel()

				b, err := backend.Select(name)
				require.NoError(t, err)

				fd, err := OpenDir(b, dir)
				require.NoError(t, err)
				defer b.Close(fd) //nolint:errcheck

				var got []string
				types := map[string]FileType{}
				for e, err := range NewRawDir(b, backend.BorrowedFd(fd), make([]byte, size)).All() {
					require.NoError(t, err)
					got = append(got, e.FileName())
					types[e.FileName()] = e.Type()
					assert.NotZero(t, e.Ino())
				}
				sort.Strings(got)

				assert.Equal(t, want, got)
				assert.Equal(t, Directory, types["sub"])
			})
		}
	}
}

func TestRawDir_RealDirectory_TooSmall(t *testing.T) {
	t.Parallel()

	b := backend.Default()

	fd, err := OpenDir(b, t.TempDir())
	require.NoError(t, err)
	defer b.Close(fd) //nolint:errcheck

	_, err = NewRawDir(b, backend.BorrowedFd(fd), make([]byte, 8)).Next()
	require.ErrorIs(t, err, ErrBufferTooSmall)

	e, err := NewRawDir(b, backend.BorrowedFd(fd), make([]byte, 1024)).Next()
	require.NoError(t, err)
	assert.True(t, e.IsDotOrDotDot())
}

func TestOpenDir_NotADirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := OpenDir(backend.Default(), path)
	require.ErrorIs(t, err, unix.ENOTDIR)
}
