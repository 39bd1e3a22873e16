package layout

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirentRecLen_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		nameLen int
		want    int
	}{
		{"Success_SingleChar", 1, 24},
		{"Success_Dot", 1, 24},
		{"Success_FourChars", 4, 24},
		{"Success_FiveChars", 5, 32},
		{"Success_TwelveChars", 12, 32},
		{"Success_ThirteenChars", 13, 40},
		{"Success_MaxName", 255, 280},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, DirentRecLen(tc.nameLen))
		})
	}
}

func TestAlignOffset_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		addr  uintptr
		align uintptr
		want  int
	}{
		{"Success_Aligned", 0x1000, 4, 0},
		{"Success_OffByOne", 0x1001, 4, 3},
		{"Success_OffByTwo", 0x1002, 4, 2},
		{"Success_OffByThree", 0x1003, 4, 1},
		{"Success_ByteAlign", 0x1003, 1, 0},
		{"Success_EightAlign", 0x1009, 8, 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, AlignOffset(tc.addr, tc.align))
		})
	}
}

func TestAppendDirent_Fields(t *testing.T) {
	t.Parallel()

	buf := AppendDirent(nil, Dirent{Ino: 42, Off: 7, Type: 4, Name: "hello", Pad: 0xAA})

	require.Len(t, buf, 32)
	assert.Equal(t, uint64(42), binary.NativeEndian.Uint64(buf[DirentInoOffset:]))
	assert.Equal(t, uint64(7), binary.NativeEndian.Uint64(buf[DirentOffOffset:]))
	assert.Equal(t, uint16(32), binary.NativeEndian.Uint16(buf[DirentReclenOffset:]))
	assert.Equal(t, byte(4), buf[DirentTypeOffset])
	assert.Equal(t, []byte("hello"), buf[DirentNameOffset:DirentNameOffset+5])
	assert.Equal(t, byte(0), buf[DirentNameOffset+5])

	for _, b := range buf[DirentNameOffset+6:] {
		assert.Equal(t, byte(0xAA), b)
	}
}

func TestAppendDirent_ExplicitReclen(t *testing.T) {
	t.Parallel()

	buf := AppendDirent([]byte{1, 2, 3}, Dirent{Name: "abcde", Reclen: 40})

	require.Len(t, buf, 43)
	assert.Equal(t, []byte{1, 2, 3}, buf[:3])
	assert.Equal(t, uint16(40), binary.NativeEndian.Uint16(buf[3+DirentReclenOffset:]))
}

func TestAppendInotifyEvent_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		ev      InotifyEvent
		wantLen int
	}{
		{"Success_NoName", InotifyEvent{Wd: 1, Mask: 0x100}, InotifyHeaderSize},
		{"Success_KernelPadding", InotifyEvent{Wd: 1, Name: "file"}, InotifyHeaderSize + 16},
		{"Success_ExplicitLen", InotifyEvent{Wd: 1, Name: "abc", Len: 4}, InotifyHeaderSize + 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := AppendInotifyEvent(nil, tc.ev)
			require.Len(t, buf, tc.wantLen)
			assert.Equal(t, uint32(tc.wantLen-InotifyHeaderSize), binary.NativeEndian.Uint32(buf[InotifyLenOffset:])) //nolint:gosec
			assert.Equal(t, tc.ev.Mask, binary.NativeEndian.Uint32(buf[InotifyMaskOffset:]))
		})
	}
}

func TestWordLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2*WordSize, AuxvEntrySize)

	switch WordSize {
	case 8:
		assert.Equal(t, 56, PhdrSize)
	case 4:
		assert.Equal(t, 32, PhdrSize)
	default:
		t.Fatalf("unexpected word size %d", WordSize)
	}
}
