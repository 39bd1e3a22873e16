//go:build linux

package dirhash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertwitch/rawsys/internal/backend"
	"github.com/desertwitch/rawsys/internal/walk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for i := range 120 {
		dir := filepath.Join(root, fmt.Sprintf("d%02d", i%6))
		require.NoError(t, os.MkdirAll(dir, 0o700))
		name := fmt.Sprintf("f%03d-%s", i, strings.Repeat("z", i))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o700))

	return root
}

func TestSum_BufferSizesAndBackendsAgree(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	var sums []string
	for _, name := range backend.Names() {
		b, err := backend.Select(name)
		require.NoError(t, err)

		for _, size := range []int{64, 512, 4096, 1 << 16} {
			res, err := Sum(t.Context(), walk.NewWalker(b, walk.Options{BufSize: size}), root, Options{Recursive: true, WithInodes: true})
			require.NoError(t, err)

			assert.Equal(t, 127, res.Entries)
			assert.Equal(t, 8, res.Dirs)
			sums = append(sums, res.Hex())
		}
	}

	for _, s := range sums[1:] {
		assert.Equal(t, sums[0], s)
	}
}

func TestSum_DetectsChange_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(t *testing.T, root string)
	}{
		{"Success_NewFile", func(t *testing.T, root string) {
			t.Helper()
			require.NoError(t, os.WriteFile(filepath.Join(root, "d00", "new"), nil, 0o600))
		}},
		{"Success_Rename", func(t *testing.T, root string) {
			t.Helper()
			require.NoError(t, os.Rename(filepath.Join(root, "empty"), filepath.Join(root, "renamed")))
		}},
		{"Success_Removal", func(t *testing.T, root string) {
			t.Helper()
			require.NoError(t, os.Remove(filepath.Join(root, "empty")))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := makeTree(t)
			w := walk.NewWalker(backend.Default(), walk.Options{})

			before, err := Sum(t.Context(), w, root, Options{Recursive: true})
			require.NoError(t, err)

			tc.mutate(t, root)

			after, err := Sum(t.Context(), w, root, Options{Recursive: true})
			require.NoError(t, err)
			assert.NotEqual(t, before.Hex(), after.Hex())
		})
	}
}

func TestSum_NonRecursive(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	res, err := Sum(t.Context(), walk.NewWalker(backend.Default(), walk.Options{}), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Entries)
	assert.Equal(t, 1, res.Dirs)
	assert.Len(t, res.Sum, 32)
}

func TestSum_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Sum(t.Context(), walk.NewWalker(backend.Default(), walk.Options{}), filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
}
