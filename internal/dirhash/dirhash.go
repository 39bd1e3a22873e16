//go:build linux

// Package dirhash digests the entry stream of a directory tree with BLAKE3.
//
// The digest covers every entry in the order the kernel delivers it, so
// two runs over an unchanged tree agree no matter which buffer size or
// backend was used to read it.
package dirhash

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/desertwitch/rawsys/internal/fs"
	"github.com/desertwitch/rawsys/internal/walk"
	"github.com/zeebo/blake3"
)

// Result is the digest of a directory tree.
type Result struct {
	Sum     []byte
	Entries int
	Dirs    int
}

// Hex returns the digest in hexadecimal.
func (r Result) Hex() string {
	return hex.EncodeToString(r.Sum)
}

// Options select what goes into the digest.
type Options struct {
	// Recursive descends into subdirectories.
	Recursive bool

	// WithInodes mixes inode numbers into the digest.
	WithInodes bool
}

// Sum digests the tree at root through w. Paths are taken relative to root.
func Sum(ctx context.Context, w *walk.Walker, root string, opts Options) (Result, error) {
	var res Result

	h := blake3.New()

	var rec []byte

	visit := func(dir string, e fs.Entry) error {
		if e.IsDotOrDotDot() {
			if len(e.Name()) == 1 {
				res.Dirs++
			}

			return nil
		}

		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return fmt.Errorf("(dirhash-rel) %w", err)
		}

		rec = append(rec[:0], rel...)
		rec = append(rec, 0)
		rec = append(rec, e.Name()...)
		rec = append(rec, 0, byte(e.Type()))

		if opts.WithInodes {
			rec = binary.LittleEndian.AppendUint64(rec, e.Ino())
		}

		h.Write(rec) //nolint:errcheck
		res.Entries++

		return nil
	}

	var err error
	if opts.Recursive {
		err = w.Walk(ctx, root, visit)
	} else {
		err = w.Dir(ctx, root, visit)
	}

	if err != nil {
		return Result{}, fmt.Errorf("(dirhash) %w", err)
	}

	res.Sum = h.Sum(nil)

	return res, nil
}
