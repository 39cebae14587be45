// Package opener resolves a source specification (a roast directory, a
// glob or a file URL) into a list of lazily opened byte sources, one per
// roast document.
package opener

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Opener opens one roast document on demand.
type Opener interface {
	// Open returns a reader over the document bytes. Callers close it.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name is the stable identity of the source, used in logs and
	// diagnostics.
	Name() string
}

// File opens a regular file. Nothing is checked until Open is called.
type File struct {
	Path string
}

// NewFile returns a File for the cleaned path.
func NewFile(path string) File {
	return File{Path: filepath.Clean(path)}
}

// Open opens the file. A context that is already done short-circuits
// without touching the filesystem; os.Open itself cannot be interrupted.
func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(f.Path)
}

// Name returns the cleaned path.
func (f File) Name() string { return f.Path }
