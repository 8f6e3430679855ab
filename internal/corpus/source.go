package corpus

import (
	"context"
	"errors"
	"io"
	"io/fs"
)

// Source opens a named resource. Callers must close the returned reader.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// FSSource reads resources from a file system such as os.DirFS or the
// embedded defaults.
type FSSource struct {
	FS fs.FS
}

// NewFSSource creates an FSSource over fsys.
func NewFSSource(fsys fs.FS) (*FSSource, error) {
	if fsys == nil {
		return nil, errors.New("corpus: file system must not be nil")
	}
	return &FSSource{FS: fsys}, nil
}

func (s *FSSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if s == nil || s.FS == nil {
		return nil, errors.New("corpus: source not initialized")
	}
	return s.FS.Open(name)
}
