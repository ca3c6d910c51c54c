// core/fileio/errors.go
package fileio

import (
	"fmt"
	"io/fs"

	"github.com/pkg/errors"
)

var (
	ErrNotDirectory     = errors.New("exists, but is not a directory")
	ErrPositionMismatch = errors.New("stream position mismatch")
	ErrShortBuffer      = errors.New("buffer smaller than requested elements")
	ErrElementSize      = errors.New("element size must be positive")
	ErrShortWrite       = errors.New("write made no progress")
)

// Error is a failed filesystem or stream operation. Every Error is fatal for
// the pipeline stage that hit it; callers decide how to terminate.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IOError reports a failed SafeWrite/SafeRead. Counts are in elements.
type IOError struct {
	Op     string // "write" or "read"
	Desc   string
	Size   int
	Wanted int
	Got    int
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("safe%s: %s failure on %s: %v (wanted %d objects of size %d, got %d)",
		e.Op, e.Op, e.Desc, e.Err, e.Wanted, e.Size, e.Got)
}

func (e *IOError) Unwrap() error { return e.Err }

// osErr drops the *fs.PathError layer so the path is not reported twice.
func osErr(op, path string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &Error{Op: op, Path: path, Err: err}
}
