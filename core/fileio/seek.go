// core/fileio/seek.go
package fileio

import (
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NotSeekable is returned by Position for pipes and other streams without
// a file offset, so callers can treat them uniformly.
const NotSeekable int64 = 1 << 42

// Position returns the current offset of s. Values that are not io.Seekers,
// and seekers that fail with ESPIPE or EBADF, report NotSeekable.
func Position(s any) (int64, error) {
	sk, ok := s.(io.Seeker)
	if !ok {
		return NotSeekable, nil
	}
	pos, err := sk.Seek(0, io.SeekCurrent)
	if err != nil {
		if errors.Is(err, unix.ESPIPE) || errors.Is(err, unix.EBADF) || errors.Is(err, os.ErrClosed) {
			return NotSeekable, nil
		}
		return 0, osErr("tell", streamName(s), err)
	}
	return pos, nil
}

// Cursor positions streams. With SkipRedundant set, an absolute seek to the
// offset the stream already holds is not issued.
type Cursor struct {
	SkipRedundant bool
}

// DefaultCursor skips redundant seeks except on targets where skipping has
// been seen to misplace the following write.
func DefaultCursor() Cursor {
	return Cursor{SkipRedundant: skipRedundantDefault(runtime.GOOS)}
}

func skipRedundantDefault(goos string) bool {
	switch goos {
	case "freebsd", "darwin", "ios":
		return false
	}
	return true
}

// SeekTo moves s using DefaultCursor.
func SeekTo(s io.Seeker, offset int64, whence int) error {
	return DefaultCursor().SeekTo(s, offset, whence)
}

// SeekTo moves s to offset relative to whence. After an absolute seek the
// resulting position must equal offset.
func (c Cursor) SeekTo(s io.Seeker, offset int64, whence int) error {
	begin, err := Position(s)
	if err != nil {
		return err
	}
	if c.SkipRedundant && whence == io.SeekStart && begin == offset {
		log.Debugf("seek to %d (whence=%d); already there", offset, whence)
		return nil
	}
	if _, err := s.Seek(offset, whence); err != nil {
		return osErr("seek", streamName(s), err)
	}
	if whence != io.SeekStart {
		return nil
	}
	now, err := Position(s)
	if err != nil {
		return err
	}
	if now != offset {
		return &Error{Op: "seek", Path: streamName(s),
			Err: errors.Wrapf(ErrPositionMismatch, "requested %d, ended at %d", offset, now)}
	}
	log.Debugf("seek to %d from %d", offset, begin)
	return nil
}

func streamName(s any) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
