// core/fileio/chunked.go
package fileio

import (
	"io"

	"github.com/alecthomas/units"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DefaultChunkBytes caps a single read or write. Large transfers are split so
// no single call has to be atomic or uninterruptible.
const DefaultChunkBytes = int(32 * units.MiB)

// maxZeroReads bounds consecutive (0, nil) reads before giving up on a chunk.
const maxZeroReads = 100

// ChunkedIO moves arrays of fixed-size elements in bounded chunks.
type ChunkedIO struct {
	// ChunkBytes is the per-call cap; zero means DefaultChunkBytes.
	ChunkBytes int
	// VerifyPositions checks that a write on a seekable stream ends exactly
	// size*n bytes past where it started.
	VerifyPositions bool
}

// SafeWrite writes n elements of size bytes from buf with default settings.
func SafeWrite(w io.Writer, buf []byte, desc string, size, n int) error {
	return ChunkedIO{}.Write(w, buf, desc, size, n)
}

// SafeRead reads up to n elements of size bytes into buf with default settings.
func SafeRead(r io.Reader, buf []byte, desc string, size, n int) (int, error) {
	return ChunkedIO{}.Read(r, buf, desc, size, n)
}

func (c ChunkedIO) perChunk(size int) int {
	cb := c.ChunkBytes
	if cb <= 0 {
		cb = DefaultChunkBytes
	}
	if e := cb / size; e > 0 {
		return e
	}
	return 1
}

func checkArgs(op, desc string, buf []byte, size, n int) error {
	switch {
	case size <= 0:
		return &IOError{Op: op, Desc: desc, Size: size, Wanted: n, Err: ErrElementSize}
	case n < 0 || n > len(buf)/size:
		return &IOError{Op: op, Desc: desc, Size: size, Wanted: n, Err: ErrShortBuffer}
	}
	return nil
}

// Write writes all n elements or fails. Any error from the underlying writer,
// EINTR included, ends the write: a torn record is never left silently.
func (c ChunkedIO) Write(w io.Writer, buf []byte, desc string, size, n int) error {
	if err := checkArgs("write", desc, buf, size, n); err != nil {
		return err
	}

	expected := int64(-1)
	if c.VerifyPositions {
		if pos, err := Position(w); err == nil && pos != NotSeekable {
			expected = pos + int64(size)*int64(n)
		}
	}

	per := c.perChunk(size)
	position := 0
	for position < n {
		todo := min(per, n-position)
		wrote, err := w.Write(buf[position*size : (position+todo)*size])
		if err == nil && wrote == 0 {
			err = ErrShortWrite
		}
		if err != nil {
			return &IOError{Op: "write", Desc: desc, Size: size, Wanted: todo, Got: wrote / size, Err: err}
		}
		position += wrote / size
	}

	if expected >= 0 {
		now, err := Position(w)
		if err != nil {
			return err
		}
		if now != expected {
			return &IOError{Op: "write", Desc: desc, Size: size, Wanted: n, Got: n,
				Err: errors.Wrapf(ErrPositionMismatch, "expected %d, ended up at %d", expected, now)}
		}
	}
	log.Debugf("safeWrite %s: %s", desc, humanize.IBytes(uint64(size)*uint64(n)))
	return nil
}

// Read reads up to n elements and returns how many whole elements arrived.
// End of input or a chunk that transfers nothing stops the loop and is not an
// error. EINTR is retried. Other errors are returned only when the failing
// chunk moved no data; otherwise the short count stands.
func (c ChunkedIO) Read(r io.Reader, buf []byte, desc string, size, n int) (int, error) {
	if err := checkArgs("read", desc, buf, size, n); err != nil {
		return 0, err
	}

	per := c.perChunk(size)
	position := 0
	for position < n {
		todo := min(per, n-position)
		got, err := readFull(r, buf[position*size:(position+todo)*size])
		position += got / size

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrNoProgress):
		case got > 0:
			log.Debugf("safeRead %s: stopping after %d objects: %v", desc, position, err)
		default:
			return position, &IOError{Op: "read", Desc: desc, Size: size, Wanted: todo, Got: 0, Err: err}
		}
		break
	}
	return position, nil
}

// readFull is io.ReadFull with EINTR retried and a bound on empty reads.
func readFull(r io.Reader, p []byte) (int, error) {
	n, zeros := 0, 0
	for n < len(p) {
		m, err := r.Read(p[n:])
		n += m
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, io.EOF) && n > 0 {
				return n, io.ErrUnexpectedEOF
			}
			return n, err
		}
		if m == 0 {
			if zeros++; zeros >= maxZeroReads {
				return n, io.ErrNoProgress
			}
			continue
		}
		zeros = 0
	}
	return n, nil
}
