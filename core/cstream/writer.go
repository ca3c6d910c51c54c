// core/cstream/writer.go
package cstream

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"kmerio-core/codec"
	"kmerio-core/fileio"
)

// Writer writes a possibly-compressed output. Close flushes the compressor
// and waits for it; data is not durable until Close returns nil.
type Writer struct {
	transport
	w io.Writer
}

// Create picks the transport from the name: "", "-" write standard output;
// .gz, .bz2 and .xz pipe into "<tool> -<level>c" with its output redirected
// to path; anything else is created directly. level must lie in 1..9 for
// compressed outputs and is ignored otherwise.
func Create(path string, level int, opts ...Option) (*Writer, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	if codec.IsStandard(path) {
		return &Writer{transport: transport{name: "-", kind: Standard, std: o.stdout}, w: o.stdout}, nil
	}

	c := codec.Detect(path)
	if c == codec.None {
		f, err := os.Create(path)
		if err != nil {
			return nil, &fileio.Error{Op: "create output", Path: path, Err: err}
		}
		return &Writer{transport: transport{name: path, kind: Direct, file: f}, w: f}, nil
	}

	if !codec.ValidLevel(level) {
		return nil, &fileio.Error{Op: "create output", Path: path,
			Err: errors.Errorf("%s level %d outside %d..%d", c, level, codec.MinLevel, codec.MaxLevel)}
	}

	dst, err := os.Create(path)
	if err != nil {
		return nil, &fileio.Error{Op: "create output", Path: path, Err: err}
	}
	// The child holds its own copy of dst after Start.
	defer dst.Close()

	argv := o.tools.CompressArgv(c, level)
	cmd := o.launch(argv)
	cmd.Stdout = dst
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	in, err := cmd.StdinPipe()
	if err != nil {
		_, _ = fileio.RemoveFile(path)
		return nil, startErr(path, argv, err)
	}
	if err := cmd.Start(); err != nil {
		_, _ = fileio.RemoveFile(path)
		return nil, startErr(path, argv, err)
	}
	log.Debugw("spawned compressor", "argv", cmd.Args, "pid", cmd.Process.Pid, "output", path)

	return &Writer{
		transport: transport{name: path, kind: Pipe, codec: c, cmd: cmd, pipe: in},
		w:         in,
	}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.w.Write(p)
}

// Close releases the transport. Standard output is left open. For pipes it
// closes the compressor's input, waits for it to exit and reports a non-zero
// exit status. Closing twice is a no-op.
func (w *Writer) Close() error { return w.close() }
