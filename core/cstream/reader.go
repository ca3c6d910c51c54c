// core/cstream/reader.go
package cstream

import (
	"io"
	"io/fs"
	"os"

	"kmerio-core/codec"
	"kmerio-core/fileio"
)

// Reader reads a possibly-compressed input. Close must be called on every
// path; it reaps the decompressor for pipe transports.
type Reader struct {
	transport
	r io.Reader
}

// Open picks the transport from the name: "", "-" read standard input; .gz,
// .bz2 and .xz read from "<tool> -dc"; anything else is opened directly.
// A named input that does not exist or is not readable is an error.
func Open(path string, opts ...Option) (*Reader, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	if codec.IsStandard(path) {
		return &Reader{transport: transport{name: "-", kind: Standard, std: o.stdin}, r: o.stdin}, nil
	}
	if !fileio.Exists(path, false, false) {
		return nil, &fileio.Error{Op: "open input", Path: path, Err: fs.ErrNotExist}
	}

	c := codec.Detect(path)
	if c == codec.None {
		f, err := os.Open(path)
		if err != nil {
			return nil, &fileio.Error{Op: "open input", Path: path, Err: err}
		}
		return &Reader{transport: transport{name: path, kind: Direct, file: f}, r: f}, nil
	}

	argv := o.tools.DecompressArgv(c, path)
	cmd := o.launch(argv)
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, startErr(path, argv, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, startErr(path, argv, err)
	}
	log.Debugw("spawned decompressor", "argv", cmd.Args, "pid", cmd.Process.Pid)

	return &Reader{
		transport: transport{
			name: path, kind: Pipe, codec: c,
			cmd: cmd, pipe: out, tolerateSIGPIPE: true,
		},
		r: out,
	}, nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, os.ErrClosed
	}
	return r.r.Read(p)
}

// Close releases the transport. Standard input is left open. Closing twice
// is a no-op.
func (r *Reader) Close() error { return r.close() }
