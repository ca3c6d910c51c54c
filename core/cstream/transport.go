// core/cstream/transport.go
package cstream

import (
	"io"
	"os"
	"os/exec"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"kmerio-core/codec"
	"kmerio-core/fileio"
)

var log = logging.Logger("kmerio/cstream")

// Kind is the transport behind a stream.
type Kind int

const (
	Direct   Kind = iota // plain file
	Pipe                 // pipe to or from a codec process
	Standard             // the process's stdin or stdout, never closed
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Pipe:
		return "pipe"
	case Standard:
		return "standard"
	default:
		return "unknown"
	}
}

type options struct {
	tools  *codec.Tools
	launch codec.Launcher
	stdin  io.Reader
	stdout io.Writer
}

// Option configures Open and Create.
type Option func(*options)

// WithTools replaces the codec commands read from the environment.
func WithTools(t codec.Tools) Option { return func(o *options) { o.tools = &t } }

// WithLauncher replaces process creation for codec pipes.
func WithLauncher(l codec.Launcher) Option { return func(o *options) { o.launch = l } }

// WithStdio rebinds "-" and "" away from os.Stdin/os.Stdout. Nil keeps the default.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		if in != nil {
			o.stdin = in
		}
		if out != nil {
			o.stdout = out
		}
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{launch: codec.Exec, stdin: os.Stdin, stdout: os.Stdout}
	for _, fn := range opts {
		fn(&o)
	}
	if o.tools == nil {
		t, err := codec.ToolsFromEnv()
		if err != nil {
			return o, err
		}
		o.tools = &t
	}
	return o, nil
}

// transport owns exactly one handle and releases it once.
type transport struct {
	name   string
	kind   Kind
	codec  codec.Codec
	file   *os.File  // Direct
	cmd    *exec.Cmd // Pipe
	pipe   io.Closer // our end of the Pipe
	std    any       // Standard: the bound stdin or stdout
	closed bool

	// Reader side: the child is allowed to die of SIGPIPE when we stop early.
	tolerateSIGPIPE bool
}

// Name is the path the stream was opened with ("-" for standard streams).
func (t *transport) Name() string { return t.name }

func (t *transport) Kind() Kind { return t.kind }

func (t *transport) Codec() codec.Codec { return t.codec }

// Seeker exposes the file of a Direct stream for position checks.
func (t *transport) Seeker() (io.Seeker, bool) {
	if t.kind == Direct && t.file != nil {
		return t.file, true
	}
	return nil, false
}

// Seek moves a Direct stream, or a Standard one bound to something seekable
// (stdout redirected to a file). Pipes fail with ESPIPE, which
// fileio.Position reports as NotSeekable.
func (t *transport) Seek(offset int64, whence int) (int64, error) {
	if t.closed {
		return 0, os.ErrClosed
	}
	switch t.kind {
	case Direct:
		return t.file.Seek(offset, whence)
	case Standard:
		if sk, ok := t.std.(io.Seeker); ok {
			return sk.Seek(offset, whence)
		}
	}
	return 0, &fileio.Error{Op: "seek", Path: t.name, Err: unix.ESPIPE}
}

func (t *transport) close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	switch t.kind {
	case Standard:
		return nil
	case Direct:
		if err := t.file.Close(); err != nil {
			return &fileio.Error{Op: "close", Path: t.name, Err: err}
		}
		return nil
	}

	var err error
	if cerr := t.pipe.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		err = multierr.Append(err, &fileio.Error{Op: "close pipe", Path: t.name, Err: cerr})
	}
	werr := t.cmd.Wait()
	log.Debugw("reaped codec", "codec", t.codec.String(), "path", t.name, "pid", t.cmd.Process.Pid, "state", t.cmd.ProcessState.String())
	if werr != nil && !(t.tolerateSIGPIPE && killedBySIGPIPE(werr)) {
		log.Warnf("%s for %s exited abnormally: %v", t.codec, t.name, werr)
		err = multierr.Append(err, &fileio.Error{Op: t.codec.String(), Path: t.name, Err: werr})
	}
	return err
}

func killedBySIGPIPE(err error) bool {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return false
	}
	ws, ok := ee.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == unix.SIGPIPE
}

func startErr(path string, argv []string, err error) error {
	return &fileio.Error{Op: "start " + argv[0], Path: path, Err: err}
}
