// internal/app/app.go
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"kmerio-core/codec"
	"kmerio-core/cstream"
	"kmerio-core/fileio"
	"kmerio/internal/cli"
	"kmerio/internal/cmdutil"
	"kmerio/internal/version"
)

const (
	prog    = "kmercat"
	summary = "copy fixed-size records between plain and compressed files"
)

var log = cmdutil.Logger("kmercat")

// RunIO is Run with an explicit standard input.
func RunIO(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet(prog)
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseCat(fs, argv)
	if err != nil {
		code := cmdutil.ExitOK
		if !errors.Is(err, pflag.ErrHelp) {
			_, _ = fmt.Fprintln(stderr, err)
			code = cmdutil.ExitUsage
		}
		cli.PrintUsage(outw, prog, fs, summary, "[input]")
		if e := outw.Flush(); e != nil {
			return cmdutil.Fatal(stderr, prog, e)
		}
		return code
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", prog, version.Version)
		if e := outw.Flush(); e != nil {
			return cmdutil.Fatal(stderr, prog, e)
		}
		return cmdutil.ExitOK
	}
	if err := cmdutil.SetupLogging(opts.LogLevel); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return cmdutil.ExitUsage
	}

	if opts.Size {
		size, err := fileio.Size(opts.Input)
		if err != nil {
			return cmdutil.Fatal(stderr, prog, err)
		}
		_, _ = fmt.Fprintf(outw, "%d\t%s\t%s\n", size, humanize.IBytes(uint64(size)), opts.Input)
		if e := outw.Flush(); e != nil {
			return cmdutil.Fatal(stderr, prog, e)
		}
		return cmdutil.ExitOK
	}

	// Records go straight to stdout, not through outw.
	if err := prepareOutput(opts); err != nil {
		return cmdutil.Fatal(stderr, prog, err)
	}
	if err := copyRecords(opts, stdin, stdout, stderr); err != nil {
		return cmdutil.Fatal(stderr, prog, err)
	}
	return cmdutil.ExitOK
}

// Run executes kmercat against the process's standard input.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunIO(argv, os.Stdin, stdout, stderr)
}

// prepareOutput creates the output directory and clears a previous output
// when asked to.
func prepareOutput(opts cli.CatOptions) error {
	if codec.IsStandard(opts.Output) {
		return nil
	}
	if opts.Mkdir {
		if created, err := fileio.EnsureDir(filepath.Dir(opts.Output)); err != nil {
			return err
		} else if created {
			log.Infof("created %s", filepath.Dir(opts.Output))
		}
	}
	if !fileio.Exists(opts.Output, false, false) {
		return nil
	}
	if !opts.Force {
		return fmt.Errorf("output %s exists (use --force to replace it)", opts.Output)
	}
	_, err := fileio.RemoveFile(opts.Output)
	return err
}

func copyRecords(opts cli.CatOptions, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	stdio := cstream.WithStdio(stdin, stdout)

	in, err := cstream.Open(opts.Input, stdio)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	out, err := cstream.Create(opts.Output, opts.Level, stdio)
	if err != nil {
		return err
	}
	if out.Kind() != cstream.Pipe && opts.LevelSet {
		cmdutil.Warnf(stderr, false, "--level ignored for uncompressed output %s", out.Name())
	}

	// Files we created are checked to end exactly where each write should.
	// A redirected stdout may be in append mode, where offsets jump on the
	// first write, so it is left unchecked.
	cio := fileio.ChunkedIO{VerifyPositions: out.Kind() == cstream.Direct}
	size, per := opts.RecordSize, opts.Buffer
	buf := make([]byte, size*per)
	total := 0
	for {
		n, rerr := fileio.SafeRead(in, buf, in.Name(), size, per)
		if rerr != nil {
			_ = out.Close()
			return rerr
		}
		if n > 0 {
			if werr := cio.Write(out, buf, out.Name(), size, n); werr != nil {
				_ = out.Close()
				return werr
			}
			total += n
		}
		if n < per {
			break
		}
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Infof("copied %d records (%s) from %s [%s] to %s [%s]",
		total, humanize.IBytes(uint64(total)*uint64(size)),
		in.Name(), in.Kind(), out.Name(), out.Kind())
	return nil
}
