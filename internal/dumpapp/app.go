// internal/dumpapp/app.go
package dumpapp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"kmerio-core/cstream"
	"kmerio-core/fileio"
	"kmerio-core/kmer"
	"kmerio/internal/cli"
	"kmerio/internal/cmdutil"
	"kmerio/internal/version"
)

const (
	prog    = "kmerdump"
	summary = "print packed k-mer records as text, or pack text k-mers"

	batch = 4096 // records per SafeRead/SafeWrite round
)

var log = cmdutil.Logger("kmerdump")

// RunIO is Run with an explicit standard input.
func RunIO(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet(prog)
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseDump(fs, argv)
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

	if err := dispatch(opts, stdin, stdout); err != nil {
		return cmdutil.Fatal(stderr, prog, err)
	}
	return cmdutil.ExitOK
}

// Run executes kmerdump against the process's standard input.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunIO(argv, os.Stdin, stdout, stderr)
}

func dispatch(opts cli.DumpOptions, stdin io.Reader, stdout io.Writer) error {
	switch opts.Words {
	case 1:
		return run[[1]uint64](opts, stdin, stdout)
	case 2:
		return run[[2]uint64](opts, stdin, stdout)
	case 3:
		return run[[3]uint64](opts, stdin, stdout)
	case 4:
		return run[[4]uint64](opts, stdin, stdout)
	case 8:
		return run[[8]uint64](opts, stdin, stdout)
	}
	return fmt.Errorf("invalid --words %d", opts.Words)
}

func run[W kmer.Words](opts cli.DumpOptions, stdin io.Reader, stdout io.Writer) (err error) {
	alpha, err := kmer.NewAlphabet(opts.Alphabet)
	if err != nil {
		return err
	}
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

	if opts.Encode {
		err = encode[W](in, out, opts.MerSize, alpha)
	} else {
		err = decode[W](in, out, opts, alpha)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// leWords reads a packed record: little-endian words, word 0 first.
type leWords []byte

func (b leWords) Word(i int) uint64 { return binary.LittleEndian.Uint64(b[8*i:]) }

func recordSize[W kmer.Words]() int {
	var k kmer.Packed[W]
	return 8 * k.Words()
}

func decode[W kmer.Words](in *cstream.Reader, out *cstream.Writer, opts cli.DumpOptions, alpha *kmer.Alphabet) error {
	size := recordSize[W]()
	if err := skip(in, opts.Skip*int64(size)); err != nil {
		return err
	}
	buf := make([]byte, size*batch)
	line := make([]byte, 0, (opts.MerSize+1)*batch)

	var (
		all   []kmer.Packed[W]
		prev  kmer.Packed[W]
		first = true
		total int
	)
	emit := func(ks []kmer.Packed[W]) error {
		line = line[:0]
		for _, k := range ks {
			if opts.Unique && !first && k.Equal(prev) {
				continue
			}
			prev, first = k, false
			line = k.AppendString(line, opts.MerSize, alpha)
			line = append(line, '\n')
		}
		return fileio.SafeWrite(out, line, out.Name(), 1, len(line))
	}

	chunk := make([]kmer.Packed[W], 0, batch)
	for {
		n, err := fileio.SafeRead(in, buf, in.Name(), size, batch)
		if err != nil {
			return err
		}
		chunk = chunk[:0]
		for i := 0; i < n; i++ {
			var k kmer.Packed[W]
			k.Copy(leWords(buf[i*size : (i+1)*size]))
			chunk = append(chunk, k)
		}
		total += n
		if opts.Sort {
			all = append(all, chunk...)
		} else if err := emit(chunk); err != nil {
			return err
		}
		if n < batch {
			break
		}
	}

	if opts.Sort {
		slices.SortFunc(all, kmer.Compare[W])
		for len(all) > 0 {
			m := min(batch, len(all))
			if err := emit(all[:m]); err != nil {
				return err
			}
			all = all[m:]
		}
	}
	log.Infof("decoded %d %d-mers from %s", total, opts.MerSize, in.Name())
	return nil
}

// skip advances in by n bytes: a seek for plain files, a discard otherwise.
func skip(in *cstream.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	pos, err := fileio.Position(in)
	if err != nil {
		return err
	}
	if pos != fileio.NotSeekable {
		return fileio.SeekTo(in, pos+n, io.SeekStart)
	}
	if _, err := io.CopyN(io.Discard, in, n); err != nil && !errors.Is(err, io.EOF) {
		return &fileio.Error{Op: "skip", Path: in.Name(), Err: err}
	}
	return nil
}

func encode[W kmer.Words](in *cstream.Reader, out *cstream.Writer, merSize int, alpha *kmer.Alphabet) error {
	size := recordSize[W]()
	buf := make([]byte, 0, size*batch)
	n, total := 0, 0

	flush := func() error {
		if err := fileio.SafeWrite(out, buf, out.Name(), size, n); err != nil {
			return err
		}
		total += n
		buf, n = buf[:0], 0
		return nil
	}

	sc := bufio.NewScanner(in)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		seq := bytes.TrimSpace(sc.Bytes())
		if len(seq) == 0 {
			continue
		}
		if len(seq) != merSize {
			return fmt.Errorf("%s:%d: k-mer has %d bases, want %d", in.Name(), lineNo, len(seq), merSize)
		}
		k, err := kmer.Parse[W](seq, alpha)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", in.Name(), lineNo, err)
		}
		for i := 0; i < k.Words(); i++ {
			buf = binary.LittleEndian.AppendUint64(buf, k.Word(i))
		}
		if n++; n == batch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", in.Name(), err)
	}
	if err := flush(); err != nil {
		return err
	}
	log.Infof("encoded %d %d-mers into %s", total, merSize, out.Name())
	return nil
}
