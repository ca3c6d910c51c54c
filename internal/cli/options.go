// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/units"
	"github.com/spf13/pflag"

	"kmerio-core/codec"
	"kmerio-core/fileio"
	"kmerio-core/kmer"
	"kmerio/internal/version"
)

// MaxBufferBytes caps the record buffer kmercat allocates (RecordSize*Buffer).
const MaxBufferBytes = int(units.GiB)

// CatOptions holds the kmercat flags and arguments.
type CatOptions struct {
	Input    string
	Output   string
	Level    int
	LevelSet bool

	// Transfer shape
	RecordSize int
	Buffer     int

	// Output handling
	Mkdir bool
	Force bool

	Size     bool
	LogLevel string
	Version  bool
}

// DumpOptions holds the kmerdump flags and arguments.
type DumpOptions struct {
	Input  string
	Output string
	Level  int

	Words    int
	MerSize  int
	Alphabet string

	Skip   int64
	Sort   bool
	Unique bool
	Encode bool

	LogLevel string
	Version  bool
}

// PrintUsage writes the help text for a driver.
func PrintUsage(w io.Writer, prog string, fs *pflag.FlagSet, summary, positional string) {
	fmt.Fprintf(w, "%s: %s\n\n", prog, summary)
	fmt.Fprintln(w, "License: MIT")
	fmt.Fprintf(w, "Version: %s\n\n", version.Version)
	fmt.Fprintf(w, "Usage: %s [flags] %s\n\n", prog, positional)
	fmt.Fprintln(w, "Names ending in .gz, .bz2 or .xz go through gzip, bzip2 or xz;")
	fmt.Fprintln(w, "'-' (or nothing) means standard input/output.")
	fmt.Fprintln(w, "\nFlags:")
	fmt.Fprint(w, fs.FlagUsages())
}

// ParseCat registers and parses the kmercat flags.
func ParseCat(fs *pflag.FlagSet, argv []string) (CatOptions, error) {
	var opt CatOptions
	var help bool

	fs.StringVarP(&opt.Output, "output", "o", "-", "output file or '-' for STDOUT")
	fs.IntVarP(&opt.Level, "level", "l", 6, "compression level for .gz/.bz2/.xz outputs (1-9)")
	fs.IntVar(&opt.RecordSize, "record-size", 1, "bytes per record; a trailing partial record is dropped")
	fs.IntVar(&opt.Buffer, "buffer", 0, "records moved per read/write round (0 = one 32 MiB chunk)")
	fs.BoolVar(&opt.Mkdir, "mkdir", false, "create the output's directory if missing")
	fs.BoolVarP(&opt.Force, "force", "f", false, "replace an existing output")
	fs.BoolVar(&opt.Size, "size", false, "print the logical (uncompressed) input size and exit")
	fs.StringVar(&opt.LogLevel, "log-level", "", "log level: debug | info | warn | error")
	fs.BoolVarP(&opt.Version, "version", "v", false, "print version and exit")
	fs.BoolVarP(&help, "help", "h", false, "show this help message")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		return opt, pflag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	in, err := singleInput(fs)
	if err != nil {
		return opt, err
	}
	opt.Input = in
	opt.LevelSet = fs.Changed("level")

	switch {
	case opt.RecordSize <= 0:
		return opt, errors.New("--record-size must be > 0")
	case opt.Buffer < 0:
		return opt, errors.New("--buffer must be >= 0")
	}
	if opt.Buffer == 0 {
		opt.Buffer = max(1, fileio.DefaultChunkBytes/opt.RecordSize)
	}

	switch {
	case opt.Buffer > MaxBufferBytes/opt.RecordSize:
		return opt, fmt.Errorf("--record-size x --buffer exceeds %d bytes", MaxBufferBytes)
	case !codec.ValidLevel(opt.Level):
		return opt, fmt.Errorf("--level must be in %d..%d", codec.MinLevel, codec.MaxLevel)
	case opt.Size && codec.IsStandard(opt.Input):
		return opt, errors.New("--size needs a named input")
	}
	return opt, nil
}

// ParseDump registers and parses the kmerdump flags.
func ParseDump(fs *pflag.FlagSet, argv []string) (DumpOptions, error) {
	var opt DumpOptions
	var help bool

	fs.StringVarP(&opt.Output, "output", "o", "-", "output file or '-' for STDOUT")
	fs.IntVarP(&opt.Level, "level", "l", 6, "compression level for .gz/.bz2/.xz outputs (1-9)")
	fs.IntVarP(&opt.Words, "words", "w", 1, "64-bit words per k-mer: 1 | 2 | 3 | 4 | 8")
	fs.IntVarP(&opt.MerSize, "mer-size", "k", 0, "bases per k-mer (0 = 32 x words)")
	fs.StringVar(&opt.Alphabet, "alphabet", "ACGT", "letters for 2-bit codes 0..3")
	fs.Int64Var(&opt.Skip, "skip", 0, "skip this many leading records (seeks on plain files)")
	fs.BoolVar(&opt.Sort, "sort", false, "sort k-mers before printing")
	fs.BoolVar(&opt.Unique, "unique", false, "drop adjacent duplicate k-mers")
	fs.BoolVar(&opt.Encode, "encode", false, "read one k-mer per line and write packed records")
	fs.StringVar(&opt.LogLevel, "log-level", "", "log level: debug | info | warn | error")
	fs.BoolVarP(&opt.Version, "version", "v", false, "print version and exit")
	fs.BoolVarP(&help, "help", "h", false, "show this help message")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		return opt, pflag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	in, err := singleInput(fs)
	if err != nil {
		return opt, err
	}
	opt.Input = in

	switch opt.Words {
	case 1, 2, 3, 4, 8:
	default:
		return opt, fmt.Errorf("invalid --words %d", opt.Words)
	}
	capacity := opt.Words * kmer.BasesPerWord
	if opt.MerSize == 0 {
		opt.MerSize = capacity
	}
	if opt.MerSize < 1 || opt.MerSize > capacity {
		return opt, fmt.Errorf("--mer-size must be in 1..%d for --words %d", capacity, opt.Words)
	}
	if _, err := kmer.NewAlphabet(opt.Alphabet); err != nil {
		return opt, err
	}
	if !codec.ValidLevel(opt.Level) {
		return opt, fmt.Errorf("--level must be in %d..%d", codec.MinLevel, codec.MaxLevel)
	}
	if opt.Encode && (opt.Sort || opt.Unique || opt.Skip != 0) {
		return opt, errors.New("--sort/--unique/--skip apply to decoding only")
	}
	if opt.Skip < 0 {
		return opt, errors.New("--skip must be >= 0")
	}
	return opt, nil
}

func singleInput(fs *pflag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return "-", nil
	case 1:
		return fs.Arg(0), nil
	default:
		return "", fmt.Errorf("expected one input, got %d", fs.NArg())
	}
}
