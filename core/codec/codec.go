// core/codec/codec.go
package codec

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

var log = logging.Logger("kmerio/codec")

// Codec names the external compressor implied by a filename suffix.
type Codec int

const (
	None Codec = iota
	Gzip
	Bzip2
	Xz
)

func (c Codec) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Xz:
		return "xz"
	default:
		return "none"
	}
}

// Suffix returns the filename suffix routed to c ("" for None).
func (c Codec) Suffix() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case Xz:
		return ".xz"
	default:
		return ""
	}
}

// Detect picks the codec from a case-insensitive suffix match. A bare
// suffix (".gz") is not treated as compressed.
func Detect(path string) Codec {
	lower := strings.ToLower(path)
	for _, c := range []Codec{Gzip, Bzip2, Xz} {
		sfx := c.Suffix()
		if len(lower) > len(sfx) && strings.HasSuffix(lower, sfx) {
			return c
		}
	}
	return None
}

// IsStandard reports whether path names the process's standard stream.
func IsStandard(path string) bool { return path == "" || path == "-" }

// MinLevel and MaxLevel bound the compression level accepted by all three tools.
const (
	MinLevel = 1
	MaxLevel = 9
)

// ValidLevel reports whether level is usable with every supported tool.
func ValidLevel(level int) bool { return level >= MinLevel && level <= MaxLevel }

// Tools holds the command (program plus leading arguments) run for each codec.
type Tools struct {
	Gzip  []string
	Bzip2 []string
	Xz    []string
}

// Environment variables overriding the tool commands, e.g. KMERIO_GZIP="pigz -p 4".
const (
	EnvGzip  = "KMERIO_GZIP"
	EnvBzip2 = "KMERIO_BZIP2"
	EnvXz    = "KMERIO_XZ"
)

func DefaultTools() Tools {
	return Tools{
		Gzip:  []string{"gzip"},
		Bzip2: []string{"bzip2"},
		Xz:    []string{"xz"},
	}
}

// ToolsFromEnv starts from DefaultTools and applies any KMERIO_* overrides.
// Each override is parsed as a shell word list.
func ToolsFromEnv() (Tools, error) {
	t := DefaultTools()
	for _, ov := range []struct {
		codec Codec
		env   string
		dst   *[]string
	}{
		{Gzip, EnvGzip, &t.Gzip},
		{Bzip2, EnvBzip2, &t.Bzip2},
		{Xz, EnvXz, &t.Xz},
	} {
		raw, ok := os.LookupEnv(ov.env)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		words, err := shellwords.Parse(raw)
		if err != nil {
			return Tools{}, errors.Wrapf(err, "parse $%s", ov.env)
		}
		if len(words) == 0 {
			return Tools{}, errors.Errorf("$%s names no command", ov.env)
		}
		log.Debugf("%s overridden by $%s: %q", ov.codec, ov.env, words)
		*ov.dst = words
	}
	return t, nil
}

func (t Tools) command(c Codec) []string {
	var cmd []string
	switch c {
	case Gzip:
		cmd = t.Gzip
	case Bzip2:
		cmd = t.Bzip2
	case Xz:
		cmd = t.Xz
	}
	return append([]string(nil), cmd...)
}

// DecompressArgv is "<tool> -dc <path>".
func (t Tools) DecompressArgv(c Codec, path string) []string {
	return append(t.command(c), "-dc", path)
}

// CompressArgv is "<tool> -<level>c"; the caller redirects stdout to the target.
func (t Tools) CompressArgv(c Codec, level int) []string {
	return append(t.command(c), fmt.Sprintf("-%dc", level))
}

// ListArgv is "gzip -l <path>", used to recover the uncompressed size.
func (t Tools) ListArgv(path string) []string {
	return append(t.command(Gzip), "-l", path)
}

// Launcher turns an argv into an unstarted command. Tests replace it to
// observe or redirect codec invocations.
type Launcher func(argv []string) *exec.Cmd

// Exec is the default Launcher.
func Exec(argv []string) *exec.Cmd {
	return exec.Command(argv[0], argv[1:]...)
}
