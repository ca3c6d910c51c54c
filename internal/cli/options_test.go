// internal/cli/options_test.go
package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"kmerio-core/fileio"
)

func mustCat(t *testing.T, args ...string) CatOptions {
	t.Helper()
	opts, err := ParseCat(NewFlagSet("kmercat"), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func mustDump(t *testing.T, args ...string) DumpOptions {
	t.Helper()
	opts, err := ParseDump(NewFlagSet("kmerdump"), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestCatDefaults(t *testing.T) {
	o := mustCat(t)
	if o.Input != "-" || o.Output != "-" || o.Level != 6 || o.RecordSize != 1 {
		t.Errorf("bad defaults %+v", o)
	}
}

func TestCatFlags(t *testing.T) {
	o := mustCat(t, "-o", "out.xz", "-l", "9", "--record-size", "16", "--mkdir", "-f", "reads.bin.gz")
	if o.Input != "reads.bin.gz" || o.Output != "out.xz" || o.Level != 9 || o.RecordSize != 16 {
		t.Errorf("bad parse %+v", o)
	}
	if !o.Mkdir || !o.Force {
		t.Errorf("bool flags not set: %+v", o)
	}
}

func TestCatErrors(t *testing.T) {
	for _, args := range [][]string{
		{"a", "b"},
		{"--record-size", "0", "a"},
		{"--buffer", "-1", "a"},
		{"--level", "0", "a"},
		{"--size"},
		{"--bogus"},
	} {
		if _, err := ParseCat(NewFlagSet("kmercat"), args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestCatBufferBounds(t *testing.T) {
	o := mustCat(t, "a")
	if o.Buffer != fileio.DefaultChunkBytes {
		t.Errorf("default buffer = %d, want %d", o.Buffer, fileio.DefaultChunkBytes)
	}
	o = mustCat(t, "--record-size", "16777216", "a")
	if o.Buffer != 2 {
		t.Errorf("buffer for 16 MiB records = %d, want 2", o.Buffer)
	}
	o = mustCat(t, "--record-size", "100000000", "a")
	if o.Buffer != 1 {
		t.Errorf("buffer for records over one chunk = %d, want 1", o.Buffer)
	}
	for _, args := range [][]string{
		{"--record-size", "4096", "--buffer", "1048576", "a"},
		{"--record-size", "4611686018427387904", "--buffer", "4", "a"},
		{"--record-size", "4611686018427387904", "a"},
	} {
		if _, err := ParseCat(NewFlagSet("kmercat"), args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestCatHelpAndVersion(t *testing.T) {
	_, err := ParseCat(NewFlagSet("kmercat"), []string{"-h"})
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("want ErrHelp, got %v", err)
	}
	o := mustCat(t, "--version", "a", "b")
	if !o.Version {
		t.Fatalf("version not set")
	}
}

func TestDumpDefaults(t *testing.T) {
	o := mustDump(t, "-w", "2", "kmers.bin")
	if o.MerSize != 64 || o.Alphabet != "ACGT" || o.Input != "kmers.bin" {
		t.Errorf("bad defaults %+v", o)
	}
}

func TestDumpErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-w", "5"},
		{"-w", "1", "-k", "33"},
		{"-k", "-1"},
		{"--alphabet", "ACG"},
		{"--alphabet", "AACG"},
		{"--encode", "--sort"},
		{"--encode", "--skip", "2"},
		{"--skip", "-1"},
		{"-l", "12"},
	} {
		if _, err := ParseDump(NewFlagSet("kmerdump"), args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestPrintUsage(t *testing.T) {
	fs := NewFlagSet("kmercat")
	_, _ = ParseCat(fs, []string{"-h"})
	var buf bytes.Buffer
	PrintUsage(&buf, "kmercat", fs, "copy and recompress record files", "[input]")
	out := buf.String()
	for _, want := range []string{"kmercat: copy and recompress", "--record-size", "Usage: kmercat"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q:\n%s", want, out)
		}
	}
}
