// core/kmer/alphabet.go
package kmer

import (
	"github.com/pkg/errors"
)

// Alphabet maps 2-bit base codes to letters and back. The mapping belongs to
// whoever encodes the k-mers, so it is always supplied by the caller. Build
// one with NewAlphabet; the zero value knows no letters and decodes nothing.
type Alphabet struct {
	letters [4]byte
	codes   [256]uint8 // code+1; 0 is not in the alphabet
}

// NewAlphabet builds an alphabet from four distinct letters, in code order
// (letters[0] is code 0). Decoding accepts either case.
func NewAlphabet(letters string) (*Alphabet, error) {
	if len(letters) != 4 {
		return nil, errors.Errorf("kmer: alphabet needs 4 letters, got %q", letters)
	}
	a := &Alphabet{}
	for i := 0; i < 4; i++ {
		c := letters[i]
		up, lo := upper(c), lower(c)
		if a.codes[up] != 0 || a.codes[lo] != 0 {
			return nil, errors.Errorf("kmer: duplicate letter %q in alphabet %q", c, letters)
		}
		a.letters[i] = c
		a.codes[up] = uint8(i + 1)
		a.codes[lo] = uint8(i + 1)
	}
	return a, nil
}

// Letter returns the letter for the low two bits of code.
func (a *Alphabet) Letter(code uint64) byte { return a.letters[code&3] }

// Code returns the 2-bit code for b.
func (a *Alphabet) Code(b byte) (uint64, bool) {
	c := a.codes[b]
	if c == 0 {
		return 0, false
	}
	return uint64(c - 1), true
}

func (a *Alphabet) String() string { return string(a.letters[:]) }

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
