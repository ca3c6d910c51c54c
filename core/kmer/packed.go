// core/kmer/packed.go
package kmer

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// BasesPerWord is the number of 2-bit bases held by one uint64.
const BasesPerWord = 32

// Words lists the supported word-array widths.
type Words interface {
	~[1]uint64 | ~[2]uint64 | ~[3]uint64 | ~[4]uint64 | ~[8]uint64
}

// WordSource is anything that exposes packed words, such as a full k-mer
// type that also tracks length and strand.
type WordSource interface {
	Word(i int) uint64
}

// Packed is a k-mer stored as len(W) words read as one unsigned integer,
// with word len(W)-1 most significant. The base count is not stored; pass it
// to the calls that need it. The zero value is the cleared k-mer.
type Packed[W Words] struct {
	wd W
}

// Clear zeroes every word.
func (k *Packed[W]) Clear() {
	var zero W
	k.wd = zero
}

// Copy takes the first len(W) words of src, ignoring anything else src carries.
func (k *Packed[W]) Copy(src WordSource) {
	for i := 0; i < len(k.wd); i++ {
		k.wd[i] = src.Word(i)
	}
}

func (k Packed[W]) Word(i int) uint64 { return k.wd[i] }

// Words returns the number of 64-bit words.
func (k Packed[W]) Words() int { return len(k.wd) }

// Capacity returns the number of bases that fit.
func (k Packed[W]) Capacity() int { return len(k.wd) * BasesPerWord }

// Equal ORs the XOR of every word pair and tests the result, so the cost does
// not depend on where the k-mers differ.
func (k Packed[W]) Equal(o Packed[W]) bool {
	var acc uint64
	for i := len(k.wd) - 1; i >= 0; i-- {
		acc |= k.wd[i] ^ o.wd[i]
	}
	return acc == 0
}

// Compare orders k and o as unsigned integers, returning -1, 0 or +1. It
// stops at the most significant word that differs.
func (k Packed[W]) Compare(o Packed[W]) int {
	for i := len(k.wd) - 1; i >= 0; i-- {
		if k.wd[i] < o.wd[i] {
			return -1
		}
		if k.wd[i] > o.wd[i] {
			return 1
		}
	}
	return 0
}

func (k Packed[W]) Less(o Packed[W]) bool         { return k.Compare(o) < 0 }
func (k Packed[W]) Greater(o Packed[W]) bool      { return k.Compare(o) > 0 }
func (k Packed[W]) LessEqual(o Packed[W]) bool    { return k.Compare(o) <= 0 }
func (k Packed[W]) GreaterEqual(o Packed[W]) bool { return k.Compare(o) >= 0 }

// Compare is Packed.Compare as a function, for slices.SortFunc and friends.
func Compare[W Words](a, b Packed[W]) int { return a.Compare(b) }

// Equal is Packed.Equal as a function, for slices.CompactFunc.
func Equal[W Words](a, b Packed[W]) bool { return a.Equal(b) }

// AppendString appends the first length bases to dst, most significant first,
// and returns the extended slice. A partial leading word (length % 32 bases)
// is rendered first, then whole words from the top down. Nothing is appended
// after the last base. It panics if length exceeds Capacity.
func (k Packed[W]) AppendString(dst []byte, length int, a *Alphabet) []byte {
	if length < 0 || length > k.Capacity() {
		panic(fmt.Sprintf("kmer: length %d outside 0..%d", length, k.Capacity()))
	}
	last := length / BasesPerWord
	if rem := length % BasesPerWord; rem > 0 {
		dst = appendWord(dst, k.wd[last], rem, a)
	}
	for last > 0 {
		last--
		dst = appendWord(dst, k.wd[last], BasesPerWord, a)
	}
	return dst
}

// String renders length bases; see AppendString.
func (k Packed[W]) String(length int, a *Alphabet) string {
	return string(k.AppendString(make([]byte, 0, length), length, a))
}

// appendWord renders the low n bases of w, highest first.
func appendWord(dst []byte, w uint64, n int, a *Alphabet) []byte {
	for j := n - 1; j >= 0; j-- {
		dst = append(dst, a.Letter(w>>(2*uint(j))))
	}
	return dst
}

// Parse packs seq by shifting each base into the low end, so the first base
// ends up most significant. It is the inverse of AppendString.
func Parse[W Words](seq []byte, a *Alphabet) (Packed[W], error) {
	var k Packed[W]
	if len(seq) > k.Capacity() {
		return k, errors.Errorf("kmer: %d bases exceed capacity %d", len(seq), k.Capacity())
	}
	for i, b := range seq {
		code, ok := a.Code(b)
		if !ok {
			return Packed[W]{}, errors.Errorf("kmer: base %q at %d not in alphabet %s", b, i, a)
		}
		k.shiftIn(code)
	}
	return k, nil
}

func (k *Packed[W]) shiftIn(code uint64) {
	for i := len(k.wd) - 1; i > 0; i-- {
		k.wd[i] = k.wd[i]<<2 | k.wd[i-1]>>62
	}
	k.wd[0] = k.wd[0]<<2 | code
}

// Dump writes one line per word, for debugging.
func (k Packed[W]) Dump(w io.Writer) error {
	for i := 0; i < len(k.wd); i++ {
		if _, err := fmt.Fprintf(w, "kmer[%2d] = 0x%016x\n", i, k.wd[i]); err != nil {
			return err
		}
	}
	return nil
}
