package kmer

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acgt(t *testing.T) *Alphabet {
	t.Helper()
	a, err := NewAlphabet("ACGT")
	require.NoError(t, err)
	return a
}

func randomSeq(rng *rand.Rand, a *Alphabet, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = a.Letter(rng.Uint64())
	}
	return s
}

func randomPacked[W Words](rng *rand.Rand) Packed[W] {
	var k Packed[W]
	for i := 0; i < k.Words(); i++ {
		// few distinct values so equal words and ties are common
		k.wd[i] = rng.Uint64N(4) << (rng.UintN(3) * 31)
	}
	return k
}

type richKmer struct {
	words  []uint64
	length int
	strand byte
}

func (r richKmer) Word(i int) uint64 { return r.words[i] }

func TestZeroValueIsCleared(t *testing.T) {
	var k Packed[[2]uint64]
	assert.Equal(t, 2, k.Words())
	assert.Equal(t, 64, k.Capacity())
	assert.Equal(t, strings.Repeat("A", 64), k.String(64, acgt(t)))
}

func TestCopyAndClear(t *testing.T) {
	src := richKmer{words: []uint64{1, 2, 3, 4}, length: 100, strand: '-'}

	var k Packed[[3]uint64]
	k.Copy(src)
	assert.Equal(t, uint64(1), k.Word(0))
	assert.Equal(t, uint64(3), k.Word(2), "extra source words are ignored")

	k.Clear()
	for i := 0; i < k.Words(); i++ {
		assert.Zero(t, k.Word(i))
	}
}

func TestOrderMostSignificantWordFirst(t *testing.T) {
	var lo, hi Packed[[2]uint64]
	lo.Copy(richKmer{words: []uint64{^uint64(0), 0}})
	hi.Copy(richKmer{words: []uint64{0, 1}})

	assert.True(t, lo.Less(hi))
	assert.True(t, hi.Greater(lo))
	assert.True(t, lo.LessEqual(hi))
	assert.False(t, lo.GreaterEqual(hi))
	assert.False(t, lo.Equal(hi))
	assert.Equal(t, -1, Compare(lo, hi))
	assert.Equal(t, 1, Compare(hi, lo))
	assert.True(t, lo.LessEqual(lo) && lo.GreaterEqual(lo))
}

func checkTotalOrder[W Words](t *testing.T, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, 1))
	for iter := 0; iter < 2000; iter++ {
		a, b, c := randomPacked[W](rng), randomPacked[W](rng), randomPacked[W](rng)

		// trichotomy
		n := 0
		for _, held := range []bool{a.Less(b), a.Equal(b), a.Greater(b)} {
			if held {
				n++
			}
		}
		require.Equal(t, 1, n, "exactly one of <,==,> for %v %v", a, b)

		// Equal agrees with native array equality
		require.Equal(t, a == b, a.Equal(b))
		require.Equal(t, a.Equal(b), b.Equal(a))
		require.True(t, a.Equal(a))
		require.Equal(t, a.Less(b), b.Greater(a))
		require.Equal(t, a.LessEqual(b), !a.Greater(b))
		require.Equal(t, a.GreaterEqual(b), !a.Less(b))

		if a.Less(b) && b.Less(c) {
			require.True(t, a.Less(c), "transitivity of <")
		}
		if a.Equal(b) && b.Equal(c) {
			require.True(t, a.Equal(c), "transitivity of ==")
		}
	}
}

func TestTotalOrder(t *testing.T) {
	t.Run("1", func(t *testing.T) { checkTotalOrder[[1]uint64](t, 11) })
	t.Run("2", func(t *testing.T) { checkTotalOrder[[2]uint64](t, 12) })
	t.Run("3", func(t *testing.T) { checkTotalOrder[[3]uint64](t, 13) })
	t.Run("4", func(t *testing.T) { checkTotalOrder[[4]uint64](t, 14) })
	t.Run("8", func(t *testing.T) { checkTotalOrder[[8]uint64](t, 18) })
}

func checkRoundTrip[W Words](t *testing.T, lengths []int) {
	a := acgt(t)
	rng := rand.New(rand.NewPCG(uint64(len(lengths)), 2))
	for _, L := range lengths {
		for rep := 0; rep < 20; rep++ {
			seq := randomSeq(rng, a, L)
			k, err := Parse[W](seq, a)
			require.NoError(t, err)
			got := k.AppendString(nil, L, a)
			require.Equal(t, string(seq), string(got), "L=%d", L)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Run("W1", func(t *testing.T) { checkRoundTrip[[1]uint64](t, []int{0, 1, 5, 31, 32}) })
	t.Run("W2", func(t *testing.T) { checkRoundTrip[[2]uint64](t, []int{1, 32, 33, 37, 63, 64}) })
	t.Run("W3", func(t *testing.T) { checkRoundTrip[[3]uint64](t, []int{65, 70, 96}) })
	t.Run("W4", func(t *testing.T) { checkRoundTrip[[4]uint64](t, []int{100, 127, 128}) })
}

func TestPartialWordRenderedFirst(t *testing.T) {
	a := acgt(t)
	// 37 bases: five in word 1, thirty-two in word 0
	seq := "GATTA" + strings.Repeat("C", 31) + "T"
	k, err := Parse[[2]uint64]([]byte(seq), a)
	require.NoError(t, err)

	assert.Equal(t, uint64(0b10_00_11_11_00), k.Word(1), "GATTA in the low 10 bits of word 1")
	assert.Equal(t, uint64(1), k.Word(0)>>62, "leading C of word 0")
	assert.Equal(t, uint64(3), k.Word(0)&3, "trailing T")
	assert.Equal(t, seq, k.String(37, a))

	// a shorter length renders only the low bases
	assert.Equal(t, seq[5:], k.String(32, a))
}

func TestAppendStringNoTerminator(t *testing.T) {
	a := acgt(t)
	k, err := Parse[[1]uint64]([]byte("ACG"), a)
	require.NoError(t, err)
	out := k.AppendString([]byte("> "), 3, a)
	assert.Equal(t, "> ACG", string(out))
}

func TestAppendStringPanicsOverCapacity(t *testing.T) {
	var k Packed[[1]uint64]
	a := acgt(t)
	assert.Panics(t, func() { k.AppendString(nil, 33, a) })
	assert.Panics(t, func() { k.AppendString(nil, -1, a) })
	assert.NotPanics(t, func() { k.AppendString(nil, 32, a) })
}

func TestParseErrors(t *testing.T) {
	a := acgt(t)
	_, err := Parse[[1]uint64]([]byte(strings.Repeat("A", 33)), a)
	require.Error(t, err)

	_, err = Parse[[1]uint64]([]byte("ACNT"), a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'N' at 2")
}

func TestParseLowercase(t *testing.T) {
	a := acgt(t)
	up, err := Parse[[1]uint64]([]byte("ACGTT"), a)
	require.NoError(t, err)
	lo, err := Parse[[1]uint64]([]byte("acgtt"), a)
	require.NoError(t, err)
	assert.True(t, up.Equal(lo))
}

func TestAlphabetIsAParameter(t *testing.T) {
	twobit, err := NewAlphabet("TCAG")
	require.NoError(t, err)
	k, err := Parse[[1]uint64]([]byte("TCAG"), twobit)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b00_01_10_11), k.Word(0))
	assert.Equal(t, "ACGT", k.String(4, acgt(t)))
}

func TestNewAlphabetValidation(t *testing.T) {
	_, err := NewAlphabet("ACG")
	require.Error(t, err)
	_, err = NewAlphabet("ACGa")
	require.Error(t, err, "duplicate across case")
	a, err := NewAlphabet("acgt")
	require.NoError(t, err)
	assert.Equal(t, "acgt", a.String())
	code, ok := a.Code('G')
	assert.True(t, ok)
	assert.Equal(t, uint64(2), code)
	_, ok = a.Code('N')
	assert.False(t, ok)
}

func TestZeroAlphabetDecodesNothing(t *testing.T) {
	var zero Alphabet
	_, ok := zero.Code('A')
	assert.False(t, ok)
	_, ok = zero.Code(0)
	assert.False(t, ok)
	_, err := Parse[[1]uint64]([]byte("ACGT"), &zero)
	require.Error(t, err)
}

func TestSortMatchesLexicographicOrder(t *testing.T) {
	a := acgt(t)
	rng := rand.New(rand.NewPCG(5, 5))
	const L = 45

	var seqs []string
	var ks []Packed[[2]uint64]
	for i := 0; i < 200; i++ {
		s := randomSeq(rng, a, L)
		seqs = append(seqs, string(s))
		k, err := Parse[[2]uint64](s, a)
		require.NoError(t, err)
		ks = append(ks, k)
	}
	// with A<C<G<T as codes 0..3, numeric order is string order
	slices.Sort(seqs)
	slices.SortFunc(ks, Compare[[2]uint64])
	for i := range ks {
		require.Equal(t, seqs[i], ks[i].String(L, a))
	}

	dup := append(slices.Clone(ks), ks...)
	slices.SortFunc(dup, Compare[[2]uint64])
	dup = slices.CompactFunc(dup, Equal[[2]uint64])
	assert.Len(t, dup, len(slices.CompactFunc(slices.Clone(ks), Equal[[2]uint64])))
}

func TestDump(t *testing.T) {
	var k Packed[[2]uint64]
	k.Copy(richKmer{words: []uint64{0xff, 0x1}})
	var buf bytes.Buffer
	require.NoError(t, k.Dump(&buf))
	assert.Equal(t,
		"kmer[ 0] = 0x00000000000000ff\n"+
			"kmer[ 1] = 0x0000000000000001\n", buf.String())
}
