package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

func mustNew(t testing.TB, text string) *sequence.Sequence {
	t.Helper()
	s, err := sequence.New(text)
	require.NoError(t, err)
	return s
}

func TestFromSequence(t *testing.T) {
	stats := FromSequence(mustNew(t, "AATTRTGGGCCCC"))

	assert.Equal(t, 13, stats.Length)
	assert.Equal(t, 13, stats.Coverage)
	assert.Equal(t, 2, stats.ACount)
	assert.Equal(t, 4, stats.CCount)
	assert.Equal(t, 3, stats.GCount)
	assert.Equal(t, 3, stats.TCount)
	assert.Equal(t, 1, stats.Ambiguous)
	assert.Equal(t, 0, stats.Gaps)

	// GC = 7/12, the ambiguous R is not called
	assert.InDelta(t, 7.0/12.0, stats.GCContent, 0.0001)
}

func TestFromSequenceAligned(t *testing.T) {
	seq, err := sequence.NewAligned("--AC-GT--")
	require.NoError(t, err)

	stats := FromSequence(seq)
	assert.Equal(t, 9, stats.Length)
	assert.Equal(t, 4, stats.Coverage)
	assert.Equal(t, 5, stats.Gaps)
	assert.InDelta(t, 0.5, stats.GCContent, 0.0001)
}

func TestFromSequences(t *testing.T) {
	sequences := []*sequence.Sequence{
		mustNew(t, "ATGC"),     // len=4, GC=0.5
		mustNew(t, "ATGCATGC"), // len=8, GC=0.5
		mustNew(t, "GGCC"),     // len=4, GC=1.0
	}

	stats, err := FromSequences(sequences)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 16, stats.TotalBases)
	assert.Equal(t, 4, stats.MinLength)
	assert.Equal(t, 8, stats.MaxLength)
	assert.InDelta(t, 16.0/3.0, stats.MeanLength, 0.0001)
	assert.Equal(t, 4, stats.MedianLength) // sorted: 4, 4, 8; middle = 4
	assert.InDelta(t, 2.0/3.0, stats.MeanGCContent, 0.0001)
	assert.Nil(t, stats.Groups)
}

func TestFromSequencesEmpty(t *testing.T) {
	_, err := FromSequences([]*sequence.Sequence{})
	require.Error(t, err)
}

func TestFromLabeled(t *testing.T) {
	items := []diagnosis.Labeled{
		{Label: "Homo sapiens", Sequence: mustNew(t, "ACGT")},
		{Label: "Homo sapiens", Sequence: mustNew(t, "ACGA")},
		{Label: "Pan troglodytes", Sequence: mustNew(t, "ACYT")},
	}

	stats, err := FromLabeled(items)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 1, stats.TotalAmbiguous)
	assert.Equal(t, map[string]int{"Homo sapiens": 2, "Pan troglodytes": 1}, stats.Groups)
	assert.Contains(t, stats.String(), "Pan troglodytes: 1")

	_, err = FromLabeled(nil)
	require.Error(t, err)
}

func TestN50Calculation(t *testing.T) {
	// Lengths 100, 80, 60, 40, 20: total 300, half 150,
	// N50 is 80 (100 + 80 >= 150)
	sequences := []*sequence.Sequence{
		mustNew(t, generateSeq(100)),
		mustNew(t, generateSeq(80)),
		mustNew(t, generateSeq(60)),
		mustNew(t, generateSeq(40)),
		mustNew(t, generateSeq(20)),
	}

	stats, err := FromSequences(sequences)
	require.NoError(t, err)

	assert.Equal(t, 80, stats.N50)
}

func generateSeq(length int) string {
	bases := []byte{'A', 'T', 'G', 'C'}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = bases[i%4]
	}
	return string(result)
}

func TestGCHistogram(t *testing.T) {
	sequences := []*sequence.Sequence{
		mustNew(t, "AAAA"),     // GC = 0%
		mustNew(t, "ATGC"),     // GC = 50%
		mustNew(t, "GGCC"),     // GC = 100%
		mustNew(t, "ATATATGC"), // GC = 25%
		mustNew(t, "TAGC"),     // GC = 50%
	}

	hist, err := NewGCHistogram(sequences, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, hist.NumBins)
	assert.InDelta(t, 0.1, hist.BinSize, 0.0001)
	assert.Equal(t, []int{1, 0, 1, 0, 0, 2, 0, 0, 0, 1}, hist.Bins)

	lo, hi := hist.ModeBin()
	assert.InDelta(t, 0.5, lo, 0.0001)
	assert.InDelta(t, 0.6, hi, 0.0001)
}

func TestLengthHistogram(t *testing.T) {
	sequences := []*sequence.Sequence{
		mustNew(t, "ATGC"),             // len=4
		mustNew(t, "ATGCATGC"),         // len=8
		mustNew(t, "ATGCATGCATGCATGC"), // len=16
	}

	hist, err := NewLengthHistogram(sequences, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, hist.NumBins)
	assert.Equal(t, 4, hist.MinLength)
	assert.Equal(t, 16, hist.MaxLength)
	assert.Equal(t, 2, hist.BinWidth)
	assert.Equal(t, []int{1, 0, 1, 0, 1}, hist.Bins)
}

func TestEmptyHistograms(t *testing.T) {
	_, err := NewGCHistogram([]*sequence.Sequence{}, 10)
	require.Error(t, err)

	_, err = NewLengthHistogram([]*sequence.Sequence{}, 10)
	require.Error(t, err)

	_, err = NewGCHistogram([]*sequence.Sequence{mustNew(t, "ACGT")}, 0)
	require.Error(t, err)
}

func BenchmarkFromSequences(b *testing.B) {
	sequences := make([]*sequence.Sequence, 100)
	for i := range sequences {
		sequences[i] = mustNew(b, generateSeq(1000))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = FromSequences(sequences)
	}
}
