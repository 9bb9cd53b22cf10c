// Package stats summarises specimen sequences before comparison.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// SequenceStats represents statistics for a single sequence.
//
// ACount, CCount, GCount and TCount count unambiguous bases only;
// ambiguity codes are counted in Ambiguous and gaps in Gaps, so the five
// counts add up to Length.
type SequenceStats struct {
	Length    int     `json:"length"`
	Coverage  int     `json:"coverage"`
	GCContent float64 `json:"gc_content"`
	ACount    int     `json:"a"`
	CCount    int     `json:"c"`
	GCount    int     `json:"g"`
	TCount    int     `json:"t"`
	Ambiguous int     `json:"ambiguous"`
	Gaps      int     `json:"gaps"`
}

// FromSequence calculates statistics for a sequence.
func FromSequence(seq *sequence.Sequence) *SequenceStats {
	s := &SequenceStats{Length: seq.Len(), Coverage: seq.Coverage()}
	for _, c := range seq.Data {
		switch c {
		case nucleotide.A:
			s.ACount++
		case nucleotide.C:
			s.CCount++
		case nucleotide.G:
			s.GCount++
		case nucleotide.T:
			s.TCount++
		case nucleotide.Gap:
			s.Gaps++
		default:
			s.Ambiguous++
		}
	}
	if called := s.ACount + s.CCount + s.GCount + s.TCount; called > 0 {
		s.GCContent = float64(s.GCount+s.CCount) / float64(called)
	}
	return s
}

func (s *SequenceStats) String() string {
	return fmt.Sprintf(`SequenceStats {
  length: %d
  coverage: %d
  GC content: %.1f%%
  A: %d, C: %d, G: %d, T: %d, ambiguous: %d, gaps: %d
}`, s.Length, s.Coverage, s.GCContent*100,
		s.ACount, s.CCount, s.GCount, s.TCount, s.Ambiguous, s.Gaps)
}

// SequenceSetStats represents aggregated statistics for a specimen set.
type SequenceSetStats struct {
	Count          int            `json:"count"`
	TotalBases     int            `json:"total_bases"`
	MinLength      int            `json:"min_length"`
	MaxLength      int            `json:"max_length"`
	MeanLength     float64        `json:"mean_length"`
	MedianLength   int            `json:"median_length"`
	MeanGCContent  float64        `json:"mean_gc_content"`
	N50            int            `json:"n50"`
	TotalAmbiguous int            `json:"total_ambiguous"`
	Groups         map[string]int `json:"groups,omitempty"`
}

// FromSequences calculates statistics for a collection of sequences.
func FromSequences(sequences []*sequence.Sequence) (*SequenceSetStats, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("sequence list cannot be empty")
	}

	count := len(sequences)
	lengths := make([]int, count)
	totalBases := 0
	gcSum := 0.0
	totalAmbiguous := 0

	for i, seq := range sequences {
		s := FromSequence(seq)
		lengths[i] = s.Length
		totalBases += s.Length
		gcSum += s.GCContent
		totalAmbiguous += s.Ambiguous
	}

	sorted := make([]int, count)
	copy(sorted, lengths)
	sort.Ints(sorted)

	mid := count / 2
	median := sorted[mid]
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return &SequenceSetStats{
		Count:          count,
		TotalBases:     totalBases,
		MinLength:      sorted[0],
		MaxLength:      sorted[count-1],
		MeanLength:     float64(totalBases) / float64(count),
		MedianLength:   median,
		MeanGCContent:  gcSum / float64(count),
		N50:            n50(sorted, totalBases),
		TotalAmbiguous: totalAmbiguous,
	}, nil
}

// FromLabeled calculates statistics for labelled specimens and counts the
// specimens of each label.
func FromLabeled(items []diagnosis.Labeled) (*SequenceSetStats, error) {
	seqs := make([]*sequence.Sequence, len(items))
	groups := make(map[string]int)
	for i, item := range items {
		seqs[i] = item.Sequence
		groups[item.Label]++
	}

	s, err := FromSequences(seqs)
	if err != nil {
		return nil, err
	}
	s.Groups = groups
	return s, nil
}

// n50 is the length at which the longest sequences first hold half of all
// bases. ascending must be sorted.
func n50(ascending []int, total int) int {
	half := total / 2
	running := 0
	for i := len(ascending) - 1; i >= 0; i-- {
		running += ascending[i]
		if running >= half {
			return ascending[i]
		}
	}
	return ascending[len(ascending)-1]
}

func (s *SequenceSetStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `SequenceSetStats {
  count: %d
  total_bases: %d
  length range: %d - %d
  mean length: %.1f
  median length: %d
  mean GC: %.1f%%
  N50: %d
  ambiguous bases: %d
`, s.Count, s.TotalBases, s.MinLength, s.MaxLength,
		s.MeanLength, s.MedianLength, s.MeanGCContent*100, s.N50, s.TotalAmbiguous)

	labels := make([]string, 0, len(s.Groups))
	for label := range s.Groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(&b, "  %s: %d\n", label, s.Groups[label])
	}
	b.WriteString("}")
	return b.String()
}

// GCHistogram represents a GC content histogram with bins.
type GCHistogram struct {
	Bins    []int
	BinSize float64
	NumBins int
}

// NewGCHistogram creates a GC content histogram from sequences.
func NewGCHistogram(sequences []*sequence.Sequence, numBins int) (*GCHistogram, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("sequence list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	binSize := 1.0 / float64(numBins)
	bins := make([]int, numBins)

	for _, seq := range sequences {
		gc := FromSequence(seq).GCContent
		binIndex := int(gc / binSize)
		if binIndex >= numBins {
			binIndex = numBins - 1
		}
		bins[binIndex]++
	}

	return &GCHistogram{
		Bins:    bins,
		BinSize: binSize,
		NumBins: numBins,
	}, nil
}

// ModeBin returns the most common GC content range.
func (h *GCHistogram) ModeBin() (float64, float64) {
	maxBin := 0
	for i, count := range h.Bins {
		if count > h.Bins[maxBin] {
			maxBin = i
		}
	}

	start := float64(maxBin) * h.BinSize
	return start, start + h.BinSize
}

func (h *GCHistogram) String() string {
	var b strings.Builder
	b.WriteString("GC Content Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := int(float64(i) * h.BinSize * 100)
		end := start + int(h.BinSize*100)
		count := h.Bins[i]
		fmt.Fprintf(&b, "%2d-%2d%%: %s (%d)\n", start, end, strings.Repeat("#", count/10), count)
	}
	return b.String()
}

// LengthHistogram represents a length histogram for sequences.
type LengthHistogram struct {
	Bins      []int
	MinLength int
	MaxLength int
	BinWidth  int
	NumBins   int
}

// NewLengthHistogram creates a length histogram from sequences.
func NewLengthHistogram(sequences []*sequence.Sequence, numBins int) (*LengthHistogram, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("sequence list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	minLen, maxLen := sequences[0].Len(), sequences[0].Len()
	for _, seq := range sequences {
		minLen = min(minLen, seq.Len())
		maxLen = max(maxLen, seq.Len())
	}

	binWidth := max((maxLen-minLen)/numBins, 1)
	bins := make([]int, numBins)
	for _, seq := range sequences {
		binIndex := min((seq.Len()-minLen)/binWidth, numBins-1)
		bins[binIndex]++
	}

	return &LengthHistogram{
		Bins:      bins,
		MinLength: minLen,
		MaxLength: maxLen,
		BinWidth:  binWidth,
		NumBins:   numBins,
	}, nil
}

func (h *LengthHistogram) String() string {
	var b strings.Builder
	b.WriteString("Length Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := h.MinLength + i*h.BinWidth
		count := h.Bins[i]
		fmt.Fprintf(&b, "%5d-%5d: %s (%d)\n", start, start+h.BinWidth, strings.Repeat("#", count/5), count)
	}
	return b.String()
}
