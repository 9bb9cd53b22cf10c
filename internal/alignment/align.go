package alignment

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// Aligner re-expresses sequences in the coordinates of a reference.
type Aligner struct {
	scoring *ScoringMatrix
}

// NewAligner returns an aligner using scoring, or DefaultDNA when nil.
func NewAligner(scoring *ScoringMatrix) (*Aligner, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &Aligner{scoring: scoring}, nil
}

// Scoring returns the scores in use.
func (al *Aligner) Scoring() *ScoringMatrix {
	return al.scoring
}

// Align aligns query against reference and moves query into reference
// coordinates.
//
// Afterwards query.Data has the reference's length, holding the paired
// query code at every reference position of a matched block and a gap
// elsewhere. Query content between two blocks, or after the last one, is
// recorded in query.Insertions keyed one past the last reference index of
// the preceding block, not at that index itself, so content after the
// last block is keyed len(reference). Content before the first block
// overhangs the reference and is dropped. Start and End span the matched
// blocks.
//
// The returned Alignment carries the two-line display.
func (al *Aligner) Align(query, reference *sequence.Sequence, referenceName string) (*Alignment, error) {
	a, err := NeedlemanWunsch(reference.Data, query.Data, al.scoring)
	if err != nil {
		return nil, err
	}

	data := make([]nucleotide.Code, reference.Len())
	insertions := make(map[int][]nucleotide.Code)

	for _, b := range a.Blocks {
		copy(data[b.RefStart:b.RefEnd], query.Data[b.QueryStart:b.QueryEnd])
	}

	start, end := 0, 0
	if len(a.Blocks) > 0 {
		for k := 1; k < len(a.Blocks); k++ {
			prev, cur := a.Blocks[k-1], a.Blocks[k]
			recordInsertion(insertions, prev.RefEnd, query.Data[prev.QueryEnd:cur.QueryStart])
		}
		last := a.Blocks[len(a.Blocks)-1]
		recordInsertion(insertions, last.RefEnd, query.Data[last.QueryEnd:])

		start, end = a.Blocks[0].RefStart, last.RefEnd
	}

	query.Replace(data, insertions, start, end, referenceName)
	return a, nil
}

// recordInsertion stores run under key unless it carries no data.
func recordInsertion(insertions map[int][]nucleotide.Code, key int, run []nucleotide.Code) {
	if !slices.ContainsFunc(run, func(c nucleotide.Code) bool { return c != nucleotide.Gap }) {
		return
	}
	insertions[key] = slices.Clone(run)
}

// PositionTranslator labels every position of a sequence with its
// reference position, or "base+k" for the k-th position following
// reference position base that has no counterpart in the reference.
type PositionTranslator []string

// Translate returns the label of position i. Positions beyond the
// translated sequence are labelled by their number.
func (t PositionTranslator) Translate(i int) string {
	if i >= 0 && i < len(t) {
		return t[i]
	}
	return strconv.Itoa(i)
}

// PositionTranslator aligns seq against reference again and labels each of
// its positions. Positions before any paired reference position count from
// base 0.
func (al *Aligner) PositionTranslator(seq, reference *sequence.Sequence) (PositionTranslator, error) {
	a, err := NeedlemanWunsch(reference.Data, seq.Data, al.scoring)
	if err != nil {
		return nil, err
	}

	labels := make(PositionTranslator, seq.Len())
	base, offset := 0, 0
	i, j := 0, 0

	for _, d := range a.Path {
		switch d {
		case Diagonal:
			labels[j] = strconv.Itoa(i)
			base, offset = i, 0
			i++
			j++
		case Up:
			i++
		case Left:
			offset++
			labels[j] = fmt.Sprintf("%d+%d", base, offset)
			j++
		}
	}

	return labels, nil
}
