package sequence

import (
	"fmt"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// Union pools two sequences of the same reference frame into a new one.
//
// Every position of the result holds the union of the codes of a and b,
// the shorter array being read as if padded with gaps. Insertion runs at
// the same key are combined the same way. Union is commutative and
// associative, so folding a group in any order gives the same result.
func Union(a, b *Sequence) (*Sequence, error) {
	reference, err := CommonReference(a, b)
	if err != nil {
		return nil, err
	}

	start, end := unionWindow(a, b)
	return &Sequence{
		Data:       unionCodes(a.Data, b.Data),
		Insertions: unionInsertions(a.Insertions, b.Insertions),
		Start:      start,
		End:        end,
		Reference:  reference,
	}, nil
}

// UnionAll folds seqs with Union.
func UnionAll(seqs []*Sequence) (*Sequence, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequences to combine")
	}
	acc := seqs[0].Clone()
	for _, s := range seqs[1:] {
		next, err := Union(acc, s)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// CommonReference returns the reference name shared by a and b, failing
// when they were aligned to different references.
func CommonReference(a, b *Sequence) (string, error) {
	switch {
	case a.Reference == "":
		return b.Reference, nil
	case b.Reference == "" || a.Reference == b.Reference:
		return a.Reference, nil
	default:
		return "", &IncompatibleLengthsError{Left: a.Reference, Right: b.Reference}
	}
}

// unionWindow spans both windows. An empty window does not widen the
// other.
func unionWindow(a, b *Sequence) (int, int) {
	if a.Start >= a.End {
		return b.Start, b.End
	}
	if b.Start >= b.End {
		return a.Start, a.End
	}
	return min(a.Start, b.Start), max(a.End, b.End)
}

func unionCodes(a, b []nucleotide.Code) []nucleotide.Code {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]nucleotide.Code, len(a))
	copy(out, a)
	for i, c := range b {
		out[i] |= c
	}
	return out
}

func unionInsertions(a, b map[int][]nucleotide.Code) map[int][]nucleotide.Code {
	out := make(map[int][]nucleotide.Code, len(a)+len(b))
	for k, run := range a {
		out[k] = append([]nucleotide.Code(nil), run...)
	}
	for k, run := range b {
		if prev, ok := out[k]; ok {
			out[k] = unionCodes(prev, run)
		} else {
			out[k] = append([]nucleotide.Code(nil), run...)
		}
	}
	return out
}
