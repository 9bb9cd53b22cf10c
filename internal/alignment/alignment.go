package alignment

import (
	"fmt"
	"strings"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// Block is a run of consecutive Diagonal steps: reference positions
// [RefStart, RefEnd) paired with query positions [QueryStart, QueryEnd).
type Block struct {
	RefStart   int
	RefEnd     int
	QueryStart int
	QueryEnd   int
}

// Len returns the number of paired positions.
func (b Block) Len() int {
	return b.RefEnd - b.RefStart
}

// Alignment is the result of aligning a query against a reference.
type Alignment struct {
	AlignedReference string
	AlignedQuery     string
	Path             []AlignDirection
	Blocks           []Block
	Score            int
	Identity         float64

	matches    int
	mismatches int
}

func newAlignment(reference, query []nucleotide.Code, path []AlignDirection, score int) *Alignment {
	var ref, qry strings.Builder
	ref.Grow(len(path))
	qry.Grow(len(path))

	a := &Alignment{Path: path, Score: score}

	i, j := 0, 0
	var open *Block
	for _, d := range path {
		switch d {
		case Diagonal:
			ref.WriteByte(nucleotide.Encode(reference[i]))
			qry.WriteByte(nucleotide.Encode(query[j]))
			if nucleotide.Compatible(reference[i], query[j]) {
				a.matches++
			} else {
				a.mismatches++
			}
			if open == nil {
				a.Blocks = append(a.Blocks, Block{RefStart: i, QueryStart: j})
				open = &a.Blocks[len(a.Blocks)-1]
			}
			i++
			j++
			open.RefEnd, open.QueryEnd = i, j
		case Up:
			ref.WriteByte(nucleotide.Encode(reference[i]))
			qry.WriteByte(nucleotide.GapSymbol)
			i++
			open = nil
		case Left:
			ref.WriteByte(nucleotide.GapSymbol)
			qry.WriteByte(nucleotide.Encode(query[j]))
			j++
			open = nil
		}
	}

	a.AlignedReference = ref.String()
	a.AlignedQuery = qry.String()
	if len(path) > 0 {
		a.Identity = float64(a.matches) / float64(len(path))
	}
	return a
}

// Length returns the number of alignment columns.
func (a *Alignment) Length() int {
	return len(a.Path)
}

// MatchCount returns the number of paired positions with compatible codes.
func (a *Alignment) MatchCount() int {
	return a.matches
}

// MismatchCount returns the number of paired positions with incompatible
// codes.
func (a *Alignment) MismatchCount() int {
	return a.mismatches
}

// GapsReference returns the number of gap columns in the reference.
func (a *Alignment) GapsReference() int {
	return a.count(Left)
}

// GapsQuery returns the number of gap columns in the query.
func (a *Alignment) GapsQuery() int {
	return a.count(Up)
}

// TotalGaps returns the total number of gap columns.
func (a *Alignment) TotalGaps() int {
	return a.GapsReference() + a.GapsQuery()
}

func (a *Alignment) count(d AlignDirection) int {
	n := 0
	for _, step := range a.Path {
		if step == d {
			n++
		}
	}
	return n
}

// GapOpenings counts the number of gap openings.
func (a *Alignment) GapOpenings() int {
	openings := 0
	prev := Stop
	for _, d := range a.Path {
		if d != Diagonal && d != prev {
			openings++
		}
		prev = d
	}
	return openings
}

// ToCIGAR generates a CIGAR string relative to the reference: I for query
// content absent from the reference, D for reference positions missing in
// the query, M and X for compatible and incompatible pairs.
func (a *Alignment) ToCIGAR() string {
	if len(a.Path) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	for col, d := range a.Path {
		var op byte
		switch d {
		case Left:
			op = 'I'
		case Up:
			op = 'D'
		default:
			if a.compatibleColumn(col) {
				op = 'M'
			} else {
				op = 'X'
			}
		}

		if op == currentOp {
			count++
		} else {
			if count > 0 {
				fmt.Fprintf(&cigar, "%d%c", count, currentOp)
			}
			currentOp = op
			count = 1
		}
	}

	if count > 0 {
		fmt.Fprintf(&cigar, "%d%c", count, currentOp)
	}

	return cigar.String()
}

func (a *Alignment) compatibleColumn(col int) bool {
	r, _ := nucleotide.Decode(rune(a.AlignedReference[col]))
	q, _ := nucleotide.Decode(rune(a.AlignedQuery[col]))
	return nucleotide.Compatible(r, q)
}

// Format returns the two-line display: the reference with gaps above the
// query with gaps.
func (a *Alignment) Format() string {
	return a.AlignedReference + "\n" + a.AlignedQuery
}

func (a *Alignment) String() string {
	return fmt.Sprintf("Alignment { score: %d, identity: %.1f%%, length: %d }",
		a.Score, a.Identity*100, a.Length())
}
