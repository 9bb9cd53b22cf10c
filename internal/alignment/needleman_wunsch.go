package alignment

import (
	"fmt"
	"math"
	"slices"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// DP states. The order is also the tie-break order.
const (
	stateMatch uint8 = iota // last step Diagonal
	stateUp                 // last step Up
	stateLeft               // last step Left
)

var directionOf = [...]AlignDirection{stateMatch: Diagonal, stateUp: Up, stateLeft: Left}

const negInf = math.MinInt / 4

// best3 returns the larger of three candidates and its state. Ties go to
// the earlier state.
func best3(m, u, l int) (int, uint8) {
	best, st := m, stateMatch
	if u > best {
		best, st = u, stateUp
	}
	if l > best {
		best, st = l, stateLeft
	}
	return best, st
}

// NeedlemanWunsch aligns query against reference globally with affine gap
// scores.
//
// Rows follow the reference and columns the query. Each cell keeps three
// scores: ending in a substitution, in a gap in the query (Up) or in a gap
// in the reference (Left). A gap consuming reference positions is an end
// gap when it lies before the first or after the last query position, and
// symmetrically for gaps consuming query positions.
//
// When several paths are optimal the traceback prefers, at every cell and
// at the final corner, a substitution over Up over Left. Scores live in two
// rolling rows; only the per-cell back pointers are kept in full.
func NeedlemanWunsch(reference, query []nucleotide.Code, scoring *ScoringMatrix) (*Alignment, error) {
	if scoring == nil {
		scoring = DefaultDNA()
	}

	if len(reference) == 0 || len(query) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	n, m := len(reference), len(query)
	w := m + 1

	// pointers packs the predecessor state of each of the three states:
	// bits 0-1 for Match, 2-3 for Up and 4-5 for Left.
	pointers := make([]uint8, (n+1)*w)

	prevM, prevU, prevL := make([]int, w), make([]int, w), make([]int, w)
	curM, curU, curL := make([]int, w), make([]int, w), make([]int, w)

	for i := 0; i <= n; i++ {
		leftOpen, leftExtend := scoring.GapScores(i == 0 || i == n)

		for j := 0; j <= m; j++ {
			var ptr uint8

			switch {
			case i == 0 && j == 0:
				curM[j] = 0
			case i == 0 || j == 0:
				curM[j] = negInf
			default:
				score, st := best3(prevM[j-1], prevU[j-1], prevL[j-1])
				curM[j] = score + scoring.Score(reference[i-1], query[j-1])
				ptr |= st
			}

			if i > 0 {
				upOpen, upExtend := scoring.GapScores(j == 0 || j == m)
				score, st := best3(prevM[j]+upOpen, prevU[j]+upExtend, prevL[j]+upOpen)
				curU[j] = score
				ptr |= st << 2
			} else {
				curU[j] = negInf
			}

			if j > 0 {
				score, st := best3(curM[j-1]+leftOpen, curU[j-1]+leftOpen, curL[j-1]+leftExtend)
				curL[j] = score
				ptr |= st << 4
			} else {
				curL[j] = negInf
			}

			pointers[i*w+j] = ptr
		}

		prevM, curM = curM, prevM
		prevU, curU = curU, prevU
		prevL, curL = curL, prevL
	}

	score, st := best3(prevM[m], prevU[m], prevL[m])
	path := tracebackGlobal(pointers, w, n, m, st)

	return newAlignment(reference, query, path, score), nil
}

// tracebackGlobal walks the back pointers from (n, m) to the origin and
// returns the path in forward order.
func tracebackGlobal(pointers []uint8, w, n, m int, st uint8) []AlignDirection {
	path := make([]AlignDirection, 0, n+m)
	i, j := n, m

	for i > 0 || j > 0 {
		ptr := pointers[i*w+j]
		path = append(path, directionOf[st])

		switch st {
		case stateMatch:
			st = ptr & 3
			i--
			j--
		case stateUp:
			st = (ptr >> 2) & 3
			i--
		case stateLeft:
			st = (ptr >> 4) & 3
			j--
		}
	}

	slices.Reverse(path)
	return path
}
