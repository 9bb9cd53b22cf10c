// Package alignment provides global pairwise alignment of a query sequence
// against a reference.
//
// The aligner is a three-state dynamic program with affine gap scores in
// which gaps touching either end of a sequence are scored apart from
// internal ones, so overhangs of the query past the reference cost less
// than indels inside it. Substitution scores only ask whether two
// ambiguity codes share a base.
package alignment

import (
	"fmt"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// AlignDirection is a step of an alignment path.
type AlignDirection int

const (
	// Stop marks the origin of the traceback.
	Stop AlignDirection = iota
	// Diagonal pairs a reference position with a query position.
	Diagonal
	// Up consumes a reference position against a gap in the query.
	Up
	// Left consumes a query position against a gap in the reference.
	Left
)

func (d AlignDirection) String() string {
	switch d {
	case Diagonal:
		return "diagonal"
	case Up:
		return "up"
	case Left:
		return "left"
	default:
		return "stop"
	}
}

// ScoringMatrix holds the substitution and affine gap scores. Scores are
// added, so penalties are negative. A gap of length k scores
// open + (k-1)*extend.
type ScoringMatrix struct {
	MatchScore        int `yaml:"match" json:"match"`
	MismatchScore     int `yaml:"mismatch" json:"mismatch"`
	GapOpenScore      int `yaml:"gap_open" json:"gap_open"`
	GapExtendScore    int `yaml:"gap_extend" json:"gap_extend"`
	EndGapOpenScore   int `yaml:"end_gap_open" json:"end_gap_open"`
	EndGapExtendScore int `yaml:"end_gap_extend" json:"end_gap_extend"`
}

// NewScoringMatrix creates a scoring matrix with validation.
func NewScoringMatrix(match, mismatch, gapOpen, gapExtend, endGapOpen, endGapExtend int) (*ScoringMatrix, error) {
	s := &ScoringMatrix{
		MatchScore:        match,
		MismatchScore:     mismatch,
		GapOpenScore:      gapOpen,
		GapExtendScore:    gapExtend,
		EndGapOpenScore:   endGapOpen,
		EndGapExtendScore: endGapExtend,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the sign constraints of the scores.
func (s *ScoringMatrix) Validate() error {
	if s.MatchScore <= 0 {
		return fmt.Errorf("match score must be positive")
	}
	if s.MismatchScore >= s.MatchScore {
		return fmt.Errorf("mismatch score must be below match score")
	}
	if s.GapOpenScore > 0 || s.GapExtendScore > 0 {
		return fmt.Errorf("internal gap scores should be <= 0")
	}
	if s.EndGapOpenScore > 0 || s.EndGapExtendScore > 0 {
		return fmt.Errorf("end gap scores should be <= 0")
	}
	return nil
}

// DefaultDNA returns the scores used for barcode alignment against a
// reference gene: internal indels are expensive, overhangs cheap.
func DefaultDNA() *ScoringMatrix {
	return &ScoringMatrix{
		MatchScore:        1,
		MismatchScore:     -1,
		GapOpenScore:      -4,
		GapExtendScore:    -1,
		EndGapOpenScore:   -1,
		EndGapExtendScore: 0,
	}
}

// Score returns the substitution score of a reference and a query code.
func (s *ScoringMatrix) Score(ref, query nucleotide.Code) int {
	if nucleotide.Compatible(ref, query) {
		return s.MatchScore
	}
	return s.MismatchScore
}

// GapScores returns the open and extend scores of a gap, either at a
// sequence end or internal.
func (s *ScoringMatrix) GapScores(end bool) (open, extend int) {
	if end {
		return s.EndGapOpenScore, s.EndGapExtendScore
	}
	return s.GapOpenScore, s.GapExtendScore
}

// String returns a string representation of the scoring matrix.
func (s *ScoringMatrix) String() string {
	return fmt.Sprintf("ScoringMatrix { match: %d, mismatch: %d, gap_open: %d, gap_extend: %d, end_gap_open: %d, end_gap_extend: %d }",
		s.MatchScore, s.MismatchScore, s.GapOpenScore, s.GapExtendScore, s.EndGapOpenScore, s.EndGapExtendScore)
}
