// Package dnadiagnoser provides a high-level API for finding diagnostic
// nucleotide positions.
//
// Example usage:
//
//	refs, err := dnadiagnoser.LoadReferences("reference_sequences.tab")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	specimens, err := dnadiagnoser.ReadSpecimens("specimens.tab", "species")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := dnadiagnoser.Diagnose(ctx, refs, specimens, "Homo_sapiens_COI", dnadiagnoser.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range res.Diagnoses {
//	    fmt.Println(d.Label, dnadiagnoser.ShowDiagDifferences(d.Diff, res.Translate))
//	}
package dnadiagnoser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/kmer"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/reference"
	"github.com/aria-lang/dnadiagnoser-go/internal/report"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
	"github.com/aria-lang/dnadiagnoser-go/internal/stats"
	"github.com/aria-lang/dnadiagnoser-go/internal/table"
)

// Re-export types for convenience
type (
	Code          = nucleotide.Code
	Sequence      = sequence.Sequence
	Alignment     = alignment.Alignment
	ScoringMatrix = alignment.ScoringMatrix
	Aligner       = alignment.Aligner
	Registry      = reference.Registry
	Specimen      = diagnosis.Specimen
	Options       = diagnosis.Options
	Result        = diagnosis.Result
	Diff          = diagnosis.Diff
	Table         = table.Table
	Report        = report.Report
	SetStats      = stats.SequenceSetStats
	KMerCounter   = kmer.Counter
)

// DefaultReference is the reference used when none is chosen.
const DefaultReference = reference.DefaultName

// NewSequence decodes raw sequence text, trimming gaps and N at both ends.
func NewSequence(text string) (*Sequence, error) {
	return sequence.New(text)
}

// NewAlignedSequence decodes text already in reference coordinates.
func NewAlignedSequence(text string) (*Sequence, error) {
	return sequence.NewAligned(text)
}

// CodesString renders codes as IUPAC letters.
func CodesString(codes []Code) string {
	return nucleotide.String(codes)
}

// DefaultScoring returns the default alignment scores.
func DefaultScoring() *ScoringMatrix {
	return alignment.DefaultDNA()
}

// NewAligner returns an aligner using scoring, or the defaults when nil.
func NewAligner(scoring *ScoringMatrix) (*Aligner, error) {
	return alignment.NewAligner(scoring)
}

// Align moves query into the coordinates of reference with the default
// scores.
func Align(query, ref *Sequence, referenceName string) (*Alignment, error) {
	al, err := alignment.NewAligner(nil)
	if err != nil {
		return nil, err
	}
	return al.Align(query, ref, referenceName)
}

// Union pools two sequences of the same reference frame.
func Union(a, b *Sequence) (*Sequence, error) {
	return sequence.Union(a, b)
}

// Differences compares two sequences of the same reference frame.
func Differences(left, right *Sequence) (*Diff, error) {
	return diagnosis.Differences(left, right)
}

// LoadReferences reads a reference registry file.
func LoadReferences(filename string) (*Registry, error) {
	return reference.LoadFile(filename)
}

// ReadSpecimens reads a specimen table and groups its rows by column.
func ReadSpecimens(filename, column string) ([]Specimen, error) {
	tbl, err := table.ReadFile(filename, logrus.StandardLogger())
	if err != nil {
		return nil, err
	}
	return tbl.Specimens(column)
}

// Diagnose aligns specimens to the named reference and compares their
// groups.
func Diagnose(ctx context.Context, refs *Registry, specimens []Specimen, referenceName string, opts Options) (*Result, error) {
	al, err := alignment.NewAligner(nil)
	if err != nil {
		return nil, err
	}
	return diagnosis.NewProcessor(al, refs, logrus.StandardLogger(), opts).Run(ctx, specimens, referenceName)
}

// WriteReports writes the report files of res into dir.
func WriteReports(res *Result, column, dir string) ([]string, error) {
	return report.New(res, column).WriteDir(dir)
}

// ShowDiagDifferences lists the diagnostic states of a group.
func ShowDiagDifferences(d *Diff, translate func(int) string) string {
	return report.ShowDiagDifferences(d, translate)
}

// Stats summarises specimen sequences and their group sizes.
func Stats(specimens []Specimen) (*SetStats, error) {
	items, err := decodeSpecimens(specimens)
	if err != nil {
		return nil, err
	}
	return stats.FromLabeled(items)
}

// Histograms bins the GC content and length of specimens.
func Histograms(specimens []Specimen, bins int) (*stats.GCHistogram, *stats.LengthHistogram, error) {
	items, err := decodeSpecimens(specimens)
	if err != nil {
		return nil, nil, err
	}
	seqs := make([]*sequence.Sequence, len(items))
	for i, item := range items {
		seqs[i] = item.Sequence
	}
	gc, err := stats.NewGCHistogram(seqs, bins)
	if err != nil {
		return nil, nil, err
	}
	length, err := stats.NewLengthHistogram(seqs, bins)
	if err != nil {
		return nil, nil, err
	}
	return gc, length, nil
}

// KMerProfile counts the k-mers of all specimens together.
func KMerProfile(specimens []Specimen, k int) (*KMerCounter, error) {
	items, err := decodeSpecimens(specimens)
	if err != nil {
		return nil, err
	}
	c, err := kmer.NewCounter(k)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		c.Add(item.Sequence.Data)
	}
	return c, nil
}

// KMerDistance is the Jaccard distance between the distinct k-mers of a
// and b.
func KMerDistance(a, b *Sequence, k int) (float64, error) {
	ca, err := kmer.CountKMers(a, k)
	if err != nil {
		return 0, err
	}
	cb, err := kmer.CountKMers(b, k)
	if err != nil {
		return 0, err
	}
	return ca.JaccardDistance(cb), nil
}

func decodeSpecimens(specimens []Specimen) ([]diagnosis.Labeled, error) {
	items := make([]diagnosis.Labeled, 0, len(specimens))
	for _, sp := range specimens {
		seq, err := sequence.New(sp.Text)
		if err != nil {
			return nil, fmt.Errorf("specimen %s: %w", sp.ID, err)
		}
		items = append(items, diagnosis.Labeled{Label: sp.Label, Sequence: seq})
	}
	return items, nil
}

// ReadFASTA reads specimens from a FASTA file.
func ReadFASTA(filename string) ([]Specimen, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return ParseFASTA(file)
}

// ParseFASTA parses specimens from FASTA. The first word of a header is
// the specimen ID and the rest of the header its label.
func ParseFASTA(r io.Reader) ([]Specimen, error) {
	specimens := make([]Specimen, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var current *Specimen
	var currentBases strings.Builder

	flush := func() {
		if current != nil && currentBases.Len() > 0 {
			current.Text = currentBases.String()
			specimens = append(specimens, *current)
		}
		currentBases.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			flush()
			id, label, _ := strings.Cut(line[1:], " ")
			current = &Specimen{ID: id, Label: strings.TrimSpace(label)}
		} else {
			currentBases.WriteString(line)
		}
	}

	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return specimens, nil
}

// WriteFASTA writes the aligned specimens of res, in reference
// coordinates, to a FASTA file.
func WriteFASTA(filename string, res *Result) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, s := range res.Specimens {
		fmt.Fprintf(w, ">%s %s\n%s\n", s.ID, s.Label, s.Sequence)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing sequences: %w", err)
	}
	return nil
}

// Version returns the DNAdiagnoser version.
func Version() string {
	return "1.0.0"
}

// Info returns information about DNAdiagnoser.
func Info() string {
	return fmt.Sprintf(`DNAdiagnoser v%s - Diagnostic Nucleotide Positions

Features:
  - IUPAC ambiguity-aware nucleotide encoding
  - Affine-gap global alignment against a reference, with end-gap scores
  - Pooling of specimens per group by nucleotide union
  - Pairwise difference matrix and listings between groups
  - Unique diagnostic differences of every group against all others
  - Tab-separated specimen tables and FASTA input
`, Version())
}
