package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
)

// Output file names, without extension.
const (
	AlignmentsFile             = "Aligments"
	DifferenceMatrixFile       = "Difference_matrix"
	DifferenceTableFile        = "Difference_table"
	DifferencesDescriptionFile = "Differences_description"
	DiagnosticTableFile        = "Diagnostic_table"
	DiagnosticsDescriptionFile = "Diagnostics_description"
)

// Report renders one comparison result.
type Report struct {
	Result *diagnosis.Result
	// Column names the grouping column in headers and prose.
	Column string
}

// New returns a report of res grouped by column.
func New(res *diagnosis.Result, column string) *Report {
	return &Report{Result: res, Column: column}
}

func (r *Report) translator() Translator {
	return r.Result.Translate
}

// WriteDir writes every report file into dir, creating it when needed.
// It returns the paths written.
func (r *Report) WriteDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{AlignmentsFile, r.WriteAlignments},
		{DifferenceMatrixFile, r.WriteMatrix},
		{DifferenceTableFile, r.WriteDifferenceTable},
		{DifferencesDescriptionFile, r.WriteDifferencesDescription},
		{DiagnosticTableFile, r.WriteDiagnosticTable},
		{DiagnosticsDescriptionFile, r.WriteDiagnosticsDescription},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name+".txt")
		if err := writeFile(path, f.write); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteAlignments lists every specimen with its alignment display.
func (r *Report) WriteAlignments(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Alignments:")
	for _, s := range r.Result.Specimens {
		fmt.Fprintln(bw, s.ID)
		fmt.Fprintln(bw, s.Display)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

// WriteMatrix writes the lower triangle of the difference matrix,
// diagonal included.
func (r *Report) WriteMatrix(w io.Writer) error {
	bw := bufio.NewWriter(w)
	m := r.Result.Matrix
	for _, label := range m.Labels {
		fmt.Fprint(bw, "\t", label)
	}
	fmt.Fprintln(bw)
	for i, label := range m.Labels {
		fmt.Fprint(bw, label)
		for j := 0; j <= i; j++ {
			fmt.Fprint(bw, "\t", m.At(i, j))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteDifferenceTable writes one row per ordered pair of groups.
func (r *Report) WriteDifferenceTable(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%[1]s 1\t%[1]s 2\treplacements\tinsertions 1\tinsertions 2\n", r.Column)
	for _, p := range r.Result.Pairs {
		fmt.Fprintf(bw, "%s\t%s\t%s\n", p.Left, p.Right, ShowDifferences(p.Diff, r.translator()))
	}
	return bw.Flush()
}

// WriteDifferencesDescription describes how each group differs from each
// other group.
func (r *Report) WriteDifferencesDescription(w io.Writer) error {
	bw := bufio.NewWriter(w)

	byLeft := make(map[string][]diagnosis.PairDiff)
	for _, p := range r.Result.Pairs {
		byLeft[p.Left] = append(byLeft[p.Left], p)
	}

	for _, label := range r.Result.Groups.Labels() {
		fmt.Fprintf(bw, "Using nucleotide positions in the %s sequence as a reference, %s differs ", r.Result.Reference, label)
		var fragments []string
		for _, p := range byLeft[label] {
			n := p.Diff.Count()
			if n == 0 {
				continue
			}
			noun := "positions"
			if n == 1 {
				noun = "position"
			}
			fragments = append(fragments, fmt.Sprintf("from %s in nucleotide %s %s", p.Right, noun, TextualDifferences(p.Diff, r.translator())))
		}
		fmt.Fprint(bw, AndJoin(fragments), "\n\n")
	}
	return bw.Flush()
}

// WriteDiagnosticTable writes the diagnostic states of each group, or None.
func (r *Report) WriteDiagnosticTable(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\tUnique diagnostic differences\n", r.Column)
	if r.Result.DiagnosticsErr != nil {
		writeUnavailable(bw, r.Result.DiagnosticsErr)
		return bw.Flush()
	}
	for _, d := range r.Result.Diagnoses {
		text := ShowDiagDifferences(d.Diff, r.translator())
		if text == "" {
			text = "None"
		}
		fmt.Fprintf(bw, "%s\t%s\n", d.Label, text)
	}
	return bw.Flush()
}

// WriteDiagnosticsDescription describes the diagnostic states of each group
// in prose.
func (r *Report) WriteDiagnosticsDescription(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if r.Result.DiagnosticsErr != nil {
		writeUnavailable(bw, r.Result.DiagnosticsErr)
		return bw.Flush()
	}
	for _, d := range r.Result.Diagnoses {
		fmt.Fprintln(bw, DiagnosisDescription(d, r.Column, r.Result.Reference, r.translator()))
	}
	return bw.Flush()
}

func writeUnavailable(w io.Writer, err error) {
	fmt.Fprintf(w, "No diagnostic comparison possible: %v.\n", err)
}
