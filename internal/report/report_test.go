package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

func TestAndJoin(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AndJoin(tt.words))
	}
}

func sampleDiff() *diagnosis.Diff {
	return &diagnosis.Diff{
		Replacements: []diagnosis.Replacement{
			{Position: 2, Left: nucleotide.G, Right: nucleotide.T},
			{Position: 9, Left: nucleotide.A, Right: nucleotide.Gap},
		},
		InsLeft:  map[int][]nucleotide.Code{5: {nucleotide.A, nucleotide.C}},
		InsRight: map[int][]nucleotide.Code{7: {nucleotide.T}},
		Shared:   map[int][]nucleotide.Code{},
	}
}

func TestShowDifferences(t *testing.T) {
	assert.Equal(t, "2 (G vs. T), 9 (A vs. -)\tat 5 AC\tat 7 T", ShowDifferences(sampleDiff(), nil))

	shifted := Translator(func(i int) string { return strconv.Itoa(i + 100) })
	assert.Equal(t, "102 (G vs. T), 109 (A vs. -)\tat 105 AC\tat 107 T", ShowDifferences(sampleDiff(), shifted))
}

func TestTextualDifferences(t *testing.T) {
	assert.Equal(t,
		"2 (G vs. T), 5 (insertion AC), 7 (deletion T) and 9 (A vs. -)",
		TextualDifferences(sampleDiff(), nil))
}

func TestShowDiagDifferences(t *testing.T) {
	assert.Equal(t,
		"2 (G), 5 (insertion AC), 7 (deletion T), 9 (A)",
		ShowDiagDifferences(sampleDiff(), nil))
	assert.Equal(t, "", ShowDiagDifferences(&diagnosis.Diff{}, nil))
}

func TestDiagTextualDifferences(t *testing.T) {
	assert.Equal(t,
		"having a G at position 2, having an insertion AC at position 5, having a deletion T at position 7 and having a A at position 9",
		DiagTextualDifferences(sampleDiff(), nil))
}

func sampleResult(t *testing.T) *diagnosis.Result {
	t.Helper()
	var items []diagnosis.Labeled
	for label, text := range map[string]string{"x": "ACGA", "y": "ACTT", "z": "ACGT"} {
		s, err := sequence.NewAligned(text)
		require.NoError(t, err)
		items = append(items, diagnosis.Labeled{Label: label, Sequence: s})
	}
	gt, failures := diagnosis.BuildGroupTable(items)
	require.Empty(t, failures)

	m, err := diagnosis.DifferenceMatrix(gt)
	require.NoError(t, err)
	pairs, err := diagnosis.PairwiseReport(gt)
	require.NoError(t, err)
	diags, err := diagnosis.DiagnosticReport(context.Background(), gt, 1)
	require.NoError(t, err)

	return &diagnosis.Result{
		Reference: "ref",
		Specimens: []diagnosis.AlignedSpecimen{{ID: "s1", Label: "x", Display: "ACGT\nACGA"}},
		Groups:    gt,
		Matrix:    m,
		Pairs:     pairs,
		Diagnoses: diags,
	}
}

func render(t *testing.T, write func(w *bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, write(&buf))
	return buf.String()
}

func TestWriteAlignments(t *testing.T) {
	r := New(sampleResult(t), "species")
	out := render(t, func(w *bytes.Buffer) error { return r.WriteAlignments(w) })
	assert.Equal(t, "Alignments:\ns1\nACGT\nACGA\n\n", out)
}

func TestWriteMatrix(t *testing.T) {
	r := New(sampleResult(t), "species")
	out := render(t, func(w *bytes.Buffer) error { return r.WriteMatrix(w) })
	assert.Equal(t, "\tx\ty\tz\nx\t0\ny\t2\t0\nz\t1\t1\t0\n", out)
}

func TestWriteDifferenceTable(t *testing.T) {
	r := New(sampleResult(t), "species")
	out := render(t, func(w *bytes.Buffer) error { return r.WriteDifferenceTable(w) })
	assert.Contains(t, out, "species 1\tspecies 2\treplacements\tinsertions 1\tinsertions 2\n")
	assert.Contains(t, out, "x\ty\t2 (G vs. T), 3 (A vs. T)\t\t\n")
	assert.Contains(t, out, "y\tx\t2 (T vs. G), 3 (T vs. A)\t\t\n")
}

func TestWriteDifferencesDescription(t *testing.T) {
	r := New(sampleResult(t), "species")
	out := render(t, func(w *bytes.Buffer) error { return r.WriteDifferencesDescription(w) })
	assert.Contains(t, out,
		"Using nucleotide positions in the ref sequence as a reference, x differs "+
			"from y in nucleotide positions 2 (G vs. T) and 3 (A vs. T) "+
			"and from z in nucleotide position 3 (A vs. T)\n\n")
}

func TestWriteDiagnostics(t *testing.T) {
	r := New(sampleResult(t), "species")

	table := render(t, func(w *bytes.Buffer) error { return r.WriteDiagnosticTable(w) })
	assert.Equal(t, "species\tUnique diagnostic differences\nx\t3 (A)\ny\t2 (T)\nz\tNone\n", table)

	text := render(t, func(w *bytes.Buffer) error { return r.WriteDiagnosticsDescription(w) })
	assert.Contains(t, text, "x differs from all other species in the dataset by having a A at position 3 of the ref reference sequence.\n")
	assert.Contains(t, text, "z has no unique diagnostic differences in comparison to the other species in the data set.\n")
}

func TestWriteDiagnosticsUnavailable(t *testing.T) {
	res := sampleResult(t)
	res.Diagnoses = nil
	res.DiagnosticsErr = &diagnosis.EmptyGroupError{Groups: 1}

	r := New(res, "species")
	text := render(t, func(w *bytes.Buffer) error { return r.WriteDiagnosticsDescription(w) })
	assert.Contains(t, text, "No diagnostic comparison possible")

	table := render(t, func(w *bytes.Buffer) error { return r.WriteDiagnosticTable(w) })
	assert.Equal(t, "species\tUnique diagnostic differences\nNo diagnostic comparison possible: "+res.DiagnosticsErr.Error()+".\n", table)
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := New(sampleResult(t), "species").WriteDir(dir)
	require.NoError(t, err)
	require.Len(t, paths, 6)

	for _, name := range []string{"Aligments.txt", "Difference_matrix.txt", "Difference_table.txt",
		"Differences_description.txt", "Diagnostic_table.txt", "Diagnostics_description.txt"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}
