// Package report renders comparison results as text.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// Translator labels a reference position for display.
type Translator func(int) string

func (tr Translator) label(i int) string {
	if tr == nil {
		return strconv.Itoa(i)
	}
	return tr(i)
}

// AndJoin joins words as an English list: "a", "a and b", "a, b and c".
func AndJoin(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

// ShowDifferences renders a diff as three tab-separated columns:
// replacements, insertions of the left side and insertions of the right
// side.
func ShowDifferences(d *diagnosis.Diff, tr Translator) string {
	repl := make([]string, 0, len(d.Replacements))
	for _, r := range d.Replacements {
		repl = append(repl, fmt.Sprintf("%s (%c vs. %c)", tr.label(r.Position), nucleotide.Encode(r.Left), nucleotide.Encode(r.Right)))
	}
	return strings.Join([]string{
		strings.Join(repl, ", "),
		showInsertions(d.InsLeft, tr),
		showInsertions(d.InsRight, tr),
	}, "\t")
}

func showInsertions(ins map[int][]nucleotide.Code, tr Translator) string {
	parts := make([]string, 0, len(ins))
	for _, k := range sortedKeys(ins) {
		parts = append(parts, fmt.Sprintf("at %s %s", tr.label(k), nucleotide.String(ins[k])))
	}
	return strings.Join(parts, ", ")
}

// TextualDifferences describes a diff in prose, in position order.
func TextualDifferences(d *diagnosis.Diff, tr Translator) string {
	parts := make([]string, 0, len(d.Replacements))
	for _, e := range d.Events() {
		var desc string
		switch e.Kind {
		case diagnosis.Substitution:
			desc = fmt.Sprintf("(%c vs. %c)", nucleotide.Encode(e.Left), nucleotide.Encode(e.Right))
		case diagnosis.Insertion:
			desc = "(insertion " + nucleotide.String(e.Run) + ")"
		case diagnosis.Deletion:
			desc = "(deletion " + nucleotide.String(e.Run) + ")"
		}
		parts = append(parts, tr.label(e.Position)+" "+desc)
	}
	return AndJoin(parts)
}

// ShowDiagDifferences lists the diagnostic states of a group, in position
// order. Only the group's own state is shown.
func ShowDiagDifferences(d *diagnosis.Diff, tr Translator) string {
	parts := make([]string, 0, len(d.Replacements))
	for _, e := range d.Events() {
		var desc string
		switch e.Kind {
		case diagnosis.Substitution:
			desc = fmt.Sprintf("(%c)", nucleotide.Encode(e.Left))
		case diagnosis.Insertion:
			desc = "(insertion " + nucleotide.String(e.Run) + ")"
		case diagnosis.Deletion:
			desc = "(deletion " + nucleotide.String(e.Run) + ")"
		}
		parts = append(parts, tr.label(e.Position)+" "+desc)
	}
	return strings.Join(parts, ", ")
}

// DiagTextualDifferences describes the diagnostic states of a group in
// prose.
func DiagTextualDifferences(d *diagnosis.Diff, tr Translator) string {
	parts := make([]string, 0, len(d.Replacements))
	for _, e := range d.Events() {
		var desc string
		switch e.Kind {
		case diagnosis.Substitution:
			desc = fmt.Sprintf("having a %c", nucleotide.Encode(e.Left))
		case diagnosis.Insertion:
			desc = "having an insertion " + nucleotide.String(e.Run)
		case diagnosis.Deletion:
			desc = "having a deletion " + nucleotide.String(e.Run)
		}
		parts = append(parts, desc+" at position "+tr.label(e.Position))
	}
	return AndJoin(parts)
}

// DiagnosisDescription is the sentence describing one diagnosis. column
// names the kind of group.
func DiagnosisDescription(d diagnosis.Diagnosis, column, reference string, tr Translator) string {
	text := DiagTextualDifferences(d.Diff, tr)
	if text == "" {
		return fmt.Sprintf("%s has no unique diagnostic differences in comparison to the other %s in the data set.", d.Label, column)
	}
	return fmt.Sprintf("%s differs from all other %s in the dataset by %s of the %s reference sequence.", d.Label, column, text, reference)
}

func sortedKeys(m map[int][]nucleotide.Code) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
