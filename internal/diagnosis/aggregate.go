package diagnosis

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// EmptyGroupError is returned when a group cannot be compared against the
// others because there are no others.
type EmptyGroupError struct {
	Groups int
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("diagnosis needs at least two groups, have %d", e.Groups)
}

// Labeled is an aligned sequence with its group label.
type Labeled struct {
	Label    string
	Sequence *sequence.Sequence
}

// GroupTable holds one pooled sequence per label, in label order.
type GroupTable struct {
	labels []string
	groups map[string]*sequence.Sequence
}

// BuildGroupTable pools the sequences of each label with sequence.Union.
// A label whose members cannot be pooled is reported as a Failure and left
// out of the table.
func BuildGroupTable(items []Labeled) (*GroupTable, []Failure) {
	members := make(map[string][]*sequence.Sequence)
	for _, item := range items {
		members[item.Label] = append(members[item.Label], item.Sequence)
	}

	gt := &GroupTable{groups: make(map[string]*sequence.Sequence, len(members))}
	var failures []Failure
	for label, seqs := range members {
		pooled, err := sequence.UnionAll(seqs)
		if err != nil {
			failures = append(failures, Failure{Label: label, Err: err})
			continue
		}
		gt.groups[label] = pooled
		gt.labels = append(gt.labels, label)
	}
	sort.Strings(gt.labels)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Label < failures[j].Label })

	return gt, failures
}

// Labels returns the group labels in order.
func (gt *GroupTable) Labels() []string {
	return slices.Clone(gt.labels)
}

// Len returns the number of groups.
func (gt *GroupTable) Len() int {
	return len(gt.labels)
}

// Get returns the pooled sequence of label.
func (gt *GroupTable) Get(label string) (*sequence.Sequence, bool) {
	s, ok := gt.groups[label]
	return s, ok
}

// Select keeps only the given labels. An empty selection keeps all.
func (gt *GroupTable) Select(labels []string) *GroupTable {
	if len(labels) == 0 {
		return gt
	}
	out := &GroupTable{groups: make(map[string]*sequence.Sequence)}
	for _, label := range gt.labels {
		if slices.Contains(labels, label) {
			out.labels = append(out.labels, label)
			out.groups[label] = gt.groups[label]
		}
	}
	return out
}

// rest pools every group but label.
func (gt *GroupTable) rest(label string) (*sequence.Sequence, error) {
	others := make([]*sequence.Sequence, 0, len(gt.labels)-1)
	for _, l := range gt.labels {
		if l != label {
			others = append(others, gt.groups[l])
		}
	}
	return sequence.UnionAll(others)
}

// Matrix is the symmetric table of difference counts between groups.
type Matrix struct {
	Labels []string
	Counts [][]int
}

// At returns the count between groups i and j.
func (m *Matrix) At(i, j int) int {
	return m.Counts[i][j]
}

// DifferenceMatrix counts the differences of every pair of groups.
func DifferenceMatrix(gt *GroupTable) (*Matrix, error) {
	n := gt.Len()
	m := &Matrix{Labels: gt.Labels(), Counts: make([][]int, n)}
	for i := range m.Counts {
		m.Counts[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := Differences(gt.groups[gt.labels[i]], gt.groups[gt.labels[j]])
			if err != nil {
				return nil, fmt.Errorf("comparing %s and %s: %w", gt.labels[i], gt.labels[j], err)
			}
			m.Counts[i][j] = d.Count()
			m.Counts[j][i] = m.Counts[i][j]
		}
	}
	return m, nil
}

// PairDiff is the difference listing of one ordered pair of groups.
type PairDiff struct {
	Left  string
	Right string
	Diff  *Diff
}

// PairwiseReport compares every ordered pair of distinct groups.
func PairwiseReport(gt *GroupTable) ([]PairDiff, error) {
	pairs := make([]PairDiff, 0, gt.Len()*(gt.Len()-1))
	for _, l := range gt.labels {
		for _, r := range gt.labels {
			if l == r {
				continue
			}
			d, err := Differences(gt.groups[l], gt.groups[r])
			if err != nil {
				return nil, fmt.Errorf("comparing %s and %s: %w", l, r, err)
			}
			pairs = append(pairs, PairDiff{Left: l, Right: r, Diff: d})
		}
	}
	return pairs, nil
}

// Diagnosis is the comparison of one group against all others pooled. An
// empty Diff means the group has no unique diagnostic difference.
type Diagnosis struct {
	Label string
	Diff  *Diff
}

// DiagnosticReport compares every group against the union of the others.
// Groups are processed concurrently, at most workers at a time; workers
// below one means no limit.
func DiagnosticReport(ctx context.Context, gt *GroupTable, workers int) ([]Diagnosis, error) {
	if gt.Len() < 2 {
		return nil, &EmptyGroupError{Groups: gt.Len()}
	}

	out := make([]Diagnosis, gt.Len())
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, label := range gt.labels {
		i, label := i, label
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rest, err := gt.rest(label)
			if err != nil {
				return fmt.Errorf("pooling groups other than %s: %w", label, err)
			}
			d, err := Differences(gt.groups[label], rest)
			if err != nil {
				return fmt.Errorf("diagnosing %s: %w", label, err)
			}
			out[i] = Diagnosis{Label: label, Diff: d}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
