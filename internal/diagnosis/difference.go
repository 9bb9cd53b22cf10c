// Package diagnosis finds the nucleotide positions that tell groups of
// specimens apart.
//
// Specimens aligned to a common reference are pooled per group with
// sequence.Union. Two pooled sequences differ at a position when their
// codes share no base; a group is diagnosed by comparing it against the
// union of every other group, which keeps only the states no other group
// can have.
package diagnosis

import (
	"sort"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// Replacement is an aligned position where the two sides are incompatible.
type Replacement struct {
	Position int             `json:"position"`
	Left     nucleotide.Code `json:"left"`
	Right    nucleotide.Code `json:"right"`
}

// Diff lists the differences between a left and a right sequence.
//
// InsLeft and InsRight hold insertions found on one side only. Keys with an
// insertion on both sides carry no diagnostic value; they are left out of
// both maps and Shared keeps the left run for display.
type Diff struct {
	Replacements []Replacement
	InsLeft      map[int][]nucleotide.Code
	InsRight     map[int][]nucleotide.Code
	Shared       map[int][]nucleotide.Code
}

// Differences compares two sequences of the same reference frame over the
// window where both carry data.
func Differences(left, right *sequence.Sequence) (*Diff, error) {
	if _, err := sequence.CommonReference(left, right); err != nil {
		return nil, err
	}

	d := &Diff{
		InsLeft:  make(map[int][]nucleotide.Code),
		InsRight: make(map[int][]nucleotide.Code),
		Shared:   make(map[int][]nucleotide.Code),
	}

	lo, hi := max(left.Start, right.Start), min(left.End, right.End)
	for i := lo; i < hi; i++ {
		l, r := codeAt(left.Data, i), codeAt(right.Data, i)
		if (l|r) != nucleotide.Gap && !nucleotide.Compatible(l, r) {
			d.Replacements = append(d.Replacements, Replacement{Position: i, Left: l, Right: r})
		}
	}

	for k, run := range left.Insertions {
		if _, ok := right.Insertions[k]; ok {
			d.Shared[k] = run
		} else {
			d.InsLeft[k] = run
		}
	}
	for k, run := range right.Insertions {
		if _, ok := left.Insertions[k]; !ok {
			d.InsRight[k] = run
		}
	}

	return d, nil
}

// codeAt reads data as if padded with gaps.
func codeAt(data []nucleotide.Code, i int) nucleotide.Code {
	if i < len(data) {
		return data[i]
	}
	return nucleotide.Gap
}

// Count is the difference count: replacements plus the total length of
// one-sided insertions.
func (d *Diff) Count() int {
	n := len(d.Replacements)
	for _, run := range d.InsLeft {
		n += len(run)
	}
	for _, run := range d.InsRight {
		n += len(run)
	}
	return n
}

// Empty reports whether the two sides did not differ.
func (d *Diff) Empty() bool {
	return len(d.Replacements) == 0 && len(d.InsLeft) == 0 && len(d.InsRight) == 0
}

// Swap returns the same differences seen from the other side.
func (d *Diff) Swap() *Diff {
	repl := make([]Replacement, len(d.Replacements))
	for i, r := range d.Replacements {
		repl[i] = Replacement{Position: r.Position, Left: r.Right, Right: r.Left}
	}
	return &Diff{
		Replacements: repl,
		InsLeft:      d.InsRight,
		InsRight:     d.InsLeft,
		Shared:       d.Shared,
	}
}

// Event is one reported difference, ordered by position for display.
type Event struct {
	Position int
	Kind     EventKind
	Left     nucleotide.Code
	Right    nucleotide.Code
	Run      []nucleotide.Code
}

// EventKind tells what an Event describes.
type EventKind int

const (
	// Substitution is an incompatible aligned position.
	Substitution EventKind = iota
	// Insertion is content present only on the left.
	Insertion
	// Deletion is content present only on the right.
	Deletion
)

// Events flattens the diff into position order. Events at the same
// position keep the order substitution, insertion, deletion.
func (d *Diff) Events() []Event {
	events := make([]Event, 0, len(d.Replacements)+len(d.InsLeft)+len(d.InsRight))
	for _, r := range d.Replacements {
		events = append(events, Event{Position: r.Position, Kind: Substitution, Left: r.Left, Right: r.Right})
	}
	for _, k := range sortedKeys(d.InsLeft) {
		events = append(events, Event{Position: k, Kind: Insertion, Run: d.InsLeft[k]})
	}
	for _, k := range sortedKeys(d.InsRight) {
		events = append(events, Event{Position: k, Kind: Deletion, Run: d.InsRight[k]})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Position < events[j].Position
	})
	return events
}

func sortedKeys(m map[int][]nucleotide.Code) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
