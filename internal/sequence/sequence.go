// Package sequence provides the packed, ambiguity-aware DNA sequence type.
//
// A Sequence is a dense array of nucleotide codes together with a sparse
// record of insertions relative to a reference coordinate system and the
// window [Start, End) of the array that carries data. Sequences are built
// from text, re-expressed once in reference coordinates by the aligner and
// then only read: Union and the difference engine produce new values.
package sequence

import (
	"maps"
	"slices"
	"sort"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
)

// Sequence is a DNA sequence in the coordinate frame of its Data array.
//
// Insertions maps a reference position to a run of query content that has
// no counterpart in the reference; the run belongs just before that
// position. Reference names the reference the sequence was aligned to and
// is empty for sequences in their own frame.
type Sequence struct {
	Data       []nucleotide.Code
	Insertions map[int][]nucleotide.Code
	Start      int
	End        int
	Reference  string
}

// FromText decodes text into a Sequence.
//
// With trimEdges, leading and trailing gaps and N symbols are dropped, which
// suits raw sequencer output. Without it the text is kept as is, as for
// input that is already aligned, and Start/End bracket the non-gap content.
func FromText(text string, trimEdges bool) (*Sequence, error) {
	data := make([]nucleotide.Code, 0, len(text))
	for i, r := range text {
		code, err := nucleotide.Decode(r)
		if err != nil {
			return nil, &InvalidSymbolError{Position: i, Found: r}
		}
		data = append(data, code)
	}

	if trimEdges {
		first, last := 0, len(data)
		for first < last && isEdgeFiller(data[first]) {
			first++
		}
		for last > first && isEdgeFiller(data[last-1]) {
			last--
		}
		data = data[first:last]
	}

	start, end := contentWindow(data)
	if start == end {
		return nil, &EmptySequenceError{}
	}

	return &Sequence{
		Data:       data,
		Insertions: make(map[int][]nucleotide.Code),
		Start:      start,
		End:        end,
	}, nil
}

// Fit declares s, decoded from aligned text, to be in the coordinates of
// the reference called name. s must have the reference's length.
func (s *Sequence) Fit(reference *Sequence, name string) error {
	if s.Len() != reference.Len() {
		return &IncompatibleLengthsError{Right: name, LeftLength: s.Len(), RightLength: reference.Len()}
	}
	s.Reference = name
	return nil
}

// New decodes raw, unaligned text, trimming filler at both ends.
func New(text string) (*Sequence, error) {
	return FromText(text, true)
}

// NewAligned decodes text that is already expressed in reference
// coordinates.
func NewAligned(text string) (*Sequence, error) {
	return FromText(text, false)
}

func isEdgeFiller(c nucleotide.Code) bool {
	return c == nucleotide.Gap || c == nucleotide.N
}

// contentWindow returns the first and one-past-last positions holding a
// non-gap code. An all-gap array yields an empty window at 0.
func contentWindow(data []nucleotide.Code) (int, int) {
	start := 0
	for start < len(data) && data[start] == nucleotide.Gap {
		start++
	}
	if start == len(data) {
		return 0, 0
	}
	end := len(data)
	for data[end-1] == nucleotide.Gap {
		end--
	}
	return start, end
}

// Len returns the length of the Data array.
func (s *Sequence) Len() int {
	return len(s.Data)
}

// Replace swaps in new contents. It is the only mutation a Sequence goes
// through and is used by the aligner to move it into reference coordinates.
func (s *Sequence) Replace(data []nucleotide.Code, insertions map[int][]nucleotide.Code, start, end int, reference string) {
	if insertions == nil {
		insertions = make(map[int][]nucleotide.Code)
	}
	*s = Sequence{
		Data:       data,
		Insertions: insertions,
		Start:      start,
		End:        end,
		Reference:  reference,
	}
}

// ResetInsertions forgets every recorded insertion.
func (s *Sequence) ResetInsertions() {
	s.Insertions = make(map[int][]nucleotide.Code)
}

// Clone returns a deep copy.
func (s *Sequence) Clone() *Sequence {
	ins := make(map[int][]nucleotide.Code, len(s.Insertions))
	for k, run := range s.Insertions {
		ins[k] = slices.Clone(run)
	}
	return &Sequence{
		Data:       slices.Clone(s.Data),
		Insertions: ins,
		Start:      s.Start,
		End:        s.End,
		Reference:  s.Reference,
	}
}

// InsertionKeys returns the insertion positions in increasing order.
func (s *Sequence) InsertionKeys() []int {
	keys := make([]int, 0, len(s.Insertions))
	for k := range s.Insertions {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// CountAmbiguous counts positions holding more than one possible base.
func (s *Sequence) CountAmbiguous() int {
	count := 0
	for _, c := range s.Data {
		if c.IsAmbiguous() {
			count++
		}
	}
	return count
}

// Coverage returns the number of positions inside [Start, End) that carry
// data.
func (s *Sequence) Coverage() int {
	count := 0
	for _, c := range s.Data[s.Start:s.End] {
		if c != nucleotide.Gap {
			count++
		}
	}
	return count
}

// String returns the data array as IUPAC letters.
func (s *Sequence) String() string {
	return nucleotide.String(s.Data)
}

// Equal compares every field but Reference.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil {
		return false
	}
	return s.Start == other.Start && s.End == other.End &&
		slices.Equal(s.Data, other.Data) &&
		maps.EqualFunc(s.Insertions, other.Insertions, func(a, b []nucleotide.Code) bool {
			return slices.Equal(a, b)
		})
}
