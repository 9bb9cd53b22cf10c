package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when text holds no nucleotide data.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidSymbolError is returned when a character is not an IUPAC
// nucleotide symbol.
type InvalidSymbolError struct {
	Position int
	Found    rune
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidSymbolError) IsSequenceError() {}

// IncompatibleLengthsError is returned when two sequences are expressed in
// different reference coordinate systems, or when aligned input does not
// have the length of its reference.
type IncompatibleLengthsError struct {
	Left        string
	Right       string
	LeftLength  int
	RightLength int
}

func (e *IncompatibleLengthsError) Error() string {
	if e.LeftLength != e.RightLength {
		return fmt.Sprintf("sequence of length %d does not fit reference %q of length %d; the sequences seem to not be aligned",
			e.LeftLength, e.Right, e.RightLength)
	}
	return fmt.Sprintf("sequences aligned to different references %q and %q", e.Left, e.Right)
}

func (e *IncompatibleLengthsError) IsSequenceError() {}
