// Package nucleotide encodes IUPAC nucleotide symbols as 4-bit sets.
//
// Each Code is a set over {A, C, G, T}: bit 0 is A, bit 1 is C, bit 2 is G
// and bit 3 is T. An ambiguity symbol is the union of the bases it stands
// for, so R (A or G) is A|G. The zero Code means "no data" and is written
// as a gap.
package nucleotide

import (
	"fmt"
	"strings"
)

// Code is a set of nucleotides packed into the low four bits.
type Code uint8

const (
	// Gap denotes the absence of data.
	Gap Code = 0
	A   Code = 1
	C   Code = 2
	G   Code = 4
	T   Code = 8

	// N matches every base.
	N = A | C | G | T
)

// GapSymbol is the letter written for Gap.
const GapSymbol = '-'

// letters is indexed by Code.
const letters = "-ACMGRSVTWYHKDBN"

// ambiguity lists the bases each IUPAC symbol stands for.
var ambiguity = map[byte]string{
	'A': "A",
	'C': "C",
	'G': "G",
	'T': "T",
	'R': "AG",
	'Y': "CT",
	'S': "GC",
	'W': "AT",
	'K': "GT",
	'M': "AC",
	'B': "CGT",
	'D': "AGT",
	'H': "ACT",
	'V': "ACG",
	'N': "ACGT",
}

var (
	decodeTable [256]Code
	validSymbol [256]bool
)

func add(c byte, code Code) {
	decodeTable[c] = code
	validSymbol[c] = true
	lower := c | 0x20
	decodeTable[lower] = code
	validSymbol[lower] = true
}

func init() {
	for code := 1; code < len(letters); code++ {
		add(letters[code], Code(code))
	}
	decodeTable[GapSymbol] = Gap
	validSymbol[GapSymbol] = true

	if err := Validate(); err != nil {
		panic(err)
	}
}

// Validate checks that every ambiguity symbol decodes to the union of the
// bases it stands for and that Encode inverts Decode.
func Validate() error {
	if len(ambiguity) != len(letters)-1 {
		return fmt.Errorf("ambiguity table has %d symbols, want %d", len(ambiguity), len(letters)-1)
	}
	for symbol, bases := range ambiguity {
		var union Code
		for i := 0; i < len(bases); i++ {
			union |= decodeTable[bases[i]]
		}
		if got := decodeTable[symbol]; got != union {
			return fmt.Errorf("symbol %c decodes to %04b, union of %s is %04b", symbol, got, bases, union)
		}
		if Encode(union) != symbol {
			return fmt.Errorf("code %04b encodes to %c, want %c", union, Encode(union), symbol)
		}
	}
	return nil
}

// InvalidSymbolError is returned by Decode for a character outside the
// IUPAC nucleotide alphabet.
type InvalidSymbolError struct {
	Found rune
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid nucleotide symbol '%c'", e.Found)
}

// Decode returns the Code of an IUPAC symbol, case-insensitively. The gap
// symbol decodes to Gap.
func Decode(r rune) (Code, error) {
	if r < 0 || r > 255 || !validSymbol[r] {
		return Gap, &InvalidSymbolError{Found: r}
	}
	return decodeTable[r], nil
}

// Encode returns the upper-case IUPAC letter of code, or the gap symbol for
// Gap.
func Encode(code Code) byte {
	return letters[code&N]
}

// Compatible reports whether a and b share at least one base.
func Compatible(a, b Code) bool {
	return a&b != 0
}

// IsAmbiguous reports whether code stands for more than one base.
func (c Code) IsAmbiguous() bool {
	return c&(c-1) != 0
}

func (c Code) String() string {
	return string(Encode(c))
}

// String writes codes as IUPAC letters.
func String(codes []Code) string {
	var sb strings.Builder
	sb.Grow(len(codes))
	for _, c := range codes {
		sb.WriteByte(Encode(c))
	}
	return sb.String()
}
