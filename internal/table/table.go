// Package table reads the tab-separated specimen tables the diagnoser
// consumes.
//
// A table has a header row naming its columns. Column names are case
// folded and a few common variants are renamed: specimen_voucher and
// specimen_id become specimenid, sequences becomes sequence. The sequence
// column is mandatory; every other column except specimenid can be used to
// group specimens.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aria-lang/dnadiagnoser-go/internal/diagnosis"
)

const (
	// SequenceColumn holds the raw sequences.
	SequenceColumn = "sequence"
	// IDColumn holds specimen identifiers.
	IDColumn = "specimenid"
	// DefaultColumn is the grouping column used when none is chosen.
	DefaultColumn = "species"
)

var typos = map[string]string{
	"specimen_voucher": IDColumn,
	"specimen_id":      IDColumn,
	"sequences":        SequenceColumn,
}

// ErrMissingSequence is returned for a table without a sequence column.
var ErrMissingSequence = errors.New("'sequences' or 'sequence' column is missing")

// ErrNoGroupColumn is returned for a table with nothing to group by.
var ErrNoGroupColumn = errors.New("'species' or another column need to be present")

// UnknownColumnError is returned when grouping by a column the table lacks.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q is not present in the table", e.Column)
}

// Table is a specimen table held in memory.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
	hasIDs  bool
}

// ReadFile reads a table from filename.
func ReadFile(filename string, log logrus.FieldLogger) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return Read(file, log)
}

// Read parses a tab-separated table. A table without specimen IDs is
// accepted with a warning; its rows are then numbered from 0.
func Read(rd io.Reader, log logrus.FieldLogger) (*Table, error) {
	r := csv.NewReader(rd)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrMissingSequence
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := &Table{index: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if fixed, ok := typos[name]; ok {
			name = fixed
		}
		t.columns = append(t.columns, name)
		t.index[name] = i
	}

	if _, ok := t.index[SequenceColumn]; !ok {
		return nil, ErrMissingSequence
	}
	_, t.hasIDs = t.index[IDColumn]
	if !t.hasIDs && log != nil {
		log.Warn("Specimen IDs are not detected")
	}
	if len(t.GroupColumns()) == 0 {
		return nil, ErrNoGroupColumn
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading table: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		t.rows = append(t.rows, record)
	}

	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the normalised column names in file order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// GroupColumns returns the columns specimens can be grouped by.
func (t *Table) GroupColumns() []string {
	var out []string
	for _, c := range t.columns {
		if c != SequenceColumn && c != IDColumn {
			out = append(out, c)
		}
	}
	return out
}

// Choices lists the distinct values of every grouping column, in order of
// first appearance.
func (t *Table) Choices() map[string][]string {
	out := make(map[string][]string)
	for _, c := range t.GroupColumns() {
		seen := make(map[string]bool)
		values := []string{}
		for _, row := range t.rows {
			v := t.cell(row, c)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		out[c] = values
	}
	return out
}

// Specimens returns the rows labelled by column. Rows with no value in
// column are not part of any group and are left out.
func (t *Table) Specimens(column string) ([]diagnosis.Specimen, error) {
	if column == SequenceColumn || column == IDColumn {
		return nil, &UnknownColumnError{Column: column}
	}
	if _, ok := t.index[column]; !ok {
		return nil, &UnknownColumnError{Column: column}
	}

	out := make([]diagnosis.Specimen, 0, len(t.rows))
	for i, row := range t.rows {
		label := t.cell(row, column)
		if label == "" {
			continue
		}
		id := strconv.Itoa(i)
		if t.hasIDs {
			id = t.cell(row, IDColumn)
		}
		out = append(out, diagnosis.Specimen{
			ID:    id,
			Label: label,
			Text:  t.cell(row, SequenceColumn),
		})
	}
	return out, nil
}

func (t *Table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
