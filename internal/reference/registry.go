// Package reference loads the named reference sequences specimens are
// aligned to.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// DefaultName is the reference used when none is chosen.
const DefaultName = "Homo_sapiens_COI"

// UnknownReferenceError is returned for a name missing from a Registry.
type UnknownReferenceError struct {
	Name string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference sequence %q", e.Name)
}

// Registry maps reference names to sequences. Reference sequences are only
// read once registered.
type Registry struct {
	refs map[string]*sequence.Sequence
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{refs: make(map[string]*sequence.Sequence)}
}

// Add decodes text and registers it under name.
func (r *Registry) Add(name, text string) error {
	if name == "" {
		return fmt.Errorf("reference name cannot be empty")
	}
	seq, err := sequence.New(text)
	if err != nil {
		return fmt.Errorf("reference %s: %w", name, err)
	}
	r.refs[name] = seq
	return nil
}

// Get returns the reference called name.
func (r *Registry) Get(name string) (*sequence.Sequence, error) {
	seq, ok := r.refs[name]
	if !ok {
		return nil, &UnknownReferenceError{Name: name}
	}
	return seq, nil
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.refs))
	for name := range r.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of references.
func (r *Registry) Len() int {
	return len(r.refs)
}

// LoadFile reads a registry from filename.
func LoadFile(filename string) (*Registry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Load reads references either as FASTA or as lines of
// "name<TAB>sequence". Tab-separated lines lacking a name or a sequence
// are skipped.
func Load(rd io.Reader) (*Registry, error) {
	br := bufio.NewReader(rd)
	head, err := br.Peek(1)
	if err == nil && head[0] == '>' {
		return parseFASTA(br)
	}
	return parseTabular(br)
}

func parseTabular(rd io.Reader) (*Registry, error) {
	reg := NewRegistry()
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		name, text, _ := strings.Cut(scanner.Text(), "\t")
		name, text = strings.TrimSpace(name), strings.TrimSpace(text)
		if name == "" || text == "" {
			continue
		}
		if err := reg.Add(name, text); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	return reg, nil
}

func parseFASTA(rd io.Reader) (*Registry, error) {
	reg := NewRegistry()
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var currentName string
	var currentBases strings.Builder

	flush := func() error {
		if currentBases.Len() > 0 {
			if err := reg.Add(currentName, currentBases.String()); err != nil {
				return err
			}
			currentBases.Reset()
		}
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			currentName, _, _ = strings.Cut(line[1:], " ")
		} else {
			currentBases.WriteString(line)
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}

	return reg, nil
}
