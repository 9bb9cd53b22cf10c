// Package kmer counts the k-mers of nucleotide sequences.
//
// Only windows made of the four unambiguous bases are counted; a window
// touching a gap or an ambiguity code carries no single k-mer.
package kmer

import (
	"fmt"
	"sort"

	"github.com/aria-lang/dnadiagnoser-go/internal/nucleotide"
	"github.com/aria-lang/dnadiagnoser-go/internal/sequence"
)

// DefaultK is the k-mer size used to check specimens against references.
const DefaultK = 11

// KMerCount represents a k-mer and its count.
type KMerCount struct {
	KMer  string
	Count int
}

// Counter provides k-mer counting functionality.
type Counter struct {
	K      int
	Counts map[string]int
	Total  int
}

// NewCounter creates a new k-mer counter with the specified k value.
func NewCounter(k int) (*Counter, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	return &Counter{K: k, Counts: make(map[string]int)}, nil
}

// CountKMers counts the k-mers of a sequence.
func CountKMers(seq *sequence.Sequence, k int) (*Counter, error) {
	c, err := NewCounter(k)
	if err != nil {
		return nil, err
	}
	c.Add(seq.Data)
	return c, nil
}

// Add counts the k-mers of codes.
func (c *Counter) Add(codes []nucleotide.Code) {
	run := 0
	for i, code := range codes {
		if code.IsAmbiguous() || code == nucleotide.Gap {
			run = 0
			continue
		}
		run++
		if run >= c.K {
			c.Counts[nucleotide.String(codes[i-c.K+1:i+1])]++
			c.Total++
		}
	}
}

// UniqueCount returns the number of distinct k-mers.
func (c *Counter) UniqueCount() int {
	return len(c.Counts)
}

// MostFrequent returns the n most frequent k-mers, ties in lexical order.
func (c *Counter) MostFrequent(n int) []KMerCount {
	out := make([]KMerCount, 0, len(c.Counts))
	for kmer, count := range c.Counts {
		out = append(out, KMerCount{KMer: kmer, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].KMer < out[j].KMer
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Containment returns the fraction of the distinct k-mers of c also found
// in other. ok is false when c holds no k-mer.
func (c *Counter) Containment(other *Counter) (ratio float64, ok bool) {
	if len(c.Counts) == 0 {
		return 0, false
	}
	shared := 0
	for kmer := range c.Counts {
		if _, found := other.Counts[kmer]; found {
			shared++
		}
	}
	return float64(shared) / float64(len(c.Counts)), true
}

// JaccardDistance is 1 - |A ∩ B| / |A ∪ B| over the distinct k-mers.
func (c *Counter) JaccardDistance(other *Counter) float64 {
	shared := 0
	for kmer := range c.Counts {
		if _, found := other.Counts[kmer]; found {
			shared++
		}
	}
	union := len(c.Counts) + len(other.Counts) - shared
	if union == 0 {
		return 0
	}
	return 1 - float64(shared)/float64(union)
}
