// Package sequence provides nucleotide sequence types with validation.
//
// Reads and references in a 5'-seq library are short DNA strings over
// {A, C, G, T, N}. N is the wildcard symbol: in a reference it marks a
// degenerate (random barcode) position, in a read an uncalled base.
package sequence

import (
	"fmt"
	"strings"
)

// Wildcard is the ambiguous nucleotide symbol.
const Wildcard = 'N'

// ValidDNABases lists the accepted nucleotide symbols.
var ValidDNABases = map[rune]bool{'A': true, 'C': true, 'G': true, 'T': true, 'N': true}

// Sequence represents a validated, upper-cased DNA sequence.
type Sequence struct {
	Bases string
	ID    string
}

// New creates a new DNA sequence with validation.
func New(bases string) (*Sequence, error) {
	normalized := strings.ToUpper(bases)

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}

	if err := ValidateDNA(normalized); err != nil {
		return nil, err
	}

	return &Sequence{Bases: normalized}, nil
}

// WithID creates a new sequence with an identifier.
func WithID(bases, id string) (*Sequence, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	seq, err := New(bases)
	if err != nil {
		return nil, err
	}

	seq.ID = id
	return seq, nil
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// HasAmbiguous checks if the sequence contains any wildcard bases.
func (s *Sequence) HasAmbiguous() bool {
	return HasWildcard(s.Bases)
}

// CountAmbiguous counts the number of wildcard bases.
func (s *Sequence) CountAmbiguous() int {
	return strings.Count(s.Bases, string(Wildcard))
}

// ReverseComplement returns the reverse complement of the sequence.
func (s *Sequence) ReverseComplement() *Sequence {
	return &Sequence{
		Bases: ReverseComplement(s.Bases),
		ID:    s.ID,
	}
}

// String returns a string representation of the sequence.
func (s *Sequence) String() string {
	if s.ID != "" {
		return fmt.Sprintf(">%s\n%s", s.ID, s.Bases)
	}
	return s.Bases
}

// complementBase returns the complement of a DNA base. Anything that is
// not A, C, G or T complements to N.
func complementBase(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return Wildcard
	}
}

// ReverseComplement returns the reverse complement of an upper-case DNA
// string (A<->T, C<->G, N->N).
func ReverseComplement(bases string) string {
	n := len(bases)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complementBase(bases[i])
	}
	return string(out)
}

// HasWildcard reports whether bases contains the wildcard symbol.
func HasWildcard(bases string) bool {
	return strings.IndexByte(bases, Wildcard) >= 0
}

// Prefix returns the first n symbols of bases, or all of bases when it is
// shorter than n. Negative n yields the empty string.
func Prefix(bases string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(bases) {
		return bases
	}
	return bases[:n]
}
