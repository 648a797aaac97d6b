// Package alignment provides seed-anchored, ungapped alignment of short
// reads against short fixed references.
//
// A SeedAligner looks for an exact copy of a short seed window of the
// reference inside the query. The seed's offset in the query fixes the
// query's offset against the reference, after which every query position
// is compared to the reference position it lines up with. There is no
// dynamic programming and no gaps: one substring search plus one linear
// pass per read.
package alignment

import (
	"fmt"
	"strings"

	"github.com/aria-lang/fivepseq-go/internal/sequence"
)

// Match markers used in Alignment.Match.
const (
	MatchMarker    = '+'
	MismatchMarker = '-'
)

// ReferenceSeed is a reference sequence together with the half-open seed
// window [SeedStart, SeedEnd) used to anchor queries against it.
type ReferenceSeed struct {
	Reference string
	SeedStart int
	SeedEnd   int
}

// Seed returns the seed substring.
func (r ReferenceSeed) Seed() string {
	return r.Reference[r.SeedStart:r.SeedEnd]
}

// Validate checks the reference alphabet and the seed window. The seed must
// be non-empty, lie within the reference and contain no wildcards.
func (r ReferenceSeed) Validate() error {
	if len(r.Reference) == 0 {
		return &sequence.EmptySequenceError{}
	}
	if err := sequence.ValidateDNA(r.Reference); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if r.SeedStart < 0 || r.SeedStart >= r.SeedEnd || r.SeedEnd > len(r.Reference) {
		return &SeedWindowError{
			Start:  r.SeedStart,
			End:    r.SeedEnd,
			Length: len(r.Reference),
			Reason: "window out of range",
		}
	}
	if sequence.HasWildcard(r.Seed()) {
		return &SeedWindowError{
			Start:  r.SeedStart,
			End:    r.SeedEnd,
			Length: len(r.Reference),
			Reason: "seed contains wildcard",
		}
	}
	return nil
}

// SeedWindowError is returned when a seed window cannot be used.
type SeedWindowError struct {
	Start  int
	End    int
	Length int
	Reason string
}

func (e *SeedWindowError) Error() string {
	return fmt.Sprintf("invalid seed window [%d, %d) for reference of length %d: %s",
		e.Start, e.End, e.Length, e.Reason)
}

// SeedAligner aligns queries against one reference by exact seed search.
type SeedAligner struct {
	ref  ReferenceSeed
	seed string
}

// NewSeedAligner validates ref and precomputes its seed. The reference is
// upper-cased before validation.
func NewSeedAligner(ref ReferenceSeed) (*SeedAligner, error) {
	ref.Reference = strings.ToUpper(ref.Reference)
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return &SeedAligner{ref: ref, seed: ref.Seed()}, nil
}

// MustSeedAligner is like NewSeedAligner but panics on an invalid seed.
// It is meant for package-level references known to be valid.
func MustSeedAligner(ref ReferenceSeed) *SeedAligner {
	a, err := NewSeedAligner(ref)
	if err != nil {
		panic(err)
	}
	return a
}

// Reference returns the reference and seed window the aligner was built with.
func (a *SeedAligner) Reference() ReferenceSeed {
	return a.ref
}

// Seed returns the seed substring searched for in queries.
func (a *SeedAligner) Seed() string {
	return a.seed
}

// Align anchors query on the first exact occurrence of the seed. It reports
// false when the seed does not occur in query; that is the expected outcome
// for reads from other molecules, not an error.
//
// Reference positions that fall outside the reference for the inferred
// offset count as mismatches, so the returned Match always has one marker
// per query symbol.
func (a *SeedAligner) Align(query string) (*Alignment, bool) {
	pos := strings.Index(query, a.seed)
	if pos < 0 {
		return nil, false
	}

	qpos := a.ref.SeedStart - pos
	match := a.matchString(query, qpos)

	return &Alignment{
		Query:    query,
		Match:    match,
		Position: qpos,
		Identity: strings.Count(match, string(MatchMarker)),
	}, true
}

// matchString compares query[i] against reference[offset+i]. A reference
// wildcard matches any query symbol.
func (a *SeedAligner) matchString(query string, offset int) string {
	ref := a.ref.Reference
	var sb strings.Builder
	sb.Grow(len(query))

	for i := 0; i < len(query); i++ {
		j := offset + i
		if j < 0 || j >= len(ref) {
			sb.WriteByte(MismatchMarker)
			continue
		}
		if query[i] == ref[j] || ref[j] == sequence.Wildcard {
			sb.WriteByte(MatchMarker)
		} else {
			sb.WriteByte(MismatchMarker)
		}
	}

	return sb.String()
}
