package kmer

import (
	"fmt"
	"strings"

	"github.com/aria-lang/fivepseq-go/internal/sequence"
)

// SoftClip is the CIGAR operation code for soft-clipped bases.
const SoftClip = 4

// ClipOp is one CIGAR operation: an operation code (SAM numbering, so
// SoftClip == 4) and a length.
type ClipOp struct {
	Code int
	Len  int
}

// Record is one alignment record as produced by an alignment-file reader.
type Record interface {
	QueryName() string
	IsUnmapped() bool
	IsReverse() bool
	// ClipOps returns the record's CIGAR operations in reference order.
	ClipOps() []ClipOp
	// ReferenceSequence reconstructs the reference bases covered by the
	// alignment, left to right on the forward reference strand.
	ReferenceSequence() (string, error)
}

// FivePrimeSoftClip returns the number of soft-clipped bases at the read's
// 5' end: the first operation for forward-strand reads, the last for
// reverse-strand reads.
func FivePrimeSoftClip(ops []ClipOp, reverse bool) int {
	if len(ops) == 0 {
		return 0
	}
	op := ops[0]
	if reverse {
		op = ops[len(ops)-1]
	}
	if op.Code != SoftClip {
		return 0
	}
	return op.Len
}

// DedupSet records read names that have already been counted.
type DedupSet map[string]struct{}

// Add inserts name and reports whether it was new.
func (s DedupSet) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

// Has reports whether name has been counted.
func (s DedupSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Status is the result of processing one record.
type Status int

const (
	// Counted records contributed a k-mer.
	Counted Status = iota
	// Clipped records have soft-clipped bases at their 5' end.
	Clipped
	// Unmapped records were not placed by the aligner.
	Unmapped
	// Duplicate records name a read that was already counted.
	Duplicate
)

func (s Status) String() string {
	switch s {
	case Counted:
		return "counted"
	case Clipped:
		return "clipped"
	case Unmapped:
		return "unmapped"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Outcome describes what happened to one record. KMer is set only for
// Counted records.
type Outcome struct {
	Status Status
	KMer   string
}

// Stats tallies records over a run.
type Stats struct {
	Total     int
	Clipped   int
	Unmapped  int
	Duplicate int
	Unique    int
}

// ClippedFraction returns Clipped / Total, or 0 for an empty run.
func (s Stats) ClippedFraction() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Clipped) / float64(s.Total)
}

// UniqueFraction returns Unique / Total, or 0 for an empty run.
func (s Stats) UniqueFraction() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Unique) / float64(s.Total)
}

func (s Stats) String() string {
	return fmt.Sprintf("Stats { total: %d, clipped: %d, unmapped: %d, duplicate: %d, unique: %d }",
		s.Total, s.Clipped, s.Unmapped, s.Duplicate, s.Unique)
}

// Extractor keys mapped reads by their 5' k-mer. It is not safe for
// concurrent use.
type Extractor struct {
	k       int
	seen    DedupSet
	counter *Counter
	stats   Stats
}

// NewExtractor creates an extractor producing keys of length k.
func NewExtractor(k int) (*Extractor, error) {
	counter, err := NewCounter(k)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		k:       k,
		seen:    make(DedupSet),
		counter: counter,
	}, nil
}

// Process handles one record. Only a failure to reconstruct the reference
// sequence is an error; every skip is reported through the Outcome.
func (e *Extractor) Process(rec Record) (Outcome, error) {
	e.stats.Total++

	if FivePrimeSoftClip(rec.ClipOps(), rec.IsReverse()) > 0 {
		e.stats.Clipped++
		return Outcome{Status: Clipped}, nil
	}

	if rec.IsUnmapped() {
		e.stats.Unmapped++
		return Outcome{Status: Unmapped}, nil
	}

	name := rec.QueryName()
	if e.seen.Has(name) {
		e.stats.Duplicate++
		return Outcome{Status: Duplicate}, nil
	}

	seq, err := rec.ReferenceSequence()
	if err != nil {
		return Outcome{}, fmt.Errorf("read %s: %w", name, err)
	}
	e.seen.Add(name)
	e.stats.Unique++

	key := FivePrimeKey(seq, rec.IsReverse(), e.k)
	if err := e.counter.Add(key, 1); err != nil {
		return Outcome{}, fmt.Errorf("read %s: %w", name, err)
	}

	return Outcome{Status: Counted, KMer: key}, nil
}

// FivePrimeKey orients a forward-strand reference sequence 5'->3' along the
// read and returns its first k bases.
func FivePrimeKey(refSeq string, reverse bool, k int) string {
	seq := strings.ToUpper(refSeq)
	if reverse {
		seq = sequence.ReverseComplement(seq)
	}
	return sequence.Prefix(seq, k)
}

// Counter returns the k-mer table.
func (e *Extractor) Counter() *Counter {
	return e.counter
}

// Stats returns the run statistics.
func (e *Extractor) Stats() Stats {
	return e.stats
}

// K returns the key length.
func (e *Extractor) K() int {
	return e.k
}
