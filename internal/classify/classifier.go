// Package classify assigns seed-aligned reads to grouping keys and counts
// them.
//
// A Classifier holds an ordered list of targets, each a labelled
// SeedAligner. Reads are tried against the targets in order and the first
// target whose seed is found wins. Control targets (spike-ins) collapse
// into a single bucket per label; every other read is keyed by the part of
// its sequence that precedes the fixed downstream region of the reference,
// so reads that differ only by late sequencing errors share a bucket.
package classify

import (
	"fmt"
	"strings"

	"github.com/aria-lang/fivepseq-go/internal/alignment"
	"github.com/aria-lang/fivepseq-go/internal/sequence"
)

// Defaults for the 5'-seq reporter library layout.
const (
	// DefaultQueryWindow is how many leading read symbols are aligned.
	DefaultQueryWindow = 30
	// DefaultAmbiguousPrefix is how many leading symbols must be free of N.
	DefaultAmbiguousPrefix = 10
	// DefaultKeyRandomLength is the length of the random barcode segment.
	DefaultKeyRandomLength = 7
	// DefaultKeyAnchorOffset is the reference coordinate of the barcode's
	// first base.
	DefaultKeyAnchorOffset = 22
)

// Target is a labelled aligner. Reads matching a Control target are counted
// in one bucket keyed by Label.
type Target struct {
	Label   string
	Control bool
	Aligner *alignment.SeedAligner
}

// Options tune read handling.
type Options struct {
	// QueryWindow is the number of leading read symbols aligned.
	QueryWindow int
	// AmbiguousPrefix reads with an N among their first AmbiguousPrefix
	// symbols are rejected.
	AmbiguousPrefix int
	// KeyRandomLength and KeyAnchorOffset set the grouping key length:
	// KeyRandomLength + (KeyAnchorOffset - position).
	KeyRandomLength int
	KeyAnchorOffset int
	// MaxReads stops classification once more than MaxReads reads have been
	// classified. Zero means no limit.
	MaxReads uint64
}

// DefaultOptions returns the options used for the reporter library.
func DefaultOptions() Options {
	return Options{
		QueryWindow:     DefaultQueryWindow,
		AmbiguousPrefix: DefaultAmbiguousPrefix,
		KeyRandomLength: DefaultKeyRandomLength,
		KeyAnchorOffset: DefaultKeyAnchorOffset,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.QueryWindow <= 0 {
		return fmt.Errorf("query window must be positive, got %d", o.QueryWindow)
	}
	if o.AmbiguousPrefix < 0 {
		return fmt.Errorf("ambiguous prefix must be non-negative, got %d", o.AmbiguousPrefix)
	}
	if o.KeyRandomLength < 0 {
		return fmt.Errorf("key random length must be non-negative, got %d", o.KeyRandomLength)
	}
	return nil
}

// KeyLength returns the grouping key length for an alignment at position,
// clamped to [0, queryLen].
func (o Options) KeyLength(position, queryLen int) int {
	n := o.KeyRandomLength + (o.KeyAnchorOffset - position)
	if n < 0 {
		return 0
	}
	if n > queryLen {
		return queryLen
	}
	return n
}

// Status is the result of classifying one read.
type Status int

const (
	// Rejected reads have a wildcard in their leading symbols.
	Rejected Status = iota
	// Unmatched reads contain none of the targets' seeds.
	Unmatched
	// Classified reads were counted in the table.
	Classified
)

func (s Status) String() string {
	switch s {
	case Rejected:
		return "rejected"
	case Unmatched:
		return "unmatched"
	case Classified:
		return "classified"
	default:
		return "unknown"
	}
}

// Outcome describes what happened to one read. Target, Key and Alignment are
// set only for Classified reads.
type Outcome struct {
	Status    Status
	Target    string
	Key       Key
	Alignment *alignment.Alignment
}

// Stats tallies outcomes over a run.
type Stats struct {
	Total      uint64
	Rejected   uint64
	Unmatched  uint64
	Classified uint64
	// PerTarget counts classified reads by target label.
	PerTarget map[string]uint64
}

// ClassifiedFraction returns Classified / Total, or 0 for an empty run.
func (s Stats) ClassifiedFraction() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Classified) / float64(s.Total)
}

func (s Stats) String() string {
	return fmt.Sprintf("Stats { total: %d, classified: %d, unmatched: %d, rejected: %d }",
		s.Total, s.Classified, s.Unmatched, s.Rejected)
}

// Classifier drives the targets over a stream of reads and owns the
// aggregation table. It is not safe for concurrent use.
type Classifier struct {
	targets []Target
	opts    Options
	table   *Table
	stats   Stats
}

// New creates a classifier. Targets are tried in the given order; labels
// must be unique and non-empty.
func New(targets []Target, opts Options) (*Classifier, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(targets))
	for i, t := range targets {
		if t.Label == "" {
			return nil, fmt.Errorf("target %d: label cannot be empty", i)
		}
		if seen[t.Label] {
			return nil, fmt.Errorf("target %d: duplicate label %q", i, t.Label)
		}
		if t.Aligner == nil {
			return nil, fmt.Errorf("target %q: aligner is nil", t.Label)
		}
		seen[t.Label] = true
	}

	return &Classifier{
		targets: append([]Target(nil), targets...),
		opts:    opts,
		table:   NewTable(),
		stats:   Stats{PerTarget: make(map[string]uint64, len(targets))},
	}, nil
}

// Targets returns the targets in priority order.
func (c *Classifier) Targets() []Target {
	return append([]Target(nil), c.targets...)
}

// Options returns the classifier's options.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify aligns one raw read and, if it is classified, counts it.
func (c *Classifier) Classify(read string) Outcome {
	c.stats.Total++

	query := sequence.Prefix(strings.ToUpper(read), c.opts.QueryWindow)
	if sequence.HasWildcard(sequence.Prefix(query, c.opts.AmbiguousPrefix)) {
		c.stats.Rejected++
		return Outcome{Status: Rejected}
	}

	for _, t := range c.targets {
		al, ok := t.Aligner.Align(query)
		if !ok {
			continue
		}

		var key Key
		if t.Control {
			key = Control(t.Label)
		} else {
			key = Sequence(query[:c.opts.KeyLength(al.Position, len(query))])
		}

		c.table.Add(key, al)
		c.stats.Classified++
		c.stats.PerTarget[t.Label]++
		return Outcome{Status: Classified, Target: t.Label, Key: key, Alignment: al}
	}

	c.stats.Unmatched++
	return Outcome{Status: Unmatched}
}

// Done reports whether the MaxReads cap has been passed.
func (c *Classifier) Done() bool {
	return c.opts.MaxReads > 0 && c.stats.Classified > c.opts.MaxReads
}

// Table returns the aggregation table.
func (c *Classifier) Table() *Table {
	return c.table
}

// Stats returns a snapshot of the run statistics.
func (c *Classifier) Stats() Stats {
	s := c.stats
	s.PerTarget = make(map[string]uint64, len(c.stats.PerTarget))
	for k, v := range c.stats.PerTarget {
		s.PerTarget[k] = v
	}
	return s
}
