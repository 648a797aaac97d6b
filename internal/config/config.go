// Package config holds run configuration for both pipelines.
//
// Default returns the reporter-library layout. A TOML file may override any
// field; a file that lists targets replaces the default target list.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/aria-lang/fivepseq-go/internal/alignment"
	"github.com/aria-lang/fivepseq-go/internal/classify"
	"github.com/aria-lang/fivepseq-go/internal/kmer"
)

// Reporter library references.
const (
	PlasmidReference = "AGAGCTGGTTTAGTGAACCGTCNNNNNNNGCCGCAGCCGCCGCCATCGTCGACGCGCGCTTCCCTGTTCACCTCTG"
	SpikeInReference = "GGGGCTCTTCCCATGGCCGCAGCCGGCCGCCATCGTCGACGCGCGCTTCCCTGTTCACCT"

	PlasmidLabel = "PLASMID"
	SpikeInLabel = "SPIKE_IN"

	// DefaultMaxReads caps the seed-alignment path.
	DefaultMaxReads = 100000000
)

// TargetConfig describes one reference and its seed window.
type TargetConfig struct {
	Label     string `toml:"label"`
	Control   bool   `toml:"control" comment:"Control reads collapse into one row named by label"`
	Reference string `toml:"reference"`
	SeedStart int    `toml:"seed_start"`
	SeedEnd   int    `toml:"seed_end"`
}

// Config is the complete run configuration.
type Config struct {
	QueryWindow     int    `toml:"query_window" comment:"Leading read symbols aligned"`
	AmbiguousPrefix int    `toml:"ambiguous_prefix" comment:"Reads with N in this many leading symbols are rejected"`
	KeyRandomLength int    `toml:"key_random_length"`
	KeyAnchorOffset int    `toml:"key_anchor_offset"`
	KmerLength      int    `toml:"kmer_length" comment:"5' k-mer length for mapped reads"`
	MaxReads        uint64 `toml:"max_reads" comment:"Stop after this many classified reads, 0 for no limit"`

	Targets []TargetConfig `toml:"targets" comment:"Tried in order, first seed hit wins"`
}

// Default returns the configuration for the reporter library: the spike-in
// control is tried before the plasmid.
func Default() *Config {
	return &Config{
		QueryWindow:     classify.DefaultQueryWindow,
		AmbiguousPrefix: classify.DefaultAmbiguousPrefix,
		KeyRandomLength: classify.DefaultKeyRandomLength,
		KeyAnchorOffset: classify.DefaultKeyAnchorOffset,
		KmerLength:      kmer.DefaultK,
		MaxReads:        DefaultMaxReads,
		Targets: []TargetConfig{
			{Label: SpikeInLabel, Control: true, Reference: SpikeInReference, SeedStart: 5, SeedEnd: 15},
			{Label: PlasmidLabel, Reference: PlasmidReference, SeedStart: 34, SeedEnd: 44},
		},
	}
}

// ValidationError reports an unusable configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Load reads a TOML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	defaults := cfg.Targets
	cfg.Targets = nil

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks every field and every target's seed window.
func (c *Config) Validate() error {
	if err := c.ClassifyOptions().Validate(); err != nil {
		return &ValidationError{Field: "options", Reason: err.Error()}
	}
	if c.KmerLength <= 0 {
		return &ValidationError{Field: "kmer_length", Reason: "must be positive"}
	}
	if len(c.Targets) == 0 {
		return &ValidationError{Field: "targets", Reason: "at least one target is required"}
	}

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		if t.Label == "" {
			return &ValidationError{Field: field, Reason: "label is empty"}
		}
		if seen[t.Label] {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("duplicate label %q", t.Label)}
		}
		seen[t.Label] = true

		if err := t.seed().Validate(); err != nil {
			return &ValidationError{Field: field, Reason: err.Error()}
		}
	}
	return nil
}

func (t TargetConfig) seed() alignment.ReferenceSeed {
	return alignment.ReferenceSeed{
		Reference: strings.ToUpper(t.Reference),
		SeedStart: t.SeedStart,
		SeedEnd:   t.SeedEnd,
	}
}

// ClassifyOptions returns the classifier options.
func (c *Config) ClassifyOptions() classify.Options {
	return classify.Options{
		QueryWindow:     c.QueryWindow,
		AmbiguousPrefix: c.AmbiguousPrefix,
		KeyRandomLength: c.KeyRandomLength,
		KeyAnchorOffset: c.KeyAnchorOffset,
		MaxReads:        c.MaxReads,
	}
}

// BuildTargets builds classifier targets in configuration order.
func (c *Config) BuildTargets() ([]classify.Target, error) {
	targets := make([]classify.Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		aligner, err := alignment.NewSeedAligner(t.seed())
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", t.Label, err)
		}
		targets = append(targets, classify.Target{Label: t.Label, Control: t.Control, Aligner: aligner})
	}
	return targets, nil
}

// NewClassifier builds a classifier from the configuration.
func (c *Config) NewClassifier() (*classify.Classifier, error) {
	targets, err := c.BuildTargets()
	if err != nil {
		return nil, err
	}
	return classify.New(targets, c.ClassifyOptions())
}

// NewExtractor builds a k-mer extractor from the configuration.
func (c *Config) NewExtractor() (*kmer.Extractor, error) {
	return kmer.NewExtractor(c.KmerLength)
}
