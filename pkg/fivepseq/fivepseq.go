// Package fivepseq runs the 5'-seq read classification pipelines end to end.
//
// Example usage:
//
//	cfg := fivepseq.DefaultConfig()
//	res, err := fivepseq.AlignReads("lib.fastq.gz", cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = fivepseq.WriteSeedReport("lib.fastq.gz.5pseqs", res.Table)
package fivepseq

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/log"

	"github.com/aria-lang/fivepseq-go/internal/bamio"
	"github.com/aria-lang/fivepseq-go/internal/classify"
	"github.com/aria-lang/fivepseq-go/internal/config"
	"github.com/aria-lang/fivepseq-go/internal/kmer"
	"github.com/aria-lang/fivepseq-go/internal/metrics"
	"github.com/aria-lang/fivepseq-go/internal/reads"
	"github.com/aria-lang/fivepseq-go/internal/report"
	"github.com/aria-lang/fivepseq-go/internal/stats"
)

// Re-export types for convenience
type (
	Config       = config.Config
	Table        = classify.Table
	ClassifyStat = classify.Stats
	KmerCounter  = kmer.Counter
	KmerStats    = kmer.Stats
	TableStats   = stats.TableStats
)

// DefaultConfig returns the reporter-library configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

const (
	positionBins = 10
	topKmers     = 10
)

// AlignResult is the outcome of the seed-alignment pipeline.
type AlignResult struct {
	Table *Table
	Stats ClassifyStat
}

// AlignReads classifies every read in a FASTQ or FASTA file until the
// stream ends or the configured read cap is exceeded. progress, if not
// nil, is called once per read.
func AlignReads(path string, cfg *Config, progress func()) (*AlignResult, error) {
	c, err := cfg.NewClassifier()
	if err != nil {
		return nil, err
	}

	r, err := reads.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	err = r.Each(func(read reads.Read) bool {
		metrics.ObserveRead(c.Classify(read.Seq))
		if progress != nil {
			progress()
		}
		return !c.Done()
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	st := c.Stats()
	log.Printf("%s: %s reads, %s classified into %s keys, %s rejected, %s unmatched",
		path, humanize.Comma(int64(st.Total)), humanize.Comma(int64(st.Classified)),
		humanize.Comma(int64(c.Table().Len())), humanize.Comma(int64(st.Rejected)),
		humanize.Comma(int64(st.Unmatched)))
	return &AlignResult{Table: c.Table(), Stats: st}, nil
}

// KmerResult is the outcome of the mapped-read pipeline.
type KmerResult struct {
	Counter *KmerCounter
	Stats   KmerStats
}

// CountKmers keys every mapped read in a BAM file by its 5' k-mer.
func CountKmers(path string, cfg *Config, progress func()) (*KmerResult, error) {
	e, err := cfg.NewExtractor()
	if err != nil {
		return nil, err
	}

	r, err := bamio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		out, err := e.Process(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		metrics.ObserveRecord(out)
		if progress != nil {
			progress()
		}
	}

	st := e.Stats()
	log.Printf("%s: %s records, %s unique k-mers", path,
		humanize.Comma(int64(st.Total)), humanize.Comma(int64(e.Counter().UniqueCount())))
	return &KmerResult{Counter: e.Counter(), Stats: st}, nil
}

// SummarizeTable returns statistics for a classification table.
func SummarizeTable(table *Table) (*TableStats, error) {
	return stats.FromTable(table)
}

// WriteSeedReport writes the seed-alignment table to path.
func WriteSeedReport(path string, table *Table) error {
	return report.WriteSeedFile(path, table)
}

// WriteKmerReport writes the k-mer table to path.
func WriteKmerReport(path string, counter *KmerCounter) error {
	return report.WriteKmerFile(path, counter)
}

// WriteKmerSummary writes the mapped-read summary lines to w.
func WriteKmerSummary(w io.Writer, st KmerStats) error {
	return report.WriteKmerSummary(w, st)
}

// RunAlign classifies input and writes input.5pseqs. It returns the
// output path.
func RunAlign(input string, cfg *Config, progress func()) (string, error) {
	res, err := AlignReads(input, cfg, progress)
	if err != nil {
		return "", err
	}

	if ts, err := SummarizeTable(res.Table); err == nil {
		log.Debug.Printf("%s: %v", input, ts)
	}
	if hist, err := stats.NewPositionHistogram(res.Table, positionBins); err == nil {
		start, end := hist.ModeBin()
		log.Debug.Printf("%s: most reads align at positions %d-%d\n%v", input, start, end, hist)
	}

	out := report.SeedOutputPath(input)
	if err := WriteSeedReport(out, res.Table); err != nil {
		return "", err
	}
	return out, nil
}

// RunKmers counts 5' k-mers in input, writes input.kmers and prints the
// summary lines to summary. It returns the output path.
func RunKmers(input string, cfg *Config, summary io.Writer, progress func()) (string, error) {
	res, err := CountKmers(input, cfg, progress)
	if err != nil {
		return "", err
	}

	if top, err := res.Counter.MostFrequent(topKmers); err == nil {
		for _, kc := range top {
			log.Debug.Printf("%s: %s %s (%.2f%%)", input, kc.KMer,
				humanize.Comma(int64(kc.Count)), res.Counter.Frequency(kc.KMer)*100)
		}
	}

	out := report.KmerOutputPath(input)
	if err := WriteKmerReport(out, res.Counter); err != nil {
		return "", err
	}
	if err := WriteKmerSummary(summary, res.Stats); err != nil {
		return "", err
	}
	return out, nil
}

// Version returns the library version.
func Version() string {
	return "0.1.0"
}
