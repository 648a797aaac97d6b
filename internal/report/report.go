// Package report renders aggregation results as tab-separated text.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shenwei356/xopen"

	"github.com/aria-lang/fivepseq-go/internal/classify"
	"github.com/aria-lang/fivepseq-go/internal/kmer"
)

// Output file suffixes appended to the input path.
const (
	SeedSuffix = ".5pseqs"
	KmerSuffix = ".kmers"
)

// SeedOutputPath returns the seed-alignment report path for an input file.
func SeedOutputPath(input string) string {
	return input + SeedSuffix
}

// KmerOutputPath returns the k-mer report path for an input file.
func KmerOutputPath(input string) string {
	return input + KmerSuffix
}

// WriteSeedTable writes one row per grouping key with columns
// Seq, Match, Pos and Count. Control buckets show their label in the Seq
// column instead of the representative read.
func WriteSeedTable(w io.Writer, table *classify.Table) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "Seq\tMatch\tPos\tCount"); err != nil {
		return err
	}

	var err error
	table.Each(func(e classify.Entry) bool {
		seq := e.Alignment.Query
		if e.Key.IsControl() {
			seq = e.Key.Value
		}
		_, err = fmt.Fprintf(bw, "%s\t%s\t%d\t%d\n", seq, e.Alignment.Match, e.Alignment.Position, e.Count)
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// WriteKmerTable writes one row per k-mer with columns seq and numreads.
func WriteKmerTable(w io.Writer, counter *kmer.Counter) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "seq\tnumreads"); err != nil {
		return err
	}
	for _, kc := range counter.Counts() {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", kc.KMer, kc.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteKmerSummary writes the human-readable run summary for the mapped
// read path.
func WriteKmerSummary(w io.Writer, stats kmer.Stats) error {
	_, err := fmt.Fprintf(w, "Total: %d\nSoft-clipped: %d (%v)\nUnique: %d (%v)\n",
		stats.Total,
		stats.Clipped, stats.ClippedFraction(),
		stats.Unique, stats.UniqueFraction())
	return err
}

// WriteSeedFile writes the seed-alignment report to path. A .gz suffix
// compresses the output.
func WriteSeedFile(path string, table *classify.Table) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSeedTable(w, table)
	})
}

// WriteKmerFile writes the k-mer report to path.
func WriteKmerFile(path string, counter *kmer.Counter) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteKmerTable(w, counter)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	w, err := xopen.Wopen(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(w); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
