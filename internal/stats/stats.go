// Package stats provides summaries over aggregation tables.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aria-lang/fivepseq-go/internal/classify"
)

// TableStats represents aggregated statistics for a classification table.
// Read-weighted fields count every read in a bucket, not just the
// representative.
type TableStats struct {
	Keys           int
	Reads          uint64
	ControlKeys    int
	ControlReads   uint64
	SequenceReads  uint64
	MinPosition    int
	MaxPosition    int
	MedianPosition int
	MeanIdentity   float64
	MeanKeyLength  float64
}

// FromTable calculates statistics for a table.
func FromTable(table *classify.Table) (*TableStats, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("table cannot be empty")
	}

	s := &TableStats{Keys: table.Len()}
	positions := make([]int, 0, table.Len())
	identitySum := 0.0
	keyLenSum := 0.0
	sequenceKeys := 0
	first := true

	table.Each(func(e classify.Entry) bool {
		s.Reads += e.Count
		if e.Key.IsControl() {
			s.ControlKeys++
			s.ControlReads += e.Count
		} else {
			s.SequenceReads += e.Count
			sequenceKeys++
			keyLenSum += float64(len(e.Key.Value))
		}

		if e.Alignment == nil {
			return true
		}
		pos := e.Alignment.Position
		if first || pos < s.MinPosition {
			s.MinPosition = pos
		}
		if first || pos > s.MaxPosition {
			s.MaxPosition = pos
		}
		first = false
		positions = append(positions, pos)
		identitySum += e.Alignment.IdentityFraction() * float64(e.Count)
		return true
	})

	if len(positions) > 0 {
		sort.Ints(positions)
		mid := len(positions) / 2
		if len(positions)%2 == 0 {
			s.MedianPosition = (positions[mid-1] + positions[mid]) / 2
		} else {
			s.MedianPosition = positions[mid]
		}
	}
	if s.Reads > 0 {
		s.MeanIdentity = identitySum / float64(s.Reads)
	}
	if sequenceKeys > 0 {
		s.MeanKeyLength = keyLenSum / float64(sequenceKeys)
	}
	return s, nil
}

// ControlRatio returns the proportion of reads in control buckets.
func (s *TableStats) ControlRatio() float64 {
	if s.Reads == 0 {
		return 0.0
	}
	return float64(s.ControlReads) / float64(s.Reads)
}

func (s *TableStats) String() string {
	return fmt.Sprintf(`TableStats {
  keys: %d
  reads: %d
  control reads: %d (%.1f%%)
  sequence reads: %d
  position range: %d - %d
  median position: %d
  mean identity: %.1f%%
  mean key length: %.1f
}`, s.Keys, s.Reads, s.ControlReads, s.ControlRatio()*100, s.SequenceReads,
		s.MinPosition, s.MaxPosition, s.MedianPosition, s.MeanIdentity*100, s.MeanKeyLength)
}

// PositionHistogram counts reads by alignment position.
type PositionHistogram struct {
	Bins        []uint64
	MinPosition int
	MaxPosition int
	BinWidth    int
	NumBins     int
}

// NewPositionHistogram creates a read-weighted position histogram.
func NewPositionHistogram(table *classify.Table, numBins int) (*PositionHistogram, error) {
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}
	entries := table.Entries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("table cannot be empty")
	}

	minPos, maxPos := entries[0].Alignment.Position, entries[0].Alignment.Position
	for _, e := range entries {
		if p := e.Alignment.Position; p < minPos {
			minPos = p
		} else if p > maxPos {
			maxPos = p
		}
	}

	binWidth := (maxPos - minPos) / numBins
	if binWidth < 1 {
		binWidth = 1
	}

	bins := make([]uint64, numBins)
	for _, e := range entries {
		binIndex := (e.Alignment.Position - minPos) / binWidth
		if binIndex >= numBins {
			binIndex = numBins - 1
		}
		bins[binIndex] += e.Count
	}

	return &PositionHistogram{
		Bins:        bins,
		MinPosition: minPos,
		MaxPosition: maxPos,
		BinWidth:    binWidth,
		NumBins:     numBins,
	}, nil
}

// ModeBin returns the position range holding the most reads.
func (h *PositionHistogram) ModeBin() (int, int) {
	maxBin := 0
	for i, count := range h.Bins {
		if count > h.Bins[maxBin] {
			maxBin = i
		}
	}
	start := h.MinPosition + maxBin*h.BinWidth
	return start, start + h.BinWidth
}

func (h *PositionHistogram) String() string {
	var b strings.Builder
	b.WriteString("Position Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := h.MinPosition + i*h.BinWidth
		end := start + h.BinWidth
		count := h.Bins[i]
		fmt.Fprintf(&b, "%5d-%5d: %s (%d)\n", start, end, strings.Repeat("#", int(count/5)), count)
	}
	return b.String()
}
