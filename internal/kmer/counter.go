// Package kmer counts 5' k-mers of reads that an external aligner has
// already placed on a reference.
//
// Each mapped read contributes at most once: reads soft-clipped at their 5'
// end are skipped because their apparent start is unreliable, unmapped
// records are skipped, and later records with an already-counted read name
// are ignored. The remaining reads are expressed 5'->3' on the reference
// strand and keyed by their first k reference bases.
package kmer

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultK is the key length used for CAGE 5' ends.
const DefaultK = 7

// KMerCount represents a k-mer and its count.
type KMerCount struct {
	KMer  string
	Count int
}

// Counter is an insertion-ordered k-mer count table.
type Counter struct {
	K     int
	Total int

	index  map[string]int
	counts []KMerCount
}

// NewCounter creates a new k-mer counter with the specified k value.
func NewCounter(k int) (*Counter, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	return &Counter{
		K:     k,
		index: make(map[string]int),
	}, nil
}

// Add counts kmer count times. Keys shorter than K are accepted: a read
// whose reference span is shorter than K is keyed by the whole span.
func (c *Counter) Add(kmer string, count int) error {
	if len(kmer) > c.K {
		return fmt.Errorf("k-mer length %d exceeds k=%d", len(kmer), c.K)
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	kmer = strings.ToUpper(kmer)
	if i, ok := c.index[kmer]; ok {
		c.counts[i].Count += count
	} else {
		c.index[kmer] = len(c.counts)
		c.counts = append(c.counts, KMerCount{KMer: kmer, Count: count})
	}
	c.Total += count
	return nil
}

// GetCount returns the count for a specific k-mer.
func (c *Counter) GetCount(kmer string) int {
	if i, ok := c.index[strings.ToUpper(kmer)]; ok {
		return c.counts[i].Count
	}
	return 0
}

// UniqueCount returns the number of distinct k-mers.
func (c *Counter) UniqueCount() int {
	return len(c.counts)
}

// Counts returns the k-mer counts in first-seen order.
func (c *Counter) Counts() []KMerCount {
	return append([]KMerCount(nil), c.counts...)
}

// MostFrequent returns the n most frequent k-mers. Ties keep first-seen
// order.
func (c *Counter) MostFrequent(n int) ([]KMerCount, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}

	counts := c.Counts()
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n], nil
}

// Frequency returns the share of all counted reads keyed by kmer.
func (c *Counter) Frequency(kmer string) float64 {
	if c.Total == 0 {
		return 0.0
	}
	return float64(c.GetCount(kmer)) / float64(c.Total)
}

// Merge adds other's counts into c. New k-mers are appended in other's
// order.
func (c *Counter) Merge(other *Counter) error {
	if c.K != other.K {
		return fmt.Errorf("k values must match")
	}

	for _, kc := range other.counts {
		if err := c.Add(kc.KMer, kc.Count); err != nil {
			return err
		}
	}
	return nil
}

func (c *Counter) String() string {
	return fmt.Sprintf("KMerCounter { k: %d, unique: %d, total: %d }", c.K, c.UniqueCount(), c.Total)
}
