package classify

import (
	"strings"
	"testing"

	"github.com/aria-lang/fivepseq-go/internal/alignment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	plasmidRef = "AGAGCTGGTTTAGTGAACCGTCNNNNNNNGCCGCAGCCGCCGCCATCGTCGACGCGCGCTTCCCTGTTCACCTCTG"
	spikeRef   = "GGGGCTCTTCCCATGGCCGCAGCCGGCCGCCATCGTCGACGCGCGCTTCCCTGTTCACCT"
)

// plasmidRead is a read starting at the barcode: seven random bases, then
// the reference from offset 29.
func plasmidRead(barcode string) string {
	return barcode + plasmidRef[29:52]
}

func newTestClassifier(t *testing.T, opts Options) *Classifier {
	t.Helper()
	spike, err := alignment.NewSeedAligner(alignment.ReferenceSeed{Reference: spikeRef, SeedStart: 5, SeedEnd: 15})
	require.NoError(t, err)
	plasmid, err := alignment.NewSeedAligner(alignment.ReferenceSeed{Reference: plasmidRef, SeedStart: 34, SeedEnd: 44})
	require.NoError(t, err)

	c, err := New([]Target{
		{Label: "SPIKE_IN", Control: true, Aligner: spike},
		{Label: "PLASMID", Aligner: plasmid},
	}, opts)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	a := alignment.MustSeedAligner(alignment.ReferenceSeed{Reference: plasmidRef, SeedStart: 34, SeedEnd: 44})

	tests := []struct {
		name    string
		targets []Target
		opts    Options
	}{
		{"no targets", nil, DefaultOptions()},
		{"empty label", []Target{{Aligner: a}}, DefaultOptions()},
		{"duplicate label", []Target{{Label: "X", Aligner: a}, {Label: "X", Aligner: a}}, DefaultOptions()},
		{"nil aligner", []Target{{Label: "X"}}, DefaultOptions()},
		{"zero window", []Target{{Label: "X", Aligner: a}}, Options{QueryWindow: 0}},
		{"negative prefix", []Target{{Label: "X", Aligner: a}}, Options{QueryWindow: 30, AmbiguousPrefix: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.targets, tt.opts)
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestKeyLength(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		position int
		want     int
	}{
		{22, 7},
		{21, 8},
		{19, 10},
		{27, 2},
		{29, 0},
		{40, 0},
		{0, 29},
		{-5, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, opts.KeyLength(tt.position, 30), "position %d", tt.position)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		read   string
		status Status
		target string
		key    Key
	}{
		{
			name:   "barcode read",
			read:   plasmidRead("ACGTACG"),
			status: Classified,
			target: "PLASMID",
			key:    Sequence("ACGTACG"),
		},
		{
			name:   "five prime extension widens key",
			read:   "TTT" + plasmidRead("ACGTACG"),
			status: Classified,
			target: "PLASMID",
			key:    Sequence("TTTACGTACG"),
		},
		{
			name:   "long read is cut to query window",
			read:   plasmidRead("ACGTACG") + "GCGCGCTTCCCTGTTCACC",
			status: Classified,
			target: "PLASMID",
			key:    Sequence("ACGTACG"),
		},
		{
			name:   "lowercase read",
			read:   strings.ToLower(plasmidRead("ACGTACG")),
			status: Classified,
			target: "PLASMID",
			key:    Sequence("ACGTACG"),
		},
		{
			name:   "late wildcard is tolerated",
			read:   plasmidRead("ACGTACG")[:25] + "N" + plasmidRead("ACGTACG")[26:],
			status: Classified,
			target: "PLASMID",
			key:    Sequence("ACGTACG"),
		},
		{
			name:   "spike-in",
			read:   spikeRef[:30],
			status: Classified,
			target: "SPIKE_IN",
			key:    Control("SPIKE_IN"),
		},
		{
			name:   "ambiguous start",
			read:   "ACGTNCG" + plasmidRef[29:52],
			status: Rejected,
		},
		{
			name:   "wildcard at last checked position",
			read:   "ACGTACGGCN" + plasmidRef[32:52],
			status: Rejected,
		},
		{
			name:   "no seed",
			read:   "ACGTACGTACGTACGTACGTACGTACGTAC",
			status: Unmatched,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t, DefaultOptions())

			out := c.Classify(tt.read)
			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.target, out.Target)

			if tt.status != Classified {
				assert.Nil(t, out.Alignment)
				assert.Equal(t, 0, c.Table().Len())
				return
			}
			assert.Equal(t, tt.key, out.Key)
			require.NotNil(t, out.Alignment)
			assert.Len(t, out.Alignment.Match, len(out.Alignment.Query))
			assert.Equal(t, uint64(1), c.Table().Count(tt.key))
		})
	}
}

func TestClassifyControlPriority(t *testing.T) {
	c := newTestClassifier(t, DefaultOptions())

	// Carries both the spike-in seed and the plasmid seed.
	read := spikeRef[5:15] + plasmidRef[34:44] + "ACGTACGTAC"
	plasmid := c.Targets()[1].Aligner
	_, ok := plasmid.Align(read)
	require.True(t, ok)

	out := c.Classify(read)
	require.Equal(t, Classified, out.Status)
	assert.Equal(t, "SPIKE_IN", out.Target)
	assert.Equal(t, Control("SPIKE_IN"), out.Key)
	assert.Equal(t, 1, c.Table().Len())
	assert.Equal(t, uint64(0), c.Stats().PerTarget["PLASMID"])
}

func TestClassifyAggregation(t *testing.T) {
	c := newTestClassifier(t, DefaultOptions())

	first := plasmidRead("GATTACA")
	// Same barcode, late sequencing error downstream of the key.
	second := first[:28] + "A" + first[29:]
	require.NotEqual(t, first, second)

	for i := 0; i < 5; i++ {
		c.Classify(first)
	}
	c.Classify(second)
	c.Classify(spikeRef[:30])
	c.Classify(spikeRef[1:31])

	key := Sequence("GATTACA")
	entry, ok := c.Table().Get(key)
	require.True(t, ok)
	assert.Equal(t, uint64(6), entry.Count)
	assert.Equal(t, first, entry.Alignment.Query)
	assert.Equal(t, 30, entry.Alignment.Identity)

	spike, ok := c.Table().Get(Control("SPIKE_IN"))
	require.True(t, ok)
	assert.Equal(t, uint64(2), spike.Count)
	assert.Equal(t, spikeRef[:30], spike.Alignment.Query)

	entries := c.Table().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, key, entries[0].Key)
	assert.Equal(t, Control("SPIKE_IN"), entries[1].Key)

	stats := c.Stats()
	assert.Equal(t, uint64(8), stats.Total)
	assert.Equal(t, uint64(8), stats.Classified)
	assert.Equal(t, uint64(6), stats.PerTarget["PLASMID"])
	assert.Equal(t, uint64(2), stats.PerTarget["SPIKE_IN"])
	assert.InDelta(t, 1.0, stats.ClassifiedFraction(), 0.0001)
}

func TestClassifyStats(t *testing.T) {
	c := newTestClassifier(t, DefaultOptions())

	c.Classify(plasmidRead("ACGTACG"))
	c.Classify("NNNNNNNNNNACGTACGTACGTACGTACGT")
	c.Classify("ACGTACGTACGTACGTACGTACGTACGTAC")
	c.Classify("ACGTACGTACGTACGTACGTACGTACGTAC")

	stats := c.Stats()
	assert.Equal(t, uint64(4), stats.Total)
	assert.Equal(t, uint64(1), stats.Classified)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Equal(t, uint64(2), stats.Unmatched)
	assert.InDelta(t, 0.25, stats.ClassifiedFraction(), 0.0001)
	assert.Contains(t, stats.String(), "unmatched: 2")

	// The snapshot is detached from the classifier.
	stats.PerTarget["PLASMID"] = 99
	assert.Equal(t, uint64(1), c.Stats().PerTarget["PLASMID"])
}

func TestClassifyMaxReads(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxReads = 2
	c := newTestClassifier(t, opts)

	for i := 0; i < 2; i++ {
		c.Classify(plasmidRead("ACGTACG"))
		assert.False(t, c.Done())
	}
	c.Classify("ACGTACGTACGTACGTACGTACGTACGTAC")
	assert.False(t, c.Done())

	c.Classify(plasmidRead("ACGTACG"))
	assert.True(t, c.Done())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unmatched", Unmatched.String())
	assert.Equal(t, "classified", Classified.String())
	assert.Equal(t, "unknown", Status(42).String())
}
