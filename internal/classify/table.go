package classify

import "github.com/aria-lang/fivepseq-go/internal/alignment"

// Entry is one bucket of a Table.
type Entry struct {
	Key Key
	// Alignment is the representative: the first alignment added under Key.
	Alignment *alignment.Alignment
	Count     uint64
}

// Table is an insertion-ordered aggregation table from grouping key to
// representative alignment and read count. Counts only grow and the
// representative stored on first insertion is never replaced.
//
// A Table is not safe for concurrent use; partition per worker and Merge.
type Table struct {
	index   map[Key]int
	entries []*Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[Key]int)}
}

// Add counts one read under key. The alignment is stored only when key is
// new. It returns the updated entry.
func (t *Table) Add(key Key, al *alignment.Alignment) *Entry {
	return t.addCount(key, al, 1)
}

func (t *Table) addCount(key Key, al *alignment.Alignment, n uint64) *Entry {
	if i, ok := t.index[key]; ok {
		e := t.entries[i]
		e.Count += n
		return e
	}

	e := &Entry{Key: key, Alignment: al, Count: n}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, e)
	return e
}

// Get returns the entry for key.
func (t *Table) Get(key Key) (Entry, bool) {
	i, ok := t.index[key]
	if !ok {
		return Entry{}, false
	}
	return *t.entries[i], true
}

// Count returns the number of reads counted under key.
func (t *Table) Count(key Key) uint64 {
	if i, ok := t.index[key]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.entries)
}

// Total returns the number of reads counted across all keys.
func (t *Table) Total() uint64 {
	var total uint64
	for _, e := range t.entries {
		total += e.Count
	}
	return total
}

// Entries returns copies of the entries in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// Each calls fn for every entry in insertion order until fn returns false.
func (t *Table) Each(fn func(Entry) bool) {
	for _, e := range t.entries {
		if !fn(*e) {
			return
		}
	}
}

// Merge adds other's counts into t. Keys already in t keep t's
// representative; keys new to t are appended in other's order.
func (t *Table) Merge(other *Table) {
	for _, e := range other.entries {
		t.addCount(e.Key, e.Alignment, e.Count)
	}
}
