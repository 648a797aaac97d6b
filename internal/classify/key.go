package classify

import "fmt"

// KeyKind distinguishes the two kinds of grouping keys.
type KeyKind int

const (
	// SequenceKey groups reads by a prefix of the read itself.
	SequenceKey KeyKind = iota
	// ControlKey collapses every read of a control target into one bucket.
	ControlKey
)

func (k KeyKind) String() string {
	switch k {
	case SequenceKey:
		return "sequence"
	case ControlKey:
		return "control"
	default:
		return "unknown"
	}
}

// Key is a grouping key: either Control(label) or Sequence(prefix). The two
// kinds never collide, even when a label happens to be a valid sequence.
type Key struct {
	Kind  KeyKind
	Value string
}

// Control returns the bucket key for a control target label.
func Control(label string) Key {
	return Key{Kind: ControlKey, Value: label}
}

// Sequence returns the bucket key for a read prefix.
func Sequence(prefix string) Key {
	return Key{Kind: SequenceKey, Value: prefix}
}

// IsControl reports whether k is a control bucket key.
func (k Key) IsControl() bool {
	return k.Kind == ControlKey
}

func (k Key) String() string {
	return fmt.Sprintf("%s(%s)", k.Kind, k.Value)
}
