package alignment

import "fmt"

// Alignment is the result of one seed-anchored alignment attempt.
//
// Match holds one marker per query symbol: '+' where the query agrees with
// the reference (or the reference is a wildcard) and '-' elsewhere.
// Position is the reference coordinate of query[0], so reference[Position+i]
// lines up with query[i]. Position may be negative when the query starts
// upstream of the reference.
type Alignment struct {
	Query    string
	Match    string
	Position int
	Identity int
}

// Length returns the number of compared positions.
func (a *Alignment) Length() int {
	return len(a.Match)
}

// IdentityFraction returns Identity as a proportion of compared positions.
func (a *Alignment) IdentityFraction() float64 {
	if len(a.Match) == 0 {
		return 0.0
	}
	return float64(a.Identity) / float64(len(a.Match))
}

// MismatchCount returns the number of mismatch markers.
func (a *Alignment) MismatchCount() int {
	return len(a.Match) - a.Identity
}

// MismatchPositions returns the query indices marked as mismatches.
func (a *Alignment) MismatchPositions() []int {
	positions := make([]int, 0, a.MismatchCount())
	for i := 0; i < len(a.Match); i++ {
		if a.Match[i] == MismatchMarker {
			positions = append(positions, i)
		}
	}
	return positions
}

// Format returns a three-line rendering of the alignment with the match
// string under the query.
func (a *Alignment) Format() string {
	return fmt.Sprintf("Query: %s\n       %s\nPos: %d\nIdentity: %d/%d (%.1f%%)",
		a.Query, a.Match, a.Position, a.Identity, len(a.Match), a.IdentityFraction()*100)
}

func (a *Alignment) String() string {
	return fmt.Sprintf("Alignment { pos: %d, identity: %d/%d, match: %s }",
		a.Position, a.Identity, len(a.Match), a.Match)
}
