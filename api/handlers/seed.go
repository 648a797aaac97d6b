package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aria-lang/fivepseq-go/internal/alignment"
)

// SeedAlignRequest represents a single seed-alignment request.
type SeedAlignRequest struct {
	Reference string `json:"reference"`
	SeedStart int    `json:"seed_start"`
	SeedEnd   int    `json:"seed_end"`
	Query     string `json:"query"`
}

// SeedAlignResponse represents the response for seed alignment. Only Found
// and Seed are set when the seed does not occur in the query.
type SeedAlignResponse struct {
	Found     bool    `json:"found"`
	Seed      string  `json:"seed"`
	Position  int     `json:"position"`
	Match     string  `json:"match,omitempty"`
	Identity  int     `json:"identity"`
	Fraction  float64 `json:"identity_fraction"`
	Mismatch  []int   `json:"mismatch_positions,omitempty"`
	Formatted string  `json:"formatted,omitempty"`
}

// SeedAlignHandler handles seed alignment requests.
func SeedAlignHandler(w http.ResponseWriter, r *http.Request) {
	var req SeedAlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	aligner, err := alignment.NewSeedAligner(alignment.ReferenceSeed{
		Reference: req.Reference,
		SeedStart: req.SeedStart,
		SeedEnd:   req.SeedEnd,
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	al, ok := aligner.Align(strings.ToUpper(req.Query))
	if !ok {
		writeJSON(w, SeedAlignResponse{Found: false, Seed: aligner.Seed()})
		return
	}

	writeJSON(w, SeedAlignResponse{
		Found:     true,
		Seed:      aligner.Seed(),
		Position:  al.Position,
		Match:     al.Match,
		Identity:  al.Identity,
		Fraction:  al.IdentityFraction(),
		Mismatch:  al.MismatchPositions(),
		Formatted: al.Format(),
	})
}
