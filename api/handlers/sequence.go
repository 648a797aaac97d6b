// Package handlers provides HTTP handlers for the fivepseq API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aria-lang/fivepseq-go/internal/sequence"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
	ID       string `json:"id,omitempty"`
}

func (req SequenceRequest) parse() (*sequence.Sequence, error) {
	if req.ID != "" {
		return sequence.WithID(req.Sequence, req.ID)
	}
	return sequence.New(req.Sequence)
}

// ReverseComplementResponse represents the response for reverse complement.
type ReverseComplementResponse struct {
	ID                string `json:"id,omitempty"`
	Original          string `json:"original"`
	ReverseComplement string `json:"reverse_complement"`
}

// ReverseComplementHandler handles reverse complement requests.
func ReverseComplementHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seq, err := req.parse()
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc := seq.ReverseComplement()
	writeJSON(w, ReverseComplementResponse{
		ID:                rc.ID,
		Original:          seq.Bases,
		ReverseComplement: rc.Bases,
	})
}

// ValidateResponse represents the response for validation.
type ValidateResponse struct {
	Valid          bool   `json:"valid"`
	Error          string `json:"error,omitempty"`
	Length         int    `json:"length,omitempty"`
	Ambiguous      bool   `json:"ambiguous"`
	AmbiguousCount int    `json:"ambiguous_count"`
}

// ValidateHandler handles sequence validation requests.
func ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	seq, err := req.parse()
	if err != nil {
		writeJSON(w, ValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	writeJSON(w, ValidateResponse{
		Valid:          true,
		Length:         seq.Len(),
		Ambiguous:      seq.HasAmbiguous(),
		AmbiguousCount: seq.CountAmbiguous(),
	})
}
