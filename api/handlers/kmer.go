package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/biogo/hts/sam"

	"github.com/aria-lang/fivepseq-go/internal/bamio"
	"github.com/aria-lang/fivepseq-go/internal/kmer"
	"github.com/aria-lang/fivepseq-go/internal/metrics"
)

// MappedRecord is one aligned read in SAM terms.
type MappedRecord struct {
	Name     string `json:"name"`
	Cigar    string `json:"cigar"`
	Sequence string `json:"sequence"`
	MD       string `json:"md"`
	Reverse  bool   `json:"reverse"`
	Unmapped bool   `json:"unmapped"`
}

// KMerRequest represents a 5' k-mer count request.
type KMerRequest struct {
	K       int            `json:"k"`
	Records []MappedRecord `json:"records"`
}

// KMerItem represents a k-mer and its count.
type KMerItem struct {
	KMer  string `json:"kmer"`
	Count int    `json:"count"`
}

// KMerCountResponse represents the response for k-mer counting.
type KMerCountResponse struct {
	K               int        `json:"k"`
	Total           int        `json:"total"`
	Clipped         int        `json:"clipped"`
	Unmapped        int        `json:"unmapped"`
	Duplicate       int        `json:"duplicate"`
	Unique          int        `json:"unique"`
	ClippedFraction float64    `json:"clipped_fraction"`
	UniqueFraction  float64    `json:"unique_fraction"`
	Counts          []KMerItem `json:"counts"`
}

type requestRecord struct {
	MappedRecord
	cigar sam.Cigar
}

func (r requestRecord) QueryName() string { return r.Name }
func (r requestRecord) IsUnmapped() bool  { return r.Unmapped }
func (r requestRecord) IsReverse() bool   { return r.Reverse }

func (r requestRecord) ClipOps() []kmer.ClipOp {
	ops := make([]kmer.ClipOp, len(r.cigar))
	for i, op := range r.cigar {
		ops[i] = kmer.ClipOp{Code: int(op.Type()), Len: op.Len()}
	}
	return ops
}

func (r requestRecord) ReferenceSequence() (string, error) {
	if r.MD == "" {
		return "", fmt.Errorf("record has no MD tag")
	}
	ref, err := bamio.ReferenceBases(r.cigar, []byte(r.Sequence), r.MD)
	if err != nil {
		return "", err
	}
	return string(ref), nil
}

// KMerCountHandler handles 5' k-mer counting requests.
func KMerCountHandler(w http.ResponseWriter, r *http.Request) {
	var req KMerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.K == 0 {
		req.K = kmer.DefaultK
	}

	e, err := kmer.NewExtractor(req.K)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	for i, rec := range req.Records {
		var cigar sam.Cigar
		if !rec.Unmapped && rec.Cigar != "" && rec.Cigar != "*" {
			cigar, err = sam.ParseCigar([]byte(rec.Cigar))
			if err != nil {
				writeError(w, fmt.Sprintf("records[%d]: %v", i, err), http.StatusBadRequest)
				return
			}
		}

		out, err := e.Process(requestRecord{MappedRecord: rec, cigar: cigar})
		if err != nil {
			writeError(w, fmt.Sprintf("records[%d]: %v", i, err), http.StatusBadRequest)
			return
		}
		metrics.ObserveRecord(out)
	}

	st := e.Stats()
	resp := KMerCountResponse{
		K:               e.K(),
		Total:           st.Total,
		Clipped:         st.Clipped,
		Unmapped:        st.Unmapped,
		Duplicate:       st.Duplicate,
		Unique:          st.Unique,
		ClippedFraction: st.ClippedFraction(),
		UniqueFraction:  st.UniqueFraction(),
		Counts:          make([]KMerItem, 0, e.Counter().UniqueCount()),
	}
	for _, kc := range e.Counter().Counts() {
		resp.Counts = append(resp.Counts, KMerItem{KMer: kc.KMer, Count: kc.Count})
	}
	writeJSON(w, resp)
}
