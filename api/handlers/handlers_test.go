package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/fivepseq-go/internal/config"
)

const (
	plasmidRead = "ACGTACGGCCGCAGCCGCCGCCATCGTCGA"
	spikeRead   = "GGGGCTCTTCCCATGGCCGCAGCCGGCCGC"
)

func post(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", &buf))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestReverseComplementHandler(t *testing.T) {
	rec := post(t, ReverseComplementHandler, SequenceRequest{Sequence: "GGATCCAAGTTT"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReverseComplementResponse
	decode(t, rec, &resp)
	assert.Equal(t, "AAACTTGGATCC", resp.ReverseComplement)

	rec = post(t, ReverseComplementHandler, SequenceRequest{Sequence: "acgtn", ID: "read7"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ReverseComplementResponse{}
	decode(t, rec, &resp)
	assert.Equal(t, "read7", resp.ID)
	assert.Equal(t, "ACGTN", resp.Original)
	assert.Equal(t, "NACGT", resp.ReverseComplement)

	rec = post(t, ReverseComplementHandler, SequenceRequest{Sequence: "ACXT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateHandler(t *testing.T) {
	rec := post(t, ValidateHandler, SequenceRequest{Sequence: "ACGNNT"})
	var resp ValidateResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Valid)
	assert.True(t, resp.Ambiguous)
	assert.Equal(t, 6, resp.Length)
	assert.Equal(t, 2, resp.AmbiguousCount)

	rec = post(t, ValidateHandler, SequenceRequest{Sequence: "acgt", ID: "clean"})
	resp = ValidateResponse{}
	decode(t, rec, &resp)
	assert.True(t, resp.Valid)
	assert.False(t, resp.Ambiguous)
	assert.Equal(t, 0, resp.AmbiguousCount)

	rec = post(t, ValidateHandler, SequenceRequest{Sequence: "ACGU"})
	resp = ValidateResponse{}
	decode(t, rec, &resp)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
}

func TestSeedAlignHandler(t *testing.T) {
	tests := []struct {
		name     string
		req      SeedAlignRequest
		found    bool
		position int
		match    string
	}{
		{"anchored", SeedAlignRequest{Reference: "ACGTTGCA", SeedStart: 2, SeedEnd: 5, Query: "GTTGCAAA"}, true, 2, "++++++--"},
		{"overhang", SeedAlignRequest{Reference: "ACGTTGCA", SeedStart: 2, SeedEnd: 5, Query: "TTACGTTG"}, true, -2, "--++++++"},
		{"lower-case query", SeedAlignRequest{Reference: "acgttgca", SeedStart: 2, SeedEnd: 5, Query: "gttgcaaa"}, true, 2, "++++++--"},
		{"absent", SeedAlignRequest{Reference: "ACGTTGCA", SeedStart: 2, SeedEnd: 5, Query: "AAAAAAAA"}, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, SeedAlignHandler, tt.req)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp SeedAlignResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.found, resp.Found)
			assert.Equal(t, "GTT", resp.Seed)
			assert.Equal(t, tt.position, resp.Position)
			assert.Equal(t, tt.match, resp.Match)
			assert.Equal(t, strings.Count(tt.match, "+"), resp.Identity)
		})
	}
}

func TestSeedAlignHandlerErrors(t *testing.T) {
	rec := post(t, SeedAlignHandler, SeedAlignRequest{Reference: "ACNNGT", SeedStart: 1, SeedEnd: 4, Query: "ACGT"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, SeedAlignHandler, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestClassifyHandler(t *testing.T) {
	h := ClassifyHandler(config.Default())
	rec := post(t, h, ClassifyRequest{Reads: []string{
		spikeRead, plasmidRead, plasmidRead, "NNNNNNNNNNNNNNNNNNNN", strings.Repeat("T", 30),
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClassifyResponse
	decode(t, rec, &resp)
	assert.Equal(t, uint64(5), resp.Total)
	assert.Equal(t, uint64(3), resp.Classified)
	assert.Equal(t, uint64(1), resp.Rejected)
	assert.Equal(t, uint64(1), resp.Unmatched)
	assert.Equal(t, map[string]uint64{"SPIKE_IN": 1, "PLASMID": 2}, resp.PerTarget)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, ClassifyRow{
		Key: "control(SPIKE_IN)", Control: true, Seq: "SPIKE_IN",
		Match: strings.Repeat("+", 30), Position: 0, Count: 1,
	}, resp.Rows[0])
	assert.Equal(t, ClassifyRow{
		Key: "sequence(ACGTACG)", Seq: plasmidRead,
		Match: strings.Repeat("+", 30), Position: 22, Count: 2,
	}, resp.Rows[1])
	assert.InDelta(t, 1.0, resp.MeanIdentity, 0.0001)
}

func TestClassifyHandlerMaxReads(t *testing.T) {
	h := ClassifyHandler(config.Default())
	rec := post(t, h, ClassifyRequest{Reads: []string{plasmidRead, plasmidRead, plasmidRead}, MaxReads: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClassifyResponse
	decode(t, rec, &resp)
	assert.Equal(t, uint64(2), resp.Total)
}

func TestClassifyHandlerEmpty(t *testing.T) {
	rec := post(t, ClassifyHandler(config.Default()), ClassifyRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKMerCountHandler(t *testing.T) {
	rec := post(t, KMerCountHandler, KMerRequest{Records: []MappedRecord{
		{Name: "a", Cigar: "12M", Sequence: "GGATCCAAGTTT", MD: "12"},
		{Name: "a", Cigar: "12M", Sequence: "GGATCCAAGTTT", MD: "12", Reverse: true},
		{Name: "b", Cigar: "12M", Sequence: "GGATCCAAGTTT", MD: "12", Reverse: true},
		{Name: "c", Cigar: "2S10M", Sequence: "GGATCCAAGTTT", MD: "10"},
		{Name: "d", Cigar: "*", Sequence: "GGATCCAAGTTT", Unmapped: true},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KMerCountResponse
	decode(t, rec, &resp)
	assert.Equal(t, 7, resp.K)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 1, resp.Clipped)
	assert.Equal(t, 1, resp.Unmapped)
	assert.Equal(t, 1, resp.Duplicate)
	assert.Equal(t, 2, resp.Unique)
	assert.InDelta(t, 0.4, resp.UniqueFraction, 0.0001)
	assert.Equal(t, []KMerItem{{KMer: "GGATCCA", Count: 1}, {KMer: "AAACTTG", Count: 1}}, resp.Counts)
}

func TestKMerCountHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		req  KMerRequest
	}{
		{"negative k", KMerRequest{K: -1}},
		{"bad cigar", KMerRequest{Records: []MappedRecord{{Name: "a", Cigar: "12Q", Sequence: "ACGT", MD: "4"}}}},
		{"missing md", KMerRequest{Records: []MappedRecord{{Name: "a", Cigar: "4M", Sequence: "ACGT"}}}},
		{"inconsistent md", KMerRequest{Records: []MappedRecord{{Name: "a", Cigar: "4M", Sequence: "ACGT", MD: "9"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, KMerCountHandler, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
