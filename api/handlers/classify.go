package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aria-lang/fivepseq-go/internal/classify"
	"github.com/aria-lang/fivepseq-go/internal/config"
	"github.com/aria-lang/fivepseq-go/internal/metrics"
	"github.com/aria-lang/fivepseq-go/internal/stats"
)

// ClassifyRequest represents a batch of raw reads to classify.
type ClassifyRequest struct {
	Reads    []string `json:"reads"`
	MaxReads uint64   `json:"max_reads,omitempty"`
}

// ClassifyRow is one aggregation table row.
type ClassifyRow struct {
	Key      string `json:"key"`
	Control  bool   `json:"control"`
	Seq      string `json:"seq"`
	Match    string `json:"match"`
	Position int    `json:"pos"`
	Count    uint64 `json:"count"`
}

// ClassifyResponse represents the response for read classification.
type ClassifyResponse struct {
	Total           uint64            `json:"total"`
	Classified      uint64            `json:"classified"`
	Rejected        uint64            `json:"rejected"`
	Unmatched       uint64            `json:"unmatched"`
	PerTarget       map[string]uint64 `json:"per_target"`
	Rows            []ClassifyRow     `json:"rows"`
	MeanIdentity    float64           `json:"mean_identity,omitempty"`
	ControlFraction float64           `json:"control_fraction,omitempty"`
}

// ClassifyHandler returns a handler that classifies reads with a fresh
// classifier built from cfg for every request.
func ClassifyHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClassifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if len(req.Reads) == 0 {
			writeError(w, "reads cannot be empty", http.StatusBadRequest)
			return
		}

		runCfg := *cfg
		runCfg.MaxReads = req.MaxReads
		c, err := runCfg.NewClassifier()
		if err != nil {
			writeError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for _, read := range req.Reads {
			if r.Context().Err() != nil {
				writeError(w, "request cancelled", http.StatusServiceUnavailable)
				return
			}
			metrics.ObserveRead(c.Classify(read))
			if c.Done() {
				break
			}
		}

		st := c.Stats()
		resp := ClassifyResponse{
			Total:      st.Total,
			Classified: st.Classified,
			Rejected:   st.Rejected,
			Unmatched:  st.Unmatched,
			PerTarget:  st.PerTarget,
			Rows:       make([]ClassifyRow, 0, c.Table().Len()),
		}
		c.Table().Each(func(e classify.Entry) bool {
			row := ClassifyRow{
				Key:      e.Key.String(),
				Control:  e.Key.IsControl(),
				Seq:      e.Alignment.Query,
				Match:    e.Alignment.Match,
				Position: e.Alignment.Position,
				Count:    e.Count,
			}
			if row.Control {
				row.Seq = e.Key.Value
			}
			resp.Rows = append(resp.Rows, row)
			return true
		})
		if ts, err := stats.FromTable(c.Table()); err == nil {
			resp.MeanIdentity = ts.MeanIdentity
			resp.ControlFraction = ts.ControlRatio()
		}

		writeJSON(w, resp)
	}
}
