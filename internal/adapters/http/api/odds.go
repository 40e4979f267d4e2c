package api

import (
	"fmt"
	"net/http"
	"sort"
)

type oddsRatio struct {
	Feature   string  `json:"feature"`
	OddsRatio float64 `json:"odds_ratio"`
}

type oddsResponse struct {
	Threshold  float64     `json:"threshold"`
	OddsRatios []oddsRatio `json:"odds_ratios"`
}

// OddsHandler serves the model explanation table.
type OddsHandler struct {
	deps Dependencies
}

// NewOddsHandler creates a new odds handler.
func NewOddsHandler(deps Dependencies) *OddsHandler {
	return &OddsHandler{deps: deps}
}

// HandleOddsRatios handles GET /odds-ratios. Features are sorted by odds
// ratio, strongest risk factor first.
func (h *OddsHandler) HandleOddsRatios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFailure(w, fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method))
		return
	}
	odds, err := h.deps.OddsRatios(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}

	resp := oddsResponse{
		Threshold:  h.deps.Threshold(),
		OddsRatios: make([]oddsRatio, 0, len(odds)),
	}
	for f, v := range odds {
		resp.OddsRatios = append(resp.OddsRatios, oddsRatio{Feature: f, OddsRatio: v})
	}
	sort.Slice(resp.OddsRatios, func(i, j int) bool {
		a, b := resp.OddsRatios[i], resp.OddsRatios[j]
		if a.OddsRatio != b.OddsRatio {
			return a.OddsRatio > b.OddsRatio
		}
		return a.Feature < b.Feature
	})
	writeJSON(w, http.StatusOK, resp)
}
