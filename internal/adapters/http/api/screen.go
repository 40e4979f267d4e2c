package api

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/glyco/internal/adapters/batch"
	service "github.com/okian/glyco/internal/app"
)

const contentTypeCSV = "text/csv"

type screenRow struct {
	Line   int             `json:"line"`
	Result *service.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type screenResponse struct {
	Summary service.Summary `json:"summary"`
	Rows    []screenRow     `json:"rows"`
}

// ScreenHandler handles batch screening of CSV uploads.
type ScreenHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewScreenHandler creates a new screen handler.
func NewScreenHandler(deps Dependencies, maxBodyBytes int64) *ScreenHandler {
	return &ScreenHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleScreen handles POST /screen requests. The body is a CSV with the
// eight measurement columns. The response is JSON unless the client accepts
// text/csv, in which case the CSV report is returned.
func (h *ScreenHandler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method))
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != contentTypeCSV {
			writeFailure(w, fmt.Errorf("%w: %s", ErrUnsupportedMedia, ct))
			return
		}
	}

	rows, err := batch.ReadMeasurements(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		writeFailure(w, err)
		return
	}
	screening, err := h.deps.Screen(r.Context(), rows)
	if err != nil {
		writeFailure(w, err)
		return
	}

	w.Header().Set("X-Screening-ID", screening.Summary.ID.String())
	if strings.Contains(r.Header.Get("Accept"), contentTypeCSV) {
		w.Header().Set("Content-Type", contentTypeCSV+"; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = batch.WriteReport(w, screening.Outcomes)
		return
	}

	resp := screenResponse{
		Summary: screening.Summary,
		Rows:    make([]screenRow, len(screening.Outcomes)),
	}
	for i, o := range screening.Outcomes {
		resp.Rows[i].Line = o.Row.Line
		if o.Err != nil {
			resp.Rows[i].Error = o.Err.Error()
			continue
		}
		res := o.Result
		resp.Rows[i].Result = &res
	}
	writeJSON(w, http.StatusOK, resp)
}
