package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/google/uuid"

	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/domain/measurement"
)

// predictRequest mirrors POST /predict. Pointers distinguish a missing field
// from an explicit zero.
type predictRequest struct {
	Pregnancies              *float64 `json:"pregnancies"`
	Glucose                  *float64 `json:"glucose"`
	BloodPressure            *float64 `json:"blood_pressure"`
	SkinThickness            *float64 `json:"skin_thickness"`
	Insulin                  *float64 `json:"insulin"`
	BMI                      *float64 `json:"bmi"`
	DiabetesPedigreeFunction *float64 `json:"diabetes_pedigree_function"`
	Age                      *float64 `json:"age"`
}

func (p predictRequest) measurement() (measurement.Measurement, error) {
	present := map[measurement.Field]*float64{
		measurement.Pregnancies:              p.Pregnancies,
		measurement.Glucose:                  p.Glucose,
		measurement.BloodPressure:            p.BloodPressure,
		measurement.SkinThickness:            p.SkinThickness,
		measurement.Insulin:                  p.Insulin,
		measurement.BMI:                      p.BMI,
		measurement.DiabetesPedigreeFunction: p.DiabetesPedigreeFunction,
		measurement.Age:                      p.Age,
	}
	values := make(map[string]float64, len(present))
	for f, v := range present {
		if v != nil {
			values[f.String()] = *v
		}
	}
	return measurement.FromMap(values)
}

type predictResponse struct {
	RequestID string  `json:"request_id"`
	Threshold float64 `json:"threshold"`
	service.Result
}

// PredictHandler handles single predictions.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, maxBodyBytes int64) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method))
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			writeFailure(w, fmt.Errorf("%w: %s", ErrUnsupportedMedia, ct))
			return
		}
	}

	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	m, err := req.measurement()
	if err != nil {
		writeFailure(w, err)
		return
	}

	res, err := h.deps.Predict(r.Context(), m)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		RequestID: uuid.NewString(),
		Threshold: h.deps.Threshold(),
		Result:    res,
	})
}
