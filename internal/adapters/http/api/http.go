// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/glyco/internal/adapters/batch"
	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/domain/measurement"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, m measurement.Measurement) (service.Result, error)
	Screen(ctx context.Context, rows []service.Row) (service.Screening, error)
	OddsRatios(ctx context.Context) (map[string]float64, error)
	Threshold() float64
}

// defaultMaxBodyBytes caps request bodies when no limit is configured.
const defaultMaxBodyBytes = 8 << 20

// Server wires HTTP routes for the prediction API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	screenHandler  *ScreenHandler
	oddsHandler    *OddsHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
}

// WithMaxBodyBytes caps request body size for POST routes.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps, o.maxBodyBytes),
		screenHandler:  NewScreenHandler(deps, o.maxBodyBytes),
		oddsHandler:    NewOddsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/screen", MetricsMiddleware(s.screenHandler.HandleScreen, "screen"))
	mux.HandleFunc("/odds-ratios", MetricsMiddleware(s.oddsHandler.HandleOddsRatios, "odds-ratios"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an error kind to its status code and error code.
func writeFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", ErrRequestTooLarge)
	case errors.Is(err, ErrMethodNotAllowed):
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", err)
	case errors.Is(err, ErrUnsupportedMedia):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err)
	case errors.Is(err, service.ErrTooManyRows):
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_rows", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrNoRows),
		errors.Is(err, batch.ErrEmpty),
		errors.Is(err, batch.ErrMissingColumns),
		errors.Is(err, batch.ErrMalformed):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		switch kind := service.Kind(err); kind {
		case service.KindValidation:
			writeError(w, http.StatusBadRequest, kind, err)
		case service.KindCanceled:
			writeError(w, http.StatusServiceUnavailable, kind, err)
		default:
			writeError(w, http.StatusInternalServerError, kind, err)
		}
	}
}
