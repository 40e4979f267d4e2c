// Package classifier loads the trained logistic model and runs inference.
package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/okian/glyco/internal/domain/features"
	"gonum.org/v1/gonum/floats"
)

// ModelTypeLogistic is the only model type the gateway serves.
const ModelTypeLogistic = "logistic_regression"

// Model is the serialized classifier: one coefficient per feature, in
// feature order, plus an intercept.
type Model struct {
	Type         string    `json:"model_type"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	// Threshold is the operating threshold chosen during training, when the
	// artifact records it. Zero means not recorded.
	Threshold float64 `json:"threshold,omitempty"`
}

// Validate checks the artifact's internal consistency.
func (m *Model) Validate() error {
	if m.Type != "" && m.Type != ModelTypeLogistic {
		return fmt.Errorf("%w: unsupported model_type %q", ErrCorruptModel, m.Type)
	}
	if len(m.Features) == 0 {
		return fmt.Errorf("%w: no features", ErrCorruptModel)
	}
	if len(m.Coefficients) != len(m.Features) {
		return fmt.Errorf("%w: %d coefficients for %d features", ErrCorruptModel, len(m.Coefficients), len(m.Features))
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: coefficient %q is not finite", ErrCorruptModel, m.Features[i])
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("%w: intercept is not finite", ErrCorruptModel)
	}
	if m.Threshold < 0 || m.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %g outside (0,1)", ErrCorruptModel, m.Threshold)
	}
	if _, err := features.NewSchema(m.Features); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptModel, err)
	}
	return nil
}

// Schema returns the feature schema the model was trained on.
func (m *Model) Schema() (features.Schema, error) {
	return features.NewSchema(m.Features)
}

// Proba applies the logistic link to v. v must have been encoded against this
// model's schema; names are checked position by position.
func (m *Model) Proba(v features.Vector) (float64, error) {
	if len(v.Values) != len(m.Coefficients) || len(v.Names) != len(m.Features) {
		return 0, fmt.Errorf("%w: vector has %d features, model expects %d", features.ErrSchemaMismatch, len(v.Values), len(m.Coefficients))
	}
	for i, name := range m.Features {
		if v.Names[i] != name {
			return 0, fmt.Errorf("%w: position %d is %q, model expects %q", features.ErrSchemaMismatch, i, v.Names[i], name)
		}
	}
	return sigmoid(m.Intercept + floats.Dot(m.Coefficients, v.Values)), nil
}

// OddsRatios returns e^coefficient for every feature.
func (m *Model) OddsRatios() map[string]float64 {
	out := make(map[string]float64, len(m.Features))
	for i, name := range m.Features {
		out[name] = math.Exp(m.Coefficients[i])
	}
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Decode reads and validates a JSON model artifact.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads the model artifact at path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
