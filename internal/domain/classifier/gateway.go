package classifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/glyco/internal/domain/features"
)

// Loader produces a model. It is called at most once per Gateway.
type Loader func(ctx context.Context) (*Model, error)

// FileLoader loads the JSON artifact at path.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (*Model, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadFile(path)
	}
}

// StaticLoader serves an in-memory model after validating it.
func StaticLoader(m Model) Loader {
	return func(context.Context) (*Model, error) {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return &m, nil
	}
}

// Gateway loads the model once and serves read-only inference. The first
// load result, success or failure, is kept for the process lifetime.
type Gateway struct {
	load Loader

	once   sync.Once
	model  *Model
	schema features.Schema
	odds   map[string]float64
	err    error
}

// NewGateway creates a Gateway around load.
func NewGateway(load Loader) *Gateway {
	return &Gateway{load: load}
}

// Load returns the model, loading it on the first call. The load ignores
// cancellation of the triggering request.
func (g *Gateway) Load(ctx context.Context) (*Model, error) {
	g.once.Do(func() {
		if g.load == nil {
			g.err = fmt.Errorf("%w: no loader configured", ErrModelUnavailable)
			return
		}
		m, err := g.load(context.WithoutCancel(ctx))
		if err != nil {
			g.err = err
			return
		}
		schema, err := m.Schema()
		if err != nil {
			g.err = fmt.Errorf("%w: %w", ErrCorruptModel, err)
			return
		}
		g.model, g.schema, g.odds = m, schema, m.OddsRatios()
	})
	return g.model, g.err
}

// Schema returns the feature schema of the loaded model.
func (g *Gateway) Schema(ctx context.Context) (features.Schema, error) {
	if _, err := g.Load(ctx); err != nil {
		return features.Schema{}, err
	}
	return g.schema, nil
}

// PredictProba returns the positive-class probability of v.
func (g *Gateway) PredictProba(ctx context.Context, v features.Vector) (float64, error) {
	m, err := g.Load(ctx)
	if err != nil {
		return 0, err
	}
	return m.Proba(v)
}

// OddsRatios returns a copy of the per-feature odds ratios.
func (g *Gateway) OddsRatios(ctx context.Context) (map[string]float64, error) {
	if _, err := g.Load(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(g.odds))
	for k, v := range g.odds {
		out[k] = v
	}
	return out, nil
}
