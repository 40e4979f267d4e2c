package stats

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Source produces Params. It is called at most once per Store.
type Source func(ctx context.Context) (Params, error)

// Store loads Params lazily on first use and serves the same result,
// success or failure, for the rest of the process lifetime. Concurrent
// first callers wait for a single load.
type Store struct {
	source Source

	once   sync.Once
	params Params
	err    error
}

// NewStore creates a Store around source.
func NewStore(source Source) *Store {
	return &Store{source: source}
}

// StaticSource serves precomputed params.
func StaticSource(p Params) Source {
	return func(context.Context) (Params, error) { return p, nil }
}

// FileSource computes params from the reference CSV at path.
func FileSource(path string) Source {
	return func(ctx context.Context) (Params, error) {
		if err := ctx.Err(); err != nil {
			return Params{}, err
		}
		f, err := os.Open(path)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %w", ErrReferenceData, err)
		}
		defer func() { _ = f.Close() }()

		rows, err := ReadCSV(f)
		if err != nil {
			return Params{}, fmt.Errorf("%s: %w", path, err)
		}
		p, err := Compute(rows)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %w", ErrReferenceData, path, err)
		}
		return p, nil
	}
}

// Get returns the standardization params, loading them on the first call.
// The load ignores cancellation of the triggering request so that only
// artifact failures are cached.
func (s *Store) Get(ctx context.Context) (Params, error) {
	s.once.Do(func() {
		if s.source == nil {
			s.err = fmt.Errorf("%w: no source configured", ErrReferenceData)
			return
		}
		s.params, s.err = s.source(context.WithoutCancel(ctx))
	})
	return s.params, s.err
}
