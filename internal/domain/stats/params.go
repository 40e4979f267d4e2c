// Package stats derives the per-field standardization parameters from the
// reference training dataset.
package stats

import (
	"fmt"

	"github.com/okian/glyco/internal/domain/measurement"
	"gonum.org/v1/gonum/stat"
)

// minRows is the smallest sample for which a sample standard deviation exists.
const minRows = 2

// Moments holds the mean and sample standard deviation of one field.
type Moments struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
}

// Params maps each numeric field to its Moments. A Params value is never
// mutated after construction, so it can be shared across goroutines.
type Params struct {
	moments map[measurement.Field]Moments
}

// NewParams copies m into an immutable Params.
func NewParams(m map[measurement.Field]Moments) Params {
	cp := make(map[measurement.Field]Moments, len(m))
	for f, mo := range m {
		cp[f] = mo
	}
	return Params{moments: cp}
}

// Get returns the moments of f.
func (p Params) Get(f measurement.Field) (Moments, bool) {
	mo, ok := p.moments[f]
	return mo, ok
}

// Len returns the number of fields with moments.
func (p Params) Len() int { return len(p.moments) }

// Compute derives the arithmetic mean and the n-1 sample standard deviation
// of every field across rows. Rows are used as given.
func Compute(rows []measurement.Measurement) (Params, error) {
	if len(rows) < minRows {
		return Params{}, fmt.Errorf("%w: %d rows", ErrInsufficientData, len(rows))
	}

	fields := measurement.Fields()
	moments := make(map[measurement.Field]Moments, len(fields))
	column := make([]float64, len(rows))
	for _, f := range fields {
		for i, r := range rows {
			column[i] = r.Value(f)
		}
		mean, std := stat.MeanStdDev(column, nil)
		moments[f] = Moments{Mean: mean, StdDev: std}
	}
	return Params{moments: moments}, nil
}
