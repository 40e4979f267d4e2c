// Package features turns a raw measurement into the numeric vector a model
// was trained on: z-score standardization, bucketing, one-hot expansion and
// alignment to the model's feature schema.
package features

import (
	"fmt"
	"math"

	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/okian/glyco/internal/domain/stats"
)

// Vector is an encoded measurement. Names and Values are parallel and follow
// the schema order.
type Vector struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (v Vector) Len() int { return len(v.Values) }

// Value returns the value of the named feature.
func (v Vector) Value(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Encode builds the feature vector for m. It is a pure function of its inputs.
func Encode(m measurement.Measurement, params stats.Params, schema Schema) (Vector, error) {
	if schema.Len() == 0 {
		return Vector{}, fmt.Errorf("%w: empty schema", ErrSchemaMismatch)
	}

	standardized := make(map[measurement.Field]float64, len(measurement.Fields()))
	for _, f := range measurement.Fields() {
		z, err := Standardize(m.Value(f), f, params)
		if err != nil {
			return Vector{}, err
		}
		standardized[f] = z
	}

	// Buckets come from the raw values, never the standardized ones.
	active := make(map[Category]string, len(Categories()))
	for _, c := range Categories() {
		active[c] = c.Bucket(m.Value(c.Source()))
	}

	v := Vector{
		Names:  make([]string, schema.Len()),
		Values: make([]float64, schema.Len()),
	}
	for i, col := range schema.columns {
		v.Names[i] = col.name
		switch col.kind {
		case numericColumn:
			v.Values[i] = standardized[col.field]
		case indicatorColumn:
			if active[col.category] == col.label {
				v.Values[i] = 1
			}
		}
	}
	return v, nil
}

// Standardize returns (value - mean) / std for field f.
func Standardize(value float64, f measurement.Field, params stats.Params) (float64, error) {
	mo, ok := params.Get(f)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParams, f)
	}
	if mo.StdDev == 0 || math.IsNaN(mo.StdDev) || math.IsInf(mo.StdDev, 0) {
		return 0, fmt.Errorf("%w: %s (std=%g)", ErrZeroStdDev, f, mo.StdDev)
	}
	return (value - mo.Mean) / mo.StdDev, nil
}
