// Package measurement defines the raw 8-field clinical record that the
// predictor consumes.
package measurement

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field identifies one of the numeric measurement fields.
type Field int

// Numeric fields in canonical order. The order matches the column order of
// the reference training dataset.
const (
	Pregnancies Field = iota
	Glucose
	BloodPressure
	SkinThickness
	Insulin
	BMI
	DiabetesPedigreeFunction
	Age

	fieldCount
)

var fieldNames = [fieldCount]string{
	Pregnancies:              "Pregnancies",
	Glucose:                  "Glucose",
	BloodPressure:            "BloodPressure",
	SkinThickness:            "SkinThickness",
	Insulin:                  "Insulin",
	BMI:                      "BMI",
	DiabetesPedigreeFunction: "DiabetesPedigreeFunction",
	Age:                      "Age",
}

// Fields returns every numeric field in canonical order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// String returns the dataset column name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// ParseField resolves a dataset column name. Matching ignores case and
// surrounding whitespace.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for f := Field(0); f < fieldCount; f++ {
		if strings.EqualFold(fieldNames[f], name) {
			return f, true
		}
	}
	return 0, false
}

// Measurement is one raw record. All fields are mandatory.
type Measurement struct {
	Pregnancies              float64 `json:"pregnancies" yaml:"pregnancies"`
	Glucose                  float64 `json:"glucose" yaml:"glucose"`
	BloodPressure            float64 `json:"blood_pressure" yaml:"blood_pressure"`
	SkinThickness            float64 `json:"skin_thickness" yaml:"skin_thickness"`
	Insulin                  float64 `json:"insulin" yaml:"insulin"`
	BMI                      float64 `json:"bmi" yaml:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetes_pedigree_function" yaml:"diabetes_pedigree_function"`
	Age                      float64 `json:"age" yaml:"age"`
}

// Value returns the value of f.
func (m Measurement) Value(f Field) float64 {
	switch f {
	case Pregnancies:
		return m.Pregnancies
	case Glucose:
		return m.Glucose
	case BloodPressure:
		return m.BloodPressure
	case SkinThickness:
		return m.SkinThickness
	case Insulin:
		return m.Insulin
	case BMI:
		return m.BMI
	case DiabetesPedigreeFunction:
		return m.DiabetesPedigreeFunction
	case Age:
		return m.Age
	}
	return math.NaN()
}

func (m *Measurement) set(f Field, v float64) {
	switch f {
	case Pregnancies:
		m.Pregnancies = v
	case Glucose:
		m.Glucose = v
	case BloodPressure:
		m.BloodPressure = v
	case SkinThickness:
		m.SkinThickness = v
	case Insulin:
		m.Insulin = v
	case BMI:
		m.BMI = v
	case DiabetesPedigreeFunction:
		m.DiabetesPedigreeFunction = v
	case Age:
		m.Age = v
	}
}

// Validate checks that every field is a finite, non-negative number and that
// Pregnancies is a whole count.
func (m Measurement) Validate() error {
	for _, f := range Fields() {
		v := m.Value(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s", ErrNotNumeric, f)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s=%g", ErrOutOfRange, f, v)
		}
	}
	if m.Pregnancies != math.Trunc(m.Pregnancies) {
		return fmt.Errorf("%w: %s=%g is not a whole count", ErrOutOfRange, Pregnancies, m.Pregnancies)
	}
	return nil
}

// FromMap builds a Measurement keyed by column name. Every field must be
// present; nothing is defaulted.
func FromMap(values map[string]float64) (Measurement, error) {
	byField := make(map[Field]float64, len(values))
	for k, v := range values {
		if f, ok := ParseField(k); ok {
			byField[f] = v
		}
	}

	var m Measurement
	for _, f := range Fields() {
		v, ok := byField[f]
		if !ok {
			return Measurement{}, fmt.Errorf("%w: %s", ErrMissingField, f)
		}
		m.set(f, v)
	}
	if err := m.Validate(); err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// FromStrings is FromMap for textual input such as CSV cells or form values.
func FromStrings(values map[string]string) (Measurement, error) {
	parsed := make(map[string]float64, len(values))
	for k, raw := range values {
		f, ok := ParseField(k)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Measurement{}, fmt.Errorf("%w: %s", ErrMissingField, f)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Measurement{}, fmt.Errorf("%w: %s=%q", ErrNotNumeric, f, raw)
		}
		parsed[f.String()] = v
	}
	return FromMap(parsed)
}
