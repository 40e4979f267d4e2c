package features

import (
	"fmt"

	"github.com/okian/glyco/internal/domain/measurement"
)

type columnKind int

const (
	numericColumn columnKind = iota
	indicatorColumn
)

type column struct {
	name     string
	kind     columnKind
	field    measurement.Field
	category Category
	label    string
}

// Schema is the ordered list of feature names a model was trained on.
type Schema struct {
	columns []column
}

// NewSchema validates names and builds a Schema. Every name must be either a
// numeric field or an indicator of a known category; duplicates are rejected.
// An indicator whose label is not in the category's enumeration is accepted
// and always encodes to zero.
func NewSchema(names []string) (Schema, error) {
	if len(names) == 0 {
		return Schema{}, fmt.Errorf("%w: empty schema", ErrSchemaMismatch)
	}
	seen := make(map[string]struct{}, len(names))
	cols := make([]column, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return Schema{}, fmt.Errorf("%w: duplicate feature %q", ErrSchemaMismatch, name)
		}
		seen[name] = struct{}{}

		if c, label, ok := parseIndicator(name); ok {
			cols = append(cols, column{name: name, kind: indicatorColumn, category: c, label: label})
			continue
		}
		f, ok := measurement.ParseField(name)
		if !ok || f.String() != name {
			return Schema{}, fmt.Errorf("%w: unknown feature %q", ErrSchemaMismatch, name)
		}
		cols = append(cols, column{name: name, kind: numericColumn, field: f})
	}
	return Schema{columns: cols}, nil
}

// MustSchema is NewSchema for compile-time constant lists.
func MustSchema(names []string) Schema {
	s, err := NewSchema(names)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultSchema is the serving schema of the shipped logistic model. The
// reference buckets (pregnancies "0", BMI "normal-high", age "young") are
// absent and therefore implied by all-zero indicators.
func DefaultSchema() Schema {
	return MustSchema([]string{
		"Pregnancies_category_mid",
		"BMI",
		"Pregnancies",
		"Insulin",
		"Pregnancies_category_high",
		"Age",
		"Age_category_older",
		"BloodPressure",
		"Glucose",
		"DiabetesPedigreeFunction",
		"Age_category_mid",
		"BMI_category_high",
		"SkinThickness",
		"BMI_category_under",
		"BMI_category_very-high",
		"Pregnancies_category_low",
	})
}

// Len returns the number of features.
func (s Schema) Len() int { return len(s.columns) }

// Names returns the feature names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.name
	}
	return out
}

// Diff compares s against want by name, ignoring order. Missing lists names
// of want absent from s; extra lists names of s absent from want.
func (s Schema) Diff(want Schema) (missing, extra []string) {
	have := make(map[string]struct{}, len(s.columns))
	for _, c := range s.columns {
		have[c.name] = struct{}{}
	}
	wanted := make(map[string]struct{}, len(want.columns))
	for _, c := range want.columns {
		wanted[c.name] = struct{}{}
		if _, ok := have[c.name]; !ok {
			missing = append(missing, c.name)
		}
	}
	for _, c := range s.columns {
		if _, ok := wanted[c.name]; !ok {
			extra = append(extra, c.name)
		}
	}
	return missing, extra
}
