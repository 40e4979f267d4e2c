package features

import "github.com/okian/glyco/internal/domain/measurement"

// Bucket boundaries. Training and serving share these values; changing one
// invalidates every model trained against the old edges.
const (
	PregnanciesLowMin  = 1.0
	PregnanciesMidMin  = 4.0
	PregnanciesHighMin = 8.0

	BMINormalHighMin = 27.0
	BMIHighMin       = 32.0
	BMIVeryHighMin   = 37.0

	AgeMidMin   = 30.0
	AgeOlderMin = 40.0
)

// Category is a derived discrete feature computed from one raw field.
type Category int

// Categories in encoding order.
const (
	PregnancyBucket Category = iota
	BMIBucket
	AgeBucket

	categoryCount
)

// indicatorInfix joins a category's source column and a bucket label.
const indicatorInfix = "_category_"

var categoryBuckets = [categoryCount][]string{
	PregnancyBucket: {"0", "low", "mid", "high"},
	BMIBucket:       {"under", "normal-high", "high", "very-high"},
	AgeBucket:       {"young", "mid", "older"},
}

var categorySource = [categoryCount]measurement.Field{
	PregnancyBucket: measurement.Pregnancies,
	BMIBucket:       measurement.BMI,
	AgeBucket:       measurement.Age,
}

// Categories returns every category in encoding order.
func Categories() []Category {
	return []Category{PregnancyBucket, BMIBucket, AgeBucket}
}

// Source returns the raw field the category is derived from.
func (c Category) Source() measurement.Field { return categorySource[c] }

// String returns the category's column prefix, e.g. "BMI_category".
func (c Category) String() string {
	return c.Source().String() + "_category"
}

// Buckets enumerates every label of c, in ascending order of the source value.
func (c Category) Buckets() []string {
	out := make([]string, len(categoryBuckets[c]))
	copy(out, categoryBuckets[c])
	return out
}

// Indicator returns the one-hot column name for label.
func (c Category) Indicator(label string) string {
	return c.Source().String() + indicatorInfix + label
}

// Bucket maps a raw (not standardized) value to exactly one label.
func (c Category) Bucket(v float64) string {
	b := categoryBuckets[c]
	switch c {
	case PregnancyBucket:
		switch {
		case v < PregnanciesLowMin:
			return b[0]
		case v < PregnanciesMidMin:
			return b[1]
		case v < PregnanciesHighMin:
			return b[2]
		default:
			return b[3]
		}
	case BMIBucket:
		switch {
		case v < BMINormalHighMin:
			return b[0]
		case v < BMIHighMin:
			return b[1]
		case v < BMIVeryHighMin:
			return b[2]
		default:
			return b[3]
		}
	case AgeBucket:
		switch {
		case v < AgeMidMin:
			return b[0]
		case v < AgeOlderMin:
			return b[1]
		default:
			return b[2]
		}
	}
	return ""
}

// parseIndicator splits a one-hot column name into its category and label.
func parseIndicator(name string) (Category, string, bool) {
	for _, c := range Categories() {
		prefix := c.Source().String() + indicatorInfix
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return c, name[len(prefix):], true
		}
	}
	return 0, "", false
}
