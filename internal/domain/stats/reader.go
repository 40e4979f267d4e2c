package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/glyco/internal/domain/measurement"
)

// ReadCSV parses a reference dataset. The first row is the header; the eight
// field columns are located by name and every other column is ignored.
func ReadCSV(r io.Reader) ([]measurement.Measurement, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrReferenceData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrReferenceData, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	index := make(map[measurement.Field]int, len(header))
	for i, name := range header {
		if f, ok := measurement.ParseField(name); ok {
			index[f] = i
		}
	}
	var missing []string
	for _, f := range measurement.Fields() {
		if _, ok := index[f]; !ok {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrReferenceData, strings.Join(missing, ", "))
	}

	var rows []measurement.Measurement
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrReferenceData, line, err)
		}
		cells := make(map[string]string, len(index))
		for f, i := range index {
			cells[f.String()] = rec[i]
		}
		m, err := measurement.FromStrings(cells)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrReferenceData, line, err)
		}
		rows = append(rows, m)
	}
	return rows, nil
}
