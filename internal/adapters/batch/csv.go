// Package batch reads screening files and writes screening reports as CSV.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/domain/measurement"
)

// ReportColumns follow the eight measurement columns in a report.
var ReportColumns = []string{"probability", "score", "positive", "risk_level", "error"}

// ReadMeasurements parses a screening CSV. Columns are located by header
// name and extra columns are ignored. A bad cell fails only its row.
func ReadMeasurements(r io.Reader) ([]service.Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
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
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []service.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)

		cells := make(map[string]string, len(index))
		for f, i := range index {
			if i < len(rec) {
				cells[f.String()] = rec[i]
			}
		}
		m, err := measurement.FromStrings(cells)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, service.Row{Line: line, Measurement: m, Err: err})
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

// WriteReport writes one CSV line per outcome: the input line, the eight
// measurement values, then ReportColumns. Rows that failed to parse leave
// the measurement cells empty.
func WriteReport(w io.Writer, outcomes []service.Outcome) error {
	cw := csv.NewWriter(w)

	header := []string{"line"}
	for _, f := range measurement.Fields() {
		header = append(header, f.String())
	}
	header = append(header, ReportColumns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, o := range outcomes {
		if err := cw.Write(reportRecord(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func reportRecord(o service.Outcome) []string {
	rec := make([]string, 0, 1+len(measurement.Fields())+len(ReportColumns))
	rec = append(rec, strconv.Itoa(o.Row.Line))

	parsed := o.Row.Err == nil
	for _, f := range measurement.Fields() {
		if !parsed {
			rec = append(rec, "")
			continue
		}
		rec = append(rec, strconv.FormatFloat(o.Row.Measurement.Value(f), 'f', -1, 64))
	}

	if o.Err != nil {
		return append(rec, "", "", "", "", o.Err.Error())
	}
	return append(rec,
		strconv.FormatFloat(o.Result.Probability, 'f', 6, 64),
		strconv.FormatFloat(o.Result.Score, 'f', 2, 64),
		strconv.FormatBool(o.Result.Positive),
		string(o.Result.Level),
		"",
	)
}
