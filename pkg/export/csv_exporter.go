package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is an ordered report table. Rows carry one cell per header,
// in header order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends one row; short rows are padded to the header width.
func (d *Dataset) AddRow(cells ...string) {
	if len(cells) < len(d.Headers) {
		padded := make([]string, len(d.Headers))
		copy(padded, cells)
		cells = padded
	}
	d.Rows = append(d.Rows, cells)
}

// CSVExporter renders a Dataset into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header line followed by every row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
