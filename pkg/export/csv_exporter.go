package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Dataset is tabular export content. Rows are keyed by header; Labels optionally
// renames headers in the rendered output.
type Dataset struct {
	Headers []string
	Labels  map[string]string
	Rows    []map[string]string
}

func (d Dataset) headerLabels() []string {
	labels := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		if label, ok := d.Labels[h]; ok && label != "" {
			labels[i] = label
		} else {
			labels[i] = h
		}
	}
	return labels
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	// ByteOrderMark prefixes output with a UTF-8 BOM so spreadsheet apps detect the encoding.
	ByteOrderMark bool
}

// NewCSVExporter builds a CSV exporter that emits a BOM.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{ByteOrderMark: true}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.ByteOrderMark {
		buf.WriteString("\ufeff")
	}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.headerLabels()); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds a download name such as "overdue-tuitions-2024-11-13.csv".
func Filename(prefix string, day time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, day.Format("2006-01-02"), ext)
}
