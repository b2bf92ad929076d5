package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct {
	// Landscape switches the page to A4 landscape, used for week timetables.
	Landscape bool
}

// NewPDFExporter constructs a portrait PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// NewTimetableExporter constructs a landscape PDF exporter.
func NewTimetableExporter() *PDFExporter {
	return &PDFExporter{Landscape: true}
}

// Render creates a PDF document with an optional title and table body. Cells holding
// several lines are drawn with MultiCell so every entry of a day stays visible.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation, width := "P", 190.0
	if e.Landscape {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := width / float64(len(data.Headers))
	for _, label := range data.headerLabels() {
		pdf.CellFormat(colWidth, 8, tr(label), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	const lineHeight = 6.0
	for _, row := range data.Rows {
		lines := 1
		for _, header := range data.Headers {
			if n := strings.Count(row[header], "\n") + 1; n > lines {
				lines = n
			}
		}
		rowHeight := lineHeight * float64(lines)
		x, y := pdf.GetXY()
		for i, header := range data.Headers {
			pdf.Rect(x+colWidth*float64(i), y, colWidth, rowHeight, "D")
			pdf.SetXY(x+colWidth*float64(i), y)
			pdf.MultiCell(colWidth, lineHeight, tr(row[header]), "", "L", false)
		}
		pdf.SetXY(x, y+rowHeight)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
