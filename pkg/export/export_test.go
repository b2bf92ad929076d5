package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "Amount"},
		Rows: []map[string]string{
			{"Student": "Lan", "Amount": "500000"},
			{"Student": "Minh, Jr.", "Amount": "750000"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	exporter := &CSVExporter{}
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Student,Amount\nLan,500000\n\"Minh, Jr.\",750000\n", string(out))
}

func TestCSVExporterBOMAndLabels(t *testing.T) {
	data := sampleDataset()
	data.Labels = map[string]string{"Amount": "Amount (VND)"}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\xef\xbb\xbfStudent,Amount (VND)\n")))
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 11, 13, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "week-2024-11-13.pdf", Filename("week", day, "pdf"))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"T2", "T3"},
		Rows:    []map[string]string{{"T2": "08:00 IELTS A\n19:00 TOEIC", "T3": ""}},
	}
	for _, exporter := range []*PDFExporter{NewPDFExporter(), NewTimetableExporter()} {
		out, err := exporter.Render(data, "Week")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	}
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
