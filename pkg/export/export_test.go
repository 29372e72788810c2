package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFilename(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "experiments_2026-09-01.xlsx", Filename("experiments", "xlsx", now))
	assert.Equal(t, "samples_2026-09-01.pdf", Filename("samples", "pdf", now))
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	doc := Document{
		Title:   "Experiments Report",
		Sheet:   "Experiments",
		Headers: []string{"Name", "Status", "Project"},
		Rows: [][]string{
			{"E1", "signed", "P1"},
			{"E2", "in_progress", "P1"},
		},
	}
	data, err := WriteXLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Experiments")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Status", "Project"}, rows[0])
	assert.Equal(t, []string{"E1", "signed", "P1"}, rows[1])
}

func TestWriteXLSXEmptyRows(t *testing.T) {
	// exporting zero entities must produce a valid header-only file
	doc := Document{Sheet: "Experiments", Headers: []string{"Name", "Status"}}
	data, err := WriteXLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Experiments")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Name", "Status"}, rows[0])
}

func TestWritePDF(t *testing.T) {
	doc := Document{
		Title:   "Experiments Report",
		Headers: []string{"Name", "Status"},
		Rows:    [][]string{{"E1", "signed"}},
	}
	data, err := WritePDF(doc, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWritePDFEmptyRows(t *testing.T) {
	doc := Document{Title: "Samples Report", Headers: []string{"Name"}}
	data, err := WritePDF(doc, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
