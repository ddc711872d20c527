package importsource_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSXReader_ReadsNamedSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, "Jobs", [][]interface{}{
		{"Job Ref", "Customer", "State"},
		{"A-100", "Alice", "Booked"},
		{"A-101", "Bob", "Done"},
	})

	rows, parseErrs, err := importsource.NewXLSXReader(data, "Jobs").Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 2)

	v, ok := rows[0].Get("Job Ref")
	require.True(t, ok)
	assert.Equal(t, "A-100", v)
}

func TestXLSXReader_DefaultsToFirstSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Job Ref", "State"},
		{"A-100", "Booked"},
	})

	rows, parseErrs, err := importsource.NewXLSXReader(data, "").Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 1)
}

func TestXLSXReader_TrailingEmptyCellsArePadded(t *testing.T) {
	t.Parallel()

	// excelize drops trailing empty cells on read, so a row ending in blanks
	// must not become a column-count mismatch.
	data := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Job Ref", "Customer", "State"},
		{"A-100", "Alice"},
	})

	rows, parseErrs, err := importsource.NewXLSXReader(data, "").Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 1)

	v, ok := rows[0].Get("State")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestXLSXReader_GarbageInputIsFatal(t *testing.T) {
	t.Parallel()

	_, _, err := importsource.NewXLSXReader([]byte("not a workbook"), "").Read(context.Background())
	require.Error(t, err)
}
