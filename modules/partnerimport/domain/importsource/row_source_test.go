package importsource_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

func TestCSVReader_HeaderKeyedRows(t *testing.T) {
	t.Parallel()

	data := "Job Ref,Customer,State\nA-100,Alice,Booked\nA-101,Bob,Done\n"
	rows, parseErrs, err := importsource.NewCSVReader(data).Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	v, ok := rows[0].Get("Job Ref")
	require.True(t, ok)
	assert.Equal(t, "A-100", v)

	v, ok = rows[1].Get("Customer")
	require.True(t, ok)
	assert.Equal(t, "Bob", v)

	_, ok = rows[0].Get("Missing Column")
	assert.False(t, ok)
}

func TestCSVReader_StripsUTF8BOM(t *testing.T) {
	t.Parallel()

	data := "\xEF\xBB\xBFJob Ref,State\nA-100,Booked\n"
	rows, parseErrs, err := importsource.NewCSVReader(data).Read(context.Background())
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 1)

	_, ok := rows[0].Get("Job Ref")
	assert.True(t, ok, "BOM must not glue itself onto the first header cell")
}

func TestCSVReader_EmptySourceIsMissingHeader(t *testing.T) {
	t.Parallel()

	_, _, err := importsource.NewCSVReader("").Read(context.Background())
	require.ErrorIs(t, err, importsource.ErrMissingHeader)

	_, _, err = importsource.NewCSVReader("\n\n  ,  \n").Read(context.Background())
	require.ErrorIs(t, err, importsource.ErrMissingHeader)
}

func TestRowsFromMatrix_SkipsBlankRowsWithoutIndexing(t *testing.T) {
	t.Parallel()

	matrix := [][]string{
		{"ref", "name"},
		{"A-1", "Alice"},
		{"", ""},
		{"A-2", "Bob"},
	}
	rows, parseErrs, err := importsource.RowsFromMatrix(matrix, false)
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 2)

	// The blank row occupies no data-row index.
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 2, rows[1].Index)
}

func TestRowsFromMatrix_ColumnCountMismatch(t *testing.T) {
	t.Parallel()

	matrix := [][]string{
		{"ref", "name", "state"},
		{"A-1", "Alice", "Booked"},
		{"A-2", "Bob"},
		{"A-3", "Cara", "Done"},
	}
	rows, parseErrs, err := importsource.RowsFromMatrix(matrix, false)
	require.NoError(t, err)

	require.Len(t, parseErrs, 1)
	assert.Equal(t, 2, parseErrs[0].RowIndex)
	assert.Equal(t, "column count mismatch: expected 3, got 2", parseErrs[0].Message)

	// The good rows survive around the bad one.
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 3, rows[1].Index)
}

func TestRowsFromMatrix_PadShortForSheetSources(t *testing.T) {
	t.Parallel()

	// Spreadsheet APIs omit trailing empty cells; short rows pad instead of
	// erroring when the source opts in.
	matrix := [][]string{
		{"ref", "name", "state"},
		{"A-1", "Alice"},
	}
	rows, parseErrs, err := importsource.RowsFromMatrix(matrix, true)
	require.NoError(t, err)
	require.Empty(t, parseErrs)
	require.Len(t, rows, 1)

	v, ok := rows[0].Get("state")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestRowsFromMatrix_LongRowsStillMismatchWhenPadding(t *testing.T) {
	t.Parallel()

	matrix := [][]string{
		{"ref", "name"},
		{"A-1", "Alice", "extra"},
	}
	rows, parseErrs, err := importsource.RowsFromMatrix(matrix, true)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, parseErrs, 1)
	assert.Equal(t, "column count mismatch: expected 2, got 3", parseErrs[0].Message)
}

func TestRowsFromMatrix_TrimsHeaderCells(t *testing.T) {
	t.Parallel()

	matrix := [][]string{
		{"  ref ", " name"},
		{"A-1", "Alice"},
	}
	rows, _, err := importsource.RowsFromMatrix(matrix, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v, ok := rows[0].Get("ref")
	require.True(t, ok)
	assert.Equal(t, "A-1", v)
	assert.Equal(t, []string{"ref", "name"}, rows[0].Columns())
}
