package importsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingHeader aborts the run before any row is processed: without a
// header there are no source column names to map.
var ErrMissingHeader = errors.New("source has no header row")

// RawRow is one ingested data row keyed by source column name. Index is the
// 1-based position of the row among data rows (the header is not counted)
// and is what error messages report back to the caller.
type RawRow struct {
	Index   int
	columns []string
	values  map[string]string
}

func NewRawRow(index int, columns []string, values []string) RawRow {
	m := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(values) {
			m[col] = values[i]
		}
	}
	return RawRow{Index: index, columns: columns, values: m}
}

// Get returns the raw value for the named source column. The second return
// value is false when the column does not exist in the source header.
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

func (r RawRow) Columns() []string { return r.columns }

// ParseError is a row-level ingestion failure. The row is excluded from
// further processing but the run continues.
type ParseError struct {
	RowIndex int
	Message  string
}

// Reader turns a raw source into an ordered sequence of header-keyed rows.
// A non-nil error is fatal for the whole run (unreadable source or missing
// header); per-row problems come back as ParseErrors instead.
type Reader interface {
	Read(ctx context.Context) ([]RawRow, []ParseError, error)
}

// RowsFromMatrix applies the shared header/row contract to an in-memory
// cell matrix: the first non-empty row is the header, blank rows are
// skipped silently, and a row whose column count differs from the header
// becomes a ParseError. padShort pads rows that are short on trailing cells
// instead of rejecting them; spreadsheet APIs legitimately omit trailing
// empty cells, so sheet-backed sources pass true while CSV stays strict.
func RowsFromMatrix(matrix [][]string, padShort bool) ([]RawRow, []ParseError, error) {
	header, rest := splitHeader(matrix)
	if header == nil {
		return nil, nil, ErrMissingHeader
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var (
		rows   []RawRow
		errs   []ParseError
		ropens int
	)
	for _, record := range rest {
		if isBlank(record) {
			continue
		}
		ropens++
		if padShort && len(record) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, record)
			record = padded
		}
		if len(record) != len(columns) {
			errs = append(errs, ParseError{
				RowIndex: ropens,
				Message:  fmt.Sprintf("column count mismatch: expected %d, got %d", len(columns), len(record)),
			})
			continue
		}
		rows = append(rows, NewRawRow(ropens, columns, record))
	}
	return rows, errs, nil
}

func splitHeader(matrix [][]string) ([]string, [][]string) {
	for i, record := range matrix {
		if !isBlank(record) {
			return record, matrix[i+1:]
		}
	}
	return nil, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
