package importsource

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads an uploaded workbook. When sheetName is empty the first
// sheet of the workbook is used.
type XLSXReader struct {
	data      []byte
	sheetName string
}

func NewXLSXReader(data []byte, sheetName string) *XLSXReader {
	return &XLSXReader{data: data, sheetName: sheetName}
}

func (r *XLSXReader) Read(_ context.Context) ([]RawRow, []ParseError, error) {
	f, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	// excelize trims trailing empty cells per row.
	return RowsFromMatrix(records, true)
}
