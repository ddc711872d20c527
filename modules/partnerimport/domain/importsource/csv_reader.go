package importsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVReader reads inline CSV text uploaded with the run request.
type CSVReader struct {
	data string
}

func NewCSVReader(data string) *CSVReader {
	return &CSVReader{data: data}
}

func (r *CSVReader) Read(_ context.Context) ([]RawRow, []ParseError, error) {
	br := bufio.NewReader(strings.NewReader(r.data))
	stripUTF8BOM(br)

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return RowsFromMatrix(records, false)
}

func stripUTF8BOM(r *bufio.Reader) {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
}
