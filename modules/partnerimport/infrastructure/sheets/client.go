package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/fieldops-hq/fieldops/modules/partnerimport/domain/importsource"
)

// Client reads linked partner spreadsheets with a service-account key.
type Client struct {
	srv *sheets.Service
}

func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{srv: srv}, nil
}

// FetchValues reads the whole named sheet as a string matrix.
func (c *Client) FetchValues(_ context.Context, spreadsheetID, sheetName string) ([][]string, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, sheetName).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch sheet %q: %w", sheetName, err)
	}

	matrix := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		matrix = append(matrix, cells)
	}
	return matrix, nil
}

// Fetcher is the narrow surface the sheet reader needs; Client satisfies it
// and tests substitute an in-memory matrix.
type Fetcher interface {
	FetchValues(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error)
}

// Reader adapts a fetched sheet to the row source contract.
type Reader struct {
	fetcher       Fetcher
	spreadsheetID string
	sheetName     string
}

func NewReader(fetcher Fetcher, spreadsheetID, sheetName string) *Reader {
	return &Reader{fetcher: fetcher, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func (r *Reader) Read(ctx context.Context) ([]importsource.RawRow, []importsource.ParseError, error) {
	matrix, err := r.fetcher.FetchValues(ctx, r.spreadsheetID, r.sheetName)
	if err != nil {
		return nil, nil, err
	}
	// The Sheets API omits trailing empty cells per row.
	return importsource.RowsFromMatrix(matrix, true)
}
