// Package tabular reads and writes the tabular files the pipeline consumes
// and produces: batch input CSVs, XLSX mapping workbooks, reports, and the
// inventory ledger.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Rows is a fully materialized tabular file: a header row plus data rows.
// Rows may be ragged; missing trailing cells read as "".
type Rows struct {
	Header []string
	Data   [][]string
}

// Get returns the cell under the named header column for the given row,
// or "" when the column is absent or the row is short.
func (r *Rows) Get(row []string, column string) string {
	for i, h := range r.Header {
		if h == column && i < len(row) {
			return row[i]
		}
	}
	return ""
}

// ReadFile reads a CSV or XLSX file into memory, dispatching on extension.
func ReadFile(path string) (*Rows, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) (*Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read csv")
	}
	if len(all) == 0 {
		return &Rows{}, nil
	}
	return &Rows{Header: trimAll(all[0]), Data: all[1:]}, nil
}

func readXLSX(path string) (*Rows, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return &Rows{}, nil
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.Value
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return &Rows{}, nil
	}
	return &Rows{Header: trimAll(rows[0]), Data: rows[1:]}, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// StreamOptions configures the streaming CSV reader.
type StreamOptions struct {
	Delimiter rune            // default ','
	HeaderCh  chan<- []string // optional: receives the header row
}

// StreamCSV reads a CSV file and sends data rows to a channel. The first row
// is treated as the header. Caller must consume the returned row channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts StreamOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "tabular: read row")
				return
			}

			if first {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- trimAll(record):
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled sending header")
						return
					}
				}
				continue
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}
