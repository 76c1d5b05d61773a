// Package sheet reads the first worksheet of a spreadsheet upload into a
// header plus string rows.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptySheet        = errors.New("sheet has no header row")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	magicZip = []byte{'P', 'K', 0x03, 0x04}
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Table is a single worksheet. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}

	return -1
}

// Values returns every cell of the named column in row order.
func (t Table) Values(column string) []string {
	idx := t.Index(column)
	if idx < 0 {
		return nil
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}

	return values
}

// DetectFormat decides the format from the file contents, falling back to
// the extension for plain text.
func DetectFormat(filename string, head []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(head, magicZip):
		return FormatXLSX, nil
	case bytes.HasPrefix(head, magicOLE):
		return FormatXLS, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// Read parses the first worksheet of the upload.
func Read(filename string, r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("reading %s: %w", filename, err)
	}

	format, err := DetectFormat(filename, data)
	if err != nil {
		return Table{}, err
	}

	var rows [][]string

	switch format {
	case FormatXLSX:
		rows, err = readXLSX(bytes.NewReader(data))
	case FormatXLS:
		rows, err = readXLS(bytes.NewReader(data))
	case FormatCSV:
		rows, err = readCSV(bytes.NewReader(data))
	}

	if err != nil {
		return Table{}, fmt.Errorf("parsing %s as %s: %w", filename, format, err)
	}

	// Spreadsheets keep blank rows between data rows; text files skip them.
	return newTable(rows, format != FormatCSV)
}

// newTable uses the first non-blank row as header. Data rows are padded or
// truncated to the header width. Trailing blank rows are always dropped;
// blank rows between data rows are kept as empty rows when keepBlank is set
// and skipped otherwise.
func newTable(rows [][]string, keepBlank bool) (Table, error) {
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}

	if start == len(rows) {
		return Table{}, ErrEmptySheet
	}

	header := rows[start]
	columns := make([]string, len(header))

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}

		columns[i] = h
	}

	end := len(rows)
	for end > start+1 && blank(rows[end-1]) {
		end--
	}

	t := Table{Columns: columns, Rows: [][]string{}}

	for _, row := range rows[start+1 : end] {
		if !keepBlank && blank(row) {
			continue
		}

		cells := make([]string, len(columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.TrimSpace(row[i])
			}
		}

		t.Rows = append(t.Rows, cells)
	}

	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
