package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sempreviva/dashboard/internal/encoding"
)

var delimiters = []rune{';', ',', '\t'}

func readCSV(r io.Reader) ([][]string, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	first, err := br.Peek(2048)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = DetectDelimiter(string(first))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	return rows, nil
}

// DetectDelimiter picks the most frequent candidate delimiter on the first
// line; ties go to ';', the separator of Spanish locale exports.
func DetectDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")

	best, bestCount := delimiters[0], 0

	for _, d := range delimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}
