package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"02-01-06",
	"01-02-06",
	"02/01/06",
	"20060102",
}

// ParseDate normalises a cell to YYYY-MM-DD. Day-first layouts win over
// month-first ones. Unparseable or empty cells get the fallback date.
func ParseDate(s string, fallback time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback.Format(time.DateOnly)
	}

	if t, ok := parseExcelSerial(s); ok {
		return t.Format(time.DateOnly)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	return fallback.Format(time.DateOnly)
}

func parseExcelSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > maxExcelSerial {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
