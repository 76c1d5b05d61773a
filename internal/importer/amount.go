package importer

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a cell into a number. Both "1234.56" and the European
// "1.234,56" are accepted; a single separator is the decimal separator and a
// repeated one groups thousands. Anything unparseable or out of float64
// range becomes 0.
func ParseAmount(s string) float64 {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0
	}

	dot, comma := strings.LastIndex(clean, "."), strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}

	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}

	return f
}
