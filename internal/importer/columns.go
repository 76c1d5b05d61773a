package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sempreviva/dashboard/internal/sheet"
)

// Aliases are lowercase and listed in priority order.
var (
	IncomeAmountAliases      = []string{"amount", "importe", "total", "valor", "precio", "monto"}
	IncomeTagAliases         = []string{"tags", "etiquetas", "tag"}
	IncomeDescriptionAliases = []string{"descripcion", "descripción", "description", "concepto"}

	ExpenseAmountAliases  = []string{"amount", "importe", "total", "valor", "monto"}
	ExpenseAccountAliases = []string{"cuenta", "account", "categoria", "categoría"}
)

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindColumn returns the first column matching an alias. Aliases are tried in
// order, so the alias list decides ties rather than the column order.
func FindColumn(columns, aliases []string) (string, error) {
	byName := make(map[string]string, len(columns))

	for _, c := range columns {
		name := normalizeName(c)
		if _, ok := byName[name]; !ok {
			byName[name] = c
		}
	}

	for _, alias := range aliases {
		if c, ok := byName[alias]; ok {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: expected one of %s", ErrColumnNotFound, strings.Join(aliases, ", "))
}

// DetectAmountColumn resolves the amount column by alias and otherwise
// accepts the only entirely numeric column. When there is no numeric column
// or more than one, the alias lookup error is returned. Columns named in
// exclude (the date column, whose raw Excel values are serial numbers) are
// never considered numeric candidates.
func DetectAmountColumn(table sheet.Table, aliases []string, exclude ...string) (string, error) {
	col, err := FindColumn(table.Columns, aliases)
	if err == nil {
		return col, nil
	}

	var numeric []string

	for _, c := range table.Columns {
		if contains(exclude, c) {
			continue
		}

		if isNumericColumn(table.Values(c)) {
			numeric = append(numeric, c)
		}
	}

	if len(numeric) == 1 {
		return numeric[0], nil
	}

	return "", err
}

// FindDateColumn returns the column holding business dates: one named
// exactly "fecha", then exactly "date", then the first column whose name
// contains "fecha".
func FindDateColumn(columns []string) (string, bool) {
	return pickColumn(columns, []string{"fecha", "date"}, func(name string) bool {
		return strings.Contains(name, "fecha") || name == "date"
	})
}

// findDescriptionColumn looks for a column containing "descripcion" or
// "descripción", preferring the exact names.
func findDescriptionColumn(columns []string) (string, bool) {
	return pickColumn(columns, []string{"descripcion", "descripción"}, func(name string) bool {
		return strings.Contains(name, "descripcion") || strings.Contains(name, "descripción")
	})
}

func pickColumn(columns, preferred []string, candidate func(name string) bool) (string, bool) {
	var candidates []string

	for _, c := range columns {
		if candidate(normalizeName(c)) {
			candidates = append(candidates, c)
		}
	}

	for _, p := range preferred {
		for _, c := range candidates {
			if normalizeName(c) == p {
				return c, true
			}
		}
	}

	if len(candidates) > 0 {
		return candidates[0], true
	}

	return "", false
}

// isNumericColumn reports whether every non-blank cell is a plain number and
// at least one cell is non-blank.
func isNumericColumn(values []string) bool {
	seen := false

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}

		seen = true
	}

	return seen
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
