package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidGroupBy = errors.New("invalid breakdown grouping")
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

// ParseType accepts the stored form as well as the lowercase names used by
// upload forms and query strings.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(TypeIncome), "INGRESOS":
		return TypeIncome, nil
	case string(TypeExpense), "GASTOS":
		return TypeExpense, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// GroupBy selects the column a breakdown aggregates over.
type GroupBy string

const (
	GroupByCategory    GroupBy = "category"
	GroupBySubcategory GroupBy = "subcategory"
)

func (g GroupBy) Valid() bool {
	return g == GroupByCategory || g == GroupBySubcategory
}

// Record is a normalised spreadsheet row ready to be persisted.
type Record struct {
	Date        string // YYYY-MM-DD
	Amount      float64
	Type        Type
	Category    string
	Subcategory string
	Description string
	SourceFile  string
	CreatedAt   time.Time
}

// Transaction is a persisted Record.
type Transaction struct {
	ID int64
	Record
}

// Totals holds the aggregate figures of a date range.
type Totals struct {
	Income   float64
	Expenses float64
	Net      float64
	Margin   float64 // percentage of income
}

// NewTotals derives net and margin. Margin is 0 when there is no income.
func NewTotals(income, expenses float64) Totals {
	t := Totals{
		Income:   income,
		Expenses: expenses,
		Net:      income - expenses,
	}

	if income != 0 {
		t.Margin = t.Net / income * 100
	}

	return t
}

// MonthTotal is one row of the monthly trend. Month is formatted YYYY-MM.
type MonthTotal struct {
	Month    string
	Income   float64
	Expenses float64
}

func (m MonthTotal) Net() float64 {
	return m.Income - m.Expenses
}

type BreakdownRow struct {
	Label string
	Total float64
}

// ProcessedFile tracks the last upload of a given filename.
type ProcessedFile struct {
	Filename   string
	UploadDate time.Time
	RowCount   int
}

// ListFilter bounds are inclusive calendar dates; nil means unbounded.
type ListFilter struct {
	Start *time.Time
	End   *time.Time
	Type  *Type
}

// Reversed reports whether both bounds are set and start falls after end.
func (f ListFilter) Reversed() bool {
	return f.Start != nil && f.End != nil && f.Start.After(*f.End)
}

// Swapped returns a copy of the filter with its bounds exchanged.
func (f ListFilter) Swapped() ListFilter {
	f.Start, f.End = f.End, f.Start
	return f
}

// WithType returns a copy of the filter restricted to the given type.
func (f ListFilter) WithType(t Type) ListFilter {
	f.Type = &t
	return f
}

// ParseDateBound parses an optional YYYY-MM-DD query value.
func ParseDateBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return &d, nil
}
