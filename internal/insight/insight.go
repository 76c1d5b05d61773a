// Package insight produces a short natural-language summary of the
// dashboard figures. Summaries are optional: every failure yields no text.
package insight

import (
	"context"
	"encoding/json"

	"github.com/sempreviva/dashboard/internal/transaction"
)

const (
	TrendMonths   = 6
	TopCategories = 3
)

// Stats is the bundle sent to a Generator.
type Stats struct {
	Totals       transaction.Totals
	MonthlyTrend []transaction.MonthTotal
	TopIncome    []transaction.BreakdownRow
	TopExpenses  []transaction.BreakdownRow
}

// NewStats keeps the last TrendMonths months and the TopCategories largest
// categories of each type. Breakdowns are expected sorted by total.
func NewStats(totals transaction.Totals, trend []transaction.MonthTotal, income, expenses []transaction.BreakdownRow) Stats {
	if len(trend) > TrendMonths {
		trend = trend[len(trend)-TrendMonths:]
	}

	return Stats{
		Totals:       totals,
		MonthlyTrend: trend,
		TopIncome:    head(income, TopCategories),
		TopExpenses:  head(expenses, TopCategories),
	}
}

func head(rows []transaction.BreakdownRow, n int) []transaction.BreakdownRow {
	if len(rows) > n {
		return rows[:n]
	}

	return rows
}

func (s Stats) Empty() bool {
	return len(s.MonthlyTrend) == 0 && s.Totals == (transaction.Totals{})
}

type totalsPayload struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Margin   float64 `json:"margin"`
}

type monthPayload struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type categoryPayload struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type statsPayload struct {
	Totals       totalsPayload     `json:"totals"`
	MonthlyTrend []monthPayload    `json:"monthly_trend"`
	TopIncome    []categoryPayload `json:"top_income"`
	TopExpenses  []categoryPayload `json:"top_expenses"`
}

// MarshalJSON renders the bundle in the shape the prompt describes.
func (s Stats) MarshalJSON() ([]byte, error) {
	p := statsPayload{
		Totals: totalsPayload{
			Income:   s.Totals.Income,
			Expenses: s.Totals.Expenses,
			Net:      s.Totals.Net,
			Margin:   s.Totals.Margin,
		},
		MonthlyTrend: make([]monthPayload, len(s.MonthlyTrend)),
		TopIncome:    categories(s.TopIncome),
		TopExpenses:  categories(s.TopExpenses),
	}

	for i, m := range s.MonthlyTrend {
		p.MonthlyTrend[i] = monthPayload{Month: m.Month, Income: m.Income, Expenses: m.Expenses}
	}

	return json.Marshal(p)
}

func categories(rows []transaction.BreakdownRow) []categoryPayload {
	out := make([]categoryPayload, len(rows))
	for i, r := range rows {
		out[i] = categoryPayload{Category: r.Label, Total: r.Total}
	}

	return out
}

//go:generate mockgen -source=insight.go -destination=generator_mock.go -package=insight
type Generator interface {
	Generate(ctx context.Context, stats Stats) (string, error)
}

// Noop is used when no language model is configured.
type Noop struct{}

func (Noop) Generate(context.Context, Stats) (string, error) {
	return "", nil
}
