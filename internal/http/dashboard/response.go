package dashboard

import (
	"time"

	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/transaction"
)

type rangeResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reversed  bool   `json:"reversed,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

type totalsResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Margin   float64 `json:"margin"`
}

type monthResponse struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

type rowResponse struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type overviewResponse struct {
	Range             rangeResponse   `json:"range"`
	Totals            totalsResponse  `json:"totals"`
	Trend             []monthResponse `json:"trend"`
	IncomeByChannel   []rowResponse   `json:"income_by_channel"`
	IncomeByCategory  []rowResponse   `json:"income_by_category"`
	ExpenseByCategory []rowResponse   `json:"expense_by_category"`
	ExpenseByGroup    []rowResponse   `json:"expense_by_group"`
	Insight           string          `json:"insight,omitempty"`
}

type transactionResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Description string  `json:"description"`
	SourceFile  string  `json:"source_file"`
}

type detailResponse struct {
	Range        rangeResponse         `json:"range"`
	Type         transaction.Type      `json:"type"`
	Total        float64               `json:"total"`
	Transactions []transactionResponse `json:"transactions"`
	ByCategory   []rowResponse         `json:"by_category"`
	BySecondary  []rowResponse         `json:"by_secondary"`
}

func toRangeResponse(r dashboard.Range) rangeResponse {
	return rangeResponse{
		StartDate: r.Start.Format(time.DateOnly),
		EndDate:   r.End.Format(time.DateOnly),
		Reversed:  r.Reversed,
		Warning:   r.Warning,
	}
}

func toRows(rows []transaction.BreakdownRow) []rowResponse {
	resp := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, rowResponse{Label: row.Label, Total: row.Total})
	}

	return resp
}

func toOverviewResponse(o *dashboard.Overview) overviewResponse {
	resp := overviewResponse{
		Range: toRangeResponse(o.Range),
		Totals: totalsResponse{
			Income:   o.Totals.Income,
			Expenses: o.Totals.Expenses,
			Net:      o.Totals.Net,
			Margin:   o.Totals.Margin,
		},
		Trend:             make([]monthResponse, 0, len(o.Trend)),
		IncomeByChannel:   toRows(o.IncomeByChannel),
		IncomeByCategory:  toRows(o.IncomeByCategory),
		ExpenseByCategory: toRows(o.ExpenseByCategory),
		ExpenseByGroup:    toRows(o.ExpenseByGroup),
		Insight:           o.Insight,
	}

	for _, m := range o.Trend {
		resp.Trend = append(resp.Trend, monthResponse{
			Month:    m.Month,
			Income:   m.Income,
			Expenses: m.Expenses,
			Net:      m.Net(),
		})
	}

	return resp
}

func toDetailResponse(d *dashboard.Detail) detailResponse {
	resp := detailResponse{
		Range:        toRangeResponse(d.Range),
		Type:         d.Type,
		Total:        d.Total,
		Transactions: make([]transactionResponse, 0, len(d.Transactions)),
		ByCategory:   toRows(d.ByCategory),
		BySecondary:  toRows(d.BySecondary),
	}

	for _, tx := range d.Transactions {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			ID:          tx.ID,
			Date:        tx.Date,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Subcategory: tx.Subcategory,
			Description: tx.Description,
			SourceFile:  tx.SourceFile,
		})
	}

	return resp
}
