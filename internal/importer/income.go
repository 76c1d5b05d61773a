package importer

import (
	"fmt"
	"time"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

// IncomeNormalizer reads sales exports: an amount, a free-text tags column
// from which category and channel are derived, a description and an
// optional date.
type IncomeNormalizer struct {
	classifier classifier.IncomeClassifier
}

func NewIncomeNormalizer(c classifier.IncomeClassifier) *IncomeNormalizer {
	return &IncomeNormalizer{classifier: c}
}

func (n *IncomeNormalizer) Normalize(table sheet.Table, filename string, now time.Time) ([]transaction.Record, error) {
	dateCol, hasDate := FindDateColumn(table.Columns)

	amountCol, err := DetectAmountColumn(table, IncomeAmountAliases, dateCol)
	if err != nil {
		return nil, fmt.Errorf("resolving amount column: %w", err)
	}

	tagsCol, err := FindColumn(table.Columns, IncomeTagAliases)
	if err != nil {
		return nil, fmt.Errorf("resolving tags column: %w", err)
	}

	descCol, err := FindColumn(table.Columns, IncomeDescriptionAliases)
	if err != nil {
		return nil, fmt.Errorf("resolving description column: %w", err)
	}

	amountIdx, tagsIdx, descIdx := table.Index(amountCol), table.Index(tagsCol), table.Index(descCol)
	dateIdx := -1

	if hasDate {
		dateIdx = table.Index(dateCol)
	}

	createdAt := now.UTC()
	records := make([]transaction.Record, 0, len(table.Rows))

	for _, row := range table.Rows {
		category, channel := n.classifier.Classify(row[tagsIdx])

		records = append(records, transaction.Record{
			Date:        cellDate(row, dateIdx, now),
			Amount:      ParseAmount(row[amountIdx]),
			Type:        transaction.TypeIncome,
			Category:    category,
			Subcategory: channel,
			Description: row[descIdx],
			SourceFile:  filename,
			CreatedAt:   createdAt,
		})
	}

	return records, nil
}

// cellDate parses the date cell, or uses the ingestion date when the sheet
// has no date column.
func cellDate(row []string, idx int, now time.Time) string {
	if idx < 0 {
		return now.Format(time.DateOnly)
	}

	return ParseDate(row[idx], now)
}
