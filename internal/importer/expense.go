package importer

import (
	"fmt"
	"time"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

// ExpenseNormalizer reads cost exports: an amount, an account column that
// decides category and Fijo/Variable group, an optional description and an
// optional date.
type ExpenseNormalizer struct {
	classifier classifier.ExpenseClassifier
}

func NewExpenseNormalizer(c classifier.ExpenseClassifier) *ExpenseNormalizer {
	return &ExpenseNormalizer{classifier: c}
}

func (n *ExpenseNormalizer) Normalize(table sheet.Table, filename string, now time.Time) ([]transaction.Record, error) {
	dateCol, hasDate := FindDateColumn(table.Columns)

	amountCol, err := DetectAmountColumn(table, ExpenseAmountAliases, dateCol)
	if err != nil {
		return nil, fmt.Errorf("resolving amount column: %w", err)
	}

	accountCol, err := FindColumn(table.Columns, ExpenseAccountAliases)
	if err != nil {
		return nil, fmt.Errorf("resolving account column: %w", err)
	}

	descCol, ok := findDescriptionColumn(table.Columns)
	if !ok {
		descCol = accountCol
	}

	amountIdx, accountIdx, descIdx := table.Index(amountCol), table.Index(accountCol), table.Index(descCol)
	dateIdx := -1

	if hasDate {
		dateIdx = table.Index(dateCol)
	}

	createdAt := now.UTC()
	records := make([]transaction.Record, 0, len(table.Rows))

	for _, row := range table.Rows {
		category, group := n.classifier.Classify(row[accountIdx])

		records = append(records, transaction.Record{
			Date:        cellDate(row, dateIdx, now),
			Amount:      ParseAmount(row[amountIdx]),
			Type:        transaction.TypeExpense,
			Category:    category,
			Subcategory: group,
			Description: row[descIdx],
			SourceFile:  filename,
			CreatedAt:   createdAt,
		})
	}

	return records, nil
}
