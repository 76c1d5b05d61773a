package transaction

import (
	"time"

	"github.com/sempreviva/dashboard/internal/transaction"
)

type transactionResponse struct {
	ID          int64            `json:"id"`
	Date        string           `json:"date"`
	Amount      float64          `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Subcategory string           `json:"subcategory"`
	Description string           `json:"description"`
	SourceFile  string           `json:"source_file"`
	CreatedAt   time.Time        `json:"created_at"`
}

type listResponse struct {
	Count        int                   `json:"count"`
	Income       float64               `json:"income"`
	Expenses     float64               `json:"expenses"`
	Transactions []transactionResponse `json:"transactions"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		Subcategory: tx.Subcategory,
		Description: tx.Description,
		SourceFile:  tx.SourceFile,
		CreatedAt:   tx.CreatedAt,
	}
}

// toListResponse also totals the listed page per type.
func toListResponse(txs []*transaction.Transaction) listResponse {
	resp := listResponse{
		Count:        len(txs),
		Transactions: make([]transactionResponse, 0, len(txs)),
	}

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			resp.Income += tx.Amount
		case transaction.TypeExpense:
			resp.Expenses += tx.Amount
		}

		resp.Transactions = append(resp.Transactions, toResponse(tx))
	}

	return resp
}
