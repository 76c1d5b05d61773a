package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

type Service struct {
	normalizers map[transaction.Type]Normalizer
	now         func() time.Time
}

func NewService(income classifier.IncomeClassifier, expense classifier.ExpenseClassifier) *Service {
	return &Service{
		normalizers: map[transaction.Type]Normalizer{
			transaction.TypeIncome:  NewIncomeNormalizer(income),
			transaction.TypeExpense: NewExpenseNormalizer(expense),
		},
		now: time.Now,
	}
}

// WithClock replaces the clock used for ingestion timestamps and date fallbacks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Import reads an upload and normalises it. Only the base name of filename
// is kept as the records' source file.
func (s *Service) Import(txType transaction.Type, filename string, r io.Reader) ([]transaction.Record, error) {
	normalizer, ok := s.normalizers[txType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, txType)
	}

	name := filepath.Base(filename)

	table, err := sheet.Read(name, r)
	if err != nil {
		return nil, err
	}

	return normalizer.Normalize(table, name, s.now())
}
