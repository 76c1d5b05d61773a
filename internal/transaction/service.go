package transaction

import (
	"context"
	"fmt"
	"time"
)

const DefaultRecentFilesLimit = 10

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	SumByType(ctx context.Context, filter ListFilter) (income, expenses float64, err error)
	MonthlyTotals(ctx context.Context, filter ListFilter) ([]MonthTotal, error)
	Breakdown(ctx context.Context, txType Type, groupBy GroupBy, filter ListFilter) ([]BreakdownRow, error)
	DateBounds(ctx context.Context) (minDate, maxDate string, err error)
	RecentFiles(ctx context.Context, limit int) ([]ProcessedFile, error)
	ClearAll(ctx context.Context) error

	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx groups the writes of a single upload.
type ImportTx interface {
	InsertMany(ctx context.Context, records []Record) (int, error)
	RecordProcessedFile(ctx context.Context, filename string, rowCount int, uploadedAt time.Time) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the clock used to stamp processed files.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type ImportResult struct {
	Filename string
	Inserted int
}

// ImportBatch inserts every record and records the upload of filename in one
// database transaction. Rows are not deduplicated: uploading the same file
// twice stores its rows twice while the processed file entry is overwritten.
func (s *Service) ImportBatch(ctx context.Context, filename string, records []Record) (*ImportResult, error) {
	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	n, err := itx.InsertMany(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("inserting records: %w", err)
	}

	if err := itx.RecordProcessedFile(ctx, filename, len(records), s.now().UTC()); err != nil {
		return nil, fmt.Errorf("recording processed file: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Filename: filename, Inserted: n}, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, *filter.Type)
	}

	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) Totals(ctx context.Context, filter ListFilter) (Totals, error) {
	income, expenses, err := s.repo.SumByType(ctx, filter)
	if err != nil {
		return Totals{}, err
	}

	return NewTotals(income, expenses), nil
}

func (s *Service) MonthlyTotals(ctx context.Context, filter ListFilter) ([]MonthTotal, error) {
	return s.repo.MonthlyTotals(ctx, filter)
}

func (s *Service) Breakdown(ctx context.Context, txType Type, groupBy GroupBy, filter ListFilter) ([]BreakdownRow, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, txType)
	}

	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGroupBy, groupBy)
	}

	return s.repo.Breakdown(ctx, txType, groupBy, filter)
}

// DateBounds returns the earliest and latest stored transaction dates. Both
// are nil when nothing has been imported yet.
func (s *Service) DateBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	minDate, maxDate, err := s.repo.DateBounds(ctx)
	if err != nil {
		return nil, nil, err
	}

	start, err := ParseDateBound(minDate)
	if err != nil {
		return nil, nil, err
	}

	end, err := ParseDateBound(maxDate)
	if err != nil {
		return nil, nil, err
	}

	return start, end, nil
}

func (s *Service) RecentFiles(ctx context.Context, limit int) ([]ProcessedFile, error) {
	if limit <= 0 {
		limit = DefaultRecentFilesLimit
	}

	return s.repo.RecentFiles(ctx, limit)
}

// ClearAll removes every transaction and processed file entry.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.repo.ClearAll(ctx)
}
