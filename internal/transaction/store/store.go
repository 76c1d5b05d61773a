package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sempreviva/dashboard/internal/database"
	"github.com/sempreviva/dashboard/internal/transaction"
)

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, date, amount, type, category, subcategory, description, source_file, created_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr, createdAt string

	if err := s.Scan(
		&tx.ID, &tx.Date, &tx.Amount, &typeStr, &tx.Category, &tx.Subcategory,
		&tx.Description, &tx.SourceFile, &createdAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)

	if createdAt != "" {
		t, err := time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}

		tx.CreatedAt = t
	}

	return &tx, nil
}

const selectTransactionColumns = `
	id, date, amount, type, category, subcategory, description, source_file, created_at
`

// where renders the filter as a WHERE clause with ? placeholders.
func where(filter transaction.ListFilter, extra ...string) (string, []any) {
	conds := append([]string(nil), extra...)

	var args []any

	if filter.Start != nil {
		conds = append(conds, "date >= ?")
		args = append(args, filter.Start.Format(time.DateOnly))
	}

	if filter.End != nil {
		conds = append(conds, "date <= ?")
		args = append(args, filter.End.Format(time.DateOnly))
	}

	if filter.Type != nil {
		conds = append(conds, "type = ?")
		args = append(args, string(*filter.Type))
	}

	if len(conds) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	clause, args := where(filter)
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions` + clause + ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) SumByType(ctx context.Context, filter transaction.ListFilter) (float64, float64, error) {
	clause, args := where(filter)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount END), 0)
		FROM transactions` + clause

	var income, expenses float64
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&income, &expenses); err != nil {
		return 0, 0, fmt.Errorf("summing transactions: %w", err)
	}

	return income, expenses, nil
}

func (s *Store) MonthlyTotals(ctx context.Context, filter transaction.ListFilter) ([]transaction.MonthTotal, error) {
	clause, args := where(filter)
	query := `
		SELECT
			substr(date, 1, 7) AS month,
			COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount END), 0)
		FROM transactions` + clause + `
		GROUP BY substr(date, 1, 7)
		ORDER BY month ASC`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying monthly totals: %w", err)
	}
	defer rows.Close()

	var months []transaction.MonthTotal

	for rows.Next() {
		var m transaction.MonthTotal
		if err := rows.Scan(&m.Month, &m.Income, &m.Expenses); err != nil {
			return nil, fmt.Errorf("scanning monthly total: %w", err)
		}

		months = append(months, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly totals: %w", err)
	}

	return months, nil
}

func (s *Store) Breakdown(ctx context.Context, txType transaction.Type, groupBy transaction.GroupBy, filter transaction.ListFilter) ([]transaction.BreakdownRow, error) {
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: %q", transaction.ErrInvalidGroupBy, groupBy)
	}

	filter.Type = &txType
	clause, args := where(filter)

	// groupBy is validated above, so it is safe to interpolate.
	column := string(groupBy)
	query := `
		SELECT ` + column + `, SUM(amount) AS total
		FROM transactions` + clause + `
		GROUP BY ` + column + `
		ORDER BY total DESC, ` + column + ` ASC`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s breakdown: %w", column, err)
	}
	defer rows.Close()

	breakdown := []transaction.BreakdownRow{}

	for rows.Next() {
		var r transaction.BreakdownRow
		if err := rows.Scan(&r.Label, &r.Total); err != nil {
			return nil, fmt.Errorf("scanning breakdown row: %w", err)
		}

		breakdown = append(breakdown, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breakdown: %w", err)
	}

	return breakdown, nil
}

func (s *Store) DateBounds(ctx context.Context) (string, string, error) {
	var minDate, maxDate string

	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(date), ''), COALESCE(MAX(date), '') FROM transactions`,
	).Scan(&minDate, &maxDate)
	if err != nil {
		return "", "", fmt.Errorf("querying date bounds: %w", err)
	}

	return minDate, maxDate, nil
}

func (s *Store) RecentFiles(ctx context.Context, limit int) ([]transaction.ProcessedFile, error) {
	query := `
		SELECT filename, upload_date, row_count
		FROM processed_files
		ORDER BY upload_date DESC, filename ASC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("listing processed files: %w", err)
	}
	defer rows.Close()

	var files []transaction.ProcessedFile

	for rows.Next() {
		var (
			f          transaction.ProcessedFile
			uploadDate string
		)

		if err := rows.Scan(&f.Filename, &uploadDate, &f.RowCount); err != nil {
			return nil, fmt.Errorf("scanning processed file: %w", err)
		}

		f.UploadDate, err = time.Parse(timestampLayout, uploadDate)
		if err != nil {
			return nil, fmt.Errorf("parsing upload_date %q: %w", uploadDate, err)
		}

		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processed files: %w", err)
	}

	return files, nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning clear tx: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"transactions", "processed_files"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}

	return nil
}

type importTx struct {
	tx      *sql.Tx
	dialect database.Dialect
}

func (s *Store) BeginImport(ctx context.Context) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{tx: dbTx, dialect: s.dialect}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) InsertMany(ctx context.Context, records []transaction.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	stmt, err := itx.tx.PrepareContext(ctx, itx.dialect.Rebind(`
		INSERT INTO transactions (date, amount, type, category, subcategory, description, source_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Date,
			r.Amount,
			string(r.Type),
			r.Category,
			r.Subcategory,
			r.Description,
			r.SourceFile,
			r.CreatedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	return len(records), nil
}

func (itx *importTx) RecordProcessedFile(ctx context.Context, filename string, rowCount int, uploadedAt time.Time) error {
	query := `
		INSERT INTO processed_files (filename, upload_date, row_count)
		VALUES (?, ?, ?)
		ON CONFLICT (filename) DO UPDATE SET
			upload_date = excluded.upload_date,
			row_count = excluded.row_count`

	_, err := itx.tx.ExecContext(ctx, itx.dialect.Rebind(query), filename, uploadedAt.UTC().Format(timestampLayout), rowCount)
	if err != nil {
		return fmt.Errorf("upserting processed file: %w", err)
	}

	return nil
}
