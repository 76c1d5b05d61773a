package importer

import (
	"errors"
	"time"

	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

var (
	ErrColumnNotFound = errors.New("required column not found")
	ErrUnknownKind    = errors.New("unknown upload kind")
)

// Normalizer maps every row of a worksheet to exactly one record. It fails
// only when the worksheet lacks a required column.
type Normalizer interface {
	Normalize(table sheet.Table, filename string, now time.Time) ([]transaction.Record, error)
}
