// Package dashboard assembles the figures shown on the overview and the
// per-type detail pages.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sempreviva/dashboard/internal/insight"
	"github.com/sempreviva/dashboard/internal/transaction"
)

const ReversedRangeWarning = "La fecha inicial no puede ser posterior a la fecha final."

// Summarizer is satisfied by *insight.Service.
type Summarizer interface {
	Summarize(ctx context.Context, stats insight.Stats) string
}

type Options struct {
	// SwapReversedRange queries with swapped bounds when start is after end
	// instead of returning an empty range.
	SwapReversedRange bool
	// Now is used for the default range when nothing is stored yet.
	Now func() time.Time
}

type Service struct {
	txService *transaction.Service
	insights  Summarizer
	opts      Options
}

func NewService(txService *transaction.Service, insights Summarizer, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{txService: txService, insights: insights, opts: opts}
}

// Range is the date range a page was computed for.
type Range struct {
	Start    time.Time
	End      time.Time
	Reversed bool
	Warning  string
}

type Overview struct {
	Range             Range
	Totals            transaction.Totals
	Trend             []transaction.MonthTotal
	IncomeByChannel   []transaction.BreakdownRow
	IncomeByCategory  []transaction.BreakdownRow
	ExpenseByCategory []transaction.BreakdownRow
	ExpenseByGroup    []transaction.BreakdownRow
	Insight           string
}

func (o *Overview) HasTransactions() bool {
	return len(o.Trend) > 0
}

type Detail struct {
	Range        Range
	Type         transaction.Type
	Total        float64
	Transactions []*transaction.Transaction
	ByCategory   []transaction.BreakdownRow
	BySecondary  []transaction.BreakdownRow
}

// DefaultRange spans the stored transactions, or January 1st of the current
// year to today when nothing is stored.
func (s *Service) DefaultRange(ctx context.Context) (time.Time, time.Time, error) {
	start, end, err := s.txService.DateBounds(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("loading date bounds: %w", err)
	}

	if start != nil && end != nil {
		return *start, *end, nil
	}

	now := s.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today, nil
}

// resolve fills missing bounds from the default range and handles a reversed
// range according to the options. A reversed range is never an error.
func (s *Service) resolve(ctx context.Context, start, end *time.Time) (Range, transaction.ListFilter, error) {
	if start == nil || end == nil {
		defStart, defEnd, err := s.DefaultRange(ctx)
		if err != nil {
			return Range{}, transaction.ListFilter{}, err
		}

		if start == nil {
			start = &defStart
		}

		if end == nil {
			end = &defEnd
		}
	}

	filter := transaction.ListFilter{Start: start, End: end}
	r := Range{Start: *start, End: *end}

	if filter.Reversed() {
		r.Reversed = true
		r.Warning = ReversedRangeWarning

		if s.opts.SwapReversedRange {
			filter = filter.Swapped()
			r.Start, r.End = *filter.Start, *filter.End
		}
	}

	return r, filter, nil
}

func (s *Service) Overview(ctx context.Context, start, end *time.Time) (*Overview, error) {
	r, filter, err := s.resolve(ctx, start, end)
	if err != nil {
		return nil, err
	}

	o := &Overview{Range: r}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		o.Totals, err = s.txService.Totals(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		o.Trend, err = s.txService.MonthlyTotals(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		o.IncomeByChannel, err = s.txService.Breakdown(gctx, transaction.TypeIncome, transaction.GroupBySubcategory, filter)
		return err
	})
	g.Go(func() (err error) {
		o.IncomeByCategory, err = s.txService.Breakdown(gctx, transaction.TypeIncome, transaction.GroupByCategory, filter)
		return err
	})
	g.Go(func() (err error) {
		o.ExpenseByCategory, err = s.txService.Breakdown(gctx, transaction.TypeExpense, transaction.GroupByCategory, filter)
		return err
	})
	g.Go(func() (err error) {
		o.ExpenseByGroup, err = s.txService.Breakdown(gctx, transaction.TypeExpense, transaction.GroupBySubcategory, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading overview: %w", err)
	}

	if o.HasTransactions() && s.insights != nil {
		stats := insight.NewStats(o.Totals, o.Trend, o.IncomeByCategory, o.ExpenseByCategory)
		o.Insight = s.insights.Summarize(ctx, stats)
	}

	return o, nil
}

// Detail lists the transactions of one type with its breakdowns. The
// secondary breakdown is the channel for income and the Fijo/Variable group
// for expenses.
func (s *Service) Detail(ctx context.Context, txType transaction.Type, start, end *time.Time) (*Detail, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: %q", transaction.ErrInvalidType, txType)
	}

	r, filter, err := s.resolve(ctx, start, end)
	if err != nil {
		return nil, err
	}

	d := &Detail{Range: r, Type: txType}

	txs, err := s.txService.List(ctx, filter.WithType(txType))
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	d.Transactions = txs
	for _, tx := range txs {
		d.Total += tx.Amount
	}

	if d.ByCategory, err = s.txService.Breakdown(ctx, txType, transaction.GroupByCategory, filter); err != nil {
		return nil, fmt.Errorf("loading category breakdown: %w", err)
	}

	if d.BySecondary, err = s.txService.Breakdown(ctx, txType, transaction.GroupBySubcategory, filter); err != nil {
		return nil, fmt.Errorf("loading secondary breakdown: %w", err)
	}

	return d, nil
}
