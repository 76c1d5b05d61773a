package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sempreviva/dashboard/internal/transaction"
)

func TestNewTotals(t *testing.T) {
	type args struct {
		income   float64
		expenses float64
	}

	type testCase struct {
		name string
		args args
		want transaction.Totals
	}

	tests := []testCase{
		{
			name: "Profit",
			args: args{income: 100, expenses: 40},
			want: transaction.Totals{Income: 100, Expenses: 40, Net: 60, Margin: 60},
		},
		{
			name: "NoIncome",
			args: args{income: 0, expenses: 50},
			want: transaction.Totals{Income: 0, Expenses: 50, Net: -50, Margin: 0},
		},
		{
			name: "Empty",
			args: args{},
			want: transaction.Totals{},
		},
		{
			name: "Loss",
			args: args{income: 200, expenses: 250},
			want: transaction.Totals{Income: 200, Expenses: 250, Net: -50, Margin: -25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transaction.NewTotals(tt.args.income, tt.args.expenses)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    transaction.Type
		wantErr bool
	}

	tests := []testCase{
		{name: "Income", input: "income", want: transaction.TypeIncome},
		{name: "IncomeStored", input: "INCOME", want: transaction.TypeIncome},
		{name: "IncomeSpanish", input: "Ingresos", want: transaction.TypeIncome},
		{name: "Expense", input: " expense ", want: transaction.TypeExpense},
		{name: "ExpenseSpanish", input: "gastos", want: transaction.TypeExpense},
		{name: "Unknown", input: "refund", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, transaction.ErrInvalidType)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListFilter_Reversed(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, transaction.ListFilter{}.Reversed())
	assert.False(t, transaction.ListFilter{Start: &jan}.Reversed())
	assert.False(t, transaction.ListFilter{Start: &jan, End: &feb}.Reversed())
	assert.False(t, transaction.ListFilter{Start: &jan, End: &jan}.Reversed())

	reversed := transaction.ListFilter{Start: &feb, End: &jan}
	assert.True(t, reversed.Reversed())

	swapped := reversed.Swapped()
	assert.Equal(t, jan, *swapped.Start)
	assert.Equal(t, feb, *swapped.End)
	assert.Equal(t, feb, *reversed.Start, "original filter is left untouched")
}

func TestParseDateBound(t *testing.T) {
	got, err := transaction.ParseDateBound("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = transaction.ParseDateBound("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *got)

	_, err = transaction.ParseDateBound("15/03/2024")
	assert.Error(t, err)
}

func TestService_ImportBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)

	now := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	svc := transaction.NewService(repo).WithClock(func() time.Time { return now })

	records := []transaction.Record{
		{Date: "2024-05-01", Amount: 120, Type: transaction.TypeIncome, Category: "Novias", Subcategory: "Instagram"},
		{Date: "2024-05-01", Amount: 80, Type: transaction.TypeIncome, Category: "Otros", Subcategory: "Otros"},
	}

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().InsertMany(gomock.Any(), records).Return(2, nil)
	itx.EXPECT().RecordProcessedFile(gomock.Any(), "ventas.xlsx", 2, now).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), "ventas.xlsx", records)
	require.NoError(t, err)
	assert.Equal(t, "ventas.xlsx", result.Filename)
	assert.Equal(t, 2, result.Inserted)
}

func TestService_ImportBatch_InsertError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().BeginImport(gomock.Any()).Return(itx, nil)
	itx.EXPECT().InsertMany(gomock.Any(), gomock.Any()).Return(0, errors.New("disk full"))
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), "gastos.xlsx", []transaction.Record{{Amount: 1}})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_ImportBatch_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().BeginImport(gomock.Any()).Return(nil, errors.New("locked"))

	_, err := svc.ImportBatch(context.Background(), "gastos.xlsx", nil)
	assert.Error(t, err)
}

func TestService_Totals(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		want      transaction.Totals
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().SumByType(gomock.Any(), transaction.ListFilter{}).Return(100.0, 40.0, nil)
			},
			want: transaction.Totals{Income: 100, Expenses: 40, Net: 60, Margin: 60},
		},
		{
			name: "RepoError",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().SumByType(gomock.Any(), gomock.Any()).Return(0.0, 0.0, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := transaction.NewService(repo).Totals(context.Background(), transaction.ListFilter{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Breakdown(t *testing.T) {
	type args struct {
		txType  transaction.Type
		groupBy transaction.GroupBy
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   error
	}

	tests := []testCase{
		{
			name: "ByCategory",
			args: args{txType: transaction.TypeExpense, groupBy: transaction.GroupByCategory},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Breakdown(gomock.Any(), transaction.TypeExpense, transaction.GroupByCategory, gomock.Any()).
					Return([]transaction.BreakdownRow{{Label: "Servicios", Total: 30}, {Label: "Otros", Total: 10}}, nil)
			},
			wantLen: 2,
		},
		{
			name: "Empty",
			args: args{txType: transaction.TypeIncome, groupBy: transaction.GroupBySubcategory},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Breakdown(gomock.Any(), transaction.TypeIncome, transaction.GroupBySubcategory, gomock.Any()).
					Return(nil, nil)
			},
			wantLen: 0,
		},
		{
			name:    "InvalidGroupBy",
			args:    args{txType: transaction.TypeIncome, groupBy: "description"},
			wantErr: transaction.ErrInvalidGroupBy,
		},
		{
			name:    "InvalidType",
			args:    args{txType: "REFUND", groupBy: transaction.GroupByCategory},
			wantErr: transaction.ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := transaction.NewService(repo).Breakdown(context.Background(), tt.args.txType, tt.args.groupBy, transaction.ListFilter{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_DateBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().DateBounds(gomock.Any()).Return("2024-01-03", "2024-06-30", nil)

	start, end, err := svc.DateBounds(context.Background())
	require.NoError(t, err)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, "2024-01-03", start.Format(time.DateOnly))
	assert.Equal(t, "2024-06-30", end.Format(time.DateOnly))

	repo.EXPECT().DateBounds(gomock.Any()).Return("", "", nil)

	start, end, err = svc.DateBounds(context.Background())
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestService_RecentFiles_DefaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().RecentFiles(gomock.Any(), transaction.DefaultRecentFilesLimit).Return(nil, nil)
	repo.EXPECT().RecentFiles(gomock.Any(), 3).Return([]transaction.ProcessedFile{{Filename: "a.xlsx"}}, nil)

	_, err := svc.RecentFiles(context.Background(), 0)
	require.NoError(t, err)

	files, err := svc.RecentFiles(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestService_List_InvalidType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	bad := transaction.Type("REFUND")

	_, err := transaction.NewService(repo).List(context.Background(), transaction.ListFilter{Type: &bad})
	assert.ErrorIs(t, err, transaction.ErrInvalidType)
}
