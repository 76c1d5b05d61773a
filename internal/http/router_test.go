package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/database"
	apihttp "github.com/sempreviva/dashboard/internal/http"
	dashboardhttp "github.com/sempreviva/dashboard/internal/http/dashboard"
	transactionhttp "github.com/sempreviva/dashboard/internal/http/transaction"
	"github.com/sempreviva/dashboard/internal/http/upload"
	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/insight"
	"github.com/sempreviva/dashboard/internal/transaction"
	"github.com/sempreviva/dashboard/internal/transaction/store"
)

var uploadedAt = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

type stubGenerator struct {
	calls int
}

func (g *stubGenerator) Generate(context.Context, insight.Stats) (string, error) {
	g.calls++
	return "Buen mes para las bodas.", nil
}

type server struct {
	handler http.Handler
	gen     *stubGenerator
}

func newServer(t *testing.T) *server {
	t.Helper()

	dsn := database.SQLiteDSN(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, database.Migrate(database.DialectSQLite, dsn))

	db, err := database.New(database.DialectSQLite, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return uploadedAt }

	txSvc := transaction.NewService(store.New(db, database.DialectSQLite)).WithClock(clock)
	importSvc := importer.NewService(classifier.DefaultIncome(), classifier.DefaultExpense()).WithClock(clock)

	gen := &stubGenerator{}
	insightSvc := insight.NewService(gen, insight.Options{Timeout: time.Second, CacheTTL: time.Minute})
	dashSvc := dashboard.NewService(txSvc, insightSvc, dashboard.Options{Now: clock})

	handler := apihttp.New(
		nil,
		dashboardhttp.NewHandler(dashSvc),
		transactionhttp.NewHandler(txSvc, insightSvc),
		upload.NewHandler(importSvc, txSvc, insightSvc, 1<<20),
	)

	return &server{handler: handler, gen: gen}
}

func (s *server) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func uploadRequest(t *testing.T, kind, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	if kind != "" {
		require.NoError(t, mw.WriteField("kind", kind))
	}

	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)

		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

const (
	incomeCSV = "Fecha;Tags;Descripcion;Importe\n" +
		"05/03/2024;novia, web;Ramo novia Laura;350,00\n" +
		"12/03/2024;evento, instagram;Centro de mesa;120,50\n" +
		"02/04/2024;cumple;Caja de rosas;45\n"

	expenseCSV = "Fecha;Cuenta;Descripcion;Importe\n" +
		"03/03/2024;Alquiler;Local marzo;900,00\n" +
		"04/04/2024;Rosas;Tallos rojos;120,40\n"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func TestUpload(t *testing.T) {
	type args struct {
		kind     string
		filename string
		content  string
	}

	type testCase struct {
		name         string
		args         args
		wantStatus   int
		wantInserted int
	}

	tests := []testCase{
		{
			name:         "Income",
			args:         args{kind: "income", filename: "ingresos.csv", content: incomeCSV},
			wantStatus:   http.StatusCreated,
			wantInserted: 3,
		},
		{
			name:         "ExpenseSpanishKind",
			args:         args{kind: "gastos", filename: "gastos.csv", content: expenseCSV},
			wantStatus:   http.StatusCreated,
			wantInserted: 2,
		},
		{
			name:       "MissingKind",
			args:       args{filename: "ingresos.csv", content: incomeCSV},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownKind",
			args:       args{kind: "ventas", filename: "ingresos.csv", content: incomeCSV},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingFile",
			args:       args{kind: "income"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingAmountColumn",
			args:       args{kind: "income", filename: "ingresos.csv", content: "Fecha;Tags\n05/03/2024;novia\n"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "UnsupportedFormat",
			args:       args{kind: "expense", filename: "gastos.pdf", content: "%PDF-1.4"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t)

			rec := s.do(t, uploadRequest(t, tt.args.kind, tt.args.filename, tt.args.content))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusCreated {
				return
			}

			got := decode[struct {
				Filename string `json:"filename"`
				Inserted int    `json:"inserted"`
				Preview  []struct {
					Date     string  `json:"date"`
					Amount   float64 `json:"amount"`
					Category string  `json:"category"`
				} `json:"preview"`
			}](t, rec)

			assert.Equal(t, tt.args.filename, got.Filename)
			assert.Equal(t, tt.wantInserted, got.Inserted)
			assert.Len(t, got.Preview, tt.wantInserted)
		})
	}
}

func TestUpload_PreviewIsCapped(t *testing.T) {
	s := newServer(t)

	content := "Fecha;Cuenta;Importe\n"
	for range 8 {
		content += "03/03/2024;Rosas;10\n"
	}

	rec := s.do(t, uploadRequest(t, "expense", "gastos.csv", content))
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decode[struct {
		Inserted int               `json:"inserted"`
		Preview  []json.RawMessage `json:"preview"`
	}](t, rec)

	assert.Equal(t, 8, got.Inserted)
	assert.Len(t, got.Preview, upload.PreviewSize)
}

func TestFiles(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "income", "ingresos.csv", incomeCSV)).Code)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "expense", "gastos.csv", expenseCSV)).Code)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "income", "ingresos.csv", incomeCSV)).Code)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]struct {
		Filename string `json:"filename"`
		RowCount int    `json:"row_count"`
	}](t, rec)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"ingresos.csv", "gastos.csv"}, []string{got[0].Filename, got[1].Filename})

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactions_List(t *testing.T) {
	type testCase struct {
		name         string
		query        string
		wantStatus   int
		wantCount    int
		wantIncome   float64
		wantExpenses float64
	}

	tests := []testCase{
		{
			name:         "All",
			wantStatus:   http.StatusOK,
			wantCount:    5,
			wantIncome:   515.5,
			wantExpenses: 1020.4,
		},
		{
			name:       "IncomeOnly",
			query:      "?type=income",
			wantStatus: http.StatusOK,
			wantCount:  3,
			wantIncome: 515.5,
		},
		{
			name:         "March",
			query:        "?start_date=2024-03-01&end_date=2024-03-31",
			wantStatus:   http.StatusOK,
			wantCount:    3,
			wantIncome:   470.5,
			wantExpenses: 900,
		},
		{
			name:       "ReversedRangeIsEmpty",
			query:      "?start_date=2024-04-30&end_date=2024-03-01",
			wantStatus: http.StatusOK,
		},
		{
			name:       "InvalidDate",
			query:      "?start_date=01/03/2024",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidType",
			query:      "?type=ventas",
			wantStatus: http.StatusBadRequest,
		},
	}

	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "income", "ingresos.csv", incomeCSV)).Code)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "expense", "gastos.csv", expenseCSV)).Code)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+tt.query, nil))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusOK {
				return
			}

			got := decode[struct {
				Count        int               `json:"count"`
				Income       float64           `json:"income"`
				Expenses     float64           `json:"expenses"`
				Transactions []json.RawMessage `json:"transactions"`
			}](t, rec)

			assert.Equal(t, tt.wantCount, got.Count)
			assert.Len(t, got.Transactions, tt.wantCount)
			assert.InDelta(t, tt.wantIncome, got.Income, 1e-9)
			assert.InDelta(t, tt.wantExpenses, got.Expenses, 1e-9)
		})
	}
}

func TestTransactions_Clear(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "income", "ingresos.csv", incomeCSV)).Code)

	rec := s.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, rec).Count)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]json.RawMessage](t, rec))
}

type overviewBody struct {
	Range struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Reversed  bool   `json:"reversed"`
		Warning   string `json:"warning"`
	} `json:"range"`
	Totals struct {
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Net      float64 `json:"net"`
	} `json:"totals"`
	Trend []struct {
		Month string `json:"month"`
	} `json:"trend"`
	IncomeByChannel []struct {
		Label string  `json:"label"`
		Total float64 `json:"total"`
	} `json:"income_by_channel"`
	Insight string `json:"insight"`
}

func TestDashboard_Overview(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	empty := decode[overviewBody](t, rec)
	assert.Equal(t, "2024-01-01", empty.Range.StartDate)
	assert.Equal(t, "2024-07-01", empty.Range.EndDate)
	assert.Empty(t, empty.Trend)
	assert.Empty(t, empty.Insight)
	assert.Zero(t, s.gen.calls)

	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "income", "ingresos.csv", incomeCSV)).Code)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "expense", "gastos.csv", expenseCSV)).Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[overviewBody](t, rec)
	assert.Equal(t, "2024-03-03", got.Range.StartDate)
	assert.Equal(t, "2024-04-04", got.Range.EndDate)
	assert.InDelta(t, 515.5, got.Totals.Income, 1e-9)
	assert.InDelta(t, 1020.4, got.Totals.Expenses, 1e-9)
	assert.InDelta(t, -504.9, got.Totals.Net, 1e-9)
	require.Len(t, got.Trend, 2)
	assert.Equal(t, "2024-03", got.Trend[0].Month)
	assert.Equal(t, "Buen mes para las bodas.", got.Insight)
	assert.NotEmpty(t, got.IncomeByChannel)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/?start_date=2024-04-30&end_date=2024-03-01", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	reversed := decode[overviewBody](t, rec)
	assert.True(t, reversed.Range.Reversed)
	assert.Equal(t, dashboard.ReversedRangeWarning, reversed.Range.Warning)
	assert.Empty(t, reversed.Trend)
}

func TestDashboard_Detail(t *testing.T) {
	s := newServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, uploadRequest(t, "expense", "gastos.csv", expenseCSV)).Code)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/expense", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		Type         transaction.Type  `json:"type"`
		Total        float64           `json:"total"`
		Transactions []json.RawMessage `json:"transactions"`
		ByCategory   []struct {
			Label string `json:"label"`
		} `json:"by_category"`
		BySecondary []struct {
			Label string `json:"label"`
		} `json:"by_secondary"`
	}](t, rec)

	assert.Equal(t, transaction.TypeExpense, got.Type)
	assert.InDelta(t, 1020.4, got.Total, 1e-9)
	assert.Len(t, got.Transactions, 2)
	require.NotEmpty(t, got.ByCategory)
	assert.Equal(t, "Alquiler del local", got.ByCategory[0].Label)
	assert.NotEmpty(t, got.BySecondary)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/ventas", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/income?end_date=bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
