package importer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

var ingestedAt = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func TestIncomeNormalizer(t *testing.T) {
	table := sheet.Table{
		Columns: []string{"Fecha", "Descripción", "Tags", "Importe"},
		Rows: [][]string{
			{"2024-05-03", "Ramo de novia", "novia, instagram", "150,50"},
			{"garbage", "Centro de mesa", "evento web", "abc"},
			{"", "", "", ""},
		},
	}

	n := importer.NewIncomeNormalizer(classifier.DefaultIncome())

	got, err := n.Normalize(table, "ventas.xlsx", ingestedAt)
	require.NoError(t, err)
	require.Len(t, got, len(table.Rows), "every row yields a record")

	assert.Equal(t, transaction.Record{
		Date:        "2024-05-03",
		Amount:      150.5,
		Type:        transaction.TypeIncome,
		Category:    "Novias",
		Subcategory: "Instagram",
		Description: "Ramo de novia",
		SourceFile:  "ventas.xlsx",
		CreatedAt:   ingestedAt,
	}, got[0])

	assert.Equal(t, "2024-07-01", got[1].Date, "unparseable dates fall back to the ingestion date")
	assert.Zero(t, got[1].Amount)
	assert.Equal(t, "Eventos", got[1].Category)
	assert.Equal(t, "Web", got[1].Subcategory)

	assert.Equal(t, classifier.DefaultLabel, got[2].Category)
	assert.Equal(t, classifier.DefaultLabel, got[2].Subcategory)
	assert.Empty(t, got[2].Description)
}

func TestIncomeNormalizer_MissingColumns(t *testing.T) {
	type testCase struct {
		name    string
		columns []string
		wantMsg string
	}

	tests := []testCase{
		{name: "Amount", columns: []string{"Tags", "Concepto", "Notas"}, wantMsg: "amount"},
		{name: "Tags", columns: []string{"Precio", "Concepto"}, wantMsg: "tags"},
		{name: "Description", columns: []string{"Precio", "Etiquetas"}, wantMsg: "description"},
	}

	n := importer.NewIncomeNormalizer(classifier.DefaultIncome())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sheet.Table{Columns: tt.columns, Rows: [][]string{make([]string, len(tt.columns))}}

			_, err := n.Normalize(table, "ventas.xlsx", ingestedAt)
			require.ErrorIs(t, err, importer.ErrColumnNotFound)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestExpenseNormalizer(t *testing.T) {
	table := sheet.Table{
		Columns: []string{"Cuenta", "Monto"},
		Rows: [][]string{
			{"nómina y transporte", "1.200,00"},
			{"Glovo", "18"},
			{"Varios", "n/d"},
		},
	}

	n := importer.NewExpenseNormalizer(classifier.DefaultExpense())

	got, err := n.Normalize(table, "gastos.xlsx", ingestedAt)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Sueldos y honorarios", got[0].Category)
	assert.Equal(t, classifier.GroupFixed, got[0].Subcategory)
	assert.Equal(t, 1200.0, got[0].Amount)
	assert.Equal(t, "nómina y transporte", got[0].Description, "account doubles as description")
	assert.Equal(t, "2024-07-01", got[0].Date, "no date column uses the ingestion date")

	assert.Equal(t, "Transporte y envíos", got[1].Category)
	assert.Equal(t, classifier.GroupVariable, got[1].Subcategory)

	assert.Equal(t, classifier.DefaultLabel, got[2].Category)
	assert.Equal(t, classifier.GroupVariable, got[2].Subcategory)
	assert.Zero(t, got[2].Amount)

	for _, r := range got {
		assert.Equal(t, transaction.TypeExpense, r.Type)
		assert.Equal(t, "gastos.xlsx", r.SourceFile)
	}
}

func TestExpenseNormalizer_DescriptionAndNumericFallback(t *testing.T) {
	table := sheet.Table{
		Columns: []string{"Fecha", "Categoría", "Descripción del gasto", "Euros"},
		Rows: [][]string{
			{"45306", "Luz", "Factura enero", "63.2"},
		},
	}

	n := importer.NewExpenseNormalizer(classifier.DefaultExpense())

	got, err := n.Normalize(table, "gastos.xlsx", ingestedAt)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "2024-01-15", got[0].Date)
	assert.Equal(t, 63.2, got[0].Amount)
	assert.Equal(t, "Factura enero", got[0].Description)
	assert.Equal(t, "Servicios", got[0].Category)
}

func TestExpenseNormalizer_MissingAccount(t *testing.T) {
	table := sheet.Table{Columns: []string{"Importe", "Notas"}}

	n := importer.NewExpenseNormalizer(classifier.DefaultExpense())

	_, err := n.Normalize(table, "gastos.xlsx", ingestedAt)
	assert.ErrorIs(t, err, importer.ErrColumnNotFound)
}
