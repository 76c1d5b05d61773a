package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/sheet"
	"github.com/sempreviva/dashboard/internal/transaction"
)

func newService() *importer.Service {
	return importer.NewService(classifier.DefaultIncome(), classifier.DefaultExpense()).
		WithClock(func() time.Time { return ingestedAt })
}

func TestService_Import_CSV(t *testing.T) {
	input := "Fecha;Cuenta;Descripcion;Importe\n" +
		"03/02/2024;Alquiler;Local febrero;900,00\n" +
		"04/02/2024;Rosas;Tallos rojos;120,40\n"

	got, err := newService().Import(transaction.TypeExpense, "/tmp/uploads/gastos-febrero.csv", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-02-03", got[0].Date)
	assert.Equal(t, "Alquiler del local", got[0].Category)
	assert.Equal(t, "Local febrero", got[0].Description)
	assert.Equal(t, "gastos-febrero.csv", got[0].SourceFile)
	assert.Equal(t, "Flores y verdes", got[1].Category)
	assert.InDelta(t, 120.4, got[1].Amount, 1e-9)
}

func TestService_Import_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Fecha", "Descripción", "Etiquetas", "Total"},
		{time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), "Caja regalo", "regalo online", 45.9},
		{time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "Corona", "funeral whatsapp", 80},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := newService().Import(transaction.TypeIncome, "ventas.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-03-08", got[0].Date)
	assert.Equal(t, "Regalos", got[0].Category)
	assert.Equal(t, "Web", got[0].Subcategory)
	assert.InDelta(t, 45.9, got[0].Amount, 1e-9)

	assert.Equal(t, "2024-03-09", got[1].Date)
	assert.Equal(t, "Funerales", got[1].Category)
	assert.Equal(t, "WhatsApp", got[1].Subcategory)
}

func TestService_Import_XLSXInteriorBlankRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := map[int][]any{
		1: {"Fecha", "Cuenta", "Importe"},
		2: {"03/02/2024", "Alquiler", 900},
		4: {"05/02/2024", "Rosas", 120.4},
	}

	for n, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, n)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := newService().Import(transaction.TypeExpense, "gastos.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, got, 3, "the blank row still yields a record")

	assert.Equal(t, "2024-02-03", got[0].Date)
	assert.Equal(t, "2024-07-01", got[1].Date)
	assert.Zero(t, got[1].Amount)
	assert.Equal(t, classifier.DefaultLabel, got[1].Category)
	assert.Equal(t, classifier.GroupVariable, got[1].Subcategory)
	assert.Equal(t, "2024-02-05", got[2].Date)
}

func TestService_Import_Errors(t *testing.T) {
	svc := newService()

	_, err := svc.Import("REFUND", "ventas.csv", strings.NewReader("a;b\n"))
	assert.ErrorIs(t, err, importer.ErrUnknownKind)

	_, err = svc.Import(transaction.TypeIncome, "ventas.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, sheet.ErrUnsupportedFormat)

	_, err = svc.Import(transaction.TypeIncome, "ventas.csv", strings.NewReader("Importe;Notas\n5;x\n"))
	assert.ErrorIs(t, err, importer.ErrColumnNotFound)
}
