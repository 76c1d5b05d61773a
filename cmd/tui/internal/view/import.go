package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/transaction"
)

const (
	importTimeout = 2 * time.Minute
	previewRows   = 5
)

// Flusher drops derived data, such as cached insights, after the stored
// transactions changed.
type Flusher interface {
	Flush()
}

type importState int

const (
	importStateKindSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type uploadKind struct {
	label  string
	txType transaction.Type
}

var uploadKinds = []uploadKind{
	{label: "Ingresos", txType: transaction.TypeIncome},
	{label: "Gastos", txType: transaction.TypeExpense},
}

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service
	cache         Flusher

	state      importState
	filePicker filepicker.Model
	kindCursor int

	result  *transaction.ImportResult
	preview []transaction.Record
	files   []transaction.ProcessedFile

	status string
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service, cache Flusher) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".xlsx", ".xls", ".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		cache:         cache,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Subir archivo" }

func (m ImportModel) ShortHelp() string {
	return "Esc: volver | Enter: seleccionar"
}

func (m ImportModel) Init() tea.Cmd {
	return tea.Batch(m.filePicker.Init(), m.loadFilesCmd())
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateKindSelect {
			return m.updateKindSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("No se pudo procesar el archivo: %v", msg.err)

			return m, nil
		}

		m.err = nil
		m.result = msg.result
		m.preview = msg.preview
		m.status = fmt.Sprintf("Archivo %s procesado: %d transacciones guardadas.", msg.result.Filename, msg.result.Inserted)

		return m, m.loadFilesCmd()

	case filesLoadedMsg:
		if msg.err == nil {
			m.files = msg.files
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Procesando %s...", filepath.Base(path))

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateKindSelect
		return m, nil
	case importStateResult:
		m.state = importStateKindSelect
		m.err = nil
		m.status = ""
		m.result = nil
		m.preview = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.kindCursor > 0 {
			m.kindCursor--
		}
	case tea.KeyDown:
		if m.kindCursor < len(uploadKinds)-1 {
			m.kindCursor++
		}
	case tea.KeyEnter:
		m.state = importStateFilePick
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateKindSelect:
		return m.viewKindSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewKindSelect() string {
	s := titleStyle.Render("Subir archivo") + "\n\n¿Qué tipo de archivo vas a subir?\n\n"

	for i, k := range uploadKinds {
		cursor := " "
		if i == m.kindCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, k.label)
	}

	return lipgloss.NewStyle().Padding(2).Render(s + "\n" + m.viewFiles())
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Selecciona el archivo de %s (.xlsx, .xls, .csv):\n\n%s",
			strings.ToLower(uploadKinds[m.kindCursor].label), m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc para volver)")
	}

	var b strings.Builder

	b.WriteString(successStyle.Render(m.status) + "\n\n")

	if len(m.preview) > 0 {
		b.WriteString(titleStyle.Render("Vista previa") + "\n")

		for _, r := range m.preview {
			b.WriteString(fmt.Sprintf("%s  %12s  %-22.22s %-16.16s %s\n",
				FormatStoredDate(r.Date), FormatAmount(r.Amount), r.Category, r.Subcategory, r.Description))
		}

		b.WriteString("\n")
	}

	b.WriteString(m.viewFiles())

	return style.Render(b.String() + "\n(Esc para volver)")
}

func (m ImportModel) viewFiles() string {
	if len(m.files) == 0 {
		return faintStyle.Render("Todavía no se ha subido ningún archivo.")
	}

	s := titleStyle.Render("Archivos recientes") + "\n"
	for _, f := range m.files {
		s += fmt.Sprintf("%-32.32s %s  %d filas\n", f.Filename, f.UploadDate.Local().Format("02/01/2006 15:04"), f.RowCount)
	}

	return s
}

// Messages

type importResultMsg struct {
	result  *transaction.ImportResult
	preview []transaction.Record
	err     error
}

type filesLoadedMsg struct {
	files []transaction.ProcessedFile
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	txType := uploadKinds[m.kindCursor].txType
	txSvc, impSvc, cache := m.txService, m.importService, m.cache

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		records, err := impSvc.Import(txType, path, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := txSvc.ImportBatch(ctx, filepath.Base(path), records)
		if err != nil {
			return importResultMsg{err: err}
		}

		if cache != nil {
			cache.Flush()
		}

		return importResultMsg{result: result, preview: records[:min(len(records), previewRows)]}
	}
}

func (m ImportModel) loadFilesCmd() tea.Cmd {
	txSvc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		files, err := txSvc.RecentFiles(ctx, transaction.DefaultRecentFilesLimit)

		return filesLoadedMsg{files: files, err: err}
	}
}
