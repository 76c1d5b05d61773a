package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sempreviva/dashboard/internal/transaction"
)

type filesState int

const (
	filesStateBrowse filesState = iota
	filesStateConfirm
)

// FilesModel shows the processed files and allows clearing all stored data.
type FilesModel struct {
	CommonModel
	txService *transaction.Service
	cache     Flusher

	state filesState
	table table.Model
	files []transaction.ProcessedFile
	form  *huh.Form

	// confirm is shared by model copies so the form can write through it.
	confirm *bool
	loading bool
	err     error
	status  string
}

func NewFilesModel(txSvc *transaction.Service, cache Flusher) FilesModel {
	columns := []table.Column{
		{Title: "Archivo", Width: 40},
		{Title: "Subido", Width: 18},
		{Title: "Filas", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return FilesModel{
		txService: txSvc,
		cache:     cache,
		table:     t,
	}
}

func (m FilesModel) Title() string { return "Archivos procesados" }

func (m FilesModel) ShortHelp() string {
	if m.state == filesStateConfirm {
		return "Enter: confirmar | Esc: cancelar"
	}

	return "Esc: volver | r: recargar | x: borrar todos los datos"
}

func (m FilesModel) Init() tea.Cmd {
	return m.loadFilesCmd()
}

func (m FilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.files = msg.files
		m.refreshTable()

		return m, nil

	case clearResultMsg:
		m.state = filesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error al borrar: %v", msg.err)
			return m, nil
		}

		m.status = "Se han borrado todas las transacciones y archivos."

		return m, m.loadFilesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case filesStateBrowse:
		return m.updateBrowse(msg)
	case filesStateConfirm:
		return m.updateConfirm(msg)
	}

	return m, nil
}

func (m FilesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadFilesCmd()
		case "x":
			return m.enterConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m FilesModel) enterConfirm() (tea.Model, tea.Cmd) {
	m.confirm = new(bool)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("clear").
				Title("¿Borrar todas las transacciones y el historial de archivos?").
				Description("Esta acción no se puede deshacer.").
				Affirmative("Sí, borrar").
				Negative("Cancelar").
				Value(m.confirm),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = filesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m FilesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = filesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirm {
		m.state = filesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	return m, m.clearCmd()
}

func (m FilesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando archivos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	body := faintStyle.Render("Todavía no se ha subido ningún archivo.")
	if len(m.files) > 0 {
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(titleStyle.Render(m.Title())),
		body,
		faintStyle.Render(m.ShortHelp()),
	)

	if m.state == filesStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Width(64).
			Render(m.form.View())

		content = lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *FilesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.files))
	for _, f := range m.files {
		rows = append(rows, table.Row{
			f.Filename,
			f.UploadDate.Local().Format("02/01/2006 15:04"),
			strconv.Itoa(f.RowCount),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type clearResultMsg struct {
	err error
}

func (m FilesModel) loadFilesCmd() tea.Cmd {
	txSvc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		files, err := txSvc.RecentFiles(ctx, transaction.DefaultRecentFilesLimit)

		return filesLoadedMsg{files: files, err: err}
	}
}

func (m FilesModel) clearCmd() tea.Cmd {
	txSvc, cache := m.txService, m.cache

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := txSvc.ClearAll(ctx); err != nil {
			return clearResultMsg{err: err}
		}

		if cache != nil {
			cache.Flush()
		}

		return clearResultMsg{}
	}
}
