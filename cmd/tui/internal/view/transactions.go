package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/transaction"
)

type ledgerState int

const (
	ledgerStateTimeframe ledgerState = iota
	ledgerStateList
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	category := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s · %s]", i.tx.Category, i.tx.Subcategory))

	return fmt.Sprintf("%s  %12s  %s  %s", FormatStoredDate(i.tx.Date), FormatAmount(i.tx.Amount), category, i.tx.Description)
}

func (i txItem) Description() string {
	return fmt.Sprintf("Archivo: %s", i.tx.SourceFile)
}

func (i txItem) FilterValue() string {
	return i.tx.Description + " " + i.tx.Category + " " + i.tx.Subcategory
}

// LedgerModel lists the transactions of one type (Ingresos or Gastos) for a
// chosen period together with its breakdowns.
type LedgerModel struct {
	CommonModel
	svc    *dashboard.Service
	txType transaction.Type

	state           ledgerState
	timeframePicker TimeframePicker
	list            list.Model

	detail  *dashboard.Detail
	loading bool
	status  string
}

func NewLedgerModel(svc *dashboard.Service, txType transaction.Type) LedgerModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = ledgerTitle(txType)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return LedgerModel{
		svc:             svc,
		txType:          txType,
		timeframePicker: NewTimeframePicker(TimeframeAll),
		list:            l,
	}
}

func ledgerTitle(txType transaction.Type) string {
	if txType == transaction.TypeIncome {
		return "Ingresos"
	}

	return "Gastos"
}

func (m LedgerModel) Title() string { return ledgerTitle(m.txType) }

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateTimeframe:
		return "Esc: volver | Enter: seleccionar"
	case ledgerStateList:
		return "Esc: período | /: filtrar"
	}

	return ""
}

func (m LedgerModel) Init() tea.Cmd {
	return nil
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.loading = true
		m.state = ledgerStateList

		return m, m.loadCmd(msg)

	case detailLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.detail = msg.detail
		m.status = ""
		m.refreshListItems()

		if len(msg.detail.Transactions) == 0 {
			m.status = "No hay transacciones en el período seleccionado."
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-16)

		return m, nil
	}

	switch m.state {
	case ledgerStateTimeframe:
		return m.updateTimeframe(msg)
	case ledgerStateList:
		return m.updateList(msg)
	}

	return m, nil
}

func (m LedgerModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m LedgerModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.list.FilterState() != list.Unfiltered {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)

			return m, cmd
		}

		m.state = ledgerStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m LedgerModel) View() string {
	switch m.state {
	case ledgerStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(titleStyle.Render(m.Title()) + "\n\n" + m.timeframePicker.View())

	case ledgerStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Cargando transacciones...")
		}

		if m.detail == nil {
			return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(m.status))
		}

		return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
			m.summaryView(),
			faintStyle.Render(m.status),
			m.list.View(),
		))
	}

	return ""
}

func (m LedgerModel) summaryView() string {
	d := m.detail

	secondary := "Por canal"
	if d.Type == transaction.TypeExpense {
		secondary = "Fijos y variables"
	}

	visible := 0.0
	for _, item := range m.list.VisibleItems() {
		if i, ok := item.(txItem); ok {
			visible += i.tx.Amount
		}
	}

	header := fmt.Sprintf("%s\n%s\nTotal: %s   Mostrado: %s (%d)",
		titleStyle.Render(m.Title()),
		rangeLine(d.Range),
		FormatAmount(d.Total),
		FormatAmount(visible),
		len(m.list.VisibleItems()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top,
			breakdownView("Por categoría", d.ByCategory),
			"  ",
			breakdownView(secondary, d.BySecondary),
		),
	)
}

func (m *LedgerModel) refreshListItems() {
	items := make([]list.Item, len(m.detail.Transactions))
	for i, tx := range m.detail.Transactions {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type detailLoadedMsg struct {
	detail *dashboard.Detail
	err    error
}

func (m LedgerModel) loadCmd(tf TimeframeSelectedMsg) tea.Cmd {
	svc, txType := m.svc, m.txType

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := svc.Detail(ctx, txType, tf.Start, tf.End)

		return detailLoadedMsg{detail: d, err: err}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
