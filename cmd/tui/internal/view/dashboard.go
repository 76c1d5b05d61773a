package view

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/transaction"
)

// overviewTimeout covers the insight call on top of the queries.
const overviewTimeout = 30 * time.Second

const barWidth = 30

type overviewState int

const (
	overviewStateTimeframe overviewState = iota
	overviewStateReport
)

type OverviewModel struct {
	CommonModel
	svc *dashboard.Service

	state           overviewState
	timeframePicker TimeframePicker
	viewport        viewport.Model

	start, end *time.Time
	overview   *dashboard.Overview
	loading    bool
	err        error
}

func NewOverviewModel(svc *dashboard.Service) OverviewModel {
	return OverviewModel{
		svc:             svc,
		timeframePicker: NewTimeframePicker(TimeframeAll),
		viewport:        viewport.New(100, 30),
	}
}

func (m OverviewModel) Title() string { return "Panel general" }

func (m OverviewModel) Init() tea.Cmd {
	return nil
}

func (m OverviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.start, m.end = msg.Start, msg.End
		m.state = overviewStateReport
		m.loading = true

		return m, m.loadCmd()

	case overviewLoadedMsg:
		m.loading = false
		m.overview, m.err = msg.overview, msg.err
		m.viewport.SetContent(m.report())
		m.viewport.GotoTop()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6
		m.viewport.SetContent(m.report())

		return m, nil
	}

	if m.state == overviewStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = overviewStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m OverviewModel) View() string {
	if m.state == overviewStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(titleStyle.Render("Panel general") + "\n\n" + m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando panel...")
	}

	return lipgloss.NewStyle().Padding(1).Render(
		m.viewport.View() + "\n" + faintStyle.Render("Esc: período | r: recargar | ↑/↓: desplazar"),
	)
}

func (m OverviewModel) report() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	o := m.overview
	if o == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Panel general") + "\n")
	b.WriteString(rangeLine(o.Range) + "\n\n")

	if !o.HasTransactions() {
		b.WriteString("No hay transacciones en el período seleccionado. Sube un archivo de ingresos o gastos para empezar.")
		return b.String()
	}

	b.WriteString(metricsView(o.Totals) + "\n\n")
	b.WriteString(trendView(o.Trend) + "\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		breakdownView("Ingresos por canal", o.IncomeByChannel),
		"  ",
		breakdownView("Ingresos por categoría", o.IncomeByCategory),
	) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		breakdownView("Gastos por categoría", o.ExpenseByCategory),
		"  ",
		breakdownView("Gastos fijos y variables", o.ExpenseByGroup),
	) + "\n")

	if o.Insight != "" {
		b.WriteString("\n" + boxStyle.Width(80).Render(titleStyle.Render("Resumen")+"\n"+o.Insight) + "\n")
	}

	return b.String()
}

func rangeLine(r dashboard.Range) string {
	line := faintStyle.Render(fmt.Sprintf("Del %s al %s", FormatDate(r.Start), FormatDate(r.End)))
	if r.Warning != "" {
		line += "\n" + warningStyle.Render(r.Warning)
	}

	return line
}

func metricsView(t transaction.Totals) string {
	metric := func(label, value string) string {
		return boxStyle.Width(22).Render(faintStyle.Render(label) + "\n" + value)
	}

	net := FormatAmount(t.Net)
	if t.Net < 0 {
		net = errorStyle.Render(net)
	} else {
		net = successStyle.Render(net)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		metric("Ingresos", FormatAmount(t.Income)),
		metric("Gastos", FormatAmount(t.Expenses)),
		metric("Beneficio neto", net),
		metric("Margen", FormatPercent(t.Margin)),
	)
}

func trendView(trend []transaction.MonthTotal) string {
	peak := 0.0
	for _, mt := range trend {
		peak = math.Max(peak, math.Max(mt.Income, mt.Expenses))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tendencia mensual") + "\n")

	for _, mt := range trend {
		b.WriteString(fmt.Sprintf("%s  %s %s\n", mt.Month,
			successStyle.Render(bar(mt.Income, peak, barWidth)), FormatAmount(mt.Income)))
		b.WriteString(fmt.Sprintf("%s  %s %s  neto %s\n", strings.Repeat(" ", len(mt.Month)),
			errorStyle.Render(bar(mt.Expenses, peak, barWidth)), FormatAmount(mt.Expenses), FormatAmount(mt.Net())))
	}

	return b.String()
}

func breakdownView(title string, rows []transaction.BreakdownRow) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title) + "\n")

	if len(rows) == 0 {
		b.WriteString(faintStyle.Render("Sin datos") + "\n")
		return boxStyle.Width(50).Render(b.String())
	}

	peak := 0.0
	for _, r := range rows {
		peak = math.Max(peak, r.Total)
	}

	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-18.18s %s %s\n", r.Label, bar(r.Total, peak, 14), FormatAmount(r.Total)))
	}

	return boxStyle.Width(50).Render(b.String())
}

// bar draws value as a share of peak, at least one cell for positive values.
func bar(value, peak float64, width int) string {
	if peak <= 0 || value <= 0 {
		return strings.Repeat(" ", width)
	}

	n := max(int(math.Round(value/peak*float64(width))), 1)
	n = min(n, width)

	return strings.Repeat("█", n) + strings.Repeat(" ", width-n)
}

type overviewLoadedMsg struct {
	overview *dashboard.Overview
	err      error
}

func (m OverviewModel) loadCmd() tea.Cmd {
	svc, start, end := m.svc, m.start, m.end

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), overviewTimeout)
		defer cancel()

		o, err := svc.Overview(ctx, start, end)

		return overviewLoadedMsg{overview: o, err: err}
	}
}
