package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/sempreviva/dashboard/cmd/tui/internal/view"
	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/config"
	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/database"
	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/insight"
	"github.com/sempreviva/dashboard/internal/transaction"
	txStore "github.com/sempreviva/dashboard/internal/transaction/store"
)

type model struct {
	txService        *transaction.Service
	importService    *importer.Service
	dashboardService *dashboard.Service
	insightService   *insight.Service

	appName     string
	currentView View
	window      tea.WindowSizeMsg

	overviewView view.OverviewModel
	incomeView   view.LedgerModel
	expenseView  view.LedgerModel
	importView   view.ImportModel
	filesView    view.FilesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewOverview View = 1
	ViewIncome   View = 2
	ViewExpense  View = 3
	ViewImport   View = 4
	ViewFiles    View = 5
)

func initialModel(cfg *config.Config) (model, func(), error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return model{}, nil, err
	}

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return model{}, nil, err
	}

	if err := database.Migrate(dialect, dsn); err != nil {
		return model{}, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return model{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	generator, err := insight.New(context.Background(), cfg.Insight.APIKey, cfg.Insight.Model)
	if err != nil {
		slog.Warn("insights disabled", "error", err)

		generator = insight.Noop{}
	}

	txSvc := transaction.NewService(txStore.New(db, dialect))
	impSvc := importer.NewService(classifier.DefaultIncome(), classifier.DefaultExpense())
	insSvc := insight.NewService(generator, insight.Options{
		Timeout:  cfg.Insight.Timeout,
		CacheTTL: cfg.Insight.CacheTTL,
		Every:    cfg.Insight.Every,
	})
	dashSvc := dashboard.NewService(txSvc, insSvc, dashboard.Options{
		SwapReversedRange: cfg.Dashboard.SwapReversedRange,
	})

	m := model{
		txService:        txSvc,
		importService:    impSvc,
		dashboardService: dashSvc,
		insightService:   insSvc,
		appName:          cfg.App.Name,
		currentView:      ViewMenu,
		overviewView:     view.NewOverviewModel(dashSvc),
		incomeView:       view.NewLedgerModel(dashSvc, transaction.TypeIncome),
		expenseView:      view.NewLedgerModel(dashSvc, transaction.TypeExpense),
		importView:       view.NewImportModel(txSvc, impSvc, insSvc),
		filesView:        view.NewFilesModel(txSvc, insSvc),
	}

	return m, func() { db.Close() }, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

// resize replays the last window size so freshly built views lay out correctly.
func (m model) resize() tea.Cmd {
	if m.window.Width == 0 {
		return nil
	}

	size := m.window

	return func() tea.Msg { return size }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.window = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewOverview
				m.overviewView = view.NewOverviewModel(m.dashboardService)

				return m, tea.Batch(m.overviewView.Init(), m.resize())
			case "2":
				m.currentView = ViewIncome
				m.incomeView = view.NewLedgerModel(m.dashboardService, transaction.TypeIncome)

				return m, tea.Batch(m.incomeView.Init(), m.resize())
			case "3":
				m.currentView = ViewExpense
				m.expenseView = view.NewLedgerModel(m.dashboardService, transaction.TypeExpense)

				return m, tea.Batch(m.expenseView.Init(), m.resize())
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.txService, m.importService, m.insightService)

				return m, tea.Batch(m.importView.Init(), m.resize())
			case "5":
				m.currentView = ViewFiles
				m.filesView = view.NewFilesModel(m.txService, m.insightService)

				return m, tea.Batch(m.filesView.Init(), m.resize())
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewOverview:
		var newModel tea.Model
		newModel, cmd = m.overviewView.Update(msg)
		m.overviewView = newModel.(view.OverviewModel)
	case ViewIncome:
		var newModel tea.Model
		newModel, cmd = m.incomeView.Update(msg)
		m.incomeView = newModel.(view.LedgerModel)
	case ViewExpense:
		var newModel tea.Model
		newModel, cmd = m.expenseView.Update(msg)
		m.expenseView = newModel.(view.LedgerModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewFiles:
		var newModel tea.Model
		newModel, cmd = m.filesView.Update(msg)
		m.filesView = newModel.(view.FilesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render(m.appName) + "\n\n" +
				"1. Panel general\n" +
				"2. Ingresos\n" +
				"3. Gastos\n" +
				"4. Subir archivo\n" +
				"5. Archivos procesados\n\n" +
				"q. Salir",
		)
	case ViewOverview:
		return m.overviewView.View()
	case ViewIncome:
		return m.incomeView.View()
	case ViewExpense:
		return m.expenseView.View()
	case ViewImport:
		return m.importView.View()
	case ViewFiles:
		return m.filesView.View()
	}

	return "Vista desconocida"
}

// setupLogging sends logs to a file so they do not corrupt the screen.
func setupLogging(cfg *config.Config) (*os.File, error) {
	if dir := filepath.Dir(cfg.App.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	return f, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	m, closeDB, err := initialModel(cfg)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closeDB()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
