package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeframe represents a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeAll       Timeframe = 0
	TimeframeThisMonth Timeframe = 1
	TimeframeLastMonth Timeframe = 2
	TimeframeThisYear  Timeframe = 3
	TimeframeLastYear  Timeframe = 4
	TimeframeCustom    Timeframe = 5
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "Todo el período"
	case TimeframeThisMonth:
		return "Este mes"
	case TimeframeLastMonth:
		return "Mes anterior"
	case TimeframeThisYear:
		return "Este año"
	case TimeframeLastYear:
		return "Año anterior"
	case TimeframeCustom:
		return "Rango personalizado"
	}

	return "Desconocido"
}

// TimeframeRange resolves a predefined timeframe relative to now. Both
// bounds are calendar dates at midnight UTC. TimeframeAll and
// TimeframeCustom have no predefined bounds and return ok == false.
func TimeframeRange(tf Timeframe, now time.Time) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch tf {
	case TimeframeThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today, true
	case TimeframeLastMonth:
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1), true
	case TimeframeThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), today, true
	case TimeframeLastYear:
		return time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(today.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, time.Time{}, false
}

// TimeframeSelectedMsg is emitted when the user has selected a date range.
// Start and End are nil for TimeframeAll. A custom range may be reversed;
// the caller decides how to report that.
type TimeframeSelectedMsg struct {
	Timeframe Timeframe
	Start     *time.Time
	End       *time.Time
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	initial  Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewTimeframePicker creates a picker with the given timeframe highlighted.
func NewTimeframePicker(initial Timeframe) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "AAAA-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Desde: "

	ei := textinput.New()
	ei.Placeholder = "AAAA-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "Hasta: "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		initial:    initial,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

// WithClock replaces the clock used to resolve predefined timeframes.
func (m TimeframePicker) WithClock(now func() time.Time) TimeframePicker {
	m.now = now
	return m
}

// Init returns the initial command for the picker.
func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

// Update handles messages for the timeframe picker.
func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			if m, cmd, handled := m.updateCustom(msg); handled {
				return m, cmd
			}
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeAll {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		selected := TimeframeSelectedMsg{Timeframe: m.selected}
		if start, end, ok := TimeframeRange(m.selected, m.now()); ok {
			selected.Start, selected.End = &start, &end
		}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		start, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("fecha inicial no válida (AAAA-MM-DD)")
			return m, nil, true
		}

		end, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("fecha final no válida (AAAA-MM-DD)")
			return m, nil, true
		}

		m.err = nil
		selected := TimeframeSelectedMsg{Timeframe: TimeframeCustom, Start: &start, End: &end}

		return m, func() tea.Msg { return selected }, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var (
		cmds []tea.Cmd
		c    tea.Cmd
	)

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

// View renders the timeframe picker.
func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Rango personalizado:\n\n%s\n%s\n\n(Enter para confirmar, Tab para cambiar, Esc para volver)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Selecciona el período:\n\n"
	for i := TimeframeAll; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, i.String())
	}

	s += "\n(Enter para seleccionar, Esc para volver)"

	return s + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = m.initial
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
