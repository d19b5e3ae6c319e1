package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fluxo-app/fluxo-go/internal/render"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
)

const defaultLoadTimeout = 30 * time.Second

// Load outcomes reported to the LoadObserver
const (
	LoadOK    = "ok"
	LoadError = "error"
	LoadStale = "stale"
)

// dashboardLoadedMsg carries the ticket it was started with so a
// completion for a month the user already left is dropped.
type dashboardLoadedMsg struct {
	ticket    fluxo.Ticket
	dashboard *fluxo.Dashboard
	err       error
}

// Option configures the model
type Option func(*model)

// WithLoadTimeout bounds each dashboard fetch
func WithLoadTimeout(d time.Duration) Option {
	return func(m *model) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLoadObserver is called with LoadOK, LoadError or LoadStale for every completed fetch
func WithLoadObserver(fn func(result string)) Option {
	return func(m *model) {
		m.observe = fn
	}
}

type model struct {
	loader  fluxo.DashboardLoader
	view    *fluxo.MonthlyView
	window  fluxo.MonthWindow
	timeout time.Duration
	observe func(result string)

	spinner spinner.Model
	jump    textinput.Model
	jumping bool
	jumpErr string

	width    int
	quitting bool
}

// New creates the month-navigation dashboard starting at window
func New(loader fluxo.DashboardLoader, window fluxo.MonthWindow, opts ...Option) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))

	jump := textinput.New()
	jump.Placeholder = fluxo.MonthLayout
	jump.CharLimit = len(fluxo.MonthLayout)
	jump.Prompt = "go to month: "

	m := model{
		loader:  loader,
		view:    fluxo.NewMonthlyView(nil),
		window:  window,
		timeout: defaultLoadTimeout,
		spinner: sp,
		jump:    jump,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the dashboard in the alternate screen and blocks until it quits
func Run(ctx context.Context, loader fluxo.DashboardLoader, window fluxo.MonthWindow, opts ...Option) error {
	p := tea.NewProgram(New(loader, window, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(m.window))
}

// loadCmd begins a load synchronously so tickets follow key order,
// then fetches in the returned command.
func (m model) loadCmd(window fluxo.MonthWindow) tea.Cmd {
	ticket := m.view.Begin(window)
	loader := m.loader
	timeout := m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		dashboard, err := loader.Dashboard(ctx, ticket.Window)
		return dashboardLoadedMsg{ticket: ticket, dashboard: dashboard, err: err}
	}
}

func (m model) report(result string) {
	if m.observe != nil {
		m.observe(result)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		if !m.view.Commit(msg.ticket, msg.dashboard, msg.err) {
			m.report(LoadStale)
			return m, nil
		}
		if msg.err != nil {
			m.report(LoadError)
		} else {
			m.report(LoadOK)
		}
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			m.window = m.window.Prev()
			return m, m.loadCmd(m.window)
		case "right", "l":
			m.window = m.window.Next()
			return m, m.loadCmd(m.window)
		case "t":
			loc := m.window.Location
			if loc == nil {
				loc = time.Local
			}
			m.window = fluxo.MonthOf(time.Now().In(loc))
			return m, m.loadCmd(m.window)
		case "r":
			return m, m.loadCmd(m.window)
		case "g":
			m.jumping = true
			m.jumpErr = ""
			m.jump.SetValue("")
			return m, m.jump.Focus()
		}
	}
	return m, nil
}

func (m model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		window, err := fluxo.ParseMonth(strings.TrimSpace(m.jump.Value()), m.window.Location)
		if err != nil {
			m.jumpErr = "expected " + fluxo.MonthLayout
			return m, nil
		}
		m.jumping = false
		m.jump.Blur()
		m.window = window
		return m, m.loadCmd(m.window)
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	state := m.view.State()

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#87CEEB")).
		Bold(true).
		Render("fluxo · " + m.window.Label())

	lines := []string{header}
	if state.Loading {
		lines = append(lines, m.spinner.View()+" loading")
	}
	if state.Err != nil {
		lines = append(lines, render.Error(fluxo.UserMessage(state.Err, "could not load the dashboard")))
	}
	if state.Dashboard != nil && state.Dashboard.Window.Key() != m.window.Key() {
		lines = append(lines, render.Muted("showing "+state.Dashboard.Window.Label()))
	}

	body := render.Dashboard(state.Dashboard)
	if state.Dashboard == nil && state.Loading {
		body = ""
	}

	footer := render.Muted("←/→ month · t today · g go to · r reload · q quit")
	if m.jumping {
		footer = m.jump.View()
		if m.jumpErr != "" {
			footer += "  " + render.Error(m.jumpErr)
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		strings.Join([]string{strings.Join(lines, "\n"), body, footer}, "\n\n"),
	)
}
