package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/soundalike/internal/recommend"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	ResultsView
)

// Recommender produces recommendations. [tasks.Engine] implements it.
type Recommender interface {
	Recommend(ctx context.Context, preferred []string) (*recommend.Result, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	engine  Recommender
	logger  *log.Logger
	view    ViewState
	width   int
	height  int
	input   textinput.Model
	results list.Model
	result  *recommend.Result
	names   []string
	loading bool
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model. A nil logger discards output.
func NewModel(ctx context.Context, engine Recommender, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "Ed Sheeran, Adele"
	input.Prompt = "Artists: "
	input.PromptStyle = styles.prompt
	input.CharLimit = 256
	input.Focus()

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)

	return &Model{
		ctx:     ctx,
		engine:  engine,
		logger:  logger,
		view:    InputView,
		input:   input,
		results: results,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blinking in the input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.abort) {
			return m, tea.Quit
		}
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgRecommended:
			return m.handleRecommended(msg.data.(recommendedData))
		}
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case ResultsView:
		return m.renderResults()
	default:
		return ""
	}
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		if m.loading {
			return m, nil
		}
		names := recommend.SplitNames(m.input.Value())
		if len(names) == 0 {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.recommend(names)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = InputView
		m.result = nil
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleRecommended(data recommendedData) (tea.Model, tea.Cmd) {
	m.loading = false
	if data.err != nil {
		m.logger.Error("recommendation failed", "input", data.input, "error", data.err)
		m.err = data.err
		return m, nil
	}

	m.names = data.input
	m.result = data.result
	m.view = ResultsView
	m.input.Blur()

	if data.result.OK() {
		m.results.SetItems(recommendationItems(data.result))
		m.results.Title = fmt.Sprintf("Similar to %s", strings.Join(data.result.Matched, ", "))
		m.results.Select(0)
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case InputView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) recommend(names []string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Recommend(m.ctx, names)
		return recommendedMsg(names, result, err)
	}
}

func (m *Model) renderInput() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("soundalike"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styles.warn.Render("Loading catalog..."))
		b.WriteString("\n\n")
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	quit := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.submit, quit}))
	return b.String()
}

func (m *Model) renderResults() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit})

	if m.result == nil || !m.result.OK() {
		message := recommend.NoMatchMessage
		if m.result != nil && m.result.Message != "" {
			message = m.result.Message
		}
		return fmt.Sprintf("%s\n%s\n\n%s\n\n%s",
			styles.title.Render("soundalike"),
			styles.err.Render(message),
			styles.help.Render("Searched for: "+strings.Join(m.names, ", ")),
			helpView,
		)
	}

	return fmt.Sprintf("%s\n\n%s", m.results.View(), helpView)
}
