package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/chat"
	"github.com/docpilot/docchat/internal/core/session"
)

type viewMode int

const (
	chatView viewMode = iota
	sessionsView
	helpView
)

// Model is the top-level TUI state. Chat is the home view; the sessions
// list and help overlay it.
type Model struct {
	state *app.State
	ctrl  *session.Controller
	orch  *chat.Orchestrator

	mode   viewMode
	width  int
	height int
	ready  bool

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model
	sessions list.Model
	md       *markdownRenderer

	// One streaming turn at a time. pendingQuestion and pending hold the
	// in-flight turn until it lands in the session history.
	streaming       bool
	pendingQuestion string
	pending         string
	progress        string

	speaking  bool
	capturing bool
	status    string
	statusErr bool

	events chan tea.Msg
}

// New builds the TUI over the shared application state. Speech is optional;
// a nil Speaker or Recognizer on the state just disables the keybinding.
func New(state *app.State, ctrl *session.Controller, orch *chat.Orchestrator, theme string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the selected pages (or /help)"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = speakingStyle

	events := make(chan tea.Msg, 64)
	if state.Speaker != nil {
		state.Speaker.OnDone = func() {
			events <- speechDoneMsg{}
		}
	}

	return Model{
		state:  state,
		ctrl:   ctrl,
		orch:   orch,
		input:  ta,
		spin:   sp,
		md:     newMarkdownRenderer(theme),
		events: events,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.state.StopSpeech()
			return m, tea.Quit
		}
		switch m.mode {
		case chatView:
			return m.updateChat(msg)
		case sessionsView:
			return m.updateSessions(msg)
		case helpView:
			m.mode = chatView
			return m, nil
		}

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressMsg:
		m.progress = fmt.Sprintf("Rendering pages... %d/%d", msg.done, msg.total)
		return m, waitForEvent(m.events)

	case fragmentMsg:
		m.pending += msg.text
		m.progress = ""
		m.refreshViewport()
		return m, waitForEvent(m.events)

	case streamDoneMsg:
		m.finishStream(msg)
		return m, waitForEvent(m.events)

	case speechDoneMsg:
		m.speaking = false
		return m, waitForEvent(m.events)

	case captureResultMsg:
		m.input.SetValue(msg.text)
		return m, waitForEvent(m.events)

	case captureEndMsg:
		m.capturing = false
		if !msg.failed {
			m.setStatus("Transcript ready; press enter to send", false)
		}
		return m, waitForEvent(m.events)

	case errMsg:
		m.setStatus(msg.err.Error(), true)
		return m, waitForEvent(m.events)
	}

	if m.mode == chatView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.mode {
	case chatView:
		return m.viewChat()
	case sessionsView:
		return m.viewSessions()
	case helpView:
		return m.viewHelp()
	}
	return ""
}

// finishStream lands a completed turn: the history already holds it on
// success, so the transient stream state just gets cleared.
func (m *Model) finishStream(msg streamDoneMsg) {
	m.streaming = false
	m.pending = ""
	m.pendingQuestion = ""
	m.progress = ""

	if msg.err != nil {
		if errors.Is(msg.err, chat.ErrCredentials) {
			m.setStatus("API key missing or rejected; run: docchat config set-key <key>", true)
		} else {
			m.setStatus(msg.err.Error(), true)
		}
	} else {
		m.setStatus("", false)
	}
	m.refreshViewport()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) resize() {
	headerHeight := 2
	inputHeight := 3
	statusHeight := 1
	vpHeight := m.height - headerHeight - inputHeight - statusHeight - 1
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(m.width - 2)

	if m.mode == sessionsView {
		m.sessions.SetSize(m.width, m.height-2)
	}
}
