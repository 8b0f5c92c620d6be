package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot/docchat/internal/core/chat"
)

type errMsg struct {
	err error
}

type progressMsg struct {
	done  int
	total int
}

type fragmentMsg struct {
	text string
}

type streamDoneMsg struct {
	answer string
	err    error
}

type speechDoneMsg struct{}

type captureResultMsg struct {
	text string
}

type captureEndMsg struct {
	failed bool
}

// waitForEvent pumps the next async event into the program. Every handled
// async message re-arms it, so exactly one pump is pending at all times.
func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// startAsk runs one question turn in the background, feeding progress and
// response fragments through the event channel as they arrive.
func (m *Model) startAsk(question string) {
	events := m.events
	orch := m.orch
	go func() {
		answer, err := orch.Ask(context.Background(), question, chat.Callbacks{
			OnProgress: func(done, total int) {
				events <- progressMsg{done: done, total: total}
			},
			OnFragment: func(fragment string) {
				events <- fragmentMsg{text: fragment}
			},
		})
		events <- streamDoneMsg{answer: answer, err: err}
	}()
}
