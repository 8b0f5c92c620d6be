package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/docpilot/docchat/internal/core/models"
	"github.com/docpilot/docchat/internal/core/pdf"
)

type sessionItem struct {
	sess   *models.ChatSession
	active bool
}

func (i sessionItem) Title() string {
	if i.active {
		return "* " + i.sess.Title
	}
	return i.sess.Title
}

func (i sessionItem) Description() string {
	desc := fmt.Sprintf("%d turn(s)", len(i.sess.History))
	if ms, err := strconv.ParseInt(i.sess.ID, 10, 64); err == nil {
		desc = humanize.Time(time.UnixMilli(ms)) + ", " + desc
	}
	if i.sess.HasPDF() {
		desc += " - " + i.sess.PDFFileName
		if len(i.sess.SelectedPages) > 0 {
			desc += ", pages " + pdf.FormatSelection(i.sess.SelectedPages)
		}
	}
	return desc
}

func (i sessionItem) FilterValue() string {
	return i.sess.Title
}

func (m Model) openSessions() (tea.Model, tea.Cmd) {
	if m.streaming {
		m.setStatus("wait for the current answer to finish", true)
		return m, nil
	}
	m.rebuildSessionList()
	m.mode = sessionsView
	return m, nil
}

func (m *Model) rebuildSessionList() {
	items := make([]list.Item, 0, len(m.state.Sessions))
	for _, sess := range m.state.Sessions {
		items = append(items, sessionItem{sess: sess, active: sess.ID == m.state.ActiveID})
	}

	l := list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	l.Title = "Sessions"
	l.AdditionalShortHelpKeys = sessionListHelp
	m.sessions = l
}

func sessionListHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (m Model) updateSessions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The list's filter input consumes plain letters while active.
	if m.sessions.FilterState() != list.Filtering {
		switch msg.String() {
		case "enter":
			item, ok := m.sessions.SelectedItem().(sessionItem)
			if !ok {
				return m, nil
			}
			if _, err := m.ctrl.Load(item.sess.ID); err != nil {
				m.setStatus(err.Error(), true)
			}
			m.mode = chatView
			m.refreshViewport()
			return m, nil

		case "n":
			if _, err := m.ctrl.Create(); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.mode = chatView
			m.refreshViewport()
			return m, nil

		case "d":
			item, ok := m.sessions.SelectedItem().(sessionItem)
			if !ok {
				return m, nil
			}
			if _, err := m.ctrl.Delete(item.sess.ID); err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			m.rebuildSessionList()
			m.refreshViewport()
			return m, nil

		case "esc", "q":
			m.mode = chatView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.sessions, cmd = m.sessions.Update(msg)
	return m, cmd
}

func (m Model) viewSessions() string {
	return m.sessions.View()
}
