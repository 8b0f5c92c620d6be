package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docpilot/docchat/internal/core/pdf"
)

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()

	case "ctrl+n":
		if m.streaming {
			return m, nil
		}
		if _, err := m.ctrl.Create(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Started a new chat", false)
		m.refreshViewport()
		return m, nil

	case "ctrl+l":
		return m.openSessions()

	case "ctrl+s":
		m.toggleSpeech()
		return m, nil

	case "ctrl+r":
		m.toggleCapture()
		return m, nil

	case "ctrl+y":
		m.copyAnswer()
		return m, nil

	case "f1":
		m.mode = helpView
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.streaming {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	m.input.Reset()
	m.pendingQuestion = text
	m.pending = ""
	m.progress = ""
	m.streaming = true
	m.setStatus("", false)
	m.refreshViewport()
	m.startAsk(text)
	return m, m.spin.Tick
}

// runCommand handles the slash commands typed into the input field.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	m.input.Reset()
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/open":
		if arg == "" {
			m.setStatus("usage: /open <path-to-pdf>", true)
			return m, nil
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			m.setStatus(fmt.Sprintf("failed to read %s: %v", arg, err), true)
			return m, nil
		}
		if err := m.ctrl.AttachPDF(filepath.Base(arg), data); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Loaded %s (%d pages); pick pages with /pages",
			filepath.Base(arg), m.state.Doc.PageCount()), false)
		m.refreshViewport()
		return m, nil

	case "/pages":
		if arg == "" {
			m.setStatus(`usage: /pages 1-3,7 (or "all")`, true)
			return m, nil
		}
		pages, err := m.parsePagesArg(arg)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if err := m.ctrl.SetSelection(pages); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Selected pages %s", pdf.FormatSelection(m.state.SelectedPages())), false)
		return m, nil

	case "/new":
		if _, err := m.ctrl.Create(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Started a new chat", false)
		m.refreshViewport()
		return m, nil

	case "/sessions":
		return m.openSessions()

	case "/speak":
		m.toggleSpeech()
		return m, nil

	case "/help":
		m.mode = helpView
		return m, nil

	case "/quit":
		m.state.StopSpeech()
		return m, tea.Quit
	}

	m.setStatus(fmt.Sprintf("unknown command %s (try /help)", name), true)
	return m, nil
}

func (m *Model) parsePagesArg(arg string) ([]int, error) {
	if strings.EqualFold(arg, "all") {
		if m.state.Doc == nil {
			return nil, fmt.Errorf("no document loaded; /open one first")
		}
		pages := make([]int, m.state.Doc.PageCount())
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}
	return pdf.ParseSelection(arg)
}

func (m *Model) toggleSpeech() {
	speaker := m.state.Speaker
	if speaker == nil {
		m.setStatus("no text-to-speech engine available", true)
		return
	}
	if m.speaking {
		speaker.Stop()
		m.speaking = false
		return
	}
	answer := m.lastAnswer()
	if answer == "" {
		m.setStatus("nothing to speak yet", true)
		return
	}
	speaker.Speak(answer)
	m.speaking = true
}

func (m *Model) toggleCapture() {
	recognizer := m.state.Recognizer
	if recognizer == nil {
		m.setStatus("no speech capture command configured (set stt_command in config)", true)
		return
	}
	if m.capturing {
		recognizer.Stop()
		return
	}

	events := m.events
	err := recognizer.Start(
		func(text string) { events <- captureResultMsg{text: text} },
		func(failed bool) { events <- captureEndMsg{failed: failed} },
	)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.capturing = true
	m.setStatus("Listening...", false)
}

func (m *Model) copyAnswer() {
	answer := m.lastAnswer()
	if answer == "" {
		m.setStatus("nothing to copy yet", true)
		return
	}
	if err := clipboard.WriteAll(answer); err != nil {
		m.setStatus(fmt.Sprintf("failed to copy: %v", err), true)
		return
	}
	m.setStatus("Answer copied to clipboard", false)
}

func (m *Model) lastAnswer() string {
	sess := m.state.ActiveSession()
	if sess == nil || len(sess.History) == 0 {
		return ""
	}
	return sess.History[len(sess.History)-1].ModelResponse
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	sess := m.state.ActiveSession()
	if sess == nil {
		return ""
	}

	wrap := m.viewport.Width - 2
	var b strings.Builder
	for _, turn := range sess.History {
		b.WriteString(userStyle.Render("You") + "\n")
		b.WriteString(turn.UserPrompt + "\n\n")
		b.WriteString(assistantStyle.Render("Answer") + "\n")
		b.WriteString(m.md.render(turn.ModelResponse, wrap) + "\n")
	}

	if m.streaming {
		b.WriteString(userStyle.Render("You") + "\n")
		b.WriteString(m.pendingQuestion + "\n\n")
		b.WriteString(assistantStyle.Render("Answer") + "\n")
		// Raw text while streaming; Markdown rendering waits for the
		// complete response.
		b.WriteString(m.pending)
	}
	return b.String()
}

func (m Model) viewChat() string {
	sess := m.state.ActiveSession()

	title := "docchat"
	if sess != nil {
		title = sess.Title
	}
	header := headerStyle.Render(title) + "\n" + docInfoStyle.Render(m.docInfo()) + "\n"

	status := m.statusLine()

	return header + m.viewport.View() + "\n" + m.input.View() + "\n" + status
}

func (m Model) docInfo() string {
	sess := m.state.ActiveSession()
	if sess == nil || !sess.HasPDF() {
		return "No document; /open <path> to load a PDF"
	}

	info := sess.PDFFileName
	if m.state.Doc != nil {
		info += fmt.Sprintf(" (%d pages)", m.state.Doc.PageCount())
	} else {
		info += " (stored copy missing)"
	}
	if selected := m.state.SelectedPages(); len(selected) > 0 {
		info += fmt.Sprintf(", sending pages %s", pdf.FormatSelection(selected))
	} else {
		info += ", no pages selected"
	}
	return info
}

func (m Model) statusLine() string {
	switch {
	case m.streaming && m.progress != "":
		return m.spin.View() + statusStyle.Render(m.progress)
	case m.streaming:
		return m.spin.View() + statusStyle.Render("Thinking...")
	case m.capturing:
		return speakingStyle.Render("Listening... (ctrl+r to stop)")
	case m.speaking:
		return speakingStyle.Render("Speaking... (ctrl+s to stop)")
	case m.status != "" && m.statusErr:
		return errorStyle.Render(m.status)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return helpStyle.Render("enter: send | ctrl+l: sessions | ctrl+s: speak | ctrl+y: copy | f1: help")
}
