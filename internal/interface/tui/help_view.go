package tui

func (m Model) viewHelp() string {
	help := `
docchat - Help
══════════════

CHAT VIEW
─────────
  Type + Enter   Ask about the selected pages
  /open <path>   Load a PDF into this session
  /pages 1-3,7   Choose which pages to send (or "all")
  /new           Start a new chat
  /sessions      Browse saved chats
  /speak         Read the last answer aloud
  /quit          Quit

  ctrl+n         New chat
  ctrl+l         Sessions list
  ctrl+s         Speak / stop speaking the last answer
  ctrl+r         Dictate a question / stop listening
  ctrl+y         Copy the last answer
  pgup/pgdown    Scroll the conversation
  ctrl+c         Quit

SESSIONS VIEW
─────────────
  ↑/↓            Navigate
  Enter          Open session
  n              New session
  d              Delete session (and its stored PDF)
  /              Filter by title
  esc            Back to chat

Press any key to return to the chat
`

	return helpStyle.Render(help)
}
