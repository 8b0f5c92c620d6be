package models

import (
	"errors"
	"strconv"
	"time"
)

// DefaultTitle is the title a session carries until its first turn completes.
const DefaultTitle = "New Chat"

// TitleMaxLen is the number of characters kept when a session is retitled
// from its first prompt.
const TitleMaxLen = 40

// ChatSession is one saved conversation: its history, the PDF it was asked
// about, and the pages selected from that PDF.
type ChatSession struct {
	ID            string             `json:"id"` // creation timestamp, unique in the list
	Title         string             `json:"title"`
	History       []ConversationTurn `json:"history"`
	PDFFileName   string             `json:"pdf_file_name,omitempty"`
	SelectedPages []int              `json:"selected_pages,omitempty"`
}

// ConversationTurn is one user prompt and the model's response. Immutable
// once appended to a session's history.
type ConversationTurn struct {
	UserPrompt    string `json:"user_prompt"`
	ModelResponse string `json:"model_response"`
}

// NewSession creates an empty session with a fresh timestamp id.
func NewSession(now time.Time) *ChatSession {
	return &ChatSession{
		ID:    strconv.FormatInt(now.UnixMilli(), 10),
		Title: DefaultTitle,
	}
}

// Validate checks if the session has required fields
func (s *ChatSession) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

// BlobKey returns the key the session's PDF bytes are stored under.
func (s *ChatSession) BlobKey() string {
	return "pdf-" + s.ID
}

// HasPDF reports whether the session references an uploaded PDF.
func (s *ChatSession) HasPDF() bool {
	return s.PDFFileName != ""
}

// RetitleFrom sets the title to a truncated prefix of the first prompt.
// Called after a session's first successful turn.
func (s *ChatSession) RetitleFrom(prompt string) {
	runes := []rune(prompt)
	if len(runes) > TitleMaxLen {
		s.Title = string(runes[:TitleMaxLen]) + "..."
		return
	}
	s.Title = prompt
}

// AppendTurn adds a completed turn to the history and retitles the session
// when this was its first turn.
func (s *ChatSession) AppendTurn(turn ConversationTurn) {
	first := len(s.History) == 0
	s.History = append(s.History, turn)
	if first {
		s.RetitleFrom(turn.UserPrompt)
	}
}
