// Package app holds the single mutable application state shared by the
// controllers and interface layers. It is passed explicitly; there are no
// package-level singletons.
package app

import (
	"sort"

	"github.com/docpilot/docchat/internal/core/llm"
	"github.com/docpilot/docchat/internal/core/models"
	"github.com/docpilot/docchat/internal/core/pdf"
	"github.com/docpilot/docchat/internal/core/speech"
)

// Document is the loaded-PDF port. *pdf.Document is the real
// implementation; tests substitute fakes.
type Document interface {
	FileName() string
	PageCount() int
	RenderPage(page int) (pdf.ImagePart, error)
	Close() error
}

// State is the in-memory view of the application: the session list mirrored
// to the session store, the active session id, the currently loaded PDF,
// and the page selection. It is reinitialized wholesale on session switch.
type State struct {
	Sessions []*models.ChatSession
	ActiveID string

	Doc      Document
	Selected map[int]struct{}

	Provider   llm.StreamProvider
	Speaker    *speech.Speaker
	Recognizer *speech.Recognizer
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Selected: make(map[int]struct{})}
}

// ActiveSession returns the session ActiveID points at, or nil.
func (s *State) ActiveSession() *models.ChatSession {
	return s.FindSession(s.ActiveID)
}

// FindSession returns the session with the given id, or nil.
func (s *State) FindSession(id string) *models.ChatSession {
	if id == "" {
		return nil
	}
	for _, sess := range s.Sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// SelectedPages returns the selection as a sorted list.
func (s *State) SelectedPages() []int {
	pages := make([]int, 0, len(s.Selected))
	for p := range s.Selected {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// SetSelectedPages replaces the selection.
func (s *State) SetSelectedPages(pages []int) {
	s.Selected = make(map[int]struct{}, len(pages))
	for _, p := range pages {
		s.Selected[p] = struct{}{}
	}
}

// TogglePage flips one page in or out of the selection.
func (s *State) TogglePage(page int) {
	if _, ok := s.Selected[page]; ok {
		delete(s.Selected, page)
	} else {
		s.Selected[page] = struct{}{}
	}
}

// CloseDocument releases the loaded PDF, if any.
func (s *State) CloseDocument() {
	if s.Doc != nil {
		_ = s.Doc.Close()
		s.Doc = nil
	}
}

// StopSpeech halts any active playback and capture.
func (s *State) StopSpeech() {
	if s.Speaker != nil {
		s.Speaker.Stop()
	}
	if s.Recognizer != nil {
		s.Recognizer.Stop()
	}
}
