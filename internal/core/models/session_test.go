package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	s := NewSession(time.UnixMilli(1700000000000))
	if s.ID != "1700000000000" {
		t.Errorf("Expected timestamp id, got %q", s.ID)
	}
	if s.Title != DefaultTitle {
		t.Errorf("Expected default title, got %q", s.Title)
	}
	if len(s.History) != 0 || s.HasPDF() {
		t.Error("New session should be empty")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		session ChatSession
		wantErr bool
	}{
		{"valid", ChatSession{ID: "1", Title: "t"}, false},
		{"missing id", ChatSession{Title: "t"}, true},
		{"missing title", ChatSession{ID: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.session.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlobKey(t *testing.T) {
	s := ChatSession{ID: "12345"}
	if s.BlobKey() != "pdf-12345" {
		t.Errorf("BlobKey() = %q", s.BlobKey())
	}
}

func TestRetitleFrom(t *testing.T) {
	short := "What is on page two?"
	long := strings.Repeat("a", 80)

	var s ChatSession
	s.RetitleFrom(short)
	if s.Title != short {
		t.Errorf("Short prompt should become the full title, got %q", s.Title)
	}

	s.RetitleFrom(long)
	if s.Title != strings.Repeat("a", TitleMaxLen)+"..." {
		t.Errorf("Long prompt should truncate to %d chars plus ellipsis, got %q", TitleMaxLen, s.Title)
	}
}

func TestAppendTurn_RetitlesOnlyFirstTurn(t *testing.T) {
	s := NewSession(time.Now())

	s.AppendTurn(ConversationTurn{UserPrompt: "first question", ModelResponse: "a"})
	if s.Title != "first question" {
		t.Errorf("First turn should retitle, got %q", s.Title)
	}

	s.AppendTurn(ConversationTurn{UserPrompt: "second question", ModelResponse: "b"})
	if s.Title != "first question" {
		t.Errorf("Second turn must not retitle, got %q", s.Title)
	}
	if len(s.History) != 2 {
		t.Errorf("Expected 2 turns, got %d", len(s.History))
	}
}
