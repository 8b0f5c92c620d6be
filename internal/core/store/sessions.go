package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/docpilot/docchat/internal/core/models"
)

// SessionStore persists the full session list plus the active session id as
// one JSON document. Every mutation rewrites the whole file; fine for the
// handful of sessions a single user accumulates, and documented as the
// scalability limit of this layer.
type SessionStore struct {
	path string
}

type sessionsFile struct {
	ActiveID string                `json:"active_id"`
	Sessions []*models.ChatSession `json:"sessions"`
}

// NewSessionStore creates a store backed by the given JSON file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Save serializes the session list and active id, replacing prior content.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated file behind.
func (s *SessionStore) Save(sessions []*models.ChatSession, activeID string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(sessionsFile{ActiveID: activeID, Sessions: sessions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "sessions-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace sessions file: %w", err)
	}
	return nil
}

// Load deserializes the session list and active id. Missing or malformed
// data yields an empty list rather than an error: the worst case for a
// corrupt store is starting fresh, never a crash.
func (s *SessionStore) Load() ([]*models.ChatSession, string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read sessions file: %w", err)
	}

	var f sessionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Printf("sessions file is malformed, starting fresh: %v", err)
		return nil, "", nil
	}

	// Drop entries that would violate the id invariant rather than
	// propagating them into the in-memory list.
	seen := make(map[string]bool, len(f.Sessions))
	sessions := f.Sessions[:0]
	for _, sess := range f.Sessions {
		if sess == nil || sess.ID == "" || seen[sess.ID] {
			continue
		}
		seen[sess.ID] = true
		sessions = append(sessions, sess)
	}

	activeID := f.ActiveID
	if activeID != "" && !seen[activeID] {
		activeID = ""
	}
	return sessions, activeID, nil
}
