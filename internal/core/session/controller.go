// Package session orchestrates the session lifecycle: creating, loading,
// and deleting conversations, and keeping the stores in lockstep with the
// in-memory state.
package session

import (
	"fmt"
	"log"
	"time"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/models"
	"github.com/docpilot/docchat/internal/core/pdf"
	"github.com/docpilot/docchat/internal/core/store"
)

// Controller ties the session store, blob store, and application state
// together. All methods leave exactly one session active; the system never
// ends up with an empty session list.
type Controller struct {
	State *app.State
	Store *store.SessionStore
	Blobs *store.BlobStore
}

// NewController creates a Controller over the given state and stores.
func NewController(state *app.State, sessions *store.SessionStore, blobs *store.BlobStore) *Controller {
	return &Controller{State: state, Store: sessions, Blobs: blobs}
}

// Init restores the persisted session list and activates the saved session,
// falling back to a fresh one when the store is empty.
func (c *Controller) Init() (*models.ChatSession, error) {
	sessions, activeID, err := c.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	c.State.Sessions = sessions
	c.State.ActiveID = activeID

	if activeID == "" && len(sessions) > 0 {
		activeID = sessions[0].ID
	}
	return c.Load(activeID)
}

// Create makes a fresh empty session, prepends it to the list, persists,
// and loads it.
func (c *Controller) Create() (*models.ChatSession, error) {
	// Timestamp ids collide when two sessions are created within the same
	// millisecond; nudge forward until unique.
	now := time.Now()
	sess := models.NewSession(now)
	for c.State.FindSession(sess.ID) != nil {
		now = now.Add(time.Millisecond)
		sess = models.NewSession(now)
	}

	c.State.Sessions = append([]*models.ChatSession{sess}, c.State.Sessions...)
	c.Persist()
	return c.Load(sess.ID)
}

// Load activates the session with the given id. An unknown id falls back to
// the first available session, or to a fresh one when the list is empty.
// A session whose PDF blob has gone missing stays loadable; its history is
// restored and the missing document is only logged.
func (c *Controller) Load(id string) (*models.ChatSession, error) {
	c.State.StopSpeech()
	c.State.CloseDocument()
	c.State.SetSelectedPages(nil)

	sess := c.State.FindSession(id)
	if sess == nil {
		if len(c.State.Sessions) > 0 {
			return c.Load(c.State.Sessions[0].ID)
		}
		return c.Create()
	}

	c.State.ActiveID = sess.ID
	c.State.SetSelectedPages(sess.SelectedPages)
	c.Persist()

	if sess.HasPDF() {
		c.reopenPDF(sess)
	}
	return sess, nil
}

// Delete removes a session and its blob. Deleting the active session falls
// back exactly like Load's not-found branch.
func (c *Controller) Delete(id string) (*models.ChatSession, error) {
	sess := c.State.FindSession(id)
	if sess == nil {
		return c.State.ActiveSession(), nil
	}

	kept := c.State.Sessions[:0]
	for _, s := range c.State.Sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.State.Sessions = kept

	if err := c.Blobs.Delete(sess.BlobKey()); err != nil {
		log.Printf("failed to delete blob for session %s: %v", id, err)
	}
	c.Persist()

	if c.State.ActiveID == id {
		c.State.ActiveID = ""
		return c.Load("")
	}
	return c.State.ActiveSession(), nil
}

// AttachPDF opens the uploaded bytes, stores them, and associates them with
// the active session. A corrupt file aborts before anything is persisted.
func (c *Controller) AttachPDF(fileName string, data []byte) error {
	sess := c.State.ActiveSession()
	if sess == nil {
		return fmt.Errorf("no active session")
	}

	doc, err := pdf.Open(fileName, data)
	if err != nil {
		return fmt.Errorf("failed to process PDF: %w", err)
	}

	if err := c.Blobs.Put(sess.BlobKey(), data); err != nil {
		// Non-fatal: the document still works for this run, it just will
		// not survive a session switch.
		log.Printf("failed to store PDF blob: %v", err)
	}

	c.State.CloseDocument()
	c.State.Doc = doc
	c.State.SetSelectedPages(nil)

	sess.PDFFileName = fileName
	sess.SelectedPages = nil
	c.Persist()
	return nil
}

// SetSelection updates the active session's page selection (clamped to the
// loaded document, when present) and persists it.
func (c *Controller) SetSelection(pages []int) error {
	sess := c.State.ActiveSession()
	if sess == nil {
		return fmt.Errorf("no active session")
	}
	if c.State.Doc != nil {
		pages = pdf.ClampSelection(pages, c.State.Doc.PageCount())
	}
	c.State.SetSelectedPages(pages)
	sess.SelectedPages = pages
	c.Persist()
	return nil
}

// Persist mirrors the in-memory session list to the store. Storage failure
// is logged, not fatal to the running session.
func (c *Controller) Persist() {
	if err := c.Store.Save(c.State.Sessions, c.State.ActiveID); err != nil {
		log.Printf("failed to persist sessions: %v", err)
	}
}

func (c *Controller) reopenPDF(sess *models.ChatSession) {
	data, ok, err := c.Blobs.Get(sess.BlobKey())
	if err != nil {
		log.Printf("failed to read PDF blob for session %s: %v", sess.ID, err)
		return
	}
	if !ok {
		log.Printf("PDF blob for session %s is missing; history restored without its document", sess.ID)
		return
	}

	doc, err := pdf.Open(sess.PDFFileName, data)
	if err != nil {
		log.Printf("stored PDF for session %s no longer opens: %v", sess.ID, err)
		return
	}

	c.State.Doc = doc

	// Stale selections from a previously loaded PDF are clamped here, on
	// load, and nowhere else.
	clamped := pdf.ClampSelection(sess.SelectedPages, doc.PageCount())
	c.State.SetSelectedPages(clamped)
	sess.SelectedPages = clamped
}
