// Package chat runs one question/answer turn end to end: validation, page
// rendering, streaming generation, and history persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/llm"
	"github.com/docpilot/docchat/internal/core/models"
	"github.com/docpilot/docchat/internal/core/render"
	"github.com/docpilot/docchat/internal/core/session"
)

// MaxSelectedPages bounds request latency and cost. Exceeding it rejects
// the request before any rendering or network work happens.
const MaxSelectedPages = 30

var (
	// ErrCredentials marks failures that point at a missing or rejected
	// API key; the interface layer routes these to credential settings.
	ErrCredentials = errors.New("API key is missing or was rejected")

	ErrNoQuestion      = errors.New("enter a question before sending")
	ErrNoPagesSelected = errors.New("select at least one page to ask about")
	ErrTooManyPages    = fmt.Errorf("select at most %d pages per question", MaxSelectedPages)
	ErrNoImages        = errors.New("none of the selected pages could be rendered")
	ErrEmptyResponse   = errors.New("the model returned an empty response")
)

// Callbacks let the interface layer observe a turn as it runs. Any of them
// may be nil.
type Callbacks struct {
	// OnProgress fires once per rendered page.
	OnProgress render.ProgressFunc
	// OnFragment fires for each streamed response fragment.
	OnFragment func(fragment string)
}

// Orchestrator validates a question, renders the selected pages, streams
// the model's answer, and appends the finished turn to the active session.
type Orchestrator struct {
	State    *app.State
	Sessions *session.Controller

	// SystemTemplate overrides the default system instruction when set.
	SystemTemplate string
}

// NewOrchestrator creates an Orchestrator over the given state and
// session controller.
func NewOrchestrator(state *app.State, sessions *session.Controller) *Orchestrator {
	return &Orchestrator{State: state, Sessions: sessions}
}

// Ask runs one turn and returns the full response text. All failures come
// back as a single error; credential-shaped ones satisfy
// errors.Is(err, ErrCredentials).
func (o *Orchestrator) Ask(ctx context.Context, question string, cb Callbacks) (string, error) {
	if o.State.Provider == nil {
		return "", ErrCredentials
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrNoQuestion
	}

	pages := o.State.SelectedPages()
	if len(pages) == 0 {
		return "", ErrNoPagesSelected
	}
	if len(pages) > MaxSelectedPages {
		return "", ErrTooManyPages
	}

	sess := o.State.ActiveSession()
	if sess == nil {
		return "", errors.New("no active session")
	}

	var doc render.PageRenderer
	if o.State.Doc != nil {
		doc = o.State.Doc
	}
	parts := render.SelectedPages(ctx, doc, pages, cb.OnProgress)
	if len(parts) == 0 {
		return "", ErrNoImages
	}

	renderedPages := make([]int, len(parts))
	for i, p := range parts {
		renderedPages[i] = p.Page
	}

	req := llm.GenerateRequest{
		System:   llm.BuildSystemInstruction(o.SystemTemplate, sess.PDFFileName, renderedPages),
		Question: question,
		Images:   parts,
	}

	full, err := o.State.Provider.StreamGenerate(ctx, req, cb.OnFragment)
	if err != nil {
		if looksLikeCredentialError(err) {
			return "", fmt.Errorf("%w: %v", ErrCredentials, err)
		}
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if strings.TrimSpace(full) == "" {
		return "", ErrEmptyResponse
	}

	sess.AppendTurn(models.ConversationTurn{UserPrompt: question, ModelResponse: full})
	o.Sessions.Persist()
	return full, nil
}

// looksLikeCredentialError inspects error text for the permission and
// API-key codes the backend returns when the key is bad.
func looksLikeCredentialError(err error) bool {
	text := strings.ToLower(err.Error())
	for _, marker := range []string{
		"api key",
		"api_key",
		"permission",
		"unauthenticated",
		"unauthorized",
		"code: 401",
		"code: 403",
	} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
