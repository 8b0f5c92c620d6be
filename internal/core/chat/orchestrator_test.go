package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/llm"
	"github.com/docpilot/docchat/internal/core/pdf"
	"github.com/docpilot/docchat/internal/core/session"
	"github.com/docpilot/docchat/internal/core/store"
)

type fakeDoc struct {
	pages int
}

func (f *fakeDoc) FileName() string { return "fake.pdf" }
func (f *fakeDoc) PageCount() int   { return f.pages }
func (f *fakeDoc) Close() error     { return nil }
func (f *fakeDoc) RenderPage(page int) (pdf.ImagePart, error) {
	return pdf.ImagePart{Page: page, MIME: "image/jpeg", Data: []byte{0xff}}, nil
}

type fakeProvider struct {
	fragments []string
	err       error
	calls     int
	lastReq   llm.GenerateRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) StreamGenerate(ctx context.Context, req llm.GenerateRequest, onFragment func(string)) (string, error) {
	f.calls++
	f.lastReq = req
	var full strings.Builder
	for _, frag := range f.fragments {
		full.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
	return full.String(), f.err
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeProvider) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := store.OpenBlobStore(filepath.Join(dir, "blobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = blobs.Close() })

	state := app.NewState()
	ctrl := session.NewController(state, store.NewSessionStore(filepath.Join(dir, "sessions.json")), blobs)
	if _, err := ctrl.Init(); err != nil {
		t.Fatal(err)
	}

	provider := &fakeProvider{fragments: []string{"The answer ", "is 42."}}
	state.Provider = provider
	state.Doc = &fakeDoc{pages: 50}
	state.ActiveSession().PDFFileName = "fake.pdf"

	return NewOrchestrator(state, ctrl), provider
}

func pageRange(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

func TestAsk_RequiresProvider(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.State.Provider = nil
	o.State.SetSelectedPages([]int{1})

	_, err := o.Ask(context.Background(), "question", Callbacks{})
	if !errors.Is(err, ErrCredentials) {
		t.Errorf("Expected ErrCredentials, got %v", err)
	}
}

func TestAsk_RejectsEmptyQuestion(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	o.State.SetSelectedPages([]int{1})

	_, err := o.Ask(context.Background(), "   \n ", Callbacks{})
	if !errors.Is(err, ErrNoQuestion) {
		t.Errorf("Expected ErrNoQuestion, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("No network call may be issued for a rejected request")
	}
}

func TestAsk_RejectsZeroSelectedPages(t *testing.T) {
	o, provider := newTestOrchestrator(t)

	_, err := o.Ask(context.Background(), "what is this?", Callbacks{})
	if !errors.Is(err, ErrNoPagesSelected) {
		t.Errorf("Expected ErrNoPagesSelected, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("No network call may be issued for a rejected request")
	}
}

func TestAsk_RejectsTooManyPages(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	o.State.SetSelectedPages(pageRange(MaxSelectedPages + 1))

	_, err := o.Ask(context.Background(), "what is this?", Callbacks{})
	if !errors.Is(err, ErrTooManyPages) {
		t.Errorf("Expected ErrTooManyPages, got %v", err)
	}
	if provider.calls != 0 {
		t.Error("No network call may be issued for a rejected request")
	}
}

func TestAsk_ExactlyMaxPagesAccepted(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	o.State.SetSelectedPages(pageRange(MaxSelectedPages))

	if _, err := o.Ask(context.Background(), "summarize", Callbacks{}); err != nil {
		t.Fatalf("Ask() with exactly %d pages error = %v", MaxSelectedPages, err)
	}
	if provider.calls != 1 {
		t.Errorf("Expected one provider call, got %d", provider.calls)
	}
	if len(provider.lastReq.Images) != MaxSelectedPages {
		t.Errorf("Expected %d images, got %d", MaxSelectedPages, len(provider.lastReq.Images))
	}
}

func TestAsk_NoDocumentYieldsNoImagesError(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.State.Doc = nil
	o.State.SetSelectedPages([]int{1, 2})

	_, err := o.Ask(context.Background(), "question", Callbacks{})
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("Expected ErrNoImages, got %v", err)
	}
}

func TestAsk_StreamsAndAppendsTurn(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	o.State.SetSelectedPages([]int{3, 1})

	var streamed strings.Builder
	full, err := o.Ask(context.Background(), "What is the answer?", Callbacks{
		OnFragment: func(f string) { streamed.WriteString(f) },
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if full != "The answer is 42." || streamed.String() != full {
		t.Errorf("Streamed %q, returned %q", streamed.String(), full)
	}

	// Images must arrive in document order.
	if provider.lastReq.Images[0].Page != 1 || provider.lastReq.Images[1].Page != 3 {
		t.Errorf("Images out of document order: %v", provider.lastReq.Images)
	}
	if !strings.Contains(provider.lastReq.System, "fake.pdf") {
		t.Error("System instruction should name the document")
	}

	sess := o.State.ActiveSession()
	if len(sess.History) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(sess.History))
	}
	if sess.History[0].ModelResponse != full {
		t.Error("Turn response not recorded")
	}

	// The turn must be persisted, not just in memory.
	restored, _, err := o.Sessions.Store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(restored) == 0 || len(restored[0].History) != 1 {
		t.Error("Completed turn was not persisted")
	}
}

func TestAsk_FirstTurnRetitlesSession(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.State.SetSelectedPages([]int{1})

	prompt := strings.Repeat("z", 60)
	if _, err := o.Ask(context.Background(), prompt, Callbacks{}); err != nil {
		t.Fatal(err)
	}

	want := strings.Repeat("z", 40) + "..."
	if got := o.State.ActiveSession().Title; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestAsk_EmptyResponseIsFailure(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	provider.fragments = nil
	o.State.SetSelectedPages([]int{1})

	_, err := o.Ask(context.Background(), "question", Callbacks{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
	if len(o.State.ActiveSession().History) != 0 {
		t.Error("Failed turn must not be appended to history")
	}
}

func TestAsk_CredentialErrorsAreFlagged(t *testing.T) {
	o, provider := newTestOrchestrator(t)
	provider.err = fmt.Errorf("googleapi: Error 400: API key not valid")
	o.State.SetSelectedPages([]int{1})

	_, err := o.Ask(context.Background(), "question", Callbacks{})
	if !errors.Is(err, ErrCredentials) {
		t.Errorf("Expected credential-flagged error, got %v", err)
	}
}

func TestAsk_ProgressFiresPerPage(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	o.State.SetSelectedPages([]int{1, 2, 3, 4, 5})

	var calls int
	_, err := o.Ask(context.Background(), "question", Callbacks{
		OnProgress: func(done, total int) { calls++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 progress calls, got %d", calls)
	}
}
