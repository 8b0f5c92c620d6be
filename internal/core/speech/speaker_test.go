package speech

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeEngine records utterances and can block until released.
type fakeEngine struct {
	mu     sync.Mutex
	spoken []string
	delay  time.Duration
}

func (f *fakeEngine) Speak(ctx context.Context, text string) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) utterances() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func waitForDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for playback to finish")
	}
}

func TestSpeaker_PlaysChunksSequentially(t *testing.T) {
	engine := &fakeEngine{}
	s := NewSpeaker(engine)
	s.pacing = time.Millisecond

	done := make(chan struct{})
	s.OnDone = func() { close(done) }

	s.Speak("First sentence. Second sentence. " + strings.Repeat("x", 250))
	waitForDone(t, done)

	spoken := engine.utterances()
	if len(spoken) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(spoken))
	}
	if !strings.HasPrefix(spoken[0], "First sentence.") {
		t.Errorf("Chunks out of order, first was %q", spoken[0])
	}
	if s.Playing() {
		t.Error("Playing() should be false after completion")
	}
}

func TestSpeaker_StopIsSynchronous(t *testing.T) {
	engine := &fakeEngine{delay: 200 * time.Millisecond}
	s := NewSpeaker(engine)

	s.Speak("A long first sentence that will still be in flight. And a second one.")
	if !s.Playing() {
		t.Fatal("Playing() should be true right after Speak")
	}

	s.Stop()
	if s.Playing() {
		t.Error("Playing() must report false immediately after Stop")
	}
}

func TestSpeaker_StopPreventsFurtherChunks(t *testing.T) {
	engine := &fakeEngine{delay: 20 * time.Millisecond}
	s := NewSpeaker(engine)
	s.pacing = time.Millisecond

	done := make(chan struct{})
	s.OnDone = func() { close(done) }

	s.Speak("One. Two. Three. " + strings.Repeat("y", 500))
	s.Stop()
	waitForDone(t, done)

	// The stop flag is checked before each dispatch, so at most the chunk
	// already in flight can have completed.
	if n := len(engine.utterances()); n > 1 {
		t.Errorf("Expected at most 1 utterance after immediate Stop, got %d", n)
	}
}

func TestSpeaker_NewSpeakForceStopsPrevious(t *testing.T) {
	engine := &fakeEngine{delay: 10 * time.Millisecond}
	s := NewSpeaker(engine)
	s.pacing = time.Millisecond

	var mu sync.Mutex
	finished := 0
	allDone := make(chan struct{})
	s.OnDone = func() {
		mu.Lock()
		finished++
		if finished == 2 {
			close(allDone)
		}
		mu.Unlock()
	}

	s.Speak(strings.Repeat("First playback sentence. ", 30))
	s.Speak("Replacement.")
	waitForDone(t, allDone)

	spoken := engine.utterances()
	if len(spoken) == 0 || spoken[len(spoken)-1] != "Replacement." {
		t.Errorf("Replacement playback should speak last, got %v", spoken)
	}
}

func TestSpeaker_EmptyTextIsNoop(t *testing.T) {
	s := NewSpeaker(&fakeEngine{})
	s.Speak("   ")
	if s.Playing() {
		t.Error("Whitespace-only text should not start playback")
	}
}
