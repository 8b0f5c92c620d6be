package speech

import (
	"context"
	"errors"
	"sync"
)

// Known terminal failures of a capture session. Each maps to placeholder
// text shown in place of a transcript.
var (
	ErrNoSpeech     = errors.New("no speech detected")
	ErrAudioCapture = errors.New("audio capture failed")
	ErrNotAllowed   = errors.New("microphone permission denied")
)

// PlaceholderFor maps a capture failure to the user-facing placeholder
// shown in the input field. Unknown errors get a generic placeholder.
func PlaceholderFor(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return "(No speech was detected)"
	case errors.Is(err, ErrAudioCapture):
		return "(Microphone is not available)"
	case errors.Is(err, ErrNotAllowed):
		return "(Microphone permission was denied)"
	default:
		return "(Speech recognition failed)"
	}
}

// CaptureEngine records a single utterance and returns its transcript,
// blocking until the utterance ends or ctx is cancelled.
type CaptureEngine interface {
	Listen(ctx context.Context) (string, error)
}

// Recognizer wraps a single-shot capture session. One session at a time;
// the result callback receives either the transcript or a placeholder, and
// the end callback always fires so the caller can re-enable input.
type Recognizer struct {
	engine CaptureEngine

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

// NewRecognizer creates a Recognizer over the given capture engine.
func NewRecognizer(engine CaptureEngine) *Recognizer {
	return &Recognizer{engine: engine}
}

// Active reports whether a capture session is in progress.
func (r *Recognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Start begins a single-utterance capture. onResult receives the transcript
// or, for a known failure, its placeholder text. onEnd fires exactly once
// when the session terminates, with failed=true if an error occurred.
func (r *Recognizer) Start(onResult func(text string), onEnd func(failed bool)) error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return errors.New("capture already in progress")
	}
	if r.engine == nil {
		r.mu.Unlock()
		return errors.New("no capture engine configured")
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.active = true
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		text, err := r.engine.Listen(ctx)

		r.mu.Lock()
		r.active = false
		r.cancel = nil
		r.mu.Unlock()
		cancel()

		if err != nil {
			if onResult != nil {
				onResult(PlaceholderFor(err))
			}
			if onEnd != nil {
				onEnd(true)
			}
			return
		}
		if onResult != nil {
			onResult(text)
		}
		if onEnd != nil {
			onEnd(false)
		}
	}()
	return nil
}

// Stop aborts an in-progress capture session, if any.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
