package speech

import (
	"context"
	"log"
	"sync"
	"time"
)

// chunkPacing is the pause between consecutive utterances. Gives the
// engine time to settle and keeps cancellation responsive between chunks.
const chunkPacing = 150 * time.Millisecond

// Engine speaks one utterance, blocking until it finishes or ctx is
// cancelled.
type Engine interface {
	Speak(ctx context.Context, text string) error
}

// Speaker plays arbitrary-length text as a sequence of capped chunks. Only
// one playback is active at a time; starting a new one force-stops the
// previous. Stop is synchronous from the caller's perspective: Playing()
// reports false immediately, even while an in-flight engine call winds down.
type Speaker struct {
	engine Engine
	pacing time.Duration

	mu      sync.Mutex
	playing bool
	stopped bool
	gen     int
	cancel  context.CancelFunc

	// OnDone, if set, fires when a playback finishes or is stopped.
	OnDone func()
}

// NewSpeaker creates a Speaker over the given engine.
func NewSpeaker(engine Engine) *Speaker {
	return &Speaker{engine: engine, pacing: chunkPacing}
}

// Speak starts playback of text, force-stopping any active playback first.
func (s *Speaker) Speak(text string) {
	s.Stop()

	chunks := ChunkText(text, MaxChunkLen)
	if len(chunks) == 0 || s.engine == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.playing = true
	s.stopped = false
	s.cancel = cancel
	s.mu.Unlock()

	go s.play(ctx, gen, chunks)
}

// Stop halts playback. The stopped flag is observed before each chunk
// dispatch, and the context interrupts the engine where it supports it.
func (s *Speaker) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.playing = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Playing reports whether a playback is currently active.
func (s *Speaker) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Speaker) play(ctx context.Context, gen int, chunks []string) {
	defer s.finish(gen)

	for _, chunk := range chunks {
		if s.dismissed(gen) || ctx.Err() != nil {
			return
		}
		if err := s.engine.Speak(ctx, chunk); err != nil {
			if ctx.Err() == nil {
				log.Printf("speech playback failed: %v", err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pacing):
		}
	}
}

func (s *Speaker) dismissed(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped || s.gen != gen
}

func (s *Speaker) finish(gen int) {
	s.mu.Lock()
	if s.gen == gen {
		s.playing = false
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
	done := s.OnDone
	s.mu.Unlock()

	if done != nil {
		done()
	}
}
