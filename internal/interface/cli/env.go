package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/docpilot/docchat/internal/core/app"
	"github.com/docpilot/docchat/internal/core/chat"
	"github.com/docpilot/docchat/internal/core/config"
	"github.com/docpilot/docchat/internal/core/llm"
	"github.com/docpilot/docchat/internal/core/session"
	"github.com/docpilot/docchat/internal/core/speech"
	"github.com/docpilot/docchat/internal/core/store"
)

// runtime bundles everything a command needs: config, stores, application
// state, and the controllers over them.
type runtime struct {
	cfg      *config.Config
	state    *app.State
	sessions *session.Controller
	orch     *chat.Orchestrator
	blobs    *store.BlobStore
	provider *llm.GeminiProvider
}

// openRuntime wires the application together from the data directory.
// A missing API key is not an error here; commands that need the model
// check state.Provider themselves.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		// Broken config falls back to defaults rather than blocking.
		log.Printf("config problem, using defaults: %v", err)
	}

	blobs, err := store.OpenBlobStore(config.BlobsPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	state := app.NewState()
	ctrl := session.NewController(state, store.NewSessionStore(config.SessionsPath(dataDir)), blobs)
	if _, err := ctrl.Init(); err != nil {
		_ = blobs.Close()
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		state:    state,
		sessions: ctrl,
		blobs:    blobs,
	}

	if key := cfg.ResolveAPIKey(); key != "" {
		provider, err := llm.NewGeminiProvider(ctx, key, cfg.Model)
		if err != nil {
			log.Printf("failed to initialize model client: %v", err)
		} else {
			rt.provider = provider
			state.Provider = provider
		}
	}

	rt.orch = chat.NewOrchestrator(state, ctrl)
	rt.orch.SystemTemplate = cfg.SystemPrompt
	return rt, nil
}

// speaker builds the text-to-speech controller, preferring the configured
// command over platform detection.
func (rt *runtime) speaker() (*speech.Speaker, error) {
	if engine := speech.NewExecEngine(rt.cfg.TTSCommand); engine != nil {
		return speech.NewSpeaker(engine), nil
	}
	engine, err := speech.DetectEngine()
	if err != nil {
		return nil, err
	}
	return speech.NewSpeaker(engine), nil
}

func (rt *runtime) close() {
	rt.state.StopSpeech()
	rt.state.CloseDocument()
	if rt.provider != nil {
		_ = rt.provider.Close()
	}
	if err := rt.blobs.Close(); err != nil {
		log.Printf("failed to close blob store: %v", err)
	}
}
