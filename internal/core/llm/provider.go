package llm

import (
	"context"

	"github.com/docpilot/docchat/internal/core/pdf"
)

// StreamProvider is the interface for streaming model backends
type StreamProvider interface {
	// StreamGenerate runs one generation request, invoking onFragment for
	// each text fragment as it arrives, and returns the accumulated text.
	StreamGenerate(ctx context.Context, req GenerateRequest, onFragment func(fragment string)) (string, error)

	// Name returns the provider name (e.g., "gemini")
	Name() string
}

// GenerateRequest carries one question plus the page images it is about.
// Images are expected in document order; the provider sends them before the
// question text.
type GenerateRequest struct {
	System   string
	Question string
	Images   []pdf.ImagePart
}
