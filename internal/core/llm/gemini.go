package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gemini-1.5-flash"

// GeminiProvider implements StreamProvider against the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider from an API key. The key is the only
// credential; a missing key should be caught by the caller before this.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// StreamGenerate implements StreamProvider
func (p *GeminiProvider) StreamGenerate(ctx context.Context, req GenerateRequest, onFragment func(string)) (string, error) {
	model := p.client.GenerativeModel(p.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	parts := make([]genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData(imageFormat(img.MIME), img.Data))
	}
	parts = append(parts, genai.Text(req.Question))

	iter := model.GenerateContentStream(ctx, parts...)

	var full strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return full.String(), fmt.Errorf("gemini generation failed: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				text, ok := part.(genai.Text)
				if !ok || len(text) == 0 {
					continue
				}
				full.WriteString(string(text))
				if onFragment != nil {
					onFragment(string(text))
				}
			}
		}
	}
	return full.String(), nil
}

// Name implements StreamProvider
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// imageFormat converts a MIME type like "image/jpeg" to the bare format
// name the SDK expects.
func imageFormat(mime string) string {
	if _, format, ok := strings.Cut(mime, "/"); ok {
		return format
	}
	return mime
}
