package gservice

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hal9000y/meetnotes/internal/provider"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Low temperature keeps summaries close to deterministic.
const summaryTemperature float32 = 0.2

// GeminiOptions configures the completion client.
type GeminiOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
}

// NewGemini creates a Gemini completion client. A missing API key is only
// reported when Complete is called.
func NewGemini(opts GeminiOptions) *Gemini {
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	return &Gemini{opts: opts}
}

// Gemini runs single-shot text completions.
type Gemini struct {
	opts GeminiOptions
}

// Model returns the model identifier requests are sent to.
func (g *Gemini) Model() string {
	return g.opts.Model
}

// Complete sends one request with the given system instruction and user text
// and returns the first candidate's text. A successful response without
// content yields an empty string.
func (g *Gemini) Complete(ctx context.Context, system, user string) (string, error) {
	if g.opts.APIKey == "" {
		return "", provider.Missing("GEMINI_API_KEY")
	}

	cc := &genai.ClientConfig{
		APIKey:  g.opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", provider.Wrap("gemini", fmt.Errorf("genai.NewClient failed: %w", err))
	}

	result, err := client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(summaryTemperature),
	})
	if err != nil {
		return "", provider.Wrap("gemini", fmt.Errorf("models.GenerateContent failed: %w", err))
	}

	return firstCandidateText(result), nil
}

func firstCandidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return sb.String()
}
