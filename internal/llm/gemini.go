package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiOptions configures the Gemini client. Zero sampling values fall back
// to the defaults the assistant was tuned with.
type GeminiOptions struct {
	APIKey          string
	Model           string
	BaseURL         string // tests point this at an httptest server
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Gemini implements ContentGenerator on the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

var _ ContentGenerator = (*Gemini)(nil)

// NewGemini creates a client. The API key is required.
func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  opts.Model,
		config: generationConfig(opts),
	}, nil
}

func generationConfig(opts GeminiOptions) *genai.GenerateContentConfig {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.4
	}
	topP := opts.TopP
	if topP == 0 {
		topP = 1
	}
	topK := opts.TopK
	if topK == 0 {
		topK = 32
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopP:            genai.Ptr(topP),
		TopK:            genai.Ptr(topK),
		MaxOutputTokens: maxTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
}

// Generate sends the instruction and payload as one user turn.
func (g *Gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(p.Instruction)}
	if p.Text != "" {
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	if p.Media != nil {
		parts = append(parts, genai.NewPartFromBytes(p.Media.Data, p.Media.MIMEType))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		g.config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }
