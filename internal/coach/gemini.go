package coach

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for drills.
const DefaultModel = "gemini-2.5-flash"

const (
	drillSystem = "You are a professional typing coach. Generate focused, natural-language typing drills."
	speedSystem = "You are a professional typing coach specializing in speed training."

	drillPrompt = `Generate a 50-word typing drill (plain English, no code or special formatting) that focuses on improving accuracy for the keys: %s.

Requirements:
- Exactly 50 words
- Use common, natural words that contain these letters frequently
- Natural sentence structure, not word lists
- Avoid contractions, numbers, or special characters

Return ONLY the drill text.`

	speedPrompt = `Generate a 50-word speed drill for an advanced typist with excellent accuracy.

Requirements:
- Exactly 50 words of common, short words (3-6 letters average)
- Natural sentences, not word lists
- No special characters or numbers

Return ONLY the drill text.`
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator asks Gemini for drills.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// NewGeminiGenerator creates a generator. It fails when apiKey is empty.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNoGenerator
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

// Drill implements Generator.
func (g *GeminiGenerator) Drill(ctx context.Context, keys []rune) (string, error) {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.ToUpper(string(k))
	}
	return g.generate(ctx, fmt.Sprintf(drillPrompt, strings.Join(names, ", ")), drillSystem, 0.8, 200)
}

// SpeedDrill implements Generator.
func (g *GeminiGenerator) SpeedDrill(ctx context.Context) (string, error) {
	return g.generate(ctx, speedPrompt, speedSystem, 0.7, 150)
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt, system string, temperature float32, maxTokens int32) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate drill: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("failed to generate drill: empty response")
	}
	return text, nil
}
