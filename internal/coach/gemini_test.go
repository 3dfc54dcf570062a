package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	prompt string
	config *genai.GenerateContentConfig
	model  string
	reply  string
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}},
		}},
	}, nil
}

func TestGeminiDrillRequest(t *testing.T) {
	fake := &fakeModels{reply: "  Quick pepper quips.  "}
	g := &GeminiGenerator{models: fake, model: DefaultModel}
	text, err := g.Drill(context.Background(), []rune{'q', 'p'})
	require.NoError(t, err)
	assert.Equal(t, "Quick pepper quips.", text)
	assert.Equal(t, DefaultModel, fake.model)
	assert.True(t, strings.Contains(fake.prompt, "keys: Q, P."), fake.prompt)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.8, *fake.config.Temperature, 1e-6)
	assert.EqualValues(t, 200, fake.config.MaxOutputTokens)
}

func TestGeminiSpeedDrillErrors(t *testing.T) {
	g := &GeminiGenerator{models: &fakeModels{err: errors.New("unavailable")}, model: DefaultModel}
	_, err := g.SpeedDrill(context.Background())
	require.Error(t, err)

	g = &GeminiGenerator{models: &fakeModels{reply: "   "}, model: DefaultModel}
	_, err = g.SpeedDrill(context.Background())
	require.Error(t, err)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoGenerator)
}
