package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of llm.Provider
type MockProvider struct {
	generateFunc func(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error)
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	return m.generateFunc(ctx, request)
}

func replying(output string) *MockProvider {
	return &MockProvider{generateFunc: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
		return &llm.GenerationResponse{RawOutput: output, Model: "gpt-5-mini"}, nil
	}}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]float64
		want       models.Sentiment
		confidence float64
	}{
		{name: "clear winner", raw: map[string]float64{"joy": 0.8, "trust": 0.2}, want: models.SentimentJoy, confidence: 0.8},
		{name: "unnormalized", raw: map[string]float64{"fear": 6, "sadness": 4}, want: models.SentimentFear, confidence: 0.6},
		{name: "exact threshold", raw: map[string]float64{"anger": 0.4, "joy": 0.3, "trust": 0.3}, want: models.SentimentAnger, confidence: 0.4},
		{name: "below threshold", raw: map[string]float64{"anger": 0.35, "joy": 0.33, "trust": 0.32}, want: models.SentimentNeutral, confidence: 0.35},
		{name: "all zero", raw: map[string]float64{}, want: models.SentimentNeutral, confidence: 0},
		{name: "negatives and unknown keys ignored", raw: map[string]float64{"surprise": 1, "joy": -3, "bliss": 9}, want: models.SentimentSurprise, confidence: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.raw)
			assert.Equal(t, tt.want, got.Sentiment)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Len(t, got.Scores, 9)
		})
	}
}

func TestClassify(t *testing.T) {
	var seen *llm.GenerationRequest
	provider := &MockProvider{generateFunc: func(_ context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
		seen = request
		return &llm.GenerationResponse{RawOutput: `{"scores": {"sadness": 0.7, "fear": 0.3}}`, Model: request.Model}, nil
	}}

	c, err := NewClassifier(provider, "gpt-5-mini")
	require.NoError(t, err)

	result, err := c.Classify(context.Background(), "  the rain will not stop  ")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentSadness, result.Sentiment)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)

	require.NotNil(t, seen)
	assert.Equal(t, "gpt-5-mini", seen.Model)
	assert.Equal(t, "the rain will not stop", seen.Messages[0].Content)
	require.NotNil(t, seen.OutputSchema)
	assert.NotEmpty(t, seen.SystemPrompt)
}

func TestClassifyErrors(t *testing.T) {
	t.Run("empty prompt", func(t *testing.T) {
		c, err := NewClassifier(replying(`{}`), "m")
		require.NoError(t, err)
		_, err = c.Classify(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	})

	t.Run("provider failure", func(t *testing.T) {
		boom := errors.New("rate limited")
		c, err := NewClassifier(&MockProvider{generateFunc: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
			return nil, boom
		}}, "m")
		require.NoError(t, err)
		_, err = c.Classify(context.Background(), "hello")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("bad output", func(t *testing.T) {
		c, err := NewClassifier(replying(`not json`), "m")
		require.NoError(t, err)
		_, err = c.Classify(context.Background(), "hello")
		assert.Error(t, err)
	})
}
