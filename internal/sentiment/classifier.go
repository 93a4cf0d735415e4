package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/observability"
	"github.com/Conceptual-Machines/moodsic-api/internal/prompt"
	"gonum.org/v1/gonum/floats"
)

// ConfidenceThreshold is the minimum normalized score the top sentiment needs;
// anything less falls back to neutral
const ConfidenceThreshold = 0.4

const schemaName = "sentiment_scores"

// ErrEmptyPrompt is returned for blank input
var ErrEmptyPrompt = errors.New("prompt is empty")

// Result is the outcome of one classification
type Result struct {
	Sentiment  models.Sentiment             `json:"sentiment"`
	Confidence float64                      `json:"confidence"`
	Scores     map[models.Sentiment]float64 `json:"scores"`
}

// Classifier maps free text onto one of the nine sentiments using an LLM
type Classifier struct {
	provider     llm.Provider
	model        string
	systemPrompt string
}

// NewClassifier builds a classifier around a provider
func NewClassifier(provider llm.Provider, model string) (*Classifier, error) {
	systemPrompt, err := prompt.NewPromptLoader().GetSentimentClassifierPrompt()
	if err != nil {
		return nil, err
	}
	return &Classifier{
		provider:     provider,
		model:        model,
		systemPrompt: systemPrompt,
	}, nil
}

// Classify scores the text and picks the dominant sentiment
func (c *Classifier) Classify(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyPrompt
	}

	request := &llm.GenerationRequest{
		Model:         c.model,
		SystemPrompt:  c.systemPrompt,
		Messages:      []llm.Message{{Role: llm.RoleUser, Content: text}},
		ReasoningMode: "minimal",
		OutputSchema: &llm.OutputSchema{
			Name:        schemaName,
			Description: "Per-sentiment scores between 0 and 1",
			Schema:      scoresSchema(),
		},
	}

	gen := observability.TraceFromContext(ctx).Generation("sentiment.classify", nil)
	defer gen.Finish()

	resp, err := c.provider.Generate(ctx, request)
	if err != nil {
		gen.SetLevel("ERROR")
		return Result{}, fmt.Errorf("classify sentiment: %w", err)
	}
	gen.LogResponse(text, resp)

	var out struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(resp.RawOutput), &out); err != nil {
		logger.Warn("Unparseable classifier output", logger.Fields{"output": llm.Truncate(resp.RawOutput, 200)})
		return Result{}, fmt.Errorf("decode classifier output: %w", err)
	}

	result := Decide(out.Scores)
	logger.Debug("Sentiment classified", logger.Fields{
		"sentiment":  result.Sentiment.String(),
		"confidence": result.Confidence,
	})
	return result, nil
}

// Decide normalizes raw scores into a distribution and applies the confidence
// threshold. Unknown keys are ignored and negative scores count as zero.
func Decide(raw map[string]float64) Result {
	all := models.AllSentiments()
	values := make([]float64, len(all))
	for i, s := range all {
		if v := raw[string(s)]; v > 0 {
			values[i] = v
		}
	}

	scores := make(map[models.Sentiment]float64, len(all))
	total := floats.Sum(values)
	if total == 0 {
		for _, s := range all {
			scores[s] = 0
		}
		return Result{Sentiment: models.SentimentNeutral, Confidence: 0, Scores: scores}
	}

	floats.Scale(1/total, values)
	for i, s := range all {
		scores[s] = values[i]
	}

	best := floats.MaxIdx(values)
	result := Result{Sentiment: all[best], Confidence: values[best], Scores: scores}
	if result.Confidence < ConfidenceThreshold {
		result.Sentiment = models.SentimentNeutral
	}
	return result
}

func scoresSchema() map[string]any {
	props := make(map[string]any, len(models.AllSentiments()))
	for _, s := range models.AllSentiments() {
		props[string(s)] = llm.TypeSchema("number")
	}
	return llm.ObjectSchema(map[string]any{
		"scores": llm.ObjectSchema(props),
	})
}
