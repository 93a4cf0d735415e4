package observability

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/config"
	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
	"github.com/henomis/langfuse-go/model"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	usage := llm.Usage{InputTokens: 2000, OutputTokens: 1000, TotalTokens: 3000}

	tests := []struct {
		model string
		want  float64
	}{
		{"gpt-5-mini", 2*gpt5MiniInputPrice + gpt5MiniOutputPrice},
		{"GPT-5", 2*gpt5InputPrice + gpt5OutputPrice},
		{"gemini-2.5-flash", 2*geminiFlashInputPrice + geminiFlashOutputPrice},
		{"unknown-model", 2*gpt5MiniInputPrice + gpt5MiniOutputPrice},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, usage), 1e-12)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.001250", FormatCost(0.00125))
}

func TestUsageFor(t *testing.T) {
	u := UsageFor("gpt-5-mini", llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	assert.Equal(t, 10, u.Input)
	assert.Equal(t, 5, u.Output)
	assert.Equal(t, 15, u.Total)
	assert.Equal(t, model.ModelUsageUnitTokens, u.Unit)
	assert.Greater(t, u.TotalCost, 0.0)
}

func TestDisabledLangfuseIsInert(t *testing.T) {
	ctx := context.Background()
	client := InitializeLangfuse(ctx, &config.Config{LangfuseEnabled: false})
	assert.False(t, client.IsEnabled())

	trace := client.StartTrace(ctx, "composition", nil)
	assert.Empty(t, trace.ID())

	gen := trace.Generation("classify", nil)
	gen.LogResponse("prompt", &llm.GenerationResponse{RawOutput: "{}", Model: "gpt-5-mini"})
	gen.Metadata(map[string]interface{}{"k": "v"})
	gen.Finish()
	trace.Finish()
}

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceFromContext(ctx).ID())

	trace := &Trace{enabled: false, ctx: ctx}
	assert.Same(t, trace, TraceFromContext(ContextWithTrace(ctx, trace)))
}
