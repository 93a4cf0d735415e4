package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	providerNameOpenAI = "openai"
	maxOutputTrunc     = 200

	reasoningMinimal = "minimal"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
)

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider. Extra options are passed to the
// client, e.g. option.WithBaseURL for a proxy.
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *OpenAIProvider {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate runs a JSON-schema constrained request through the Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	textOutput := strings.TrimSpace(resp.OutputText())
	log.Printf("📥 OPENAI RESPONSE: output_length=%d, tokens=%d, output=%s", len(textOutput), resp.Usage.TotalTokens, Truncate(textOutput, maxOutputTrunc))

	if textOutput == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	usage := Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (input=%d, output=%d)",
		time.Since(startTime), usage.InputTokens, usage.OutputTokens)

	transaction.SetTag("success", "true")
	return &GenerationResponse{
		RawOutput: textOutput,
		Usage:     usage,
		Provider:  providerNameOpenAI,
		Model:     request.Model,
	}, nil
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}
	for _, msg := range request.Messages {
		if msg.Content == "" {
			log.Printf("⚠️  Skipping empty %s message", msg.Role)
			continue
		}

		role := responses.EasyInputMessageRoleUser
		if msg.Role == RoleDeveloper {
			role = responses.EasyInputMessageRoleDeveloper
		}
		inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(msg.Content, role))
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions: openai.String(request.SystemPrompt),
	}

	// only the GPT-5 family accepts a reasoning effort
	if strings.HasPrefix(request.Model, "gpt-5") {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		}
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", request.OutputSchema.Name)
	}

	return params
}

func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningMinimal:
		return shared.ReasoningEffort(reasoningMinimal)
	case reasoningMedium:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	default:
		return responses.ReasoningEffortLow
	}
}

// Truncate shortens s to at most maxLen characters for logging. It never splits a
// multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
