package llm

import (
	"context"
)

// Provider defines the interface for LLM providers.
// Providers must enforce OutputSchema so responses can be decoded as JSON.
type Provider interface {
	// Generate runs one structured-output request
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// Message roles
const (
	RoleUser      = "user"
	RoleDeveloper = "developer"
)

// Message is one input turn
type Message struct {
	Role    string
	Content string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	SystemPrompt  string
	Messages      []Message
	ReasoningMode string
	OutputSchema  *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// Usage is the provider-neutral token count of one call
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string `json:"-"` // JSON text conforming to the request's OutputSchema
	Usage     Usage  `json:"usage"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}
