package observability

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
)

// Pricing constants (USD per 1K tokens)
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	gpt5InputPrice  = 0.00125
	gpt5OutputPrice = 0.01

	gpt5MiniInputPrice  = 0.00025
	gpt5MiniOutputPrice = 0.002

	gpt5NanoInputPrice  = 0.00005
	gpt5NanoOutputPrice = 0.0004

	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006

	geminiFlashInputPrice  = 0.0003
	geminiFlashOutputPrice = 0.0025
)

// defaultPricingModel prices models missing from the table
const defaultPricingModel = "gpt-5-mini"

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the models the classifier and lyric generator use
var PricingTable = map[string]ModelPricing{
	"gpt-5":            {InputPricePer1K: gpt5InputPrice, OutputPricePer1K: gpt5OutputPrice},
	"gpt-5-mini":       {InputPricePer1K: gpt5MiniInputPrice, OutputPricePer1K: gpt5MiniOutputPrice},
	"gpt-5-nano":       {InputPricePer1K: gpt5NanoInputPrice, OutputPricePer1K: gpt5NanoOutputPrice},
	"gpt-4o-mini":      {InputPricePer1K: gpt4oMiniInputPrice, OutputPricePer1K: gpt4oMiniOutputPrice},
	"gemini-2.5-flash": {InputPricePer1K: geminiFlashInputPrice, OutputPricePer1K: geminiFlashOutputPrice},
}

// CalculateCost calculates the cost in USD of one LLM call
func CalculateCost(model string, usage llm.Usage) float64 {
	pricing, exists := PricingTable[strings.ToLower(model)]
	if !exists {
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
