package llm

import "sort"

// ObjectSchema builds a strict JSON schema object: every property is required and no
// others are allowed, as OpenAI structured output demands
func ObjectSchema(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// ArraySchema builds a JSON schema array of items
func ArraySchema(items map[string]any) map[string]any {
	return map[string]any{
		"type":  "array",
		"items": items,
	}
}

// TypeSchema builds a scalar JSON schema ("string", "number", "integer", "boolean")
func TypeSchema(typ string) map[string]any {
	return map[string]any{"type": typ}
}
