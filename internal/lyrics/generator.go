package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/observability"
	"github.com/Conceptual-Machines/moodsic-api/internal/prompt"
)

const (
	// VerseLength is the number of words kept per verse
	VerseLength = 8
	// MaxRounds bounds how many times the model is asked for more candidates
	MaxRounds = 3

	schemaName = "song_verses"
)

// ErrNotEnoughVerses is returned when the round budget runs out first
var ErrNotEnoughVerses = errors.New("not enough acceptable verses")

var replacements = []struct {
	pattern *regexp.Regexp
	with    string
}{
	{regexp.MustCompile(`\bi\b`), "I"},
	{regexp.MustCompile(`\bim\b`), "I'm"},
	{regexp.MustCompile(`\bid\b`), "I'd"},
	{regexp.MustCompile(`\baint\b`), "ain't"},
	{regexp.MustCompile(`\bdont\b`), "don't"},
	{regexp.MustCompile(`\bcant\b`), "can't"},
	{regexp.MustCompile(`\bdick\b`), "d**k"},
	{regexp.MustCompile(`\bfuck\b`), "f**k"},
	{regexp.MustCompile(`\bshit\b`), "s**t"},
	{regexp.MustCompile(`\bbitch\b`), "b***h"},
}

// Generator writes verses for a sentiment using an LLM
type Generator struct {
	provider     llm.Provider
	model        string
	systemPrompt string
	rounds       int
}

// NewGenerator builds a lyric generator around a provider
func NewGenerator(provider llm.Provider, model string) (*Generator, error) {
	systemPrompt, err := prompt.NewPromptLoader().GetLyricsPrompt()
	if err != nil {
		return nil, err
	}
	return &Generator{
		provider:     provider,
		model:        model,
		systemPrompt: systemPrompt,
		rounds:       MaxRounds,
	}, nil
}

// Generate returns nVerses beautified verses
func (g *Generator) Generate(ctx context.Context, sentiment models.Sentiment, nVerses int) ([]string, error) {
	if nVerses <= 0 {
		return nil, nil
	}

	var accepted []string
	previous := ""
	for round := 1; round <= g.rounds && len(accepted) < nVerses; round++ {
		candidates, err := g.candidates(ctx, sentiment, nVerses-len(accepted), round)
		if err != nil {
			return nil, err
		}

		for _, candidate := range candidates {
			verse := Normalize(candidate)
			if !Acceptable(verse, previous) {
				continue
			}
			previous = verse
			accepted = append(accepted, Beautify(verse))
			if len(accepted) == nVerses {
				break
			}
		}
		logger.Debug("Lyric round finished", logger.Fields{
			"round":     round,
			"sentiment": sentiment.String(),
			"accepted":  len(accepted),
		})
	}

	if len(accepted) < nVerses {
		return accepted, fmt.Errorf("%w: got %d of %d", ErrNotEnoughVerses, len(accepted), nVerses)
	}
	return accepted, nil
}

func (g *Generator) candidates(ctx context.Context, sentiment models.Sentiment, want, round int) ([]string, error) {
	message := fmt.Sprintf("Write %d verses that feel like %s.", want, sentiment)
	request := &llm.GenerationRequest{
		Model:         g.model,
		SystemPrompt:  g.systemPrompt,
		Messages:      []llm.Message{{Role: llm.RoleUser, Content: message}},
		ReasoningMode: "low",
		OutputSchema: &llm.OutputSchema{
			Name:        schemaName,
			Description: "Candidate song verses",
			Schema: llm.ObjectSchema(map[string]any{
				"verses": llm.ArraySchema(llm.TypeSchema("string")),
			}),
		},
	}

	gen := observability.TraceFromContext(ctx).Generation("lyrics.generate", map[string]interface{}{
		"round":     round,
		"sentiment": sentiment.String(),
	})
	defer gen.Finish()

	resp, err := g.provider.Generate(ctx, request)
	if err != nil {
		gen.SetLevel("ERROR")
		return nil, fmt.Errorf("generate lyrics: %w", err)
	}
	gen.LogResponse(message, resp)

	var out struct {
		Verses []string `json:"verses"`
	}
	if err := json.Unmarshal([]byte(resp.RawOutput), &out); err != nil {
		return nil, fmt.Errorf("decode lyrics output: %w", err)
	}
	return out.Verses, nil
}

// Normalize lowercases the text, strips punctuation and keeps the last
// VerseLength words
func Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)

	words := strings.Fields(cleaned)
	if len(words) > VerseLength {
		words = words[len(words)-VerseLength:]
	}
	return strings.Join(words, " ")
}

// Acceptable reports whether a normalized verse has more than two distinct
// words and differs from the previous one
func Acceptable(verse, previous string) bool {
	if verse == previous {
		return false
	}
	distinct := make(map[string]struct{})
	for _, w := range strings.Fields(verse) {
		distinct[w] = struct{}{}
	}
	return len(distinct) > 2
}

// Beautify restores contractions, masks profanity and capitalises the verse
func Beautify(verse string) string {
	for _, r := range replacements {
		verse = r.pattern.ReplaceAllString(verse, r.with)
	}
	if verse == "" {
		return verse
	}
	runes := []rune(verse)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
