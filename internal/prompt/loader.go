package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/moodsic-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetSentimentClassifierPrompt loads the system prompt for the sentiment classifier
func (l *Loader) GetSentimentClassifierPrompt() (string, error) {
	return load("sentiment classifier", embedded.SentimentClassifierPromptTxt)
}

// GetLyricsPrompt loads the system prompt for the lyric generator
func (l *Loader) GetLyricsPrompt() (string, error) {
	return load("lyrics", embedded.LyricsGeneratorPromptTxt)
}

func load(name string, data []byte) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s prompt is empty", name)
	}
	return text, nil
}
