package embedded

import (
	_ "embed"
)

// Embedded system prompts
//
//go:embed data/prompts/sentiment_classifier.txt
var SentimentClassifierPromptTxt []byte

//go:embed data/prompts/lyrics_generator.txt
var LyricsGeneratorPromptTxt []byte
