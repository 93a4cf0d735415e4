package models

import (
	"fmt"
	"strings"
)

// Sentiment is one of the emotion categories a composition can express
type Sentiment string

const (
	SentimentAnticipation Sentiment = "anticipation"
	SentimentAnger        Sentiment = "anger"
	SentimentDisgust      Sentiment = "disgust"
	SentimentFear         Sentiment = "fear"
	SentimentJoy          Sentiment = "joy"
	SentimentNeutral      Sentiment = "neutral"
	SentimentSadness      Sentiment = "sadness"
	SentimentSurprise     Sentiment = "surprise"
	SentimentTrust        Sentiment = "trust"
)

// AllSentiments returns every sentiment in classifier output order
func AllSentiments() []Sentiment {
	return []Sentiment{
		SentimentAnticipation,
		SentimentAnger,
		SentimentDisgust,
		SentimentFear,
		SentimentJoy,
		SentimentNeutral,
		SentimentSadness,
		SentimentSurprise,
		SentimentTrust,
	}
}

// ParseSentiment resolves a case-insensitive sentiment name
func ParseSentiment(name string) (Sentiment, error) {
	candidate := Sentiment(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range AllSentiments() {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment %q", name)
}

func (s Sentiment) String() string {
	return string(s)
}
