package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/gin-gonic/gin"
)

type SentimentHandler struct {
	params *composer.ParameterSampler
}

func NewSentimentHandler(params *composer.ParameterSampler) *SentimentHandler {
	return &SentimentHandler{params: params}
}

type sentimentEntry struct {
	Name        models.Sentiment    `json:"name"`
	Keys        []string            `json:"keys"`
	Instruments []models.Instrument `json:"instruments"`
	NMelodies   []int               `json:"n_melodies"`
}

// List returns the sentiment catalog with the musical palette of each entry
func (h *SentimentHandler) List(c *gin.Context) {
	entries := make([]sentimentEntry, 0, len(models.AllSentiments()))
	for _, s := range models.AllSentiments() {
		palette, ok := h.params.Palette(s)
		if !ok {
			continue
		}
		entries = append(entries, sentimentEntry{
			Name:        s,
			Keys:        palette.Keys,
			Instruments: palette.Instruments,
			NMelodies:   palette.NMelodies,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sentiments": entries})
}
