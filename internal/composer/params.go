package composer

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
)

const (
	// GroupWidth is the number of sub-tokens in one note group
	GroupWidth = 8

	trackStagger = 1.0 / 16
	volumeStep   = 0.25
	minVolume    = 0.25
)

// ParameterSampler draws MelodyPlans from sentiment palettes
type ParameterSampler struct {
	palettes    map[models.Sentiment]Palette
	maxMelodies int
}

// NewParameterSampler uses the default palettes. maxMelodies <= 0 disables the cap.
func NewParameterSampler(maxMelodies int) *ParameterSampler {
	return NewParameterSamplerWithPalettes(DefaultPalettes(), maxMelodies)
}

// NewParameterSamplerWithPalettes uses custom palettes
func NewParameterSamplerWithPalettes(palettes map[models.Sentiment]Palette, maxMelodies int) *ParameterSampler {
	return &ParameterSampler{palettes: palettes, maxMelodies: maxMelodies}
}

// Palette returns the palette for a sentiment
func (s *ParameterSampler) Palette(sentiment models.Sentiment) (Palette, bool) {
	p, ok := s.palettes[sentiment]
	return p, ok
}

// Sample draws one plan per voice. Rhythm lists and key are shared by every plan of
// the song; instrument, group count, octave offset and articulation vary per plan.
func (s *ParameterSampler) Sample(rng *rand.Rand, sentiment models.Sentiment) ([]models.MelodyPlan, error) {
	palette, ok := s.palettes[sentiment]
	if !ok {
		return nil, fmt.Errorf("no palette for sentiment %q: %w", sentiment, ErrEmptyCandidates)
	}
	if err := palette.validate(); err != nil {
		return nil, fmt.Errorf("palette %q: %w", sentiment, err)
	}

	nMelodies := palette.NMelodies[rng.IntN(len(palette.NMelodies))]
	if s.maxMelodies > 0 && nMelodies > s.maxMelodies {
		nMelodies = s.maxMelodies
	}

	instrumentList := sampleProperties(rng, palette.Instruments, nMelodies)
	groupCounts := sampleProperties(rng, palette.NGroups, nMelodies)
	octaveOffsets := sampleProperties(rng, palette.OctaveOffsets, nMelodies)
	articulationList := sampleProperties(rng, palette.Articulations, nMelodies)

	noteDurations := sampleDurations(rng, palette.NoteDurations, GroupWidth)
	pauseDurations := sampleDurations(rng, palette.PauseDurations, GroupWidth)
	key := palette.Keys[rng.IntN(len(palette.Keys))]

	bar := 0.0
	for i := range noteDurations {
		bar += noteDurations[i] + pauseDurations[i]
	}

	plans := make([]models.MelodyPlan, nMelodies)
	for i := range plans {
		plans[i] = models.MelodyPlan{
			Instrument:     instrumentList[i],
			NGroups:        groupCounts[i],
			NoteDurations:  append([]float64(nil), noteDurations...),
			PauseDurations: append([]float64(nil), pauseDurations...),
			Offset:         (trackStagger + bar) * float64(i),
			OctaveOffset:   octaveOffsets[i],
			Key:            key,
			Volume:         voiceVolume(i),
			Articulation:   articulationList[i],
		}
	}
	return plans, nil
}

// voiceVolume attenuates each following voice, never below minVolume
func voiceVolume(i int) float64 {
	v := 1 - volumeStep*float64(i)
	if v < minVolume {
		return minVolume
	}
	return v
}

func (p Palette) validate() error {
	switch {
	case len(p.Instruments) == 0:
		return fmt.Errorf("instruments: %w", ErrEmptyCandidates)
	case len(p.NGroups) == 0:
		return fmt.Errorf("group counts: %w", ErrEmptyCandidates)
	case len(p.NoteDurations) == 0:
		return fmt.Errorf("note durations: %w", ErrEmptyCandidates)
	case len(p.PauseDurations) == 0:
		return fmt.Errorf("pause durations: %w", ErrEmptyCandidates)
	case len(p.OctaveOffsets) == 0:
		return fmt.Errorf("octave offsets: %w", ErrEmptyCandidates)
	case len(p.Keys) == 0:
		return fmt.Errorf("keys: %w", ErrEmptyCandidates)
	case len(p.Articulations) == 0:
		return fmt.Errorf("articulations: %w", ErrEmptyCandidates)
	case len(p.NMelodies) == 0:
		return fmt.Errorf("melody counts: %w", ErrEmptyCandidates)
	}
	for _, n := range p.NGroups {
		if n < 1 {
			return fmt.Errorf("group count %d must be positive: %w", n, ErrInvalidPlan)
		}
	}
	for _, n := range p.NMelodies {
		if n < 1 {
			return fmt.Errorf("melody count %d must be positive: %w", n, ErrInvalidPlan)
		}
	}
	return nil
}

// sampleProperties draws n items without replacement from the candidates repeated
// enough times to cover n, so items stay distinct while candidates last.
func sampleProperties[T any](rng *rand.Rand, candidates []T, n int) []T {
	pool := make([]T, 0, len(candidates)*(n/len(candidates)+1))
	for len(pool) < cap(pool) {
		pool = append(pool, candidates...)
	}

	// partial Fisher-Yates
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}

// sampleDurations draws n durations sorted longest first
func sampleDurations(rng *rand.Rand, candidates []float64, n int) []float64 {
	out := sampleProperties(rng, candidates, n)
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
