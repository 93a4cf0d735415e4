package composer

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSamplerSample(t *testing.T) {
	sampler := NewParameterSampler(0)

	for _, sentiment := range models.AllSentiments() {
		t.Run(string(sentiment), func(t *testing.T) {
			palette, ok := sampler.Palette(sentiment)
			require.True(t, ok)

			for seed := uint64(0); seed < 20; seed++ {
				plans, err := sampler.Sample(newRand(seed), sentiment)
				require.NoError(t, err)
				require.NotEmpty(t, plans)
				assert.Contains(t, palette.NMelodies, len(plans))

				first := plans[0]
				assert.Len(t, first.NoteDurations, GroupWidth)
				assert.Len(t, first.PauseDurations, GroupWidth)
				assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(first.NoteDurations))),
					"note durations %v not descending", first.NoteDurations)
				assert.True(t, sort.IsSorted(sort.Reverse(sort.Float64Slice(first.PauseDurations))),
					"pause durations %v not descending", first.PauseDurations)
				assert.Contains(t, palette.Keys, first.Key)

				bar := first.BarDuration()
				for i, plan := range plans {
					assert.Equal(t, first.Key, plan.Key)
					assert.Equal(t, first.NoteDurations, plan.NoteDurations)
					assert.Equal(t, first.PauseDurations, plan.PauseDurations)
					assert.InDelta(t, (1.0/16+bar)*float64(i), plan.Offset, 1e-9)
					assert.Contains(t, palette.Instruments, plan.Instrument)
					assert.Contains(t, palette.NGroups, plan.NGroups)
					assert.Contains(t, palette.OctaveOffsets, plan.OctaveOffset)
					assert.Contains(t, palette.Articulations, plan.Articulation)
					assert.GreaterOrEqual(t, plan.Volume, 0.25)
					assert.LessOrEqual(t, plan.Volume, 1.0)
				}
			}
		})
	}
}

func TestParameterSamplerJoy(t *testing.T) {
	plans, err := NewParameterSampler(0).Sample(newRand(7), models.SentimentJoy)
	require.NoError(t, err)

	for _, plan := range plans {
		for i := 1; i < len(plan.NoteDurations); i++ {
			assert.GreaterOrEqual(t, plan.NoteDurations[i-1], plan.NoteDurations[i])
		}
		assert.Equal(t, models.ArticulationStaccatissimo, plan.Articulation)
	}
	assert.Equal(t, 1.0, plans[0].Volume)
}

func TestParameterSamplerDistinctInstruments(t *testing.T) {
	// fear always plays two voices drawn from fourteen instruments
	for seed := uint64(0); seed < 50; seed++ {
		plans, err := NewParameterSampler(0).Sample(newRand(seed), models.SentimentFear)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.NotEqual(t, plans[0].Instrument, plans[1].Instrument)
	}
}

func TestParameterSamplerCap(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		plans, err := NewParameterSampler(1).Sample(newRand(seed), models.SentimentAnger)
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	}
}

func TestParameterSamplerDeterministic(t *testing.T) {
	a, err := NewParameterSampler(0).Sample(newRand(42), models.SentimentSadness)
	require.NoError(t, err)
	b, err := NewParameterSampler(0).Sample(newRand(42), models.SentimentSadness)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParameterSamplerErrors(t *testing.T) {
	t.Run("unknown sentiment", func(t *testing.T) {
		_, err := NewParameterSampler(0).Sample(newRand(1), models.Sentiment("bliss"))
		assert.ErrorIs(t, err, ErrEmptyCandidates)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		palettes := DefaultPalettes()
		p := palettes[models.SentimentJoy]
		p.Keys = nil
		palettes[models.SentimentJoy] = p

		_, err := NewParameterSamplerWithPalettes(palettes, 0).Sample(newRand(1), models.SentimentJoy)
		assert.ErrorIs(t, err, ErrEmptyCandidates)
	})
}

func TestVoiceVolume(t *testing.T) {
	assert.Equal(t, []float64{1, 0.75, 0.5, 0.25, 0.25, 0.25},
		[]float64{voiceVolume(0), voiceVolume(1), voiceVolume(2), voiceVolume(3), voiceVolume(4), voiceVolume(5)})
}

func TestSampleProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	t.Run("distinct while candidates last", func(t *testing.T) {
		got := sampleProperties(rng, []int{1, 2, 3, 4}, 4)
		assert.ElementsMatch(t, []int{1, 2, 3, 4}, got)
	})

	t.Run("more draws than candidates", func(t *testing.T) {
		got := sampleProperties(rng, []int{1, 2}, 5)
		assert.Len(t, got, 5)
		counts := map[int]int{}
		for _, v := range got {
			counts[v]++
		}
		// pool is {1,2} x 3, so neither value can appear more than three times
		assert.LessOrEqual(t, counts[1], 3)
		assert.LessOrEqual(t, counts[2], 3)
	})
}
