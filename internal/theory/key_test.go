package theory

import (
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(pitch int, duration float64) models.MelodyEvent {
	return models.MelodyEvent{Kind: models.EventNote, Pitches: []int{pitch}, Duration: duration}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input string
		want  Key
	}{
		{input: "C", want: Key{Tonic: 0, Mode: ModeMajor}},
		{input: "G", want: Key{Tonic: 7, Mode: ModeMajor}},
		{input: "f#", want: Key{Tonic: 6, Mode: ModeMinor}},
		{input: "F#", want: Key{Tonic: 6, Mode: ModeMajor}},
		{input: "g#", want: Key{Tonic: 8, Mode: ModeMinor}},
		{input: "b", want: Key{Tonic: 11, Mode: ModeMinor}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKey("x")
	assert.Error(t, err)
}

func TestKeyNames(t *testing.T) {
	assert.Equal(t, "F#", Key{Tonic: 6, Mode: ModeMajor}.Name())
	assert.Equal(t, "c#", Key{Tonic: 1, Mode: ModeMinor}.Name())
	assert.Equal(t, "D minor", Key{Tonic: 2, Mode: ModeMinor}.String())
}

func TestIntervalTo(t *testing.T) {
	g := Key{Tonic: 7, Mode: ModeMajor}
	c := Key{Tonic: 0, Mode: ModeMajor}
	assert.Equal(t, -7, g.IntervalTo(c))
	assert.Equal(t, 7, c.IntervalTo(g))
	assert.Equal(t, 0, c.IntervalTo(c))
}

func TestDetectKey(t *testing.T) {
	t.Run("C major triad", func(t *testing.T) {
		events := []models.MelodyEvent{note(60, 3), note(64, 2), note(67, 2)}
		key, err := DetectKey(events)
		require.NoError(t, err)
		assert.Equal(t, Key{Tonic: 0, Mode: ModeMajor}, key)
	})

	t.Run("A minor triad", func(t *testing.T) {
		events := []models.MelodyEvent{note(69, 3), note(72, 2), note(76, 2)}
		key, err := DetectKey(events)
		require.NoError(t, err)
		assert.Equal(t, Key{Tonic: 9, Mode: ModeMinor}, key)
	})

	t.Run("chords and rests", func(t *testing.T) {
		events := []models.MelodyEvent{
			{Kind: models.EventChord, Pitches: []int{67, 71, 74}, Duration: 2},
			{Kind: models.EventRest, Duration: 8},
			note(67, 1),
		}
		key, err := DetectKey(events)
		require.NoError(t, err)
		assert.Equal(t, Key{Tonic: 7, Mode: ModeMajor}, key)
	})

	t.Run("only rests", func(t *testing.T) {
		_, err := DetectKey([]models.MelodyEvent{{Kind: models.EventRest, Duration: 1}})
		assert.ErrorIs(t, err, ErrNoPitches)
	})
}

func TestPitchClassHistogram(t *testing.T) {
	hist := PitchClassHistogram([]models.MelodyEvent{note(60, 1), note(72, 0.5), note(61, 2)})
	assert.InDelta(t, 1.5, hist[0], 1e-9)
	assert.InDelta(t, 2.0, hist[1], 1e-9)
}

func TestKeyFifths(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"C", 0}, {"G", 1}, {"F#", 6}, {"F", -1}, {"Bb", -2}, {"Db", -5},
		{"a", 0}, {"e", 1}, {"d", -1}, {"c", -3},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			k, err := ParseKey(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k.Fifths())
		})
	}
}
