package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSampler(t *testing.T, predictor SequencePredictor, stallFactor int) *NoteSampler {
	t.Helper()
	vocab, err := NewVocabulary([]string{"C4/C4", "C4/E4", "E4/G4", "G4/G4"})
	require.NoError(t, err)
	seeds, err := NewSeedPool([][]float64{{0.5}})
	require.NoError(t, err)
	return NewNoteSampler(vocab, predictor, seeds, stallFactor)
}

func TestNoteSamplerFiltersDegenerateGroups(t *testing.T) {
	predictor := &scriptedPredictor{size: 4, script: []int{0, 1, 3, 2}}
	sampler := newTestSampler(t, predictor, 0)

	tokens, err := sampler.Sample(context.Background(), newRand(1), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"C4/E4", "E4/G4"}, tokens)
	assert.Equal(t, 4, predictor.calls)
	// rejected predictions still advance the window
	assert.Equal(t, [][]float64{{0.5}, {0}, {0.25}, {0.75}}, predictor.windows)
}

func TestNoteSamplerExactCount(t *testing.T) {
	predictor := &scriptedPredictor{size: 4, script: []int{1}}
	sampler := newTestSampler(t, predictor, 0)

	for _, n := range []int{1, 2, 4} {
		predictor.calls = 0
		tokens, err := sampler.Sample(context.Background(), newRand(2), n)
		require.NoError(t, err)
		assert.Len(t, tokens, n)
		assert.Equal(t, n, predictor.calls)
	}
}

func TestNoteSamplerSingleSubTokenVocabularyStalls(t *testing.T) {
	vocab, err := NewVocabulary([]string{"60", "60.64", "60.64.67", "72"})
	require.NoError(t, err)
	seeds, err := NewSeedPool([][]float64{{0.25}})
	require.NoError(t, err)
	predictor := &scriptedPredictor{size: 4, script: []int{2}}

	_, err = NewNoteSampler(vocab, predictor, seeds, 0).Sample(context.Background(), newRand(3), 2)

	var stalled *GenerationStalledError
	require.ErrorAs(t, err, &stalled)
	assert.Equal(t, 128, stalled.Attempts)
	assert.Equal(t, 0, stalled.Accepted)
	assert.Equal(t, 2, stalled.Wanted)
	assert.Equal(t, 128, predictor.calls)
}

func TestNoteSamplerBudgetFloor(t *testing.T) {
	predictor := &scriptedPredictor{size: 4, script: []int{0}}
	_, err := newTestSampler(t, predictor, 1).Sample(context.Background(), newRand(4), 1)

	var stalled *GenerationStalledError
	require.ErrorAs(t, err, &stalled)
	assert.Equal(t, 64, stalled.Attempts)
}

func TestNoteSamplerErrors(t *testing.T) {
	t.Run("empty seed pool", func(t *testing.T) {
		vocab, err := NewVocabulary([]string{"C4/E4"})
		require.NoError(t, err)
		_, err = NewNoteSampler(vocab, &scriptedPredictor{size: 1, script: []int{0}}, nil, 0).
			Sample(context.Background(), newRand(1), 1)
		assert.ErrorIs(t, err, ErrEmptySeedPool)
	})

	t.Run("predictor failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := newTestSampler(t, failingPredictor{err: boom}, 0).Sample(context.Background(), newRand(1), 1)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("id outside vocabulary", func(t *testing.T) {
		_, err := newTestSampler(t, &scriptedPredictor{size: 6, script: []int{5}}, 0).
			Sample(context.Background(), newRand(1), 1)
		var oor *OutOfRangeError
		assert.ErrorAs(t, err, &oor)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestSampler(t, &scriptedPredictor{size: 4, script: []int{1}}, 0).Sample(ctx, newRand(1), 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingPredictor struct {
	err error
}

func (p failingPredictor) Predict(context.Context, []float64) ([]float64, error) {
	return nil, p.err
}
