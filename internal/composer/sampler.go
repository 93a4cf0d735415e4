package composer

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	defaultStallFactor = 64
	minStallBudget     = 64
)

// SequencePredictor returns a probability distribution over vocabulary ids for the
// next step after the given feature window
type SequencePredictor interface {
	Predict(ctx context.Context, window []float64) ([]float64, error)
}

// NoteSampler generates note-group tokens by greedy sliding-window prediction
type NoteSampler struct {
	vocab       *Vocabulary
	predictor   SequencePredictor
	seeds       *SeedPool
	stallFactor int
}

// NewNoteSampler wires the read-only session state. stallFactor bounds the number of
// predictions per requested group; <= 0 selects the default.
func NewNoteSampler(vocab *Vocabulary, predictor SequencePredictor, seeds *SeedPool, stallFactor int) *NoteSampler {
	if stallFactor <= 0 {
		stallFactor = defaultStallFactor
	}
	return &NoteSampler{
		vocab:       vocab,
		predictor:   predictor,
		seeds:       seeds,
		stallFactor: stallFactor,
	}
}

func (s *NoteSampler) budget(nGroups int) int {
	b := s.stallFactor * nGroups
	if b < minStallBudget {
		return minStallBudget
	}
	return b
}

// Sample returns exactly nGroups non-degenerate tokens. The window advances after
// every prediction, accepted or not.
func (s *NoteSampler) Sample(ctx context.Context, rng *rand.Rand, nGroups int) ([]string, error) {
	if s.seeds == nil || s.seeds.Len() == 0 {
		return nil, ErrEmptySeedPool
	}
	if nGroups < 1 {
		return nil, fmt.Errorf("group count %d must be positive: %w", nGroups, ErrInvalidPlan)
	}

	window := s.seeds.Pick(rng)
	tokens := make([]string, 0, nGroups)
	budget := s.budget(nGroups)

	for attempts := 0; len(tokens) < nGroups; attempts++ {
		if attempts >= budget {
			return nil, &GenerationStalledError{Attempts: attempts, Accepted: len(tokens), Wanted: nGroups}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		probs, err := s.predictor.Predict(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", attempts, err)
		}
		if len(probs) == 0 {
			return nil, fmt.Errorf("prediction %d: empty distribution", attempts)
		}

		id := floats.MaxIdx(probs)
		token, err := s.vocab.Token(id)
		if err != nil {
			return nil, err
		}
		if !IsDegenerate(token) {
			tokens = append(tokens, token)
		}

		slide(window, s.vocab.Normalize(id))
	}

	return tokens, nil
}

// slide drops the oldest entry and appends v, keeping the length fixed
func slide(window []float64, v float64) {
	copy(window, window[1:])
	window[len(window)-1] = v
}
