package composer

import (
	"context"
	"math/rand/v2"
	"sync"
)

// scriptedPredictor returns a one-hot distribution for each id in order, repeating the
// last id once the script runs out
type scriptedPredictor struct {
	mu      sync.Mutex
	size    int
	script  []int
	windows [][]float64
	calls   int
}

func (p *scriptedPredictor) Predict(_ context.Context, window []float64) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.windows = append(p.windows, append([]float64(nil), window...))
	id := p.script[len(p.script)-1]
	if p.calls < len(p.script) {
		id = p.script[p.calls]
	}
	p.calls++

	probs := make([]float64, p.size)
	probs[id] = 1
	return probs, nil
}

// fixedSampler hands out token lists in order, repeating the last one
type fixedSampler struct {
	mu      sync.Mutex
	batches [][]string
	calls   int
}

func (s *fixedSampler) Sample(_ context.Context, _ *rand.Rand, nGroups int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.batches[len(s.batches)-1]
	if s.calls < len(s.batches) {
		batch = s.batches[s.calls]
	}
	s.calls++

	out := make([]string, nGroups)
	for i := range out {
		out[i] = batch[i%len(batch)]
	}
	return out, nil
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniform(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
