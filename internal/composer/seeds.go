package composer

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
)

// SeedPool holds previously observed feature windows used to start generation
type SeedPool struct {
	windows [][]float64
	width   int
}

// NewSeedPool validates that every window is non-empty and of equal width
func NewSeedPool(windows [][]float64) (*SeedPool, error) {
	if len(windows) == 0 {
		return nil, ErrEmptySeedPool
	}

	width := len(windows[0])
	if width == 0 {
		return nil, fmt.Errorf("seed window 0 is empty")
	}

	copied := make([][]float64, len(windows))
	for i, w := range windows {
		if len(w) != width {
			return nil, fmt.Errorf("seed window %d has width %d, want %d", i, len(w), width)
		}
		copied[i] = append([]float64(nil), w...)
	}

	return &SeedPool{windows: copied, width: width}, nil
}

// LoadSeedPool decodes a JSON array of windows
func LoadSeedPool(r io.Reader) (*SeedPool, error) {
	var windows [][]float64
	if err := json.NewDecoder(r).Decode(&windows); err != nil {
		return nil, fmt.Errorf("decode seed pool: %w", err)
	}
	return NewSeedPool(windows)
}

// LoadSeedPoolFile opens and decodes a seed pool artifact
func LoadSeedPoolFile(path string) (*SeedPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed pool: %w", err)
	}
	defer f.Close()
	return LoadSeedPool(f)
}

// Len is the number of windows
func (p *SeedPool) Len() int {
	return len(p.windows)
}

// Width is the feature window length
func (p *SeedPool) Width() int {
	return p.width
}

// Pick returns a copy of a uniformly chosen window
func (p *SeedPool) Pick(rng *rand.Rand) []float64 {
	w := p.windows[rng.IntN(len(p.windows))]
	return append([]float64(nil), w...)
}
