package composer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/theory"
)

const (
	// MaxKeyFitAttempts bounds melody regeneration while searching for the target mode
	MaxKeyFitAttempts = 5

	// LowestPitch and HighestPitch are the piano range the octave offset must stay in
	LowestPitch  = 21
	HighestPitch = 108
)

// TokenSampler produces group tokens for one melody
type TokenSampler interface {
	Sample(ctx context.Context, rng *rand.Rand, nGroups int) ([]string, error)
}

// KeyFitter regenerates a melody until its detected mode matches the target key's mode,
// then transposes it onto the target tonic and octave
type KeyFitter struct {
	sampler  TokenSampler
	attempts int
}

// NewKeyFitter uses MaxKeyFitAttempts
func NewKeyFitter(sampler TokenSampler) *KeyFitter {
	return &KeyFitter{sampler: sampler, attempts: MaxKeyFitAttempts}
}

// Fit generates, assembles and key-fits one track. Running out of attempts is not an
// error: the last attempt is used and KeyMatched is false.
func (f *KeyFitter) Fit(ctx context.Context, rng *rand.Rand, songLength float64, plan models.MelodyPlan) (models.Track, error) {
	target, err := theory.ParseKey(plan.Key)
	if err != nil {
		return models.Track{}, err
	}
	if err := CheckFeasible(plan, songLength); err != nil {
		return models.Track{}, err
	}

	var (
		events   []models.MelodyEvent
		detected theory.Key
		matched  bool
		attempt  int
	)
	for attempt = 1; attempt <= f.attempts; attempt++ {
		tokens, err := f.sampler.Sample(ctx, rng, plan.NGroups)
		if err != nil {
			return models.Track{}, err
		}
		events, err = Assemble(tokens, plan, songLength)
		if err != nil {
			return models.Track{}, err
		}
		detected, err = theory.DetectKey(events)
		if err != nil {
			if errors.Is(err, theory.ErrNoPitches) {
				return models.Track{}, ErrSilentTrack
			}
			return models.Track{}, fmt.Errorf("detect key: %w", err)
		}
		if detected.Mode == target.Mode {
			matched = true
			break
		}
	}
	if attempt > f.attempts {
		attempt = f.attempts
	}

	tonic := detected.IntervalTo(target)
	shift := tonic + 12*fitOctave(events, tonic, plan.OctaveOffset)

	return models.Track{
		Instrument:  plan.Instrument,
		Plan:        plan,
		DetectedKey: detected.String(),
		KeyMatched:  matched,
		Attempts:    attempt,
		Events:      Transpose(events, shift),
	}, nil
}

// Transpose returns new events shifted by semitones; the input is left untouched
func Transpose(events []models.MelodyEvent, semitones int) []models.MelodyEvent {
	out := make([]models.MelodyEvent, len(events))
	for i, e := range events {
		out[i] = e.Transpose(semitones)
	}
	return out
}

// fitOctave returns the octave offset closest to want that keeps every pitch, after
// the tonic shift, inside LowestPitch..HighestPitch. The whole melody moves by the same
// number of octaves so its contour is kept. A melody too wide for the range gets no
// octave offset.
func fitOctave(events []models.MelodyEvent, tonic, want int) int {
	lo, hi, ok := pitchRange(events)
	if !ok {
		return want
	}
	lo += tonic
	hi += tonic

	minOctave := ceilDiv(LowestPitch-lo, 12)
	maxOctave := floorDiv(HighestPitch-hi, 12)
	if minOctave > maxOctave {
		return 0
	}
	return max(minOctave, min(want, maxOctave))
}

func pitchRange(events []models.MelodyEvent) (lo, hi int, ok bool) {
	for _, e := range events {
		for _, p := range e.Pitches {
			if !ok {
				lo, hi, ok = p, p, true
				continue
			}
			lo = min(lo, p)
			hi = max(hi, p)
		}
	}
	return lo, hi, ok
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
