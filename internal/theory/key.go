package theory

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"gonum.org/v1/gonum/stat"
)

// Mode is the tonal quality of a key
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// ErrNoPitches is returned when a melody has nothing to analyze
var ErrNoPitches = errors.New("melody has no sounding pitches")

// Krumhansl-Kessler probe-tone profiles, index 0 is the tonic
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// Key is a tonic pitch class plus mode
type Key struct {
	Tonic int
	Mode  Mode
}

// ParseKey reads a key string where letter case encodes the mode: "C", "F#" are major,
// "c", "f#" are minor. Any uppercase letter makes the key major.
func ParseKey(s string) (Key, error) {
	tonic, err := ParsePitchClass(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}

	mode := ModeMinor
	for _, r := range s {
		if unicode.IsUpper(r) {
			mode = ModeMajor
			break
		}
	}
	return Key{Tonic: tonic, Mode: mode}, nil
}

// Name returns the case-encoded key string ("F#" or "f#")
func (k Key) Name() string {
	name := PitchClassName(k.Tonic)
	if k.Mode == ModeMinor {
		return strings.ToLower(name)
	}
	return name
}

func (k Key) String() string {
	return PitchClassName(k.Tonic) + " " + k.Mode.String()
}

// Fifths is the key signature as a position on the circle of fifths: positive counts
// sharps, negative counts flats. Six sharps is preferred over six flats.
func (k Key) Fifths() int {
	tonic := k.Tonic
	if k.Mode == ModeMinor {
		tonic += 3
	}
	f := (PitchClass(tonic) * 7) % 12
	if f > 6 {
		f -= 12
	}
	return f
}

// IntervalTo returns the semitone shift that moves this key's tonic onto the target tonic,
// with both tonics read in the same octave (range -11..11).
func (k Key) IntervalTo(target Key) int {
	return target.Tonic - k.Tonic
}

// PitchClassHistogram sums event durations per pitch class. Rests are ignored.
func PitchClassHistogram(events []models.MelodyEvent) []float64 {
	hist := make([]float64, semitonesPerOctave)
	for _, e := range events {
		if e.IsRest() {
			continue
		}
		for _, p := range e.Pitches {
			hist[PitchClass(p)] += e.Duration
		}
	}
	return hist
}

// DetectKey estimates the key of a melody with the Krumhansl-Schmuckler algorithm:
// the duration-weighted pitch-class distribution is correlated against the major and
// minor profiles rotated to each of the 12 tonics and the best match wins.
func DetectKey(events []models.MelodyEvent) (Key, error) {
	hist := PitchClassHistogram(events)

	total := 0.0
	for _, v := range hist {
		total += v
	}
	if total == 0 {
		return Key{}, ErrNoPitches
	}

	best := Key{}
	bestScore := math.Inf(-1)
	for _, mode := range []Mode{ModeMajor, ModeMinor} {
		profile := majorProfile
		if mode == ModeMinor {
			profile = minorProfile
		}
		for tonic := 0; tonic < semitonesPerOctave; tonic++ {
			score := stat.Correlation(hist, rotate(profile, tonic), nil)
			if math.IsNaN(score) {
				continue
			}
			if score > bestScore {
				bestScore = score
				best = Key{Tonic: tonic, Mode: mode}
			}
		}
	}

	// A flat histogram has no variance; fall back to the first tonic in major.
	if math.IsInf(bestScore, -1) {
		return Key{Tonic: 0, Mode: ModeMajor}, nil
	}
	return best, nil
}

// rotate places profile[0] on the given tonic pitch class
func rotate(profile []float64, tonic int) []float64 {
	out := make([]float64, len(profile))
	for i := range profile {
		out[(i+tonic)%len(profile)] = profile[i]
	}
	return out
}
