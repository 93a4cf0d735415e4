package composer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySeedPool is returned when no seed windows are available
	ErrEmptySeedPool = errors.New("seed pool is empty")

	// ErrEmptyCandidates signals a palette with no candidates for a property
	ErrEmptyCandidates = errors.New("no candidates configured")

	// ErrSilentTrack is returned when an assembled track holds no sounding event
	ErrSilentTrack = errors.New("track has no sounding events")

	// ErrInvalidPlan is returned for plans whose rhythm lists are unusable
	ErrInvalidPlan = errors.New("invalid melody plan")
)

// InfeasibleSongLengthError means the song is too short for the plan's groups
type InfeasibleSongLengthError struct {
	SongLength  float64
	BarDuration float64
	NGroups     int
}

func (e *InfeasibleSongLengthError) Error() string {
	return fmt.Sprintf("song length %g is shorter than bar duration %g x %d groups",
		e.SongLength, e.BarDuration, e.NGroups)
}

// GenerationStalledError means the sampler kept rejecting degenerate groups
type GenerationStalledError struct {
	Attempts int
	Accepted int
	Wanted   int
}

func (e *GenerationStalledError) Error() string {
	return fmt.Sprintf("generation stalled after %d predictions: accepted %d of %d groups",
		e.Attempts, e.Accepted, e.Wanted)
}

// UnknownTokenError is returned for a token missing from the vocabulary
type UnknownTokenError struct {
	Token string
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token %q", e.Token)
}

// OutOfRangeError is returned for an id outside [0, size)
type OutOfRangeError struct {
	ID   int
	Size int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("token id %d out of range [0, %d)", e.ID, e.Size)
}

// InvalidTokenError is returned when a group contains an unparseable sub-token
type InvalidTokenError struct {
	Token    string
	SubToken string
	Err      error
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid sub-token %q in %q: %v", e.SubToken, e.Token, e.Err)
}

func (e *InvalidTokenError) Unwrap() error {
	return e.Err
}
