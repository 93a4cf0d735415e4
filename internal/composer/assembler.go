package composer

import (
	"fmt"
	"math"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"gonum.org/v1/gonum/floats"
)

const (
	finalNoteDuration = 4.0
	maxVelocity       = 127
)

// CheckFeasible fails when the song cannot hold the plan's groups at least once
func CheckFeasible(plan models.MelodyPlan, songLength float64) error {
	if len(plan.NoteDurations) == 0 || len(plan.NoteDurations) != len(plan.PauseDurations) {
		return fmt.Errorf("%d note durations vs %d pause durations: %w",
			len(plan.NoteDurations), len(plan.PauseDurations), ErrInvalidPlan)
	}
	if plan.NGroups < 1 {
		return fmt.Errorf("group count %d must be positive: %w", plan.NGroups, ErrInvalidPlan)
	}

	bar := floats.Sum(plan.NoteDurations) + floats.Sum(plan.PauseDurations)
	if bar <= 0 {
		return fmt.Errorf("bar duration %g must be positive: %w", bar, ErrInvalidPlan)
	}
	if songLength < bar*float64(plan.NGroups) {
		return &InfeasibleSongLengthError{SongLength: songLength, BarDuration: bar, NGroups: plan.NGroups}
	}
	return nil
}

// Assemble turns sampled group tokens into timed events for one track. The token list
// is repeated as many whole times as the song length allows; leftover time is dropped.
// The track closes with a sustained copy of its last sounding event.
func Assemble(tokens []string, plan models.MelodyPlan, songLength float64) ([]models.MelodyEvent, error) {
	if err := CheckFeasible(plan, songLength); err != nil {
		return nil, err
	}

	groups := make([][]SubToken, len(tokens))
	for i, tok := range tokens {
		parsed, err := ParseGroup(tok)
		if err != nil {
			return nil, err
		}
		groups[i] = parsed
	}

	bar := plan.BarDuration()
	repeat := int(math.Floor(songLength / bar / float64(plan.NGroups)))
	velocity := int(math.Round(maxVelocity * plan.Volume))
	width := len(plan.NoteDurations)

	events := make([]models.MelodyEvent, 0, repeat*len(tokens)*width*2+1)
	offset := plan.Offset

	for r := 0; r < repeat; r++ {
		for _, group := range groups {
			for pos, st := range group {
				dur := plan.NoteDurations[pos%width]
				pause := plan.PauseDurations[pos%width]

				kind := models.EventNote
				if st.Kind == ChordToken {
					kind = models.EventChord
				}
				events = append(events, models.MelodyEvent{
					Kind:         kind,
					Pitches:      append([]int(nil), st.Pitches...),
					Offset:       offset,
					Duration:     dur,
					Velocity:     velocity,
					Articulation: plan.Articulation,
				})

				// the rest shares the sounding event's offset
				if pause > 0 {
					events = append(events, models.MelodyEvent{
						Kind:     models.EventRest,
						Offset:   offset,
						Duration: pause,
					})
				}

				offset += dur + pause
			}
		}
	}

	final, err := finalEvent(events, offset)
	if err != nil {
		return nil, err
	}
	return append(events, final), nil
}

func finalEvent(events []models.MelodyEvent, offset float64) (models.MelodyEvent, error) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].IsRest() {
			continue
		}
		final := events[i].Clone()
		final.Duration = finalNoteDuration
		final.Velocity = maxVelocity
		final.Offset = offset
		return final, nil
	}
	return models.MelodyEvent{}, ErrSilentTrack
}
