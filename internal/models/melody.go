package models

// Instrument names the voice a track is played with (General MIDI mapping lives in render)
type Instrument string

// Articulation is an optional per-note performance marking
type Articulation string

const (
	ArticulationNone           Articulation = ""
	ArticulationAccent         Articulation = "accent"
	ArticulationBreathMark     Articulation = "breath_mark"
	ArticulationDetachedLegato Articulation = "detached_legato"
	ArticulationStaccatissimo  Articulation = "staccatissimo"
	ArticulationStaccato       Articulation = "staccato"
	ArticulationStress         Articulation = "stress"
	ArticulationStrongAccent   Articulation = "strong_accent"
	ArticulationTenuto         Articulation = "tenuto"
	ArticulationUnstress       Articulation = "unstress"
)

// EventKind tags a MelodyEvent
type EventKind string

const (
	EventNote  EventKind = "note"
	EventChord EventKind = "chord"
	EventRest  EventKind = "rest"
)

// MelodyEvent is a timed note, chord or rest. Offsets and durations are in quarter notes,
// pitches are MIDI note numbers.
type MelodyEvent struct {
	Kind         EventKind    `json:"kind"`
	Pitches      []int        `json:"pitches,omitempty"`
	Offset       float64      `json:"offset"`
	Duration     float64      `json:"duration"`
	Velocity     int          `json:"velocity,omitempty"`
	Articulation Articulation `json:"articulation,omitempty"`
}

// IsRest reports whether the event is silent
func (e MelodyEvent) IsRest() bool {
	return e.Kind == EventRest
}

// Clone returns a copy that shares no memory with e
func (e MelodyEvent) Clone() MelodyEvent {
	c := e
	if e.Pitches != nil {
		c.Pitches = append([]int(nil), e.Pitches...)
	}
	return c
}

// Transpose returns a copy of the event shifted by the given number of semitones
func (e MelodyEvent) Transpose(semitones int) MelodyEvent {
	c := e.Clone()
	for i := range c.Pitches {
		c.Pitches[i] += semitones
	}
	return c
}

// MelodyPlan is the parameter bundle that governs the generation of one track
type MelodyPlan struct {
	Instrument     Instrument   `json:"instrument"`
	NGroups        int          `json:"n_groups"`
	NoteDurations  []float64    `json:"note_durations"`
	PauseDurations []float64    `json:"pause_durations"`
	Offset         float64      `json:"offset"`
	OctaveOffset   int          `json:"octave_offset"`
	Key            string       `json:"key"`
	Volume         float64      `json:"volume"`
	Articulation   Articulation `json:"articulation,omitempty"`
}

// BarDuration is the time one token group spans, pauses included
func (p MelodyPlan) BarDuration() float64 {
	total := 0.0
	for _, d := range p.NoteDurations {
		total += d
	}
	for _, d := range p.PauseDurations {
		total += d
	}
	return total
}

// Track is an assembled, key-fitted and transposed melody
type Track struct {
	Instrument  Instrument    `json:"instrument"`
	Plan        MelodyPlan    `json:"plan"`
	DetectedKey string        `json:"detected_key"`
	KeyMatched  bool          `json:"key_matched"`
	Attempts    int           `json:"attempts"`
	Events      []MelodyEvent `json:"events"`
}

// Score is the set of tracks composed for one request. Track order carries no meaning.
type Score struct {
	Sentiment  Sentiment `json:"sentiment"`
	SongLength float64   `json:"song_length"`
	Key        string    `json:"key"`
	Tracks     []Track   `json:"tracks"`
}
