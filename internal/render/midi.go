package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// TicksPerQuarter is the file resolution; one quarter note is one time unit of a score
	TicksPerQuarter = 960
	// Tempo in beats per minute
	Tempo = 120.0

	conductorName   = "moodsic"
	defaultVelocity = 100
	accentBoost     = 12
)

type timedMessage struct {
	tick  uint32
	order int
	msg   []byte
}

// EncodeMIDI renders the score into Standard MIDI File bytes
func EncodeMIDI(score models.Score, lyrics []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMIDI(&buf, score, lyrics); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMIDI writes a format 1 SMF with a conductor track holding tempo, meter
// and lyrics, followed by one track per score track
func WriteMIDI(w io.Writer, score models.Score, lyrics []string) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	if err := s.Add(conductorTrack(score.SongLength, lyrics)); err != nil {
		return fmt.Errorf("add conductor track: %w", err)
	}
	for i, track := range score.Tracks {
		if err := s.Add(noteTrack(track, i)); err != nil {
			return fmt.Errorf("add track %d: %w", i, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// SaveMIDI writes the score to path, creating parent directories
func SaveMIDI(path string, score models.Score, lyrics []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create midi file: %w", err)
	}
	if err := WriteMIDI(f, score, lyrics); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func conductorTrack(songLength float64, lyrics []string) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(conductorName))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(Tempo))

	// verses are spread evenly over the song
	var last uint32
	for i, verse := range lyrics {
		at := ticks(songLength * float64(i) / float64(len(lyrics)))
		tr.Add(at-last, smf.MetaLyric(verse))
		last = at
	}
	tr.Close(0)
	return tr
}

func noteTrack(track models.Track, index int) smf.Track {
	ch := Channel(track.Instrument, index)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(string(track.Instrument)))
	if ch != PercussionChannel {
		tr.Add(0, midi.ProgramChange(ch, Program(track.Instrument)))
	}

	var timeline []timedMessage
	for _, ev := range track.Events {
		if ev.IsRest() || len(ev.Pitches) == 0 {
			continue
		}
		start := ticks(ev.Offset)
		end := ticks(ev.Offset + ev.Duration*gate(ev.Articulation))
		if end <= start {
			end = start + 1
		}
		vel := velocity(ev)
		for _, p := range ev.Pitches {
			key := fold(p)
			timeline = append(timeline,
				timedMessage{tick: start, order: 1, msg: midi.NoteOn(ch, key, vel)},
				timedMessage{tick: end, order: 0, msg: midi.NoteOff(ch, key)},
			)
		}
	}

	// note-offs sort before note-ons on the same tick so repeated keys retrigger
	sort.SliceStable(timeline, func(i, j int) bool {
		if timeline[i].tick != timeline[j].tick {
			return timeline[i].tick < timeline[j].tick
		}
		return timeline[i].order < timeline[j].order
	})

	var last uint32
	for _, m := range timeline {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)
	return tr
}

func ticks(quarters float64) uint32 {
	if quarters <= 0 {
		return 0
	}
	return uint32(math.Round(quarters * TicksPerQuarter))
}

// fold brings a pitch into the MIDI range by whole octaves
func fold(pitch int) uint8 {
	for pitch < 0 {
		pitch += 12
	}
	for pitch > 127 {
		pitch -= 12
	}
	return uint8(pitch)
}

func velocity(ev models.MelodyEvent) uint8 {
	v := ev.Velocity
	if v <= 0 {
		v = defaultVelocity
	}
	switch ev.Articulation {
	case models.ArticulationAccent, models.ArticulationStress:
		v += accentBoost
	case models.ArticulationStrongAccent:
		v += 2 * accentBoost
	case models.ArticulationUnstress:
		v -= accentBoost
	}
	return uint8(min(max(v, 1), 127))
}

// gate is the sounding fraction of a note's written duration
func gate(a models.Articulation) float64 {
	switch a {
	case models.ArticulationStaccato:
		return 0.5
	case models.ArticulationStaccatissimo:
		return 0.25
	case models.ArticulationDetachedLegato, models.ArticulationBreathMark:
		return 0.85
	default:
		return 1
	}
}
