package theory

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	semitonesPerOctave = 12
	defaultOctave      = 4
	midiMin            = 0
	midiMax            = 127
	middleC            = 60
)

var stepSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = [semitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// parseStep reads a step letter followed by accidentals. '#' raises, '-' and 'b' lower.
// It returns the semitone offset from C (not reduced) and the unparsed remainder.
func parseStep(name string) (int, string, error) {
	if name == "" {
		return 0, "", fmt.Errorf("empty pitch name")
	}

	step := name[0]
	if step >= 'a' && step <= 'g' {
		step -= 'a' - 'A'
	}
	semitone, ok := stepSemitones[step]
	if !ok {
		return 0, "", fmt.Errorf("invalid step letter in pitch %q", name)
	}

	idx := 1
	for idx < len(name) {
		switch name[idx] {
		case '#':
			semitone++
		case '-', 'b':
			semitone--
		default:
			return semitone, name[idx:], nil
		}
		idx++
	}
	return semitone, "", nil
}

// ParsePitch converts a pitch name such as "C4", "F#3", "E-5" or "Bb2" to a MIDI note
// number. A missing octave means octave 4, so "C" is middle C.
func ParsePitch(name string) (int, error) {
	semitone, rest, err := parseStep(strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}

	octave := defaultOctave
	if rest != "" {
		octave, err = strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid octave in pitch %q: %w", name, err)
		}
	}

	// C-1 = 0, C4 = 60
	midi := (octave+1)*semitonesPerOctave + semitone
	if midi < midiMin || midi > midiMax {
		return 0, fmt.Errorf("pitch %q out of MIDI range", name)
	}
	return midi, nil
}

// ParsePitchClass converts an octave-less pitch name ("f#", "E-") to a pitch class 0-11
func ParsePitchClass(name string) (int, error) {
	semitone, rest, err := parseStep(strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, fmt.Errorf("unexpected suffix %q in pitch class %q", rest, name)
	}
	return PitchClass(semitone), nil
}

// ChordMemberToMIDI maps an integer from a chord encoding to a MIDI note.
// Values below 12 are pitch classes placed in the middle-C octave; larger values are
// already MIDI numbers.
func ChordMemberToMIDI(v int) (int, error) {
	if v < 0 || v > midiMax {
		return 0, fmt.Errorf("chord member %d out of range", v)
	}
	if v < semitonesPerOctave {
		return middleC + v, nil
	}
	return v, nil
}

// PitchClass reduces any semitone count to 0-11
func PitchClass(semitone int) int {
	pc := semitone % semitonesPerOctave
	if pc < 0 {
		pc += semitonesPerOctave
	}
	return pc
}

// PitchClassName spells a pitch class with sharps
func PitchClassName(pc int) string {
	return sharpNames[PitchClass(pc)]
}

// PitchName spells a MIDI note number, e.g. 61 -> "C#4"
func PitchName(midi int) string {
	octave := midi/semitonesPerOctave - 1
	if midi < 0 && midi%semitonesPerOctave != 0 {
		octave--
	}
	return PitchClassName(midi) + strconv.Itoa(octave)
}
