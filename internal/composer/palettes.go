package composer

import "github.com/Conceptual-Machines/moodsic-api/internal/models"

// Palette lists the candidate musical properties for one sentiment
type Palette struct {
	Instruments    []models.Instrument   `json:"instruments"`
	NGroups        []int                 `json:"n_groups"`
	NoteDurations  []float64             `json:"note_durations"`
	OctaveOffsets  []int                 `json:"octave_offsets"`
	Keys           []string              `json:"keys"`
	PauseDurations []float64             `json:"pause_durations"`
	Articulations  []models.Articulation `json:"articulations"`
	NMelodies      []int                 `json:"n_melodies"`
}

func instruments(names ...string) []models.Instrument {
	out := make([]models.Instrument, len(names))
	for i, n := range names {
		out[i] = models.Instrument(n)
	}
	return out
}

// DefaultPalettes returns the sentiment to palette table
func DefaultPalettes() map[models.Sentiment]Palette {
	return map[models.Sentiment]Palette{
		models.SentimentJoy: {
			Instruments:    instruments("Marimba", "Piano", "Recorder", "SteelDrum", "Vibraphone", "Xylophone"),
			NGroups:        []int{2, 4},
			NoteDurations:  []float64{0.125, 0.25, 0.5},
			OctaveOffsets:  []int{1, 2},
			Keys:           []string{"C", "G"},
			PauseDurations: []float64{0, 0.125, 0.25},
			Articulations:  []models.Articulation{models.ArticulationStaccatissimo},
			NMelodies:      []int{1, 2},
		},
		models.SentimentFear: {
			Instruments: instruments("Choir", "ChurchBells", "Dulcimer", "ElectricBass", "Organ", "Piano",
				"PipeOrgan", "Sampler", "Shakuhachi", "Sitar", "StringInstrument", "Timpani", "TubularBells", "Ukulele"),
			NGroups:        []int{1, 2, 4},
			NoteDurations:  []float64{1.25, 1.5, 1.75, 2},
			OctaveOffsets:  []int{-3, -2},
			Keys:           []string{"f#"},
			PauseDurations: []float64{0.75, 1, 1.25, 1.5},
			Articulations:  []models.Articulation{models.ArticulationDetachedLegato},
			NMelodies:      []int{2},
		},
		models.SentimentAnger: {
			Instruments:    instruments("BrassInstrument", "Piano", "Sampler", "Timpani"),
			NGroups:        []int{2, 4},
			NoteDurations:  []float64{0.125, 0.25},
			OctaveOffsets:  []int{-2, -1, -2},
			Keys:           []string{"d", "e"},
			PauseDurations: []float64{0, 0.125, 0.25, 0.5},
			Articulations:  []models.Articulation{models.ArticulationAccent, models.ArticulationStrongAccent},
			NMelodies:      []int{2, 3},
		},
		models.SentimentSadness: {
			Instruments:    instruments("Celesta", "Flute", "Glockenspiel", "Harp", "Piano", "Violin", "Violoncello"),
			NGroups:        []int{1, 2},
			NoteDurations:  []float64{1.25, 1.5, 2},
			OctaveOffsets:  []int{-1, 0},
			Keys:           []string{"c", "f", "a"},
			PauseDurations: []float64{0.75, 1, 1.25},
			Articulations:  []models.Articulation{models.ArticulationBreathMark, models.ArticulationTenuto},
			NMelodies:      []int{2},
		},
		models.SentimentNeutral: {
			Instruments: instruments("AcousticBass", "AcousticGuitar", "UnpitchedPercussion", "Alto", "Banjo",
				"Bass", "BassClarinet", "Bassoon", "Celesta", "ChurchBells", "Clarinet", "Clavichord",
				"ElectricBass", "ElectricGuitar", "ElectricPiano", "EnglishHorn", "FretlessBass", "Glockenspiel",
				"Guitar", "Harp", "Horn", "Kalimba", "Lute", "Marimba", "Ocarina", "PanFlute", "Piano", "Piccolo",
				"Recorder", "ReedOrgan", "Shamisen", "SteelDrum", "Tenor", "Vibraphone", "Vocalist", "Whistle",
				"Xylophone"),
			NGroups:        []int{1, 2},
			NoteDurations:  []float64{0.75, 1},
			OctaveOffsets:  []int{0},
			Keys:           []string{"D", "F"},
			PauseDurations: []float64{0.25, 0.5},
			Articulations:  []models.Articulation{models.ArticulationNone},
			NMelodies:      []int{1, 2},
		},
		models.SentimentDisgust: {
			Instruments: instruments("Accordion", "UnpitchedPercussion", "AltoSaxophone", "Banjo", "Bassoon",
				"Contrabassoon", "ElectricOrgan", "Koto", "Shehnai", "Trombone"),
			NGroups:        []int{1, 2, 4},
			NoteDurations:  []float64{0.125, 0.25, 0.33, 0.5, 0.66, 1},
			OctaveOffsets:  []int{-1, 1},
			Keys:           []string{"c#", "g#", "b"},
			PauseDurations: []float64{0, 0.125, 0.25, 0.33, 0.5, 0.66, 1},
			Articulations:  []models.Articulation{models.ArticulationTenuto},
			NMelodies:      []int{2, 3},
		},
		models.SentimentAnticipation: {
			Instruments: instruments("BrassInstrument", "Dulcimer", "ElectricBass", "Horn", "Mandolin",
				"MezzoSoprano", "Piano", "StringInstrument", "Timpani", "Trumpet", "TubularBells", "Ukulele"),
			NGroups:        []int{1, 2},
			NoteDurations:  []float64{1, 1.25, 1.5, 2},
			OctaveOffsets:  []int{0, 1},
			Keys:           []string{"E"},
			PauseDurations: []float64{0, 0.125, 0.25, 0.5},
			Articulations:  []models.Articulation{models.ArticulationStaccato},
			NMelodies:      []int{2},
		},
		models.SentimentSurprise: {
			Instruments: instruments("Accordion", "UnpitchedPercussion", "AltoSaxophone", "Banjo",
				"BaritoneSaxophone", "BassClarinet", "Bassoon", "BassTrombone", "BrassInstrument", "ChurchBells",
				"Clarinet", "Clavichord", "Dulcimer", "FretlessBass", "Harmonica", "Harpsichord", "Koto",
				"Shamisen", "SopranoSaxophone", "Trumpet", "Viola", "Violin", "Violoncello"),
			NGroups:        []int{1, 2},
			NoteDurations:  []float64{0.125, 0.25, 0.5},
			OctaveOffsets:  []int{-1, 0, 1},
			Keys:           []string{"C#", "F#"},
			PauseDurations: []float64{0, 0.125, 0.25, 0.5, 1, 1.25},
			Articulations:  []models.Articulation{models.ArticulationStress},
			NMelodies:      []int{2},
		},
		models.SentimentTrust: {
			Instruments: instruments("AcousticBass", "Celesta", "Glockenspiel", "Guitar", "Harp", "Kalimba",
				"Lute", "Marimba", "Vibraphone", "Xylophone"),
			NGroups:        []int{1, 2, 4},
			NoteDurations:  []float64{0.75, 1, 1.5, 1.75},
			OctaveOffsets:  []int{1, 2},
			Keys:           []string{"B"},
			PauseDurations: []float64{0.125, 0.25, 0.5},
			Articulations:  []models.Articulation{models.ArticulationUnstress},
			NMelodies:      []int{1, 2},
		},
	}
}
