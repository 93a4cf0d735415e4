package render

import "github.com/Conceptual-Machines/moodsic-api/internal/models"

const (
	// PercussionChannel is the General MIDI drum channel (10, zero based 9)
	PercussionChannel = 9
	percussion        = models.Instrument("UnpitchedPercussion")
	defaultProgram    = 0
)

// generalMIDI maps instrument names to zero based General MIDI programs
var generalMIDI = map[models.Instrument]uint8{
	"Accordion":         21,
	"AcousticBass":      32,
	"AcousticGuitar":    24,
	"Alto":              52,
	"AltoSaxophone":     65,
	"Banjo":             105,
	"BaritoneSaxophone": 67,
	"Bass":              32,
	"BassClarinet":      71,
	"BassTrombone":      57,
	"Bassoon":           70,
	"BrassInstrument":   61,
	"Celesta":           8,
	"Choir":             52,
	"ChurchBells":       14,
	"Clarinet":          71,
	"Clavichord":        7,
	"Contrabassoon":     70,
	"Dulcimer":          15,
	"ElectricBass":      33,
	"ElectricGuitar":    27,
	"ElectricOrgan":     16,
	"ElectricPiano":     4,
	"EnglishHorn":       69,
	"Flute":             73,
	"FretlessBass":      35,
	"Glockenspiel":      9,
	"Guitar":            24,
	"Harmonica":         22,
	"Harp":              46,
	"Harpsichord":       6,
	"Horn":              60,
	"Kalimba":           108,
	"Koto":              107,
	"Lute":              24,
	"Mandolin":          25,
	"Marimba":           12,
	"MezzoSoprano":      52,
	"Ocarina":           79,
	"Organ":             19,
	"PanFlute":          75,
	"Piano":             0,
	"Piccolo":           72,
	"PipeOrgan":         19,
	"Recorder":          74,
	"ReedOrgan":         20,
	"Sampler":           0,
	"Shakuhachi":        77,
	"Shamisen":          106,
	"Shehnai":           111,
	"Sitar":             104,
	"SopranoSaxophone":  64,
	"SteelDrum":         114,
	"StringInstrument":  48,
	"Tenor":             53,
	"Timpani":           47,
	"Trombone":          57,
	"Trumpet":           56,
	"TubularBells":      14,
	"Ukulele":           24,
	"Vibraphone":        11,
	"Viola":             41,
	"Violin":            40,
	"Violoncello":       42,
	"Vocalist":          54,
	"Whistle":           78,
	"Xylophone":         13,
}

// Program returns the General MIDI program for an instrument; unknown
// instruments fall back to the acoustic grand piano
func Program(instrument models.Instrument) uint8 {
	if p, ok := generalMIDI[instrument]; ok {
		return p
	}
	return defaultProgram
}

// Channel assigns a MIDI channel to the track at the given index. Percussion
// always plays on the drum channel, which melodic tracks skip.
func Channel(instrument models.Instrument, index int) uint8 {
	if instrument == percussion {
		return PercussionChannel
	}
	ch := index % 15
	if ch >= PercussionChannel {
		ch++
	}
	return uint8(ch)
}
