package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/theory"
)

const (
	// Divisions is the MusicXML resolution per quarter note. 24 holds eighths,
	// thirty-seconds and the 0.33/0.66 triplet lengths the palettes use.
	Divisions = 24

	beatsPerMeasure = 4
	measureLength   = beatsPerMeasure * Divisions

	musicXMLVersion = "4.0"
	musicXMLDoctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">` + "\n"
)

var (
	sharpSteps  = [12]string{"C", "C", "D", "D", "E", "F", "F", "G", "G", "A", "A", "B"}
	sharpAlters = [12]int{0, 1, 0, 1, 0, 0, 1, 0, 1, 0, 1, 0}
)

type scorePartwise struct {
	XMLName        xml.Name       `xml:"score-partwise"`
	Version        string         `xml:"version,attr"`
	Work           work           `xml:"work"`
	Identification identification `xml:"identification"`
	PartList       partList       `xml:"part-list"`
	Parts          []part         `xml:"part"`
}

type work struct {
	Title string `xml:"work-title"`
}

type identification struct {
	Software string `xml:"encoding>software"`
}

type partList struct {
	ScoreParts []scorePart `xml:"score-part"`
}

type scorePart struct {
	ID         string          `xml:"id,attr"`
	Name       string          `xml:"part-name"`
	Instrument scoreInstrument `xml:"score-instrument"`
	MIDI       midiInstrument  `xml:"midi-instrument"`
}

type scoreInstrument struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"instrument-name"`
}

type midiInstrument struct {
	ID      string  `xml:"id,attr"`
	Channel int     `xml:"midi-channel"`
	Program int     `xml:"midi-program"`
	Volume  float64 `xml:"volume"`
}

type part struct {
	ID       string    `xml:"id,attr"`
	Measures []measure `xml:"measure"`
}

type measure struct {
	Number     int         `xml:"number,attr"`
	Attributes *attributes `xml:"attributes,omitempty"`
	Notes      []xmlNote   `xml:"note"`
}

type attributes struct {
	Divisions int     `xml:"divisions"`
	Key       keySig  `xml:"key"`
	Time      timeSig `xml:"time"`
	Clef      clef    `xml:"clef"`
}

type keySig struct {
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode"`
}

type timeSig struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type clef struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line,omitempty"`
}

type xmlNote struct {
	Chord     *struct{}  `xml:"chord,omitempty"`
	Pitch     *xmlPitch  `xml:"pitch,omitempty"`
	Rest      *struct{}  `xml:"rest,omitempty"`
	Duration  int        `xml:"duration"`
	Ties      []tie      `xml:"tie,omitempty"`
	Notations *notations `xml:"notations,omitempty"`
}

type xmlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter,omitempty"`
	Octave int    `xml:"octave"`
}

type tie struct {
	Type string `xml:"type,attr"`
}

type notations struct {
	Tied          []tie          `xml:"tied,omitempty"`
	Articulations *articulations `xml:"articulations,omitempty"`
}

type articulations struct {
	Marks []mark `xml:",any"`
}

// mark is an empty element named after the articulation, e.g. <staccato/>
type mark struct {
	XMLName xml.Name
}

// segment is a stretch of a part in divisions; ev is nil for rests
type segment struct {
	start, end int
	ev         *models.MelodyEvent
}

// EncodeMusicXML renders the score as a MusicXML partwise document
func EncodeMusicXML(score models.Score, title string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMusicXML(&buf, score, title); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMusicXML writes one part per track in 4/4. Notes crossing a barline are split
// and tied; gaps between notes become rests.
func WriteMusicXML(w io.Writer, score models.Score, title string) error {
	doc := scorePartwise{
		Version:        musicXMLVersion,
		Work:           work{Title: title},
		Identification: identification{Software: conductorName},
	}

	key := keySig{Mode: theory.ModeMajor.String()}
	if k, err := theory.ParseKey(score.Key); err == nil {
		key = keySig{Fifths: k.Fifths(), Mode: k.Mode.String()}
	}

	for i, track := range score.Tracks {
		id := fmt.Sprintf("P%d", i+1)
		doc.PartList.ScoreParts = append(doc.PartList.ScoreParts, scorePart{
			ID:         id,
			Name:       string(track.Instrument),
			Instrument: scoreInstrument{ID: id + "-I1", Name: string(track.Instrument)},
			MIDI: midiInstrument{
				ID:      id + "-I1",
				Channel: int(Channel(track.Instrument, i)) + 1,
				Program: int(Program(track.Instrument)) + 1,
				Volume:  math.Round(track.Plan.Volume * 100),
			},
		})
		doc.Parts = append(doc.Parts, part{
			ID:       id,
			Measures: measures(track, score.SongLength, key),
		})
	}

	if _, err := io.WriteString(w, xml.Header+musicXMLDoctype); err != nil {
		return fmt.Errorf("write musicxml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode musicxml: %w", err)
	}
	return enc.Close()
}

// SaveMusicXML writes the score to path, creating its directory
func SaveMusicXML(path string, score models.Score, title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create musicxml file: %w", err)
	}
	if err := WriteMusicXML(f, score, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func measures(track models.Track, songLength float64, key keySig) []measure {
	segs := layout(track.Events, songLength)
	total := segs[len(segs)-1].end

	out := make([]measure, total/measureLength)
	for i := range out {
		out[i].Number = i + 1
	}
	out[0].Attributes = &attributes{
		Divisions: Divisions,
		Key:       key,
		Time:      timeSig{Beats: beatsPerMeasure, BeatType: 4},
		Clef:      clefFor(track),
	}

	for _, seg := range segs {
		for start := seg.start; start < seg.end; {
			bar := start / measureLength
			end := min(seg.end, (bar+1)*measureLength)
			out[bar].Notes = append(out[bar].Notes, notes(seg, start, end)...)
			start = end
		}
	}
	return out
}

// layout lays the sounding events out in divisions, filling gaps with rests and
// padding the end to a whole measure covering at least songLength
func layout(events []models.MelodyEvent, songLength float64) []segment {
	var segs []segment
	cursor := 0
	for i := range events {
		ev := &events[i]
		if ev.IsRest() || len(ev.Pitches) == 0 {
			continue
		}
		start := max(divisions(ev.Offset), cursor)
		end := divisions(ev.Offset + ev.Duration)
		if end <= start {
			continue
		}
		if start > cursor {
			segs = append(segs, segment{start: cursor, end: start})
		}
		segs = append(segs, segment{start: start, end: end, ev: ev})
		cursor = end
	}

	total := max(cursor, divisions(songLength), 1)
	if rem := total % measureLength; rem != 0 {
		total += measureLength - rem
	}
	if total > cursor {
		segs = append(segs, segment{start: cursor, end: total})
	}
	return segs
}

// notes renders the piece [start, end) of a segment, one element per chord member
func notes(seg segment, start, end int) []xmlNote {
	if seg.ev == nil {
		return []xmlNote{{Rest: &struct{}{}, Duration: end - start}}
	}

	var ties []tie
	if start > seg.start {
		ties = append(ties, tie{Type: "stop"})
	}
	if end < seg.end {
		ties = append(ties, tie{Type: "start"})
	}

	out := make([]xmlNote, 0, len(seg.ev.Pitches))
	for i, p := range seg.ev.Pitches {
		n := xmlNote{Pitch: spell(p), Duration: end - start, Ties: ties}
		if i > 0 {
			n.Chord = &struct{}{}
		}
		var marks *articulations
		if start == seg.start && i == 0 && seg.ev.Articulation != models.ArticulationNone {
			marks = &articulations{Marks: []mark{{XMLName: xml.Name{Local: articulationElement(seg.ev.Articulation)}}}}
		}
		if len(ties) > 0 || marks != nil {
			n.Notations = &notations{Tied: ties, Articulations: marks}
		}
		out = append(out, n)
	}
	return out
}

func spell(p int) *xmlPitch {
	key := int(fold(p))
	pc := key % 12
	return &xmlPitch{Step: sharpSteps[pc], Alter: sharpAlters[pc], Octave: key/12 - 1}
}

func articulationElement(a models.Articulation) string {
	return strings.ReplaceAll(string(a), "_", "-")
}

func clefFor(track models.Track) clef {
	if track.Instrument == percussion {
		return clef{Sign: "percussion"}
	}
	sum, n := 0, 0
	for _, ev := range track.Events {
		for _, p := range ev.Pitches {
			sum += p
			n++
		}
	}
	if n > 0 && sum/n < 60 {
		return clef{Sign: "F", Line: 4}
	}
	return clef{Sign: "G", Line: 2}
}

func divisions(quarters float64) int {
	if quarters <= 0 {
		return 0
	}
	return int(math.Round(quarters * Divisions))
}
