package models

import "time"

// Composition status values
const (
	CompositionCompleted = "completed"
	CompositionFailed    = "failed"
)

// Composition is the persisted result of one generation request
type Composition struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string         `gorm:"index;type:varchar(64)" json:"user_id,omitempty"`
	Prompt     string         `gorm:"type:text" json:"prompt"`
	Sentiment  string         `gorm:"index;type:varchar(16)" json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Seed       int64          `json:"seed"`
	SongLength float64        `json:"song_length"`
	Key        string         `gorm:"type:varchar(8)" json:"key"`
	Tracks     []TrackSummary `gorm:"type:text;serializer:json" json:"tracks"`
	Lyrics     []string       `gorm:"type:text;serializer:json" json:"lyrics"`
	MIDI       []byte         `json:"-"`
	AudioPath  string         `json:"audio_path,omitempty"`
	ScorePath  string         `json:"score_path,omitempty"`
	Status     string         `gorm:"index;type:varchar(16)" json:"status"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TrackSummary is the stored description of one generated track
type TrackSummary struct {
	Instrument   Instrument   `json:"instrument"`
	Key          string       `json:"key"`
	DetectedKey  string       `json:"detected_key"`
	KeyMatched   bool         `json:"key_matched"`
	Attempts     int          `json:"attempts"`
	Events       int          `json:"events"`
	NGroups      int          `json:"n_groups"`
	Offset       float64      `json:"offset"`
	OctaveOffset int          `json:"octave_offset"`
	Volume       float64      `json:"volume"`
	Articulation Articulation `json:"articulation,omitempty"`
}

// Summarize reduces a track to its stored summary
func Summarize(t Track) TrackSummary {
	return TrackSummary{
		Instrument:   t.Instrument,
		Key:          t.Plan.Key,
		DetectedKey:  t.DetectedKey,
		KeyMatched:   t.KeyMatched,
		Attempts:     t.Attempts,
		Events:       len(t.Events),
		NGroups:      t.Plan.NGroups,
		Offset:       t.Plan.Offset,
		OctaveOffset: t.Plan.OctaveOffset,
		Volume:       t.Plan.Volume,
		Articulation: t.Plan.Articulation,
	}
}

// CompositionRequest is the body of a create-composition call. Zero values fall back to
// the service defaults.
type CompositionRequest struct {
	Prompt     string   `json:"prompt"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Seed       *uint64  `json:"seed,omitempty"`
	SongLength *float64 `json:"song_length,omitempty"`
	Verses     *int     `json:"verses,omitempty"`
}
