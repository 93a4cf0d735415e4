package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/metrics"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/observability"
	"github.com/Conceptual-Machines/moodsic-api/internal/render"
	"github.com/Conceptual-Machines/moodsic-api/internal/sentiment"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	maxVerses     = 16
	maxSongLength = 1024
	maxListLimit  = 100
	seedMix       = 0x9e3779b97f4a7c15
)

var (
	// ErrNotFound is returned for unknown composition ids
	ErrNotFound = errors.New("composition not found")
	// ErrInvalidRequest wraps request validation failures
	ErrInvalidRequest = errors.New("invalid composition request")
)

// SentimentClassifier infers a sentiment from free text
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (sentiment.Result, error)
}

// LyricWriter writes verses for a sentiment
type LyricWriter interface {
	Generate(ctx context.Context, s models.Sentiment, nVerses int) ([]string, error)
}

// ScoreComposer builds a score for a sentiment
type ScoreComposer interface {
	Compose(ctx context.Context, rng *rand.Rand, s models.Sentiment, songLength float64) (models.Score, error)
}

// CallCounter reports how many predictions the model server has served
type CallCounter interface {
	Calls() int64
}

// Defaults are applied to request fields left empty
type Defaults struct {
	SongLength float64
	Verses     int
	OutputDir  string
}

// CompositionService runs the prompt to music pipeline and stores the results
type CompositionService struct {
	db         *gorm.DB
	classifier SentimentClassifier
	lyrics     LyricWriter
	composer   ScoreComposer
	audio      *render.AudioRenderer
	defaults   Defaults

	cloudwatch  *metrics.Client
	sentry      *metrics.SentryMetrics
	predictions CallCounter
}

// NewCompositionService wires the pipeline stages
func NewCompositionService(
	db *gorm.DB,
	classifier SentimentClassifier,
	lyricWriter LyricWriter,
	composer ScoreComposer,
	defaults Defaults,
) *CompositionService {
	return &CompositionService{
		db:         db,
		classifier: classifier,
		lyrics:     lyricWriter,
		composer:   composer,
		defaults:   defaults,
	}
}

// WithAudio enables WAV rendering next to the saved MIDI files
func (s *CompositionService) WithAudio(r *render.AudioRenderer) *CompositionService {
	s.audio = r
	return s
}

// WithMetrics attaches CloudWatch and Sentry recorders and an optional prediction counter
func (s *CompositionService) WithMetrics(cw *metrics.Client, sm *metrics.SentryMetrics, predictions CallCounter) *CompositionService {
	s.cloudwatch = cw
	s.sentry = sm
	s.predictions = predictions
	return s
}

type resolved struct {
	seed       uint64
	songLength float64
	verses     int
}

func (s *CompositionService) resolve(req models.CompositionRequest) (resolved, error) {
	r := resolved{songLength: s.defaults.SongLength, verses: s.defaults.Verses}
	if req.SongLength != nil {
		r.songLength = *req.SongLength
	}
	if req.Verses != nil {
		r.verses = *req.Verses
	}
	if req.Seed != nil {
		r.seed = *req.Seed
	} else {
		r.seed = uint64(rand.Int64())
	}

	switch {
	case strings.TrimSpace(req.Prompt) == "" && req.Sentiment == "":
		return r, fmt.Errorf("%w: prompt or sentiment is required", ErrInvalidRequest)
	case r.seed > math.MaxInt64:
		return r, fmt.Errorf("%w: seed must be at most %d", ErrInvalidRequest, int64(math.MaxInt64))
	case r.songLength <= 0 || r.songLength > maxSongLength:
		return r, fmt.Errorf("%w: song_length must be in (0, %d]", ErrInvalidRequest, maxSongLength)
	case r.verses < 0 || r.verses > maxVerses:
		return r, fmt.Errorf("%w: verses must be in [0, %d]", ErrInvalidRequest, maxVerses)
	}
	return r, nil
}

// Create classifies the prompt (unless a sentiment is given), composes music and lyrics
// concurrently, renders MIDI and stores the composition. A failed composition is stored
// with its error before the error is returned.
func (s *CompositionService) Create(ctx context.Context, userID string, req models.CompositionRequest) (*models.Composition, error) {
	params, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	record := &models.Composition{
		ID:         uuid.New().String(),
		UserID:     userID,
		Prompt:     strings.TrimSpace(req.Prompt),
		Seed:       int64(params.seed),
		SongLength: params.songLength,
	}

	trace := observability.GetClient().StartTrace(ctx, "composition", map[string]interface{}{
		"composition_id": record.ID,
		"seed":           params.seed,
	})
	defer trace.Finish()
	ctx = observability.ContextWithTrace(ctx, trace)

	mood, confidence, err := s.sentiment(ctx, req)
	if err != nil {
		return nil, err
	}
	record.Sentiment = mood.String()
	record.Confidence = confidence

	calls := s.predictionCalls()
	score, verses, err := s.generate(ctx, mood, params)
	if err != nil {
		s.fail(ctx, record, start, err)
		return nil, err
	}

	record.Key = score.Key
	record.Lyrics = verses
	record.Tracks = make([]models.TrackSummary, len(score.Tracks))
	for i, t := range score.Tracks {
		record.Tracks[i] = models.Summarize(t)
	}

	record.MIDI, err = render.EncodeMIDI(score, verses)
	if err != nil {
		s.fail(ctx, record, start, err)
		return nil, err
	}
	s.writeFiles(ctx, record, score)

	record.Status = models.CompositionCompleted
	record.DurationMs = time.Since(start).Milliseconds()
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("save composition: %w", err)
	}

	s.observe(ctx, record, score, s.predictionCalls()-calls, time.Since(start), true)
	return record, nil
}

func (s *CompositionService) sentiment(ctx context.Context, req models.CompositionRequest) (models.Sentiment, float64, error) {
	if req.Sentiment != "" {
		mood, err := models.ParseSentiment(req.Sentiment)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return mood, 1, nil
	}

	if s.classifier == nil {
		return "", 0, fmt.Errorf("%w: sentiment classification is unavailable, pass a sentiment", ErrInvalidRequest)
	}
	result, err := s.classifier.Classify(ctx, req.Prompt)
	if err != nil {
		if errors.Is(err, sentiment.ErrEmptyPrompt) {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return "", 0, err
	}
	return result.Sentiment, result.Confidence, nil
}

// generate composes the score and writes lyrics at the same time. Lyrics are best
// effort: whatever verses were accepted are kept when the generator falls short.
func (s *CompositionService) generate(ctx context.Context, mood models.Sentiment, p resolved) (models.Score, []string, error) {
	var (
		score  models.Score
		verses []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rng := rand.New(rand.NewPCG(p.seed, p.seed^seedMix))
		var err error
		score, err = s.composer.Compose(gctx, rng, mood, p.songLength)
		return err
	})
	if p.verses > 0 && s.lyrics != nil {
		g.Go(func() error {
			var err error
			verses, err = s.lyrics.Generate(gctx, mood, p.verses)
			if err != nil {
				logger.Warn("Lyrics incomplete", logger.Fields{
					"sentiment": mood.String(),
					"verses":    len(verses),
					"error":     err.Error(),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Score{}, nil, err
	}
	return score, verses, nil
}

// writeFiles saves the MIDI file, the MusicXML score and, when configured, the WAV
// rendering, and records the score and audio paths. Failures are logged and leave the
// paths empty.
func (s *CompositionService) writeFiles(ctx context.Context, record *models.Composition, score models.Score) {
	if s.defaults.OutputDir == "" {
		return
	}

	midiPath := filepath.Join(s.defaults.OutputDir, record.ID+".mid")
	if err := os.MkdirAll(s.defaults.OutputDir, 0o755); err != nil {
		logger.Warn("Could not create output dir", logger.Fields{"error": err.Error()})
		return
	}
	if err := os.WriteFile(midiPath, record.MIDI, 0o644); err != nil {
		logger.Warn("Could not save MIDI file", logger.Fields{"path": midiPath, "error": err.Error()})
		return
	}

	scorePath := filepath.Join(s.defaults.OutputDir, record.ID+".musicxml")
	title := fmt.Sprintf("moodsic: %s", record.Sentiment)
	if err := render.SaveMusicXML(scorePath, score, title); err != nil {
		logger.Warn("Could not save MusicXML score", logger.Fields{"path": scorePath, "error": err.Error()})
	} else {
		record.ScorePath = scorePath
	}

	if !s.audio.Enabled() {
		return
	}
	wavPath := filepath.Join(s.defaults.OutputDir, record.ID+".wav")
	if err := s.audio.Render(ctx, midiPath, wavPath); err != nil {
		return
	}
	record.AudioPath = wavPath
}

func (s *CompositionService) fail(ctx context.Context, record *models.Composition, start time.Time, cause error) {
	record.Status = models.CompositionFailed
	record.Error = cause.Error()
	record.DurationMs = time.Since(start).Milliseconds()
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(record).Error; err != nil {
		logger.Error("Failed to save failed composition", err, logger.Fields{"composition_id": record.ID})
	}
	logger.Error("Composition failed", cause, logger.Fields{
		"composition_id": record.ID,
		"sentiment":      record.Sentiment,
	})
	s.cloudwatch.RecordComposition(record.Sentiment, time.Since(start), false)
	s.sentry.RecordComposition(ctx, record.Sentiment, 0, time.Since(start), false)
}

func (s *CompositionService) observe(ctx context.Context, record *models.Composition, score models.Score, calls int64, elapsed time.Duration, success bool) {
	logger.LogComposition(ctx, record.Sentiment, elapsed, len(score.Tracks), logger.Fields{
		"composition_id": record.ID,
		"key":            record.Key,
		"verses":         len(record.Lyrics),
		"predictions":    calls,
	})
	s.cloudwatch.RecordComposition(record.Sentiment, elapsed, success)
	s.cloudwatch.RecordPredictionCalls(calls)
	for _, t := range score.Tracks {
		s.cloudwatch.RecordKeyFit(record.Sentiment, t.Attempts, t.KeyMatched)
	}
	s.sentry.RecordComposition(ctx, record.Sentiment, len(score.Tracks), elapsed, success)
}

func (s *CompositionService) predictionCalls() int64 {
	if s.predictions == nil {
		return 0
	}
	return s.predictions.Calls()
}

// Get loads one composition without its MIDI payload
func (s *CompositionService) Get(ctx context.Context, id string) (*models.Composition, error) {
	var c models.Composition
	err := s.db.WithContext(ctx).Omit("midi").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load composition: %w", err)
	}
	return &c, nil
}

// List returns compositions newest first, optionally restricted to one user
func (s *CompositionService) List(ctx context.Context, userID string, limit, offset int) ([]models.Composition, int64, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	offset = max(offset, 0)

	owned := func(db *gorm.DB) *gorm.DB {
		if userID != "" {
			return db.Where("user_id = ?", userID)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Composition{}).Scopes(owned).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count compositions: %w", err)
	}

	var out []models.Composition
	err := s.db.WithContext(ctx).Scopes(owned).Omit("midi").Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list compositions: %w", err)
	}
	return out, total, nil
}

// MIDI returns the stored Standard MIDI File of a composition
func (s *CompositionService) MIDI(ctx context.Context, id string) ([]byte, error) {
	var c models.Composition
	err := s.db.WithContext(ctx).Select("id", "midi", "status").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load midi: %w", err)
	}
	if len(c.MIDI) == 0 {
		return nil, ErrNotFound
	}
	return c.MIDI, nil
}
