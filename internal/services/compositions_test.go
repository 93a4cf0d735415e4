package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/database"
	"github.com/Conceptual-Machines/moodsic-api/internal/lyrics"
	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/Conceptual-Machines/moodsic-api/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClassifier struct {
	result sentiment.Result
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (sentiment.Result, error) {
	f.calls++
	if text == "" {
		return sentiment.Result{}, sentiment.ErrEmptyPrompt
	}
	return f.result, f.err
}

type fakeLyrics struct {
	verses []string
	err    error
}

func (f *fakeLyrics) Generate(_ context.Context, _ models.Sentiment, n int) ([]string, error) {
	if len(f.verses) > n {
		return f.verses[:n], f.err
	}
	return f.verses, f.err
}

type fakeComposer struct {
	err       error
	sentiment models.Sentiment
	length    float64
	firstDraw uint64
}

func (f *fakeComposer) Compose(_ context.Context, rng *rand.Rand, s models.Sentiment, songLength float64) (models.Score, error) {
	f.sentiment = s
	f.length = songLength
	f.firstDraw = rng.Uint64()
	if f.err != nil {
		return models.Score{}, f.err
	}
	return models.Score{
		Sentiment:  s,
		SongLength: songLength,
		Key:        "C",
		Tracks: []models.Track{{
			Instrument: "Piano",
			Plan:       models.MelodyPlan{Instrument: "Piano", Key: "C", NGroups: 1, Volume: 1},
			KeyMatched: true,
			Attempts:   1,
			Events: []models.MelodyEvent{
				{Kind: models.EventNote, Pitches: []int{60}, Offset: 0, Duration: 1, Velocity: 127},
				{Kind: models.EventNote, Pitches: []int{60}, Offset: 1, Duration: 4, Velocity: 127},
			},
		}},
	}, nil
}

type counter struct{ n int64 }

func (c *counter) Calls() int64 { c.n += 5; return c.n }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T, c *fakeComposer, l *fakeLyrics, cl *fakeClassifier) *CompositionService {
	return NewCompositionService(newTestDB(t), cl, l, c, Defaults{SongLength: 16, Verses: 2}).
		WithMetrics(nil, nil, &counter{})
}

func TestCreate(t *testing.T) {
	t.Run("classifies the prompt and stores the result", func(t *testing.T) {
		comp := &fakeComposer{}
		cl := &fakeClassifier{result: sentiment.Result{Sentiment: models.SentimentJoy, Confidence: 0.9}}
		svc := newService(t, comp, &fakeLyrics{verses: []string{"One", "Two", "Three"}}, cl)

		record, err := svc.Create(context.Background(), "user-1", models.CompositionRequest{Prompt: "sunshine", Seed: ptr(uint64(7))})
		require.NoError(t, err)

		assert.Equal(t, models.CompositionCompleted, record.Status)
		assert.Equal(t, "joy", record.Sentiment)
		assert.InDelta(t, 0.9, record.Confidence, 1e-9)
		assert.Equal(t, []string{"One", "Two"}, record.Lyrics)
		assert.Equal(t, "C", record.Key)
		require.Len(t, record.Tracks, 1)
		assert.Equal(t, 2, record.Tracks[0].Events)
		assert.NotEmpty(t, record.MIDI)
		assert.Equal(t, 16.0, comp.length)
		assert.Equal(t, 1, cl.calls)

		stored, err := svc.Get(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.Lyrics, stored.Lyrics)
		assert.Empty(t, stored.MIDI)

		midi, err := svc.MIDI(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.MIDI, midi)
	})

	t.Run("explicit sentiment skips the classifier", func(t *testing.T) {
		comp := &fakeComposer{}
		cl := &fakeClassifier{}
		svc := newService(t, comp, &fakeLyrics{}, cl)

		record, err := svc.Create(context.Background(), "", models.CompositionRequest{Sentiment: "Fear", SongLength: ptr(32.0), Verses: ptr(0)})
		require.NoError(t, err)
		assert.Equal(t, "fear", record.Sentiment)
		assert.Equal(t, 1.0, record.Confidence)
		assert.Equal(t, models.SentimentFear, comp.sentiment)
		assert.Equal(t, 32.0, comp.length)
		assert.Zero(t, cl.calls)
	})

	t.Run("same seed same randomness", func(t *testing.T) {
		a, b := &fakeComposer{}, &fakeComposer{}
		_, err := newService(t, a, &fakeLyrics{}, &fakeClassifier{}).Create(context.Background(), "", models.CompositionRequest{Sentiment: "joy", Seed: ptr(uint64(42))})
		require.NoError(t, err)
		_, err = newService(t, b, &fakeLyrics{}, &fakeClassifier{}).Create(context.Background(), "", models.CompositionRequest{Sentiment: "joy", Seed: ptr(uint64(42))})
		require.NoError(t, err)
		assert.Equal(t, a.firstDraw, b.firstDraw)
	})

	t.Run("returned seed replays the composition", func(t *testing.T) {
		for _, seed := range []*uint64{nil, ptr(uint64(math.MaxInt64))} {
			first := &fakeComposer{}
			record, err := newService(t, first, &fakeLyrics{}, &fakeClassifier{}).Create(context.Background(), "", models.CompositionRequest{Sentiment: "joy", Seed: seed})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, record.Seed, int64(0))

			body, err := json.Marshal(record)
			require.NoError(t, err)
			var replay models.CompositionRequest
			require.NoError(t, json.Unmarshal(body, &replay))
			require.NotNil(t, replay.Seed)
			assert.Equal(t, uint64(record.Seed), *replay.Seed)

			second := &fakeComposer{}
			again, err := newService(t, second, &fakeLyrics{}, &fakeClassifier{}).Create(context.Background(), "", replay)
			require.NoError(t, err)
			assert.Equal(t, record.Seed, again.Seed)
			assert.Equal(t, first.firstDraw, second.firstDraw)
		}
	})

	t.Run("generated seeds fit in int64", func(t *testing.T) {
		svc := newService(t, &fakeComposer{}, &fakeLyrics{}, &fakeClassifier{})
		for range 256 {
			r, err := svc.resolve(models.CompositionRequest{Sentiment: "joy"})
			require.NoError(t, err)
			assert.LessOrEqual(t, r.seed, uint64(math.MaxInt64))
		}
	})

	t.Run("short lyrics are kept", func(t *testing.T) {
		l := &fakeLyrics{verses: []string{"Only one"}, err: lyrics.ErrNotEnoughVerses}
		svc := newService(t, &fakeComposer{}, l, &fakeClassifier{})
		record, err := svc.Create(context.Background(), "", models.CompositionRequest{Sentiment: "trust"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Only one"}, record.Lyrics)
	})

	t.Run("composition failure is stored and returned", func(t *testing.T) {
		infeasible := &composer.InfeasibleSongLengthError{SongLength: 8, BarDuration: 9, NGroups: 1}
		svc := newService(t, &fakeComposer{err: infeasible}, &fakeLyrics{}, &fakeClassifier{})

		_, err := svc.Create(context.Background(), "", models.CompositionRequest{Sentiment: "joy"})
		var target *composer.InfeasibleSongLengthError
		require.ErrorAs(t, err, &target)

		list, total, err := svc.List(context.Background(), "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, models.CompositionFailed, list[0].Status)
		assert.NotEmpty(t, list[0].Error)
	})

	t.Run("classifier failure", func(t *testing.T) {
		boom := errors.New("llm down")
		svc := newService(t, &fakeComposer{}, &fakeLyrics{}, &fakeClassifier{err: boom})
		_, err := svc.Create(context.Background(), "", models.CompositionRequest{Prompt: "hello"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, &fakeComposer{}, &fakeLyrics{}, &fakeClassifier{})

	tests := []struct {
		name string
		req  models.CompositionRequest
	}{
		{name: "nothing to go on", req: models.CompositionRequest{Prompt: "  "}},
		{name: "unknown sentiment", req: models.CompositionRequest{Sentiment: "bliss"}},
		{name: "zero song length", req: models.CompositionRequest{Sentiment: "joy", SongLength: ptr(0.0)}},
		{name: "too many verses", req: models.CompositionRequest{Sentiment: "joy", Verses: ptr(maxVerses + 1)}},
		{name: "negative verses", req: models.CompositionRequest{Sentiment: "joy", Verses: ptr(-1)}},
		{name: "seed above int64", req: models.CompositionRequest{Sentiment: "joy", Seed: ptr(uint64(math.MaxInt64) + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "", tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	svc := NewCompositionService(newTestDB(t), &fakeClassifier{}, &fakeLyrics{}, &fakeComposer{}, Defaults{SongLength: 16, OutputDir: dir})

	record, err := svc.Create(context.Background(), "", models.CompositionRequest{Sentiment: "joy"})
	require.NoError(t, err)
	assert.Empty(t, record.AudioPath)

	data, err := os.ReadFile(filepath.Join(dir, record.ID+".mid"))
	require.NoError(t, err)
	assert.Equal(t, record.MIDI, data)

	assert.Equal(t, filepath.Join(dir, record.ID+".musicxml"), record.ScorePath)
	score, err := os.ReadFile(record.ScorePath)
	require.NoError(t, err)
	assert.Contains(t, string(score), "<work-title>moodsic: joy</work-title>")
	assert.Contains(t, string(score), "<part-name>Piano</part-name>")

	stored, err := svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ScorePath, stored.ScorePath)
}

func TestQueries(t *testing.T) {
	svc := newService(t, &fakeComposer{}, &fakeLyrics{}, &fakeClassifier{})
	ctx := context.Background()

	for _, user := range []string{"alice", "alice", "bob"} {
		_, err := svc.Create(ctx, user, models.CompositionRequest{Sentiment: "joy"})
		require.NoError(t, err)
	}

	t.Run("list all", func(t *testing.T) {
		list, total, err := svc.List(ctx, "", 2, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 2)
	})

	t.Run("list by user", func(t *testing.T) {
		list, total, err := svc.List(ctx, "alice", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = svc.MIDI(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateWithoutClassifier(t *testing.T) {
	svc := NewCompositionService(newTestDB(t), nil, nil, &fakeComposer{}, Defaults{SongLength: 16, Verses: 2})

	_, err := svc.Create(context.Background(), "", models.CompositionRequest{Prompt: "hello"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	record, err := svc.Create(context.Background(), "", models.CompositionRequest{Prompt: "hello", Sentiment: "joy"})
	require.NoError(t, err)
	assert.Empty(t, record.Lyrics)
}
