package composer

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/moodsic-api/internal/models"
	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"
)

// SongComposer turns a sentiment into a multi-track score
type SongComposer struct {
	params *ParameterSampler
	fitter *KeyFitter
}

// NewSongComposer builds a composer from its stages
func NewSongComposer(params *ParameterSampler, sampler TokenSampler) *SongComposer {
	return &SongComposer{
		params: params,
		fitter: NewKeyFitter(sampler),
	}
}

// Compose samples plans for the sentiment and generates one track per plan
func (c *SongComposer) Compose(ctx context.Context, rng *rand.Rand, sentiment models.Sentiment, songLength float64) (models.Score, error) {
	plans, err := c.params.Sample(rng, sentiment)
	if err != nil {
		return models.Score{}, err
	}
	score, err := c.ComposeWithPlans(ctx, rng, plans, songLength)
	if err != nil {
		return models.Score{}, err
	}
	score.Sentiment = sentiment
	return score, nil
}

// ComposeWithPlans generates the tracks concurrently. Each track gets its own random
// source derived from rng up front, so the result does not depend on scheduling.
// The first failing track cancels the rest.
func (c *SongComposer) ComposeWithPlans(ctx context.Context, rng *rand.Rand, plans []models.MelodyPlan, songLength float64) (models.Score, error) {
	if len(plans) == 0 {
		return models.Score{}, fmt.Errorf("no melody plans: %w", ErrInvalidPlan)
	}

	span := sentry.StartSpan(ctx, "composition.compose")
	span.SetData("tracks", len(plans))
	span.SetData("song_length", songLength)
	defer span.Finish()

	// feasibility of every plan is checked before any prediction is spent
	for i, plan := range plans {
		if err := CheckFeasible(plan, songLength); err != nil {
			span.Status = sentry.SpanStatusInvalidArgument
			return models.Score{}, fmt.Errorf("track %d: %w", i, err)
		}
	}

	rngs := make([]*rand.Rand, len(plans))
	for i := range rngs {
		rngs[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}

	tracks := make([]models.Track, len(plans))
	g, gctx := errgroup.WithContext(span.Context())
	for i, plan := range plans {
		g.Go(func() error {
			child := sentry.StartSpan(gctx, "composition.track")
			child.SetTag("instrument", string(plan.Instrument))
			defer child.Finish()

			track, err := c.fitter.Fit(child.Context(), rngs[i], songLength, plan)
			if err != nil {
				child.Status = sentry.SpanStatusInternalError
				return fmt.Errorf("track %d: %w", i, err)
			}
			child.SetData("attempts", track.Attempts)
			tracks[i] = track
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return models.Score{}, err
	}

	return models.Score{
		SongLength: songLength,
		Key:        plans[0].Key,
		Tracks:     tracks,
	}, nil
}
