package predictor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
)

// Resilient bounds every prediction with a timeout and retries failed attempts
type Resilient struct {
	next    Predictor
	timeout time.Duration
	retries int
	backoff time.Duration
	calls   atomic.Int64
}

// NewResilient wraps next. retries is the number of extra attempts after the first.
func NewResilient(next Predictor, timeout time.Duration, retries int) *Resilient {
	if retries < 0 {
		retries = 0
	}
	return &Resilient{
		next:    next,
		timeout: timeout,
		retries: retries,
		backoff: 100 * time.Millisecond,
	}
}

// Predict tries up to retries+1 times. A canceled parent context stops immediately.
func (r *Resilient) Predict(ctx context.Context, window []float64) ([]float64, error) {
	attempts := r.retries + 1
	timedOut := 0
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		r.calls.Add(1)
		probs, err := r.attempt(ctx, window)
		if err == nil {
			return probs, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) {
			timedOut++
		}
		logger.Warn("Prediction attempt failed", logger.Fields{
			"attempt": attempt,
			"of":      attempts,
			"error":   err.Error(),
		})

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}
	}

	if timedOut == attempts {
		return nil, &PredictionTimeoutError{Attempts: attempts, Timeout: r.timeout}
	}
	return nil, fmt.Errorf("prediction failed after %d attempts: %w", attempts, lastErr)
}

func (r *Resilient) attempt(ctx context.Context, window []float64) ([]float64, error) {
	if r.timeout <= 0 {
		return r.next.Predict(ctx, window)
	}
	actx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Predict(actx, window)
}

// Calls returns the number of attempts made so far
func (r *Resilient) Calls() int64 {
	return r.calls.Load()
}
