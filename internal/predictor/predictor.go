package predictor

import (
	"context"
	"fmt"
	"time"
)

// Predictor maps a feature window to a probability distribution over vocabulary ids
type Predictor interface {
	Predict(ctx context.Context, window []float64) ([]float64, error)
}

// PredictionTimeoutError is returned when every attempt ran past its deadline
type PredictionTimeoutError struct {
	Attempts int
	Timeout  time.Duration
}

func (e *PredictionTimeoutError) Error() string {
	return fmt.Sprintf("prediction timed out after %d attempts of %s", e.Attempts, e.Timeout)
}
