package metrics

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "MOODSIC/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
	environmentProduction    = "production"
)

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != environmentProduction {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}, nil
}

// Enabled reports whether metrics are actually sent
func (m *Client) Enabled() bool {
	return m != nil && m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}
		dimensions := m.dimensions("Endpoint", endpoint)

		m.put(ctx, metricName, 1, types.StandardUnitCount, dimensions)
		m.put(ctx, "APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
	}()
}

// RecordComposition records the end-to-end duration of one composition
func (m *Client) RecordComposition(sentiment string, duration time.Duration, success bool) {
	if !m.Enabled() {
		return
	}

	go func() {
		dimensions := m.dimensions("Sentiment", sentiment, "Success", strconv.FormatBool(success))
		m.put(context.Background(), "CompositionDuration", float64(duration.Milliseconds()),
			types.StandardUnitMilliseconds, dimensions)
	}()
}

// RecordKeyFit records how many attempts a track needed and whether its mode matched
func (m *Client) RecordKeyFit(sentiment string, attempts int, matched bool) {
	if !m.Enabled() {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := m.dimensions("Sentiment", sentiment)
		m.put(ctx, "KeyFitAttempts", float64(attempts), types.StandardUnitCount, dimensions)
		if !matched {
			m.put(ctx, "KeyFitMismatch", 1, types.StandardUnitCount, dimensions)
		}
	}()
}

// RecordPredictionCalls records how many model server predictions a composition used
func (m *Client) RecordPredictionCalls(calls int64) {
	if !m.Enabled() || calls <= 0 {
		return
	}

	go func() {
		m.put(context.Background(), "PredictionCalls", float64(calls), types.StandardUnitCount, m.dimensions())
	}()
}

// RecordTokenUsage records LLM token usage
func (m *Client) RecordTokenUsage(model string, totalTokens, inputTokens, outputTokens int64) {
	if !m.Enabled() {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := m.dimensions("Model", model)
		m.put(ctx, "TokenUsage/Total", float64(totalTokens), types.StandardUnitCount, dimensions)
		m.put(ctx, "TokenUsage/Input", float64(inputTokens), types.StandardUnitCount, dimensions)
		m.put(ctx, "TokenUsage/Output", float64(outputTokens), types.StandardUnitCount, dimensions)
	}()
}

// dimensions builds name/value pairs plus the environment dimension
func (m *Client) dimensions(pairs ...string) []types.Dimension {
	out := make([]types.Dimension, 0, len(pairs)/2+1)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.Dimension{Name: aws.String(pairs[i]), Value: aws.String(pairs[i+1])})
	}
	return append(out, types.Dimension{Name: aws.String("Environment"), Value: aws.String(m.environment)})
}

func (m *Client) put(ctx context.Context, metricName string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	if err := m.putMetric(ctx, metricName, value, unit, dimensions); err != nil {
		log.Printf("Failed to record %s metric: %v", metricName, err)
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.Enabled() || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})
	return err
}
