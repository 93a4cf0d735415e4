package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/api"
	"github.com/Conceptual-Machines/moodsic-api/internal/composer"
	"github.com/Conceptual-Machines/moodsic-api/internal/config"
	"github.com/Conceptual-Machines/moodsic-api/internal/database"
	"github.com/Conceptual-Machines/moodsic-api/internal/llm"
	"github.com/Conceptual-Machines/moodsic-api/internal/lyrics"
	"github.com/Conceptual-Machines/moodsic-api/internal/metrics"
	"github.com/Conceptual-Machines/moodsic-api/internal/observability"
	"github.com/Conceptual-Machines/moodsic-api/internal/predictor"
	"github.com/Conceptual-Machines/moodsic-api/internal/render"
	"github.com/Conceptual-Machines/moodsic-api/internal/sentiment"
	"github.com/Conceptual-Machines/moodsic-api/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "moodsic-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	observability.InitializeLangfuse(ctx, cfg)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to run migrations:", err)
	}

	// Generation artifacts are read once and shared read-only by every request
	vocab, err := composer.LoadVocabularyFile(cfg.VocabularyPath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load vocabulary:", err)
	}
	seeds, err := composer.LoadSeedPoolFile(cfg.SeedsPath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to load seeds:", err)
	}
	log.Printf("🎼 Loaded vocabulary (%d tokens) and %d seed windows", vocab.Size(), seeds.Len())

	modelServer := predictor.NewTFServingClient(cfg.ModelServerURL, cfg.ModelName)
	predictions := predictor.NewResilient(modelServer, cfg.PredictionTimeout, cfg.PredictionRetries)
	if !modelServer.Ready(ctx) {
		log.Printf("⚠️  Model server %s is not ready yet (model: %s)", cfg.ModelServerURL, cfg.ModelName)
	}

	params := composer.NewParameterSampler(cfg.MaxMelodies)
	songComposer := composer.NewSongComposer(params, composer.NewNoteSampler(vocab, predictions, seeds, cfg.StallFactor))

	var (
		classifier services.SentimentClassifier
		lyricWriter services.LyricWriter
	)
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	if provider, err := factory.GetProvider(ctx, cfg.ClassifierModel, ""); err != nil {
		log.Printf("⚠️  Sentiment classifier disabled: %v", err)
	} else if c, err := sentiment.NewClassifier(provider, cfg.ClassifierModel); err != nil {
		log.Fatal("Failed to build sentiment classifier:", err)
	} else {
		classifier = c
	}
	if provider, err := factory.GetProvider(ctx, cfg.LyricsModel, ""); err != nil {
		log.Printf("⚠️  Lyric generation disabled: %v", err)
	} else if g, err := lyrics.NewGenerator(provider, cfg.LyricsModel); err != nil {
		log.Fatal("Failed to build lyric generator:", err)
	} else {
		lyricWriter = g
	}

	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	compositions := services.NewCompositionService(db, classifier, lyricWriter, songComposer, services.Defaults{
		SongLength: cfg.SongLength,
		Verses:     cfg.Verses,
		OutputDir:  cfg.OutputDir,
	}).
		WithAudio(render.NewAudioRenderer(cfg.FluidSynthPath, cfg.SoundFontPath)).
		WithMetrics(cloudwatch, metrics.NewSentryMetrics(), predictions)
	if !cfg.AudioEnabled() {
		log.Println("🔇 Audio rendering disabled (FLUIDSYNTH_PATH or SOUNDFONT_PATH not set)")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, api.Dependencies{
		DB:           db,
		Compositions: compositions,
		Params:       params,
		ModelReady:   modelServer.Ready,
		Predictions:  predictions,
		CloudWatch:   cloudwatch,
	}, GetVersion())

	log.Printf("🚀 Starting server on port %s (auth: %s)", cfg.Port, cfg.AuthMode)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
