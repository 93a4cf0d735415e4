package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Auth modes
const (
	AuthModeNone    = "none"    // no auth (self-hosted, local dev)
	AuthModeGateway = "gateway" // trust X-User-* headers from an upstream gateway
	AuthModeJWT     = "jwt"     // validate HS256 bearer tokens signed with JWTSecret
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string
	CORSOrigins []string

	// Storage: a postgres:// DSN or a SQLite file path
	DatabaseURL string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// LLM models for the text collaborators
	ClassifierModel string
	LyricsModel     string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth
	AuthMode  string
	JWTSecret string

	// Sequence model serving
	ModelServerURL    string
	ModelName         string
	PredictionTimeout time.Duration
	PredictionRetries int

	// Generation artifacts and defaults
	VocabularyPath string
	SeedsPath      string
	SongLength     float64
	Verses         int
	MaxMelodies    int
	StallFactor    int

	// Rendering
	OutputDir      string
	FluidSynthPath string
	SoundFontPath  string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"*"}),
		DatabaseURL:       getEnv("DATABASE_URL", "moodsic.sqlite3"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", "gpt-5-mini"),
		LyricsModel:       getEnv("LYRICS_MODEL", "gpt-5-mini"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnvBool("LANGFUSE_ENABLED", false),
		AuthMode:          getEnv("AUTH_MODE", AuthModeNone),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		ModelServerURL:    getEnv("MODEL_SERVER_URL", "http://localhost:8501"),
		ModelName:         getEnv("MODEL_NAME", "melody"),
		PredictionTimeout: getEnvDuration("PREDICTION_TIMEOUT", 5*time.Second),
		PredictionRetries: getEnvInt("PREDICTION_RETRIES", 2),
		VocabularyPath:    getEnv("VOCABULARY_PATH", "artifacts/vocabulary.json"),
		SeedsPath:         getEnv("SEEDS_PATH", "artifacts/seeds.json"),
		SongLength:        getEnvFloat("SONG_LENGTH", 128),
		Verses:            getEnvInt("VERSES", 4),
		MaxMelodies:       getEnvInt("MAX_MELODIES", 4),
		StallFactor:       getEnvInt("STALL_FACTOR", 64),
		OutputDir:         getEnv("OUTPUT_DIR", "output"),
		FluidSynthPath:    getEnv("FLUIDSYNTH_PATH", ""),
		SoundFontPath:     getEnv("SOUNDFONT_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsProduction reports whether production-only integrations (CloudWatch) are active
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AudioEnabled reports whether fluidsynth rendering is configured
func (c *Config) AudioEnabled() bool {
	return c.FluidSynthPath != "" && c.SoundFontPath != ""
}
