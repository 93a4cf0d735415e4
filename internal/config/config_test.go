package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "DATABASE_URL", "AUTH_MODE", "SONG_LENGTH",
		"VERSES", "MAX_MELODIES", "STALL_FACTOR", "PREDICTION_TIMEOUT", "LANGFUSE_ENABLED",
		"FLUIDSYNTH_PATH", "SOUNDFONT_PATH"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "moodsic.sqlite3", cfg.DatabaseURL)
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.Equal(t, 128.0, cfg.SongLength)
	assert.Equal(t, 4, cfg.Verses)
	assert.Equal(t, 4, cfg.MaxMelodies)
	assert.Equal(t, 64, cfg.StallFactor)
	assert.Equal(t, 5*time.Second, cfg.PredictionTimeout)
	assert.False(t, cfg.LangfuseEnabled)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.AudioEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_MODE", "gateway")
	t.Setenv("SONG_LENGTH", "64.5")
	t.Setenv("VERSES", "6")
	t.Setenv("PREDICTION_TIMEOUT", "750ms")
	t.Setenv("LANGFUSE_ENABLED", "true")
	t.Setenv("FLUIDSYNTH_PATH", "/usr/bin/fluidsynth")
	t.Setenv("SOUNDFONT_PATH", "/sf/gm.sf2")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.IsGatewayMode())
	assert.Equal(t, 64.5, cfg.SongLength)
	assert.Equal(t, 6, cfg.Verses)
	assert.Equal(t, 750*time.Millisecond, cfg.PredictionTimeout)
	assert.True(t, cfg.LangfuseEnabled)
	assert.True(t, cfg.AudioEnabled())
}

func TestTypedHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "many")
	t.Setenv("X_FLOAT", "lots")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "perhaps")

	assert.Equal(t, 3, getEnvInt("X_INT", 3))
	assert.Equal(t, 1.5, getEnvFloat("X_FLOAT", 1.5))
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	assert.True(t, getEnvBool("X_BOOL", true))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("X_LIST", " https://a.example, ,https://b.example ")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("X_LIST", nil))

	t.Setenv("X_LIST", " , ")
	assert.Equal(t, []string{"*"}, getEnvList("X_LIST", []string{"*"}))
}
