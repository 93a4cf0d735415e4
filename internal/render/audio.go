package render

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
)

// SampleRate of rendered audio
const SampleRate = 44100

// ErrAudioDisabled is returned when fluidsynth or the soundfont is not configured
var ErrAudioDisabled = errors.New("audio rendering is not configured")

// AudioRenderer turns MIDI files into WAV through the fluidsynth CLI
type AudioRenderer struct {
	fluidsynth string
	soundfont  string
}

// NewAudioRenderer builds a renderer; empty paths leave it disabled
func NewAudioRenderer(fluidsynthPath, soundfontPath string) *AudioRenderer {
	return &AudioRenderer{fluidsynth: fluidsynthPath, soundfont: soundfontPath}
}

// Enabled reports whether both the binary and soundfont are configured
func (r *AudioRenderer) Enabled() bool {
	return r != nil && r.fluidsynth != "" && r.soundfont != ""
}

// Render synthesizes midiPath into wavPath
func (r *AudioRenderer) Render(ctx context.Context, midiPath, wavPath string) error {
	if !r.Enabled() {
		return ErrAudioDisabled
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.fluidsynth, r.args(midiPath, wavPath)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Warn("Could not convert to audio", logger.Fields{
			"midi":   midiPath,
			"output": strings.TrimSpace(string(out)),
			"error":  err.Error(),
		})
		return fmt.Errorf("fluidsynth: %w", err)
	}

	logger.Info("Audio rendered", logger.Fields{
		"wav":         wavPath,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (r *AudioRenderer) args(midiPath, wavPath string) []string {
	return []string{r.soundfont, midiPath, "-F", wavPath, "-r", fmt.Sprint(SampleRate), "-q"}
}
