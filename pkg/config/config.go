// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/clip"
	"github.com/user/vidreview/pkg/overlay"
	"github.com/user/vidreview/pkg/player"
	"github.com/user/vidreview/pkg/ports"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for vidreview.
type Config struct {
	Clip     ClipConfig     `yaml:"clip"`
	Overlay  OverlayConfig  `yaml:"overlay"`
	Player   PlayerConfig   `yaml:"player"`
	Recorder RecorderConfig `yaml:"recorder"`

	OutputDir  string `yaml:"output_dir"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	LogLevel   string `yaml:"log_level"`
}

// ClipConfig controls the clip extractor.
type ClipConfig struct {
	PreRoll      float64       `yaml:"pre_roll"`
	PostRoll     float64       `yaml:"post_roll"`
	SeekTimeout  time.Duration `yaml:"seek_timeout"`
	SuccessDelay time.Duration `yaml:"success_delay"`
	ErrorDelay   time.Duration `yaml:"error_delay"`
	Formats      []string      `yaml:"formats"`
	Fallback     string        `yaml:"fallback"`
}

// OverlayConfig controls frame matching and box drawing.
type OverlayConfig struct {
	MatchWindow float64 `yaml:"match_window"`
	Lookahead   float64 `yaml:"lookahead"`
	EntityColor string  `yaml:"entity_color"`
	MarkerColor string  `yaml:"marker_color"`
	LineWidth   float64 `yaml:"line_width"`
	FontSize    float64 `yaml:"font_size"`
	FontPath    string  `yaml:"font_path"`
}

// PlayerConfig describes the simulated playback surface.
type PlayerConfig struct {
	FPS float64 `yaml:"fps"`
	// Width and Height are the resolution hint used until metadata loads.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RecorderConfig tunes the clip encoders.
type RecorderConfig struct {
	Quality     int `yaml:"quality"`
	Bitrate     int `yaml:"bitrate"`
	GIFMaxWidth int `yaml:"gif_max_width"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	clipOpts := clip.DefaultOptions()
	return Config{
		Clip: ClipConfig{
			PreRoll:      clipOpts.PreRoll,
			PostRoll:     clipOpts.PostRoll,
			SeekTimeout:  clipOpts.SeekTimeout,
			SuccessDelay: clipOpts.SuccessDelay,
			ErrorDelay:   clipOpts.ErrorDelay,
			Formats:      append([]string(nil), clipOpts.Formats...),
			Fallback:     clipOpts.Fallback,
		},
		Overlay: OverlayConfig{
			MatchWindow: annotations.DefaultMatch.Window,
			Lookahead:   annotations.DefaultMatch.Lookahead,
			EntityColor: "#00ffff",
			MarkerColor: "#ffa500",
			LineWidth:   2,
			FontSize:    12,
		},
		Player: PlayerConfig{
			FPS: 25,
		},
		Recorder: RecorderConfig{
			GIFMaxWidth: 480,
		},
		OutputDir: ".",
		LogLevel:  "info",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Clip.PreRoll < 0 || c.Clip.PostRoll < 0:
		return fmt.Errorf("%w: clip pre_roll and post_roll must not be negative", ErrInvalid)
	case c.Clip.PreRoll+c.Clip.PostRoll <= 0:
		return fmt.Errorf("%w: clip window is empty", ErrInvalid)
	case c.Clip.SeekTimeout <= 0:
		return fmt.Errorf("%w: clip seek_timeout must be positive", ErrInvalid)
	case c.Clip.Fallback == "":
		return fmt.Errorf("%w: clip fallback must be set", ErrInvalid)
	case c.Overlay.MatchWindow <= 0:
		return fmt.Errorf("%w: overlay match_window must be positive", ErrInvalid)
	case c.Overlay.Lookahead < c.Overlay.MatchWindow:
		return fmt.Errorf("%w: overlay lookahead must be at least match_window", ErrInvalid)
	case c.Player.FPS <= 0:
		return fmt.Errorf("%w: player fps must be positive", ErrInvalid)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// ClipOptions converts the clip section to extractor options.
func (c Config) ClipOptions() clip.Options {
	return clip.Options{
		PreRoll:      c.Clip.PreRoll,
		PostRoll:     c.Clip.PostRoll,
		SeekTimeout:  c.Clip.SeekTimeout,
		SuccessDelay: c.Clip.SuccessDelay,
		ErrorDelay:   c.Clip.ErrorDelay,
		Formats:      append([]string(nil), c.Clip.Formats...),
		Fallback:     c.Clip.Fallback,
	}
}

// MatchOptions converts the overlay matching settings.
func (c Config) MatchOptions() annotations.MatchOptions {
	return annotations.MatchOptions{Window: c.Overlay.MatchWindow, Lookahead: c.Overlay.Lookahead}
}

// Theme converts the overlay drawing settings.
func (c Config) Theme() overlay.Theme {
	return overlay.Theme{
		EntityColor: ParseColor(c.Overlay.EntityColor),
		MarkerColor: ParseColor(c.Overlay.MarkerColor),
		LineWidth:   c.Overlay.LineWidth,
		FontSize:    c.Overlay.FontSize,
		FontPath:    c.Overlay.FontPath,
	}
}

// PlayerOptions assembles the session options.
func (c Config) PlayerOptions() player.Options {
	return player.Options{
		Clip:  c.ClipOptions(),
		Theme: c.Theme(),
		Match: c.MatchOptions(),
		Hint:  ports.Size{Width: c.Player.Width, Height: c.Player.Height},
	}
}

// EncoderOptions returns the recorder quality settings.
func (c Config) EncoderOptions() ports.EncoderOptions {
	return ports.EncoderOptions{Quality: c.Recorder.Quality, Bitrate: c.Recorder.Bitrate}
}

// ParseColor parses "#rrggbb" or "#rgb". Malformed input yields black.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
