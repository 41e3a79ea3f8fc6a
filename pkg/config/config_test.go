package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/clip"
	"github.com/user/vidreview/pkg/overlay"
	"github.com/user/vidreview/pkg/ports"
)

func TestDefaults_MatchEngine(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	got := cfg.ClipOptions()
	want := clip.DefaultOptions()
	if got.PreRoll != want.PreRoll || got.PostRoll != want.PostRoll {
		t.Errorf("window %v/%v, want %v/%v", got.PreRoll, got.PostRoll, want.PreRoll, want.PostRoll)
	}
	if got.SeekTimeout != time.Second || got.SuccessDelay != 2*time.Second || got.ErrorDelay != 3*time.Second {
		t.Errorf("unexpected delays: %+v", got)
	}
	if len(got.Formats) != len(clip.DefaultFormats) || got.Fallback != "image/gif" {
		t.Errorf("unexpected formats: %v / %s", got.Formats, got.Fallback)
	}

	if cfg.MatchOptions() != annotations.DefaultMatch {
		t.Errorf("match options %+v, want %+v", cfg.MatchOptions(), annotations.DefaultMatch)
	}

	theme := cfg.Theme()
	def := overlay.DefaultTheme()
	if theme.EntityColor != def.EntityColor || theme.MarkerColor != def.MarkerColor {
		t.Errorf("colours %v/%v, want %v/%v", theme.EntityColor, theme.MarkerColor, def.EntityColor, def.MarkerColor)
	}
	if cfg.Level() != ports.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.Level())
	}
}

func TestDefaults_FormatsAreCopied(t *testing.T) {
	cfg := Defaults()
	cfg.Clip.Formats[0] = "video/ogg"
	if clip.DefaultFormats[0] == "video/ogg" {
		t.Error("Defaults must not alias clip.DefaultFormats")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidreview.yaml")
	content := `
clip:
  pre_roll: 1.5
  seek_timeout: 500ms
  formats:
    - video/webm
overlay:
  entity_color: "#ff0000"
  match_window: 0.2
player:
  fps: 30
  width: 1280
  height: 720
output_dir: clips
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Clip.PreRoll != 1.5 || cfg.Clip.PostRoll != 3 {
		t.Errorf("expected pre 1.5 / post 3, got %v / %v", cfg.Clip.PreRoll, cfg.Clip.PostRoll)
	}
	if cfg.Clip.SeekTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms seek timeout, got %v", cfg.Clip.SeekTimeout)
	}
	if len(cfg.Clip.Formats) != 1 || cfg.Clip.Formats[0] != "video/webm" {
		t.Errorf("unexpected formats %v", cfg.Clip.Formats)
	}
	if cfg.Theme().EntityColor != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("unexpected entity colour %v", cfg.Theme().EntityColor)
	}
	if cfg.MatchOptions().Window != 0.2 || cfg.MatchOptions().Lookahead != 0.5 {
		t.Errorf("unexpected match options %+v", cfg.MatchOptions())
	}
	opts := cfg.PlayerOptions()
	if opts.Hint != (ports.Size{Width: 1280, Height: 720}) {
		t.Errorf("unexpected hint %+v", opts.Hint)
	}
	if cfg.OutputDir != "clips" || cfg.Level() != ports.LevelDebug {
		t.Errorf("unexpected output %s / level %v", cfg.OutputDir, cfg.Level())
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("clip: [unclosed"), 0644)
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("overlay:\n  match_window: 0.8\n"), 0644)
	if _, err := LoadFromFile(invalid); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative pre roll", func(c *Config) { c.Clip.PreRoll = -1 }},
		{"empty window", func(c *Config) { c.Clip.PreRoll, c.Clip.PostRoll = 0, 0 }},
		{"zero seek timeout", func(c *Config) { c.Clip.SeekTimeout = 0 }},
		{"no fallback", func(c *Config) { c.Clip.Fallback = "" }},
		{"zero match window", func(c *Config) { c.Overlay.MatchWindow = 0 }},
		{"zero fps", func(c *Config) { c.Player.FPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected color.Color
	}{
		{"#00ffff", color.RGBA{0, 255, 255, 255}},
		{"FFA500", color.RGBA{255, 165, 0, 255}},
		{"#f00", color.RGBA{255, 0, 0, 255}},
		{" #112233 ", color.RGBA{0x11, 0x22, 0x33, 255}},
		{"", color.Black},
		{"#12345", color.Black},
		{"#gggggg", color.Black},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseColor(tt.input); got != tt.expected {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
