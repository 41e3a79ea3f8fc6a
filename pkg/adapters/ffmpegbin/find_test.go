package ffmpegbin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D libopus              libopus Opus (codec opus)
 V....D gif                  GIF (Graphics Interchange Format)
`

func TestParseEncoders(t *testing.T) {
	got := ParseEncoders(encodersOutput)

	for _, name := range []string{"libx264", "libvpx", "libvpx-vp9", "gif"} {
		if !got[name] {
			t.Errorf("expected %s to be listed", name)
		}
	}
	if got["libopus"] {
		t.Error("audio encoders must be skipped")
	}
	if got["="] || got["Video"] {
		t.Error("legend lines must be skipped")
	}
}

func TestFind_CustomPath(t *testing.T) {
	defer SetPath("")

	fake := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write fake: %v", err)
	}

	SetPath(fake)
	got, err := Find()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fake {
		t.Errorf("expected %s, got %s", fake, got)
	}

	SetPath(filepath.Join(t.TempDir(), "missing"))
	if _, err := Find(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFind_EnvPath(t *testing.T) {
	t.Setenv("VIDREVIEW_FFMPEG", filepath.Join(t.TempDir(), "nope"))
	if _, err := Find(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing env path, got %v", err)
	}
}
