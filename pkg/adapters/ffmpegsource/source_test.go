package ffmpegsource

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/ports"
)

func TestNeedsRestart(t *testing.T) {
	tests := []struct {
		name    string
		running bool
		start   float64
		read    int
		seconds float64
		want    bool
	}{
		{"not running", false, 0, 0, 1, true},
		{"fresh decoder at start", true, 5, 0, 5, false},
		{"next frame", true, 0, 10, 1.0, false},
		{"same frame", true, 0, 10, 0.9, false},
		{"backwards", true, 0, 10, 0.5, true},
		{"short skip", true, 0, 10, 2.5, false},
		{"long skip", true, 0, 10, 3.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := needsRestart(tt.running, tt.start, tt.read, 10, tt.seconds)
			if got != tt.want {
				t.Errorf("needsRestart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresSize(t *testing.T) {
	if _, err := New("x.mp4", ports.Size{}, 25); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestSource_Closed(t *testing.T) {
	s, err := New("x.mp4", ports.Size{Width: 4, Height: 4}, 10)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := s.FrameAt(0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestSource_Decodes(t *testing.T) {
	ffmpeg, err := ffmpegbin.Find()
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	video := filepath.Join(t.TempDir(), "testsrc.mp4")
	cmd := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-t", "2", "-c:v", "mpeg4", video)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test video: %v: %s", err, out)
	}

	s, err := New(video, ports.Size{Width: 32, Height: 24}, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, at := range []float64{0, 0.3, 1.0, 0.2, 1.9, 3.5} {
		img, err := s.FrameAt(at)
		if err != nil {
			t.Fatalf("FrameAt(%.1f): %v", at, err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
			t.Errorf("FrameAt(%.1f): size %dx%d", at, b.Dx(), b.Dy())
		}
	}
}
