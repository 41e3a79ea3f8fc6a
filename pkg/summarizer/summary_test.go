package summarizer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/vidreview/pkg/mocks"
	"github.com/user/vidreview/pkg/ports"
)

func sampleSummary() *Summary {
	s := NewBuilder().
		WithSource("match.mp4", ports.MediaInfo{Duration: 95.5, Size: ports.Size{Width: 1280, Height: 720}, Codec: "avc1"}).
		WithSettings(Settings{PreRoll: 2, PostRoll: 3, Formats: []string{"video/webm"}, Fallback: "image/gif", FPS: 25}).
		AddClip(ClipInfo{Anchor: 10, Start: 8, End: 13, File: "clips/clip_a.webm", Bytes: 2048}).
		AddClip(ClipInfo{Anchor: 95, Start: 93, End: 95.5, Err: errors.New("recorder failed")}).
		Build()
	s.GeneratedAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return s
}

func TestBuilder(t *testing.T) {
	s := sampleSummary()

	if s.Source != "match.mp4" || s.Media.Codec != "avc1" {
		t.Errorf("unexpected source %s / %+v", s.Source, s.Media)
	}
	if len(s.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(s.Clips))
	}
	if s.Failed() != 1 {
		t.Errorf("expected 1 failed clip, got %d", s.Failed())
	}
	if !s.Clips[0].OK() || s.Clips[1].OK() {
		t.Error("unexpected clip outcomes")
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Clip Summary",
		"2024-01-15 10:30:00",
		"match.mp4",
		"00:01:35.500",
		"1280x720",
		"avc1",
		"-2.00s / +3.00s",
		"image/gif",
		"| 00:00:10.000 | 00:00:08.000 - 00:00:13.000 | clips/clip_a.webm | 2.00 KB |",
		"Failed: recorder failed",
		"1 of 2 clips written",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestMarkdownFormatter_NoClips(t *testing.T) {
	s := NewBuilder().WithSource("a.mp4", ports.MediaInfo{}).Build()
	result := NewMarkdownFormatter().Format(s)

	if !strings.Contains(result, "None") {
		t.Error("expected placeholder for an empty run")
	}
	if strings.Contains(result, "Resolution") {
		t.Error("unknown resolution must be omitted")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 << 20, "3.00 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "report" }), fs)

	path := filepath.Join("out", "summary.md")
	if err := w.Write(path, sampleSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile(path)
	if !ok || string(data) != "report" {
		t.Errorf("expected report at %s", path)
	}
	if exists, _ := fs.Exists("out"); !exists {
		t.Error("expected parent directory to be created")
	}
}
