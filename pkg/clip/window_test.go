package clip

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name     string
		anchor   float64
		duration float64
		want     Window
		wantErr  bool
	}{
		{name: "middle", anchor: 10, duration: 60, want: Window{Start: 8, End: 13}},
		{name: "clamped at start", anchor: 1, duration: 60, want: Window{Start: 0, End: 4}},
		{name: "clamped at end", anchor: 59, duration: 60, want: Window{Start: 57, End: 60}},
		{name: "short media", anchor: 1, duration: 2, want: Window{Start: 0, End: 2}},
		{name: "anchor at end", anchor: 60, duration: 60, want: Window{Start: 58, End: 60}},
		{name: "anchor far past end", anchor: 100, duration: 60, wantErr: true},
		{name: "negative anchor", anchor: -10, duration: 60, wantErr: true},
		{name: "unknown duration", anchor: 5, duration: 0, wantErr: true},
		{name: "nan duration", anchor: 5, duration: math.NaN(), wantErr: true},
		{name: "infinite duration", anchor: 5, duration: math.Inf(1), wantErr: true},
		{name: "nan anchor", anchor: math.NaN(), duration: 60, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeWindow(tt.anchor, tt.duration, 2, 3)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWindow) {
					t.Fatalf("expected ErrInvalidWindow, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeWindow(%v, %v) = %+v, want %+v", tt.anchor, tt.duration, got, tt.want)
			}
			if got.Start < 0 || got.End > tt.duration || got.Length() <= 0 {
				t.Errorf("window out of bounds: %+v", got)
			}
		})
	}
}

func TestComputeWindow_ClampsToMedia(t *testing.T) {
	tests := []struct {
		anchor, duration float64
		start, end       float64
	}{
		{anchor: 0.5, duration: 10, start: 0, end: 3.5},
		{anchor: 9.9, duration: 10, start: 7.9, end: 10},
	}

	for _, tt := range tests {
		got, err := ComputeWindow(tt.anchor, tt.duration, 2, 3)
		if err != nil {
			t.Fatalf("ComputeWindow(%v, %v): %v", tt.anchor, tt.duration, err)
		}
		if math.Abs(got.Start-tt.start) > 1e-9 || math.Abs(got.End-tt.end) > 1e-9 {
			t.Errorf("ComputeWindow(%v, %v) = %+v, want [%v, %v]", tt.anchor, tt.duration, got, tt.start, tt.end)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		mime string
		want string
	}{
		{"video/webm;codecs=vp9,opus", "clip_2024-03-09-14-05-07.webm"},
		{"video/webm", "clip_2024-03-09-14-05-07.webm"},
		{"video/mp4;codecs=avc1.42E01E,mp4a.40.2", "clip_2024-03-09-14-05-07.mp4"},
		{"image/gif", "clip_2024-03-09-14-05-07.gif"},
		{"", "clip_2024-03-09-14-05-07.webm"},
	}
	for _, tt := range tests {
		if got := Filename(now, tt.mime); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestFilename_UsesUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, tokyo)
	if got := Filename(now, "video/webm"); got != "clip_2024-03-09-23-00-00.webm" {
		t.Errorf("unexpected filename %q", got)
	}
}
