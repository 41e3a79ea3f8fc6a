package mediaprobe

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildFragmented writes a one-track fragmented MP4 with n samples of
// sampleDur ticks at the given timescale.
func buildFragmented(t *testing.T, width, height int, timescale uint32, n int, sampleDur uint32) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, trak.Tkhd.TrackID)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	for i := 0; i < n; i++ {
		data := []byte{0, 0, 0, 1}
		frag.AddFullSample(mp4.FullSample{
			Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: uint32(len(data)), Dur: sampleDur},
			DecodeTime: uint64(i) * uint64(sampleDur),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}
	return buf.Bytes()
}

func TestProber_FragmentedFile(t *testing.T) {
	data := buildFragmented(t, 1280, 720, 1000, 50, 40)

	info, err := New().ProbeReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Size.Width != 1280 || info.Size.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", info.Size.Width, info.Size.Height)
	}
	if info.Duration < 1.999 || info.Duration > 2.001 {
		t.Errorf("expected 2s, got %v", info.Duration)
	}
	if info.Codec != "unknown" {
		t.Errorf("expected unknown codec without a sample entry, got %s", info.Codec)
	}
}

func TestProber_ProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.mp4")
	if err := os.WriteFile(path, buildFragmented(t, 640, 360, 90000, 10, 3600), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	info, err := New().Probe(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Duration < 0.399 || info.Duration > 0.401 {
		t.Errorf("expected 0.4s, got %v", info.Duration)
	}
}

func TestProber_Errors(t *testing.T) {
	if _, err := New().Probe(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")
	var buf bytes.Buffer
	if err := mp4.NewFtyp("isom", 0x200, []string{"isom"}).Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if _, err := New().ProbeReader(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}
