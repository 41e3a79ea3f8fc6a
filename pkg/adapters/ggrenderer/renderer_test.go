package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/vidreview/pkg/adapters/logger"
	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/overlay"
	"github.com/user/vidreview/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	w, h := canvas.Size()
	if w != 100 || h != 60 {
		t.Errorf("expected 100x60, got %dx%d", w, h)
	}

	r2, g2, b2, a2 := canvas.ToImage().At(50, 30).RGBA()
	if r2 != 0xffff || g2 != 0xffff || b2 != 0xffff || a2 != 0xffff {
		t.Errorf("expected white background")
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))

	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("expected 30x20, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	data, err := r.EncodeImage(img, ports.FormatJPEG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("expected JPEG SOI marker")
	}

	if _, err := r.EncodeImage(img, ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))

	resized := r.ResizeImage(img, 640, 360)
	if b := resized.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("expected 640x360, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCanvas_StrokeAndClear(t *testing.T) {
	c := newCanvas(40, 40)
	red := color.RGBA{255, 0, 0, 255}

	c.StrokeRect(10, 10, 20, 20, red, 2)
	if _, _, _, a := c.ToImage().At(10, 20).RGBA(); a == 0 {
		t.Error("expected stroke pixels on the left edge")
	}
	if _, _, _, a := c.ToImage().At(20, 20).RGBA(); a != 0 {
		t.Error("expected the box interior to stay transparent")
	}

	c.Clear()
	if _, _, _, a := c.ToImage().At(10, 20).RGBA(); a != 0 {
		t.Error("expected Clear to reset pixels to transparent")
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	c := newCanvas(100, 100)
	w1, h1 := c.MeasureText("7", ports.TextStyle{FontSize: 12})
	w2, _ := c.MeasureText("77", ports.TextStyle{FontSize: 12})

	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("expected positive metrics, got %vx%v", w1, h1)
	}
	if w2 <= w1 {
		t.Errorf("expected longer text to measure wider: %v <= %v", w2, w1)
	}
}

func TestSurface_DrivenByOverlayRenderer(t *testing.T) {
	s := NewSurface()
	if s.Canvas() != nil || s.Image() != nil {
		t.Fatal("unsized surface must have no canvas")
	}
	s.SetIntrinsicSize(ports.Size{Width: 200, Height: 100})

	seq := annotations.NewSequence([]annotations.Frame{{
		Timestamp: "00:00:01.000",
		Detections: []annotations.Detection{
			{ID: "7", Kind: annotations.KindEntity, BBox: [4]float64{0.25, 0.4, 0.5, 0.8}},
		},
	}})
	r := overlay.New(overlay.DefaultTheme(), annotations.DefaultMatch, logger.NewNoop())
	res := r.Render(s, overlay.Scene{Time: 1, Sequence: seq})
	if !res.Matched {
		t.Fatal("expected a match")
	}

	_, _, _, a := s.Image().At(50, 60).RGBA()
	if a == 0 {
		t.Error("expected the box outline at x=50")
	}

	r.Render(s, overlay.Scene{Time: 10, Sequence: seq})
	if _, _, _, a := s.Image().At(50, 60).RGBA(); a != 0 {
		t.Error("expected the overlay cleared when nothing matches")
	}
}
