// Package gifrecorder records capture streams as animated GIFs. It needs no
// external tools, so image/gif is always available as a clip format.
package gifrecorder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/user/vidreview/pkg/adapters/streamrecorder"
	"github.com/user/vidreview/pkg/ports"
)

// MimeType is the only type this package records.
const MimeType = "image/gif"

// DefaultMaxWidth bounds the GIF width; larger streams are downscaled.
const DefaultMaxWidth = 480

var (
	ErrNotInitialized = errors.New("gifrecorder: encoder not initialized")
	ErrNoFrames       = errors.New("gifrecorder: no frames to encode")
)

// Encoder implements ports.VideoEncoder producing an animated GIF.
type Encoder struct {
	MaxWidth int

	mu      sync.Mutex
	begun   bool
	bounds  image.Rectangle
	frameMs int
	anim    gif.GIF
	lastMs  int
}

func NewEncoder() *Encoder {
	return &Encoder{MaxWidth: DefaultMaxWidth}
}

func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := width, height
	if e.MaxWidth > 0 && w > e.MaxWidth {
		h = h * e.MaxWidth / w
		w = e.MaxWidth
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("gifrecorder: invalid size %dx%d", width, height)
	}
	if fps <= 0 {
		fps = 10
	}
	e.bounds = image.Rect(0, 0, w, h)
	e.frameMs = int(1000 / fps)
	e.anim = gif.GIF{}
	e.lastMs = 0
	e.begun = true
	return nil
}

// EncodeFrame quantizes img to the Plan9 palette. The previous frame's delay
// is fixed once the next timestamp is known.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return ErrNotInitialized
	}

	scaled := image.NewRGBA(e.bounds)
	xdraw.ApproxBiLinear.Scale(scaled, e.bounds, img, img.Bounds(), xdraw.Src, nil)

	frame := image.NewPaletted(e.bounds, palette.Plan9)
	xdraw.FloydSteinberg.Draw(frame, e.bounds, scaled, image.Point{})

	if n := len(e.anim.Delay); n > 0 {
		e.anim.Delay[n-1] = centis(timestampMs - e.lastMs)
	}
	e.anim.Image = append(e.anim.Image, frame)
	e.anim.Delay = append(e.anim.Delay, centis(e.frameMs))
	e.lastMs = timestampMs
	return nil
}

func centis(ms int) int {
	if ms < 10 {
		return 1
	}
	return (ms + 5) / 10
}

func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return nil, ErrNotInitialized
	}
	e.begun = false
	if len(e.anim.Image) == 0 {
		return nil, ErrNoFrames
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &e.anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	e.anim = gif.GIF{}
	return buf.Bytes(), nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)

// Capture implements ports.Capture for image/gif.
type Capture struct {
	sched    ports.Scheduler
	logger   ports.Logger
	maxWidth int
}

func NewCapture(sched ports.Scheduler, logger ports.Logger, maxWidth int) *Capture {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Capture{sched: sched, logger: logger.WithComponent("gif"), maxWidth: maxWidth}
}

func (c *Capture) IsTypeSupported(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.EqualFold(strings.TrimSpace(base), MimeType)
}

func (c *Capture) NewRecorder(stream ports.CaptureStream, mimeType string, handlers ports.RecorderHandlers) (ports.Recorder, error) {
	if !c.IsTypeSupported(mimeType) {
		return nil, fmt.Errorf("gifrecorder: unsupported mime type %s", mimeType)
	}
	enc := NewEncoder()
	enc.MaxWidth = c.maxWidth
	return streamrecorder.New(stream, enc, ports.EncoderOptions{}, c.sched, handlers, c.logger), nil
}

var _ ports.Capture = (*Capture)(nil)
