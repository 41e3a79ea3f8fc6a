package mocks

import (
	"image"
	"image/color"

	"github.com/user/vidreview/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource. By default it
// returns a solid frame whose red channel encodes the requested second.
type FrameSource struct {
	Size        ports.Size
	FrameAtFunc func(seconds float64) (image.Image, error)
	Requests    []float64
	Closed      bool
}

func (m *FrameSource) FrameAt(seconds float64) (image.Image, error) {
	m.Requests = append(m.Requests, seconds)
	if m.FrameAtFunc != nil {
		return m.FrameAtFunc(seconds)
	}
	w, h := m.Size.Width, m.Size.Height
	if w <= 0 || h <= 0 {
		w, h = 16, 9
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(int(seconds) % 256), A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

func (m *FrameSource) Close() error {
	m.Closed = true
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)
