package ggrenderer

import (
	"image"

	"github.com/user/vidreview/pkg/ports"
)

// Surface is an off-screen ports.OverlaySurface backed by a gg canvas.
type Surface struct {
	size    ports.Size
	display ports.Box
	canvas  *Canvas
}

func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) IntrinsicSize() ports.Size {
	return s.size
}

// SetIntrinsicSize reallocates the canvas, which discards its pixels.
func (s *Surface) SetIntrinsicSize(size ports.Size) {
	s.size = size
	if size.IsZero() {
		s.canvas = nil
		return
	}
	s.canvas = newCanvas(size.Width, size.Height)
}

func (s *Surface) DisplayBox() ports.Box {
	return s.display
}

func (s *Surface) SetDisplayBox(box ports.Box) {
	s.display = box
}

func (s *Surface) Canvas() ports.Canvas {
	if s.canvas == nil {
		return nil
	}
	return s.canvas
}

func (s *Surface) Clear() {
	if s.canvas != nil {
		s.canvas.Clear()
	}
}

// Image returns the overlay pixels, nil while unsized.
func (s *Surface) Image() image.Image {
	if s.canvas == nil {
		return nil
	}
	return s.canvas.ToImage()
}

var _ ports.OverlaySurface = (*Surface)(nil)
