package overlay

import (
	"image"
	"image/color"

	"github.com/user/vidreview/pkg/ports"
)

// Compose stacks an overlay image on a video frame at display size, the way
// the host shows both layers scaled into the same box. frame may be nil.
func Compose(r ports.Renderer, frame, overlay image.Image, display ports.Size) image.Image {
	canvas := r.CreateCanvas(display.Width, display.Height, color.Black)
	if frame != nil {
		canvas.DrawImage(r.ResizeImage(frame, display.Width, display.Height), 0, 0)
	}
	if overlay != nil {
		canvas.DrawImage(r.ResizeImage(overlay, display.Width, display.Height), 0, 0)
	}
	return canvas.ToImage()
}
