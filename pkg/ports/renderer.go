package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts raster operations used for overlays and previews.
type Renderer interface {
	// CreateCanvas creates a drawing canvas of the given pixel size filled with bg.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas is a 2D drawing context in intrinsic pixel coordinates.
type Canvas interface {
	// Clear resets every pixel to transparent.
	Clear()

	// Size returns the canvas size in pixels.
	Size() (width, height int)

	// DrawImage draws an image with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y int)

	// StrokeRect draws a rectangle outline.
	StrokeRect(x, y, w, h float64, c color.Color, lineWidth float64)

	// DrawText draws text with its baseline starting at (x, y).
	DrawText(text string, x, y float64, style TextStyle)

	// MeasureText returns the width and height of the text.
	MeasureText(text string, style TextStyle) (width, height float64)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
