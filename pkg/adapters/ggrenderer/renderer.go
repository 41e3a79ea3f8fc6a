// Package ggrenderer implements the drawing ports with the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/vidreview/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a canvas filled with bg.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	c := newCanvas(width, height)
	if bg != nil {
		c.dc.SetColor(bg)
		c.dc.Clear()
	}
	return c
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality <= 0 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage scales an image with Catmull-Rom resampling.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc       *gg.Context
	fontPath string
	fontSize float64
}

func newCanvas(width, height int) *Canvas {
	return &Canvas{dc: gg.NewContext(width, height)}
}

func (c *Canvas) Clear() {
	c.dc.SetColor(color.Transparent)
	c.dc.Clear()
}

func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

func (c *Canvas) StrokeRect(x, y, w, h float64, col color.Color, lineWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(lineWidth)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Stroke()
}

// DrawText draws text with its baseline at y. Without a loadable font the
// built-in bitmap face is used.
func (c *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	c.useFont(style)
	c.dc.SetColor(style.Color)
	c.dc.DrawString(text, x, y)
}

func (c *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	c.useFont(style)
	return c.dc.MeasureString(text)
}

func (c *Canvas) useFont(style ports.TextStyle) {
	if style.FontPath == "" || (style.FontPath == c.fontPath && style.FontSize == c.fontSize) {
		return
	}
	if err := c.dc.LoadFontFace(style.FontPath, style.FontSize); err != nil {
		return
	}
	c.fontPath, c.fontSize = style.FontPath, style.FontSize
}

func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
