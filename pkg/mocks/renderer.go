package mocks

import (
	"image"
	"image/color"

	"github.com/user/vidreview/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return NewCanvas(width, height)
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawOp is one recorded canvas call.
type DrawOp struct {
	Kind      string // "clear", "rect", "text" or "image"
	X, Y      float64
	W, H      float64
	Text      string
	Color     color.Color
	LineWidth float64
}

// Canvas records drawing calls. MeasureText returns 0.6em per rune wide
// and 1em high.
type Canvas struct {
	width  int
	height int
	Ops    []DrawOp
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

func (m *Canvas) Clear() {
	m.Ops = append(m.Ops, DrawOp{Kind: "clear"})
}

func (m *Canvas) Size() (int, int) {
	return m.width, m.height
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	m.Ops = append(m.Ops, DrawOp{Kind: "image", X: float64(x), Y: float64(y), W: float64(b.Dx()), H: float64(b.Dy())})
}

func (m *Canvas) StrokeRect(x, y, w, h float64, c color.Color, lineWidth float64) {
	m.Ops = append(m.Ops, DrawOp{Kind: "rect", X: x, Y: y, W: w, H: h, Color: c, LineWidth: lineWidth})
}

func (m *Canvas) DrawText(text string, x, y float64, style ports.TextStyle) {
	m.Ops = append(m.Ops, DrawOp{Kind: "text", X: x, Y: y, Text: text, Color: style.Color})
}

func (m *Canvas) MeasureText(text string, style ports.TextStyle) (float64, float64) {
	return float64(len([]rune(text))) * style.FontSize * 0.6, style.FontSize
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

// OpsOfKind returns the recorded operations of one kind.
func (m *Canvas) OpsOfKind(kind string) []DrawOp {
	var ops []DrawOp
	for _, op := range m.Ops {
		if op.Kind == kind {
			ops = append(ops, op)
		}
	}
	return ops
}

var _ ports.Canvas = (*Canvas)(nil)

// OverlaySurface is an in-memory ports.OverlaySurface backed by a recording Canvas.
type OverlaySurface struct {
	size    ports.Size
	display ports.Box
	canvas  *Canvas

	// Resizes counts intrinsic size changes.
	Resizes int
}

func NewOverlaySurface() *OverlaySurface {
	return &OverlaySurface{}
}

func (m *OverlaySurface) IntrinsicSize() ports.Size {
	return m.size
}

func (m *OverlaySurface) SetIntrinsicSize(size ports.Size) {
	m.size = size
	m.Resizes++
	if size.IsZero() {
		m.canvas = nil
		return
	}
	m.canvas = NewCanvas(size.Width, size.Height)
}

func (m *OverlaySurface) DisplayBox() ports.Box {
	return m.display
}

func (m *OverlaySurface) SetDisplayBox(box ports.Box) {
	m.display = box
}

func (m *OverlaySurface) Canvas() ports.Canvas {
	if m.canvas == nil {
		return nil
	}
	return m.canvas
}

// Recording returns the recording canvas, nil while unsized.
func (m *OverlaySurface) Recording() *Canvas {
	return m.canvas
}

func (m *OverlaySurface) Clear() {
	if m.canvas != nil {
		m.canvas.Clear()
	}
}

var _ ports.OverlaySurface = (*OverlaySurface)(nil)
