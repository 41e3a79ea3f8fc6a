// Package overlay draws tracking detections onto an overlay surface.
package overlay

import (
	"image/color"

	"github.com/samber/lo"
	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/ports"
)

// Theme controls how detections are drawn.
type Theme struct {
	EntityColor color.Color
	MarkerColor color.Color
	LineWidth   float64
	FontSize    float64
	FontPath    string
}

// DefaultTheme draws entities in cyan and markers in orange with 12px labels.
func DefaultTheme() Theme {
	return Theme{
		EntityColor: color.RGBA{0, 255, 255, 255},
		MarkerColor: color.RGBA{255, 165, 0, 255},
		LineWidth:   2,
		FontSize:    12,
	}
}

// Scene is everything a repaint depends on besides surface geometry.
type Scene struct {
	Time     float64
	Sequence *annotations.Sequence
	FocusID  string
}

// Rect is a rectangle in intrinsic pixels.
type Rect struct {
	X, Y, W, H float64
}

// DrawnBox describes one detection as painted.
type DrawnBox struct {
	Detection annotations.Detection
	Rect      Rect
	Labelled  bool
	LabelX    float64
	LabelY    float64
}

// Result reports what a Render call painted.
type Result struct {
	Matched   bool
	Timestamp string
	Boxes     []DrawnBox
}

// Renderer paints the frame matching a scene's time.
type Renderer struct {
	theme  Theme
	match  annotations.MatchOptions
	logger ports.Logger
}

func New(theme Theme, match annotations.MatchOptions, logger ports.Logger) *Renderer {
	if theme.FontSize <= 0 {
		theme.FontSize = 12
	}
	if theme.LineWidth <= 0 {
		theme.LineWidth = 2
	}
	if match.Window <= 0 {
		match = annotations.DefaultMatch
	}
	return &Renderer{theme: theme, match: match, logger: logger.WithComponent("overlay")}
}

// Render clears the surface and draws the detections of the frame matching
// scene.Time. An unsized surface is left untouched.
func (r *Renderer) Render(surface ports.OverlaySurface, scene Scene) Result {
	canvas := surface.Canvas()
	size := surface.IntrinsicSize()
	if canvas == nil || size.IsZero() {
		return Result{}
	}
	canvas.Clear()

	frame, ok := scene.Sequence.MatchWith(scene.Time, r.match)
	if !ok {
		return Result{}
	}

	dets := frame.Detections
	if scene.FocusID != "" {
		dets = lo.Filter(dets, func(d annotations.Detection, _ int) bool {
			return d.ID == scene.FocusID && d.Kind == annotations.KindEntity
		})
	}

	result := Result{Matched: true, Timestamp: frame.Timestamp}
	style := ports.TextStyle{FontSize: r.theme.FontSize, FontPath: r.theme.FontPath}
	for _, d := range dets {
		c := r.theme.MarkerColor
		if d.Kind == annotations.KindEntity {
			c = r.theme.EntityColor
		}

		rect := BoxToPixels(d.BBox, size)
		canvas.StrokeRect(rect.X, rect.Y, rect.W, rect.H, c, r.theme.LineWidth)
		drawn := DrawnBox{Detection: d, Rect: rect}

		if d.Kind == annotations.KindEntity || scene.FocusID == "" {
			style.Color = c
			textW, _ := canvas.MeasureText(d.ID, style)
			drawn.LabelX, drawn.LabelY = LabelPosition(rect, textW, size, r.theme.FontSize)
			drawn.Labelled = true
			canvas.DrawText(d.ID, drawn.LabelX, drawn.LabelY, style)
		}
		result.Boxes = append(result.Boxes, drawn)
	}

	r.logger.Debug("Drew %d detections from %s at %.3fs", len(result.Boxes), frame.Timestamp, scene.Time)
	return result
}

// BoxToPixels scales a normalised [x0, y0, x1, y1] box to intrinsic pixels.
func BoxToPixels(bbox [4]float64, size ports.Size) Rect {
	w, h := float64(size.Width), float64(size.Height)
	return Rect{
		X: bbox[0] * w,
		Y: bbox[1] * h,
		W: (bbox[2] - bbox[0]) * w,
		H: (bbox[3] - bbox[1]) * h,
	}
}

// LabelPosition returns the baseline origin of a label for box. The label
// sits above the box when there is room and flips below otherwise; it is
// shifted horizontally to stay on the canvas.
func LabelPosition(box Rect, textWidth float64, canvas ports.Size, fontSize float64) (x, y float64) {
	w, h := float64(canvas.Width), float64(canvas.Height)
	above := box.Y - 3
	below := box.Y + box.H + fontSize

	y = below
	if box.Y > fontSize {
		y = above
	}
	if y+5 > h {
		y = above
	}
	if y < fontSize && below < h {
		y = below
	}

	x = box.X
	if x+textWidth > w {
		x = w - textWidth
	}
	if x < 0 {
		x = 0
	}
	return x, y
}
