// Package geometry keeps an overlay surface aligned with a video surface.
//
// Two sizes are tracked separately. The intrinsic size is the overlay's
// drawing resolution and follows the video's native frame size. The display
// box is where the host shows the overlay and follows the video's rendered
// box on every layout change.
package geometry

import (
	"github.com/user/vidreview/pkg/ports"
)

// PlaybackGeometry is the derived sizing state of an overlay.
type PlaybackGeometry struct {
	Intrinsic ports.Size
	Display   ports.Box
}

// Tracker binds one video surface to one overlay surface.
type Tracker struct {
	logger    ports.Logger
	video     ports.VideoSurface
	overlay   ports.OverlaySurface
	hint      ports.Size
	unobserve func()
}

func New(logger ports.Logger) *Tracker {
	return &Tracker{logger: logger.WithComponent("geometry")}
}

// Attach starts tracking. hint is the resolution reported alongside the
// source and is used while the video's native size is unknown.
func (t *Tracker) Attach(video ports.VideoSurface, overlay ports.OverlaySurface, hint ports.Size) {
	t.Detach()
	t.video = video
	t.overlay = overlay
	t.hint = hint

	t.SyncIntrinsic()
	t.SyncDisplay()
	t.unobserve = video.ObserveLayout(t.SyncDisplay)
}

// SetHint replaces the resolution hint and re-checks the intrinsic size.
func (t *Tracker) SetHint(hint ports.Size) bool {
	t.hint = hint
	return t.SyncIntrinsic()
}

// SyncIntrinsic applies the native size (or the hint) to the overlay when it
// is known and differs from the current one. It reports whether it changed.
func (t *Tracker) SyncIntrinsic() bool {
	if t.video == nil {
		return false
	}

	size := t.video.NativeSize()
	if size.IsZero() {
		size = t.hint
	}
	if size.IsZero() || size == t.overlay.IntrinsicSize() {
		return false
	}

	t.overlay.SetIntrinsicSize(size)
	t.logger.Debug("Overlay resolution set to %dx%d", size.Width, size.Height)
	return true
}

// SyncDisplay copies the video's rendered box onto the overlay.
func (t *Tracker) SyncDisplay() {
	if t.video == nil {
		return
	}
	box := t.video.DisplayBox()
	if box != t.overlay.DisplayBox() {
		t.overlay.SetDisplayBox(box)
	}
}

// Detach stops tracking, collapses the display box and clears the overlay.
// It is safe to call repeatedly.
func (t *Tracker) Detach() {
	if t.unobserve != nil {
		t.unobserve()
		t.unobserve = nil
	}
	if t.overlay != nil {
		t.overlay.SetDisplayBox(ports.Box{})
		t.overlay.Clear()
	}
	t.video = nil
}

// Attached reports whether the tracker is bound to a video surface.
func (t *Tracker) Attached() bool {
	return t.video != nil
}

// Geometry returns the overlay's current sizing.
func (t *Tracker) Geometry() PlaybackGeometry {
	if t.overlay == nil {
		return PlaybackGeometry{}
	}
	return PlaybackGeometry{
		Intrinsic: t.overlay.IntrinsicSize(),
		Display:   t.overlay.DisplayBox(),
	}
}
