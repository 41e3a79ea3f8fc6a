package clip

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidWindow is reported when a clip window is empty or the media
// duration is unknown.
var ErrInvalidWindow = errors.New("invalid clip window")

// Window is a clip range in seconds.
type Window struct {
	Start float64
	End   float64
}

// Length returns End - Start.
func (w Window) Length() float64 {
	return w.End - w.Start
}

// ComputeWindow returns [anchor-preRoll, anchor+postRoll] clamped to
// [0, duration].
func ComputeWindow(anchor, duration, preRoll, postRoll float64) (Window, error) {
	if !isFinite(duration) || duration <= 0 {
		return Window{}, fmt.Errorf("%w: unknown duration", ErrInvalidWindow)
	}
	if !isFinite(anchor) {
		return Window{}, fmt.Errorf("%w: anchor %v", ErrInvalidWindow, anchor)
	}
	w := Window{
		Start: math.Max(0, anchor-preRoll),
		End:   math.Min(duration, anchor+postRoll),
	}
	if w.End <= w.Start {
		return Window{}, fmt.Errorf("%w: [%.3f, %.3f]", ErrInvalidWindow, w.Start, w.End)
	}
	return w, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Filename names a downloaded clip after the UTC time it finished.
func Filename(now time.Time, mimeType string) string {
	return "clip_" + now.UTC().Format("2006-01-02-15-04-05") + "." + Extension(mimeType)
}

// Extension maps a recorder mime type onto a file extension.
func Extension(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "video/mp4":
		return "mp4"
	case "image/gif":
		return "gif"
	case "video/x-matroska":
		return "mkv"
	default:
		return "webm"
	}
}
