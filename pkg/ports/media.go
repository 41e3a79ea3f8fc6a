package ports

import (
	"errors"
	"image"
)

// ErrCaptureUnsupported is returned when a surface cannot expose a capture stream.
var ErrCaptureUnsupported = errors.New("capture stream not supported")

// ErrNoSource is returned when playback is requested without a loaded source.
var ErrNoSource = errors.New("no media source loaded")

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether either dimension is unset.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Box is a rendered rectangle in display pixels.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// MediaEvent identifies a notification raised by a VideoSurface.
type MediaEvent int

const (
	EventLoadedMetadata MediaEvent = iota
	EventTimeUpdate
	EventPlay
	EventPause
	EventSeeked
	EventEnded
	EventEmptied
	EventError
)

func (e MediaEvent) String() string {
	switch e {
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventTimeUpdate:
		return "timeupdate"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventSeeked:
		return "seeked"
	case EventEnded:
		return "ended"
	case EventEmptied:
		return "emptied"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// VideoSurface is the host media element. All methods must be called on the
// scheduler goroutine, and all handlers are invoked there.
type VideoSurface interface {
	// Load replaces the media source. An empty string unloads.
	Load(source string)

	// Source returns the identity of the loaded source.
	Source() string

	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64

	// Duration returns the media duration in seconds, 0 while unknown.
	Duration() float64

	Paused() bool
	Muted() bool

	// NativeSize returns the decoded frame size, zero while unknown.
	NativeSize() Size

	// DisplayBox returns the rendered box of the surface.
	DisplayBox() Box

	// Play starts playback. The error reports an immediate refusal.
	Play() error
	Pause()
	SetMuted(muted bool)

	// Seek requests a new position. CurrentTime reflects it immediately,
	// EventSeeked is raised once the seek has been applied.
	Seek(seconds float64)

	// On registers a handler and returns a func that removes it.
	On(event MediaEvent, handler func()) (unsubscribe func())

	// ObserveLayout registers a handler for display box changes.
	ObserveLayout(handler func()) (unsubscribe func())

	// CaptureStream opens a live stream of rendered frames.
	CaptureStream() (CaptureStream, error)
}

// VideoFrame represents a single frame delivered by a capture stream.
type VideoFrame struct {
	Image       image.Image
	TimestampMs int
}

// CaptureStream delivers the frames a surface renders while it plays.
type CaptureStream interface {
	Size() Size
	FPS() float64
	OnFrame(handler func(VideoFrame)) (unsubscribe func())
	Close()
}

// FrameSource decodes the frame of a media file shown at a given time.
type FrameSource interface {
	FrameAt(seconds float64) (image.Image, error)
	Close() error
}

// MediaInfo describes a media file.
type MediaInfo struct {
	Duration float64
	Size     Size
	Codec    string
}

// MediaProber reads media metadata without decoding frames.
type MediaProber interface {
	Probe(path string) (MediaInfo, error)
}
