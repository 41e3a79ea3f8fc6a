package ports

// RecorderState mirrors the lifecycle of a media recorder.
type RecorderState int

const (
	RecorderInactive RecorderState = iota
	RecorderRecording
)

// RecorderHandlers receive recorder output. They are invoked on the
// scheduler goroutine.
type RecorderHandlers struct {
	OnData  func(chunk []byte)
	OnStop  func()
	OnError func(err error)
}

// Recorder records a capture stream into an encoded container.
type Recorder interface {
	Start() error

	// Stop ends recording. Remaining data is delivered before OnStop.
	Stop()

	State() RecorderState
}

// Capture creates recorders for the container formats it supports.
type Capture interface {
	IsTypeSupported(mimeType string) bool
	NewRecorder(stream CaptureStream, mimeType string, handlers RecorderHandlers) (Recorder, error)
}
