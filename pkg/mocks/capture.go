package mocks

import (
	"github.com/user/vidreview/pkg/ports"
)

// Capture is a mock implementation of ports.Capture. Recorders deliver
// Chunks followed by the stop signal on a later scheduler turn.
type Capture struct {
	Sched ports.Scheduler

	// Supported lists accepted mime types. Nil accepts everything.
	Supported map[string]bool

	NewRecorderFunc func(stream ports.CaptureStream, mimeType string, handlers ports.RecorderHandlers) (ports.Recorder, error)
	StartErr        error
	Chunks          [][]byte

	Recorders []*Recorder
}

func NewCapture(sched ports.Scheduler) *Capture {
	return &Capture{Sched: sched, Chunks: [][]byte{[]byte("clip-"), []byte("data")}}
}

func (m *Capture) IsTypeSupported(mimeType string) bool {
	if m.Supported == nil {
		return true
	}
	return m.Supported[mimeType]
}

func (m *Capture) NewRecorder(stream ports.CaptureStream, mimeType string, handlers ports.RecorderHandlers) (ports.Recorder, error) {
	if m.NewRecorderFunc != nil {
		return m.NewRecorderFunc(stream, mimeType, handlers)
	}
	r := &Recorder{capture: m, handlers: handlers, MimeType: mimeType, Stream: stream}
	m.Recorders = append(m.Recorders, r)
	return r, nil
}

// Last returns the most recently created recorder.
func (m *Capture) Last() *Recorder {
	if len(m.Recorders) == 0 {
		return nil
	}
	return m.Recorders[len(m.Recorders)-1]
}

var _ ports.Capture = (*Capture)(nil)

// Recorder is a mock implementation of ports.Recorder.
type Recorder struct {
	capture  *Capture
	handlers ports.RecorderHandlers
	state    ports.RecorderState

	MimeType string
	Stream   ports.CaptureStream
	Starts   int
	Stops    int
}

func (r *Recorder) Start() error {
	if r.capture.StartErr != nil {
		return r.capture.StartErr
	}
	r.state = ports.RecorderRecording
	r.Starts++
	return nil
}

func (r *Recorder) Stop() {
	if r.state != ports.RecorderRecording {
		return
	}
	r.state = ports.RecorderInactive
	r.Stops++
	chunks := r.capture.Chunks
	r.capture.Sched.Post(func() {
		for _, c := range chunks {
			if r.handlers.OnData != nil {
				r.handlers.OnData(c)
			}
		}
		if r.handlers.OnStop != nil {
			r.handlers.OnStop()
		}
	})
}

func (r *Recorder) State() ports.RecorderState {
	return r.state
}

// Fail reports err through OnError on a later turn.
func (r *Recorder) Fail(err error) {
	r.capture.Sched.Post(func() {
		if r.handlers.OnError != nil {
			r.handlers.OnError(err)
		}
	})
}

var _ ports.Recorder = (*Recorder)(nil)
