// Package multicapture combines several captures into one. The first
// capture that supports a type records it.
package multicapture

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/user/vidreview/pkg/ports"
)

// Capture is an ordered composite of ports.Capture.
type Capture struct {
	captures []ports.Capture
}

func New(captures ...ports.Capture) *Capture {
	return &Capture{captures: lo.Filter(captures, func(c ports.Capture, _ int) bool { return c != nil })}
}

func (m *Capture) find(mimeType string) (ports.Capture, bool) {
	return lo.Find(m.captures, func(c ports.Capture) bool { return c.IsTypeSupported(mimeType) })
}

func (m *Capture) IsTypeSupported(mimeType string) bool {
	_, ok := m.find(mimeType)
	return ok
}

func (m *Capture) NewRecorder(stream ports.CaptureStream, mimeType string, handlers ports.RecorderHandlers) (ports.Recorder, error) {
	c, ok := m.find(mimeType)
	if !ok {
		return nil, fmt.Errorf("no capture supports %s", mimeType)
	}
	return c.NewRecorder(stream, mimeType, handlers)
}

var _ ports.Capture = (*Capture)(nil)
