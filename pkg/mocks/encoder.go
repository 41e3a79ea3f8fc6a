package mocks

import (
	"image"
	"sync"

	"github.com/user/vidreview/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder. It is safe
// for use from a recorder's worker goroutine.
type VideoEncoder struct {
	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)

	mu         sync.Mutex
	beginSize  ports.Size
	timestamps []int
	ended      bool
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.beginSize = ports.Size{Width: width, Height: height}
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	m.mu.Lock()
	m.timestamps = append(m.timestamps, timestampMs)
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.ended = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// EBML magic, enough for a webm sniff.
	return []byte{0x1A, 0x45, 0xDF, 0xA3}, nil
}

// Timestamps returns the timestamps passed to EncodeFrame.
func (m *VideoEncoder) Timestamps() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.timestamps...)
}

// BeginSize returns the dimensions passed to Begin.
func (m *VideoEncoder) BeginSize() ports.Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beginSize
}

func (m *VideoEncoder) Ended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
