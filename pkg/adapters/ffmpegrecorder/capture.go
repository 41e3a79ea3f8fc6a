package ffmpegrecorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/adapters/streamrecorder"
	"github.com/user/vidreview/pkg/ports"
)

// Capture implements ports.Capture for the webm and mp4 types the local
// ffmpeg build can encode.
type Capture struct {
	sched  ports.Scheduler
	logger ports.Logger
	opts   ports.EncoderOptions

	// ListEncoders reports the available ffmpeg encoders. Defaults to
	// running `ffmpeg -encoders`.
	ListEncoders func() (map[string]bool, error)

	once  sync.Once
	ready chan struct{}

	mu       sync.Mutex
	encoders map[string]bool
}

// NewCapture creates a capture. Call Warm early so encoder support is known
// before the first clip needs it.
func NewCapture(sched ports.Scheduler, logger ports.Logger, opts ports.EncoderOptions) *Capture {
	return &Capture{
		sched:        sched,
		logger:       logger.WithComponent("ffmpeg"),
		opts:         opts,
		ListEncoders: listEncoders,
		ready:        make(chan struct{}),
	}
}

func listEncoders() (map[string]bool, error) {
	path, err := ffmpegbin.Find()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return ffmpegbin.Encoders(ctx, path)
}

// Warm probes the ffmpeg encoders in the background, once. The returned
// channel is closed when the probe has finished.
func (c *Capture) Warm() <-chan struct{} {
	c.once.Do(func() {
		list := c.ListEncoders
		go func() {
			defer close(c.ready)
			encoders, err := list()
			if err != nil {
				c.logger.Warn("ffmpeg recording unavailable: %v", err)
				encoders = map[string]bool{}
			}
			c.mu.Lock()
			c.encoders = encoders
			c.mu.Unlock()
		}()
	})
	return c.ready
}

// IsTypeSupported reports whether ffmpeg can record mimeType. It never
// waits for the encoder probe: until that finishes nothing is supported.
func (c *Capture) IsTypeSupported(mimeType string) bool {
	profile, ok := ProfileFor(mimeType)
	if !ok {
		return false
	}
	c.Warm()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encoders[profile.Encoder]
}

func (c *Capture) NewRecorder(stream ports.CaptureStream, mimeType string, handlers ports.RecorderHandlers) (ports.Recorder, error) {
	if !c.IsTypeSupported(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	profile, _ := ProfileFor(mimeType)
	c.logger.Debug("Recording %s with %s", mimeType, profile.Encoder)
	return streamrecorder.New(stream, NewEncoder(profile), c.opts, c.sched, handlers, c.logger), nil
}

var _ ports.Capture = (*Capture)(nil)
