// Package streamrecorder records a capture stream through a ports.VideoEncoder.
// Frames arrive on the scheduler goroutine and are encoded on a worker
// goroutine; results are posted back to the scheduler.
package streamrecorder

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/user/vidreview/pkg/ports"
)

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("streamrecorder: already started")

	// ErrNoFrameSize is returned when the stream has no known frame size.
	ErrNoFrameSize = errors.New("streamrecorder: stream has no frame size")
)

// Recorder implements ports.Recorder on top of a VideoEncoder. The encoded
// file is delivered as a single chunk when recording stops.
type Recorder struct {
	stream   ports.CaptureStream
	encoder  ports.VideoEncoder
	opts     ports.EncoderOptions
	sched    ports.Scheduler
	handlers ports.RecorderHandlers
	logger   ports.Logger

	// Loop-confined state.
	state       ports.RecorderState
	started     bool
	reported    bool
	frames      chan ports.VideoFrame
	unsubscribe func()
	baseMs      int
	haveBase    bool
	dropped     int

	group *errgroup.Group
}

// New creates a recorder. Nothing happens until Start.
func New(stream ports.CaptureStream, encoder ports.VideoEncoder, opts ports.EncoderOptions,
	sched ports.Scheduler, handlers ports.RecorderHandlers, logger ports.Logger) *Recorder {
	return &Recorder{
		stream:   stream,
		encoder:  encoder,
		opts:     opts,
		sched:    sched,
		handlers: handlers,
		logger:   logger,
	}
}

// Start begins the encoder and subscribes to stream frames.
func (r *Recorder) Start() error {
	if r.started {
		return ErrAlreadyStarted
	}
	size := r.stream.Size()
	if size.IsZero() {
		return ErrNoFrameSize
	}
	fps := r.stream.FPS()
	if fps <= 0 {
		fps = 25
	}
	if err := r.encoder.Begin(size.Width, size.Height, fps, r.opts); err != nil {
		return fmt.Errorf("begin encoder: %w", err)
	}
	r.started = true

	// One second of headroom before frames are dropped.
	r.frames = make(chan ports.VideoFrame, int(fps)+1)
	r.group = new(errgroup.Group)
	frames := r.frames
	r.group.Go(func() error {
		for f := range frames {
			if err := r.encoder.EncodeFrame(f.Image, f.TimestampMs); err != nil {
				err = fmt.Errorf("encode frame at %dms: %w", f.TimestampMs, err)
				r.sched.Post(func() { r.report(err) })
				return err
			}
		}
		return nil
	})

	r.unsubscribe = r.stream.OnFrame(r.push)
	r.state = ports.RecorderRecording
	r.logger.Debug("Recording %dx%d at %.2f fps", size.Width, size.Height, fps)
	return nil
}

func (r *Recorder) push(f ports.VideoFrame) {
	if r.state != ports.RecorderRecording {
		return
	}
	if !r.haveBase {
		r.baseMs = f.TimestampMs
		r.haveBase = true
	}
	f.TimestampMs -= r.baseMs
	select {
	case r.frames <- f:
	default:
		r.dropped++
	}
}

// Stop ends recording. The encoder is finalized off the scheduler goroutine
// and the outcome is posted back.
func (r *Recorder) Stop() {
	if r.state != ports.RecorderRecording {
		return
	}
	r.state = ports.RecorderInactive
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	close(r.frames)
	if r.dropped > 0 {
		r.logger.Warn("Dropped %d frames while encoding", r.dropped)
	}

	group := r.group
	go func() {
		err := group.Wait()
		var data []byte
		if err == nil {
			data, err = r.encoder.End()
		} else {
			// Release the encoder; its output is unusable.
			_, _ = r.encoder.End()
		}
		r.sched.Post(func() {
			if err != nil {
				r.report(err)
				return
			}
			if r.handlers.OnData != nil {
				r.handlers.OnData(data)
			}
			if r.handlers.OnStop != nil {
				r.handlers.OnStop()
			}
		})
	}()
}

// State reports whether the recorder is still accepting frames.
func (r *Recorder) State() ports.RecorderState {
	return r.state
}

// report delivers the first error only.
func (r *Recorder) report(err error) {
	if r.reported {
		return
	}
	r.reported = true
	if r.handlers.OnError != nil {
		r.handlers.OnError(err)
	}
}

var _ ports.Recorder = (*Recorder)(nil)
