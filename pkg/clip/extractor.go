// Package clip records a short window of the playing video around an event
// and hands the encoded result to a downloader.
//
// An Extractor runs at most one job. A job walks
// Idle -> SeekingToStart -> Recording -> Finalizing -> Idle, and any step may
// divert to Aborting, which also ends in Idle. Every transition is a handler
// that first checks it still belongs to the current job, so late
// notifications from a finished or aborted job are ignored.
package clip

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/user/vidreview/pkg/ports"
)

var (
	// ErrBusy is returned when a request arrives while a job is active.
	ErrBusy = errors.New("clip job already active")
	// ErrSourceMismatch is reported for requests naming another source.
	ErrSourceMismatch = errors.New("clip request does not match the loaded source")
	// ErrSourceChanged aborts a job whose source was replaced.
	ErrSourceChanged = errors.New("source changed during clip")
	// ErrCancelled aborts a job on request.
	ErrCancelled = errors.New("clip cancelled")
	// ErrRecorder wraps failures reported by the recorder.
	ErrRecorder = errors.New("recorder failed")
	// ErrPlayback wraps playback failures during recording.
	ErrPlayback = errors.New("playback failed")
	// ErrDownload wraps downloader failures.
	ErrDownload = errors.New("download failed")
)

// Phase is the state of the extractor.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSeekingToStart
	PhaseRecording
	PhaseFinalizing
	PhaseAborting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSeekingToStart:
		return "seeking"
	case PhaseRecording:
		return "recording"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseAborting:
		return "aborting"
	default:
		return "unknown"
	}
}

// User-facing status messages. They double as l10n keys.
const (
	MessageStarted = "Clipping video..."
	MessageSuccess = "Clip download started!"
	MessageError   = "Error creating clip. Please try again."
)

// Request asks for a clip around Anchor seconds of Source.
type Request struct {
	Anchor float64
	Source string
}

// Status is published on every phase change.
type Status struct {
	JobID   string
	Phase   Phase
	Message string
	Window  Window
	File    string
	Err     error
}

// Options tunes an Extractor.
type Options struct {
	PreRoll      float64
	PostRoll     float64
	SeekTimeout  time.Duration
	SuccessDelay time.Duration
	ErrorDelay   time.Duration

	// Formats lists mime types in order of preference.
	Formats []string
	// Fallback is used when no preferred format is supported.
	Fallback string
}

// DefaultFormats is the container preference order.
var DefaultFormats = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm",
	"video/mp4;codecs=avc1.42E01E,mp4a.40.2",
}

// DefaultOptions clips 2s before to 3s after the anchor.
func DefaultOptions() Options {
	return Options{
		PreRoll:      2,
		PostRoll:     3,
		SeekTimeout:  time.Second,
		SuccessDelay: 2 * time.Second,
		ErrorDelay:   3 * time.Second,
		Formats:      DefaultFormats,
		Fallback:     "image/gif",
	}
}

// Deps are the host services an Extractor drives.
type Deps struct {
	Video      ports.VideoSurface
	Capture    ports.Capture
	Downloader ports.Downloader
	Scheduler  ports.Scheduler
	Logger     ports.Logger
}

// Extractor owns clip jobs. It must only be used from the scheduler goroutine.
type Extractor struct {
	video      ports.VideoSurface
	capture    ports.Capture
	downloader ports.Downloader
	sched      ports.Scheduler
	logger     ports.Logger
	opts       Options

	job      *job
	onStatus func(Status)
}

type playbackState struct {
	time    float64
	playing bool
	muted   bool
}

type job struct {
	id         string
	window     Window
	prior      playbackState
	phase      Phase
	mimeType   string
	chunks     [][]byte
	onComplete func()
	completed  bool

	stream   ports.CaptureStream
	recorder ports.Recorder

	cancelSeekTimer func()
	cancelDelay     func()
	unsubscribe     []func()
	unwatchTime     func()
}

func New(deps Deps, opts Options) *Extractor {
	return &Extractor{
		video:      deps.Video,
		capture:    deps.Capture,
		downloader: deps.Downloader,
		sched:      deps.Scheduler,
		logger:     deps.Logger.WithComponent("clip"),
		opts:       opts,
	}
}

// OnStatus registers the status listener.
func (e *Extractor) OnStatus(fn func(Status)) {
	e.onStatus = fn
}

// Busy reports whether a job owns playback.
func (e *Extractor) Busy() bool {
	return e.job != nil
}

// Phase returns the current phase.
func (e *Extractor) Phase() Phase {
	if e.job == nil {
		return PhaseIdle
	}
	return e.job.phase
}

// Submit starts a job. While busy the request is ignored and ErrBusy is
// returned without calling onComplete. Any other outcome, including an
// invalid request, calls onComplete exactly once.
func (e *Extractor) Submit(req Request, onComplete func()) error {
	if e.job != nil {
		e.logger.Debug("Clip request at %.2fs ignored: job %s active", req.Anchor, e.job.id)
		return ErrBusy
	}
	if onComplete == nil {
		onComplete = func() {}
	}

	if req.Source == "" || req.Source != e.video.Source() {
		e.logger.Warn("Clip request for %q ignored: loaded source is %q", req.Source, e.video.Source())
		onComplete()
		return ErrSourceMismatch
	}

	window, err := ComputeWindow(req.Anchor, e.video.Duration(), e.opts.PreRoll, e.opts.PostRoll)
	if err != nil {
		e.logger.Warn("Clip request rejected: %v", err)
		e.publish(Status{Phase: PhaseIdle, Message: MessageError, Err: err})
		onComplete()
		return err
	}

	j := &job{
		id:     uuid.NewString(),
		window: window,
		prior: playbackState{
			time:    e.video.CurrentTime(),
			playing: !e.video.Paused(),
			muted:   e.video.Muted(),
		},
		onComplete: onComplete,
	}
	e.job = j
	e.logger.Info("Clipping %.2fs-%.2fs around %.2fs", window.Start, window.End, req.Anchor)

	j.unsubscribe = append(j.unsubscribe,
		e.video.On(ports.EventEmptied, func() { e.abort(j, ErrSourceChanged) }),
		e.video.On(ports.EventError, func() { e.abort(j, fmt.Errorf("%w: media error", ErrPlayback)) }),
	)
	e.seekToStart(j)
	return nil
}

// Cancel aborts the active job, if any.
func (e *Extractor) Cancel() {
	if e.job != nil {
		e.abort(e.job, ErrCancelled)
	}
}

// SourceChanged aborts the active job within the current turn.
func (e *Extractor) SourceChanged() {
	if e.job != nil {
		e.abort(e.job, ErrSourceChanged)
	}
}

func (e *Extractor) current(j *job, phase Phase) bool {
	return e.job == j && j.phase == phase
}

func (e *Extractor) transition(j *job, phase Phase, msg string) {
	e.logger.Debug("Job %s: %s -> %s", j.id, j.phase, phase)
	j.phase = phase
	e.publish(Status{JobID: j.id, Phase: phase, Message: msg, Window: j.window})
}

func (e *Extractor) publish(s Status) {
	if e.onStatus != nil {
		e.onStatus(s)
	}
}

// Idle -> SeekingToStart
func (e *Extractor) seekToStart(j *job) {
	e.transition(j, PhaseSeekingToStart, MessageStarted)

	e.video.Pause()
	e.video.SetMuted(true)

	unsubSeeked := e.video.On(ports.EventSeeked, func() { e.startRecording(j, false) })
	j.unsubscribe = append(j.unsubscribe, unsubSeeked)
	j.cancelSeekTimer = e.sched.After(e.opts.SeekTimeout, func() { e.startRecording(j, true) })

	e.video.Seek(j.window.Start)
}

// SeekingToStart -> Recording, on seeked or on the fallback timer.
func (e *Extractor) startRecording(j *job, timedOut bool) {
	if !e.current(j, PhaseSeekingToStart) {
		return
	}
	if j.cancelSeekTimer != nil {
		j.cancelSeekTimer()
		j.cancelSeekTimer = nil
	}
	if timedOut {
		e.logger.Warn("No seek confirmation after %v, recording anyway", e.opts.SeekTimeout)
	}

	j.mimeType = e.selectFormat()
	stream, err := e.video.CaptureStream()
	if err != nil {
		e.abort(j, err)
		return
	}
	j.stream = stream

	recorder, err := e.capture.NewRecorder(stream, j.mimeType, ports.RecorderHandlers{
		OnData:  func(chunk []byte) { e.collect(j, chunk) },
		OnStop:  func() { e.finalize(j) },
		OnError: func(err error) { e.abort(j, fmt.Errorf("%w: %v", ErrRecorder, err)) },
	})
	if err != nil {
		e.abort(j, fmt.Errorf("%w: %v", ErrRecorder, err))
		return
	}
	j.recorder = recorder

	e.transition(j, PhaseRecording, MessageStarted)
	j.unwatchTime = e.video.On(ports.EventTimeUpdate, func() { e.checkBoundary(j) })
	j.unsubscribe = append(j.unsubscribe, e.video.On(ports.EventEnded, func() { e.stopAtBoundary(j) }))

	if err := recorder.Start(); err != nil {
		e.abort(j, fmt.Errorf("%w: %v", ErrRecorder, err))
		return
	}
	if err := e.video.Play(); err != nil {
		e.abort(j, fmt.Errorf("%w: %v", ErrPlayback, err))
		return
	}
	e.logger.Debug("Recording %s as %s", j.id, j.mimeType)
}

func (e *Extractor) selectFormat() string {
	mime, ok := lo.Find(e.opts.Formats, e.capture.IsTypeSupported)
	if !ok {
		e.logger.Warn("No preferred clip format supported, falling back to %s", e.opts.Fallback)
		return e.opts.Fallback
	}
	return mime
}

func (e *Extractor) collect(j *job, chunk []byte) {
	if e.job != j || (j.phase != PhaseRecording && j.phase != PhaseFinalizing) {
		return
	}
	if len(chunk) > 0 {
		j.chunks = append(j.chunks, chunk)
	}
}

func (e *Extractor) checkBoundary(j *job) {
	if !e.current(j, PhaseRecording) {
		return
	}
	if e.video.CurrentTime() >= j.window.End {
		e.stopAtBoundary(j)
	}
}

// Recording -> Finalizing. The recorder's stop signal completes the job.
func (e *Extractor) stopAtBoundary(j *job) {
	if !e.current(j, PhaseRecording) {
		return
	}
	if j.unwatchTime != nil {
		j.unwatchTime()
		j.unwatchTime = nil
	}
	e.video.Pause()
	e.transition(j, PhaseFinalizing, MessageStarted)
	if j.recorder.State() == ports.RecorderRecording {
		j.recorder.Stop()
		return
	}
	e.finalize(j)
}

// Finalizing -> Idle after the confirmation delay.
func (e *Extractor) finalize(j *job) {
	if e.job != j {
		return
	}
	if j.phase == PhaseRecording {
		// The recorder stopped on its own before the boundary.
		e.logger.Warn("Recorder stopped early at %.2fs", e.video.CurrentTime())
		e.stopAtBoundary(j)
		return
	}
	if j.phase != PhaseFinalizing || j.cancelDelay != nil {
		return
	}

	data := bytes.Join(j.chunks, nil)
	j.chunks = nil
	name := Filename(e.sched.Now(), j.mimeType)
	e.release(j)

	location, err := e.downloader.Download(name, j.mimeType, data)
	if err != nil {
		e.abort(j, fmt.Errorf("%w: %v", ErrDownload, err))
		return
	}
	e.logger.Info("Clip saved to %s (%d bytes)", location, len(data))

	e.restore(j, true)
	e.publish(Status{JobID: j.id, Phase: PhaseFinalizing, Message: MessageSuccess, Window: j.window, File: location})
	j.cancelDelay = e.sched.After(e.opts.SuccessDelay, func() { e.finish(j) })
}

// Any phase -> Aborting -> Idle after the error delay. Repeated aborts are
// ignored.
func (e *Extractor) abort(j *job, cause error) {
	if e.job != j || j.phase == PhaseAborting {
		return
	}
	if j.cancelDelay != nil {
		// Already finalized; only the confirmation delay remains.
		return
	}
	e.logger.Error("Clip %s failed: %v", j.id, cause)

	if j.recorder != nil && j.recorder.State() == ports.RecorderRecording {
		j.recorder.Stop()
	}
	j.chunks = nil
	e.release(j)
	e.restore(j, !errors.Is(cause, ErrSourceChanged))

	j.phase = PhaseAborting
	e.publish(Status{JobID: j.id, Phase: PhaseAborting, Message: MessageError, Window: j.window, Err: cause})
	j.cancelDelay = e.sched.After(e.opts.ErrorDelay, func() { e.finish(j) })
}

func (e *Extractor) finish(j *job) {
	if e.job != j {
		return
	}
	e.release(j)
	e.job = nil
	e.logger.Debug("Job %s: %s -> %s", j.id, j.phase, PhaseIdle)
	j.phase = PhaseIdle
	e.publish(Status{JobID: j.id, Phase: PhaseIdle, Window: j.window})

	if !j.completed {
		j.completed = true
		j.onComplete()
	}
}

// release drops every subscription, timer and stream the job holds.
func (e *Extractor) release(j *job) {
	if j.cancelSeekTimer != nil {
		j.cancelSeekTimer()
		j.cancelSeekTimer = nil
	}
	if j.unwatchTime != nil {
		j.unwatchTime()
		j.unwatchTime = nil
	}
	for _, unsub := range j.unsubscribe {
		unsub()
	}
	j.unsubscribe = nil
	if j.stream != nil {
		j.stream.Close()
		j.stream = nil
	}
}

// restore puts playback back the way the job found it. Position and play
// state are skipped when the source itself changed.
func (e *Extractor) restore(j *job, position bool) {
	e.video.SetMuted(j.prior.muted)
	if !position {
		return
	}
	e.video.Pause()
	e.video.Seek(j.prior.time)
	if j.prior.playing {
		if err := e.video.Play(); err != nil {
			e.logger.Warn("Could not resume playback: %v", err)
		}
	}
}
