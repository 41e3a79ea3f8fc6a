// Package simsurface implements ports.VideoSurface as an in-process media
// element driven by a ports.Scheduler.
//
// The surface keeps a playback clock that advances one frame per tick while
// playing, raises the same notifications a browser media element raises, and
// feeds decoded frames from a ports.FrameSource to its capture streams.
package simsurface

import (
	"image"
	"sort"
	"time"

	"github.com/user/vidreview/pkg/ports"
)

// Options configures a Surface.
type Options struct {
	// FPS is the playback tick rate. Defaults to 25.
	FPS float64

	// SeekDelay is how long a seek takes to apply before EventSeeked.
	SeekDelay time.Duration

	// DropSeeked suppresses EventSeeked, as some hosts do after a
	// programmatic seek.
	DropSeeked bool

	// CaptureUnsupported makes CaptureStream fail.
	CaptureUnsupported bool

	// PlayErr is returned by Play when set.
	PlayErr error

	// Display is the initial rendered box.
	Display ports.Box

	// Probe resolves a source's metadata. Required for Load to succeed.
	Probe func(source string) (ports.MediaInfo, error)

	// Frames opens a decoder for a source. Blank frames are used when nil.
	Frames func(source string, info ports.MediaInfo) (ports.FrameSource, error)
}

// Surface is a simulated media element. It must only be used from the
// scheduler goroutine.
type Surface struct {
	sched  ports.Scheduler
	logger ports.Logger
	opts   Options

	source   string
	info     ports.MediaInfo
	loaded   bool
	lastErr  error
	time     float64
	paused   bool
	muted    bool
	display  ports.Box
	frames   ports.FrameSource
	blank    image.Image
	stopTick func()
	stopSeek func()

	nextID    int
	listeners map[ports.MediaEvent]map[int]func()
	layout    map[int]func()
	streams   map[int]*stream
}

func New(sched ports.Scheduler, logger ports.Logger, opts Options) *Surface {
	if opts.FPS <= 0 {
		opts.FPS = 25
	}
	return &Surface{
		sched:     sched,
		logger:    logger.WithComponent("surface"),
		opts:      opts,
		paused:    true,
		display:   opts.Display,
		listeners: make(map[ports.MediaEvent]map[int]func()),
		layout:    make(map[int]func()),
		streams:   make(map[int]*stream),
	}
}

// Load replaces the source. Metadata is resolved on a later turn.
func (s *Surface) Load(source string) {
	if source == s.source {
		return
	}
	hadSource := s.source != ""
	s.haltPlayback()
	s.closeFrames()
	s.source = source
	s.info = ports.MediaInfo{}
	s.loaded = false
	s.lastErr = nil
	s.time = 0
	s.paused = true
	s.blank = nil

	if hadSource {
		s.emit(ports.EventEmptied)
	}
	if source == "" {
		return
	}

	s.sched.Post(func() {
		if s.source != source {
			return
		}
		if s.opts.Probe == nil {
			s.fail(ports.ErrNoSource)
			return
		}
		info, err := s.opts.Probe(source)
		if err != nil {
			s.fail(err)
			return
		}
		s.info = info
		s.loaded = true
		s.logger.Debug("Loaded %s: %.2fs %dx%d", source, info.Duration, info.Size.Width, info.Size.Height)
		s.emit(ports.EventLoadedMetadata)
	})
}

func (s *Surface) fail(err error) {
	s.lastErr = err
	s.logger.Warn("Media error: %v", err)
	s.emit(ports.EventError)
}

// Err returns the last media error.
func (s *Surface) Err() error {
	return s.lastErr
}

func (s *Surface) Source() string       { return s.source }
func (s *Surface) CurrentTime() float64 { return s.time }
func (s *Surface) Duration() float64    { return s.info.Duration }
func (s *Surface) Paused() bool         { return s.paused }
func (s *Surface) Muted() bool          { return s.muted }
func (s *Surface) NativeSize() ports.Size {
	return s.info.Size
}
func (s *Surface) DisplayBox() ports.Box { return s.display }

// Info returns the metadata resolved for the loaded source.
func (s *Surface) Info() ports.MediaInfo { return s.info }

func (s *Surface) Play() error {
	if s.source == "" || !s.loaded {
		return ports.ErrNoSource
	}
	if s.opts.PlayErr != nil {
		return s.opts.PlayErr
	}
	if !s.paused {
		return nil
	}
	if s.time >= s.info.Duration {
		s.time = 0
	}
	s.paused = false
	s.emit(ports.EventPlay)
	s.scheduleTick()
	return nil
}

func (s *Surface) Pause() {
	if s.paused {
		return
	}
	s.haltPlayback()
	s.emit(ports.EventPause)
}

func (s *Surface) SetMuted(muted bool) {
	s.muted = muted
}

// Seek moves the clock immediately and raises EventSeeked after SeekDelay.
// A newer seek supersedes a pending one.
func (s *Surface) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if s.loaded && seconds > s.info.Duration {
		seconds = s.info.Duration
	}
	s.time = seconds

	if s.stopSeek != nil {
		s.stopSeek()
	}
	s.stopSeek = s.sched.After(s.opts.SeekDelay, func() {
		s.stopSeek = nil
		if !s.opts.DropSeeked {
			s.emit(ports.EventSeeked)
		}
		s.emit(ports.EventTimeUpdate)
	})
}

func (s *Surface) On(event ports.MediaEvent, handler func()) func() {
	id := s.newID()
	if s.listeners[event] == nil {
		s.listeners[event] = make(map[int]func())
	}
	s.listeners[event][id] = handler
	return func() { delete(s.listeners[event], id) }
}

func (s *Surface) ObserveLayout(handler func()) func() {
	id := s.newID()
	s.layout[id] = handler
	return func() { delete(s.layout, id) }
}

// Resize changes the rendered box and notifies layout observers.
func (s *Surface) Resize(box ports.Box) {
	if box == s.display {
		return
	}
	s.display = box
	s.sched.Post(func() {
		for _, id := range sortedIDs(s.layout) {
			if h, ok := s.layout[id]; ok {
				h()
			}
		}
	})
}

// CaptureStream opens a stream of the frames rendered from now on.
func (s *Surface) CaptureStream() (ports.CaptureStream, error) {
	if s.opts.CaptureUnsupported {
		return nil, ports.ErrCaptureUnsupported
	}
	st := &stream{surface: s, id: s.newID(), handlers: make(map[int]func(ports.VideoFrame))}
	s.streams[st.id] = st
	return st, nil
}

// Close stops playback and releases the frame decoder.
func (s *Surface) Close() {
	s.haltPlayback()
	if s.stopSeek != nil {
		s.stopSeek()
		s.stopSeek = nil
	}
	s.closeFrames()
}

func (s *Surface) frameDuration() time.Duration {
	return time.Duration(float64(time.Second) / s.opts.FPS)
}

func (s *Surface) scheduleTick() {
	s.stopTick = s.sched.After(s.frameDuration(), s.tick)
}

func (s *Surface) tick() {
	s.stopTick = nil
	if s.paused {
		return
	}

	s.time += 1 / s.opts.FPS
	ended := s.time >= s.info.Duration
	if ended {
		s.time = s.info.Duration
	}
	s.deliverFrame()
	s.emit(ports.EventTimeUpdate)

	if ended {
		s.paused = true
		s.emit(ports.EventPause)
		s.emit(ports.EventEnded)
		return
	}
	s.scheduleTick()
}

func (s *Surface) haltPlayback() {
	s.paused = true
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
}

func (s *Surface) deliverFrame() {
	if len(s.streams) == 0 {
		return
	}
	img := s.currentFrame()
	for _, id := range sortedIDs(s.streams) {
		if st, ok := s.streams[id]; ok {
			st.deliver(img)
		}
	}
}

func (s *Surface) currentFrame() image.Image {
	if s.frames == nil && s.opts.Frames != nil {
		src, err := s.opts.Frames(s.source, s.info)
		if err != nil {
			s.logger.Warn("Frame decoder unavailable: %v", err)
			s.opts.Frames = nil
		} else {
			s.frames = src
		}
	}
	if s.frames != nil {
		img, err := s.frames.FrameAt(s.time)
		if err == nil {
			return img
		}
		s.logger.Warn("Frame decode failed at %.2fs: %v", s.time, err)
	}
	if s.blank == nil {
		w, h := s.info.Size.Width, s.info.Size.Height
		if w <= 0 || h <= 0 {
			w, h = 2, 2
		}
		s.blank = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return s.blank
}

func (s *Surface) closeFrames() {
	if s.frames != nil {
		if err := s.frames.Close(); err != nil {
			s.logger.Debug("Frame decoder close: %v", err)
		}
		s.frames = nil
	}
}

// emit dispatches on a later turn to the handlers registered at that time.
func (s *Surface) emit(event ports.MediaEvent) {
	s.sched.Post(func() {
		handlers := s.listeners[event]
		for _, id := range sortedIDs(handlers) {
			if h, ok := handlers[id]; ok {
				h()
			}
		}
	})
}

func (s *Surface) newID() int {
	s.nextID++
	return s.nextID
}

func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

var _ ports.VideoSurface = (*Surface)(nil)

type stream struct {
	surface  *Surface
	id       int
	frames   int
	handlers map[int]func(ports.VideoFrame)
	closed   bool
}

func (st *stream) Size() ports.Size { return st.surface.info.Size }
func (st *stream) FPS() float64     { return st.surface.opts.FPS }

func (st *stream) OnFrame(handler func(ports.VideoFrame)) func() {
	id := st.surface.newID()
	st.handlers[id] = handler
	return func() { delete(st.handlers, id) }
}

func (st *stream) Close() {
	if st.closed {
		return
	}
	st.closed = true
	delete(st.surface.streams, st.id)
	st.handlers = map[int]func(ports.VideoFrame){}
}

func (st *stream) deliver(img image.Image) {
	frame := ports.VideoFrame{
		Image:       img,
		TimestampMs: int(float64(st.frames) * 1000 / st.surface.opts.FPS),
	}
	st.frames++
	for _, id := range sortedIDs(st.handlers) {
		if h, ok := st.handlers[id]; ok {
			h(frame)
		}
	}
}
