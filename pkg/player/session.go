// Package player composes the geometry tracker, overlay renderer and clip
// extractor around one video surface and its overlay.
package player

import (
	"errors"

	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/clip"
	"github.com/user/vidreview/pkg/geometry"
	"github.com/user/vidreview/pkg/overlay"
	"github.com/user/vidreview/pkg/ports"
)

// Options configures a Session.
type Options struct {
	Clip  clip.Options
	Theme overlay.Theme
	Match annotations.MatchOptions
	// Hint is the source resolution reported by the host, used until the
	// video's own metadata arrives.
	Hint ports.Size
}

// DefaultOptions returns the stock clip, theme and matching settings.
func DefaultOptions() Options {
	return Options{
		Clip:  clip.DefaultOptions(),
		Theme: overlay.DefaultTheme(),
		Match: annotations.DefaultMatch,
	}
}

// Deps are the host services a Session drives.
type Deps struct {
	Video      ports.VideoSurface
	Overlay    ports.OverlaySurface
	Capture    ports.Capture
	Downloader ports.Downloader
	Scheduler  ports.Scheduler
	Logger     ports.Logger
}

// Snapshot is the state a host UI renders.
type Snapshot struct {
	Source        string
	Time          float64
	Duration      float64
	Clock         string
	Playing       bool
	Muted         bool
	Caption       string
	ScrubFraction float64
	Locked        bool
	ClipPhase     clip.Phase
	Geometry      geometry.PlaybackGeometry
	Drawn         overlay.Result
}

type pendingClip struct {
	req       clip.Request
	submitted bool
}

// Session is the review player. All methods must be called on the
// scheduler goroutine.
type Session struct {
	video   ports.VideoSurface
	overlay ports.OverlaySurface
	sched   ports.Scheduler
	logger  ports.Logger
	hint    ports.Size

	tracker   *geometry.Tracker
	renderer  *overlay.Renderer
	extractor *clip.Extractor

	sequence *annotations.Sequence
	captions *annotations.Captions
	focusID  string

	repaintQueued bool
	drawn         overlay.Result
	pending       *pendingClip
	unsubscribe   []func()

	onClipComplete func()
	onClipStatus   func(clip.Status)
	onLoaded       func()
}

func New(deps Deps, opts Options) *Session {
	s := &Session{
		video:    deps.Video,
		overlay:  deps.Overlay,
		sched:    deps.Scheduler,
		logger:   deps.Logger.WithComponent("player"),
		hint:     opts.Hint,
		tracker:  geometry.New(deps.Logger),
		renderer: overlay.New(opts.Theme, opts.Match, deps.Logger),
		extractor: clip.New(clip.Deps{
			Video:      deps.Video,
			Capture:    deps.Capture,
			Downloader: deps.Downloader,
			Scheduler:  deps.Scheduler,
			Logger:     deps.Logger,
		}, opts.Clip),
	}
	s.extractor.OnStatus(s.clipStatus)
	return s
}

// Start binds the session to its surfaces.
func (s *Session) Start() {
	s.tracker.Attach(s.video, s.overlay, s.hint)
	s.unsubscribe = append(s.unsubscribe,
		s.video.On(ports.EventLoadedMetadata, s.metadataLoaded),
		s.video.On(ports.EventTimeUpdate, s.requestRepaint),
		s.video.On(ports.EventPlay, s.requestRepaint),
		s.video.On(ports.EventPause, s.requestRepaint),
		s.video.On(ports.EventSeeked, s.requestRepaint),
		s.video.On(ports.EventEmptied, s.requestRepaint),
	)
	s.requestRepaint()
}

// Close aborts any clip job and releases the surfaces.
func (s *Session) Close() {
	s.extractor.Cancel()
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	s.tracker.Detach()
}

// OnClipComplete registers the callback fired once per consumed clip request.
func (s *Session) OnClipComplete(fn func()) { s.onClipComplete = fn }

// OnClipStatus registers a listener for clip progress messages.
func (s *Session) OnClipStatus(fn func(clip.Status)) { s.onClipStatus = fn }

// OnLoaded registers a listener for source metadata arrival.
func (s *Session) OnLoaded(fn func()) { s.onLoaded = fn }

// SetSource replaces the video. An active clip job is aborted in this turn.
func (s *Session) SetSource(source string) {
	if source == s.video.Source() {
		return
	}
	s.extractor.SourceChanged()
	s.video.Load(source)
	s.tracker.SyncIntrinsic()
	s.requestRepaint()
}

// SetHint replaces the resolution hint.
func (s *Session) SetHint(hint ports.Size) {
	s.hint = hint
	if s.tracker.SetHint(hint) {
		s.requestRepaint()
	}
}

// SetAnnotations replaces the tracking data. nil clears it.
func (s *Session) SetAnnotations(seq *annotations.Sequence) {
	s.sequence = seq
	s.requestRepaint()
}

// SetFocus limits drawing to one entity id. "" draws everything.
func (s *Session) SetFocus(id string) {
	if id == s.focusID {
		return
	}
	s.focusID = id
	s.requestRepaint()
}

// SetTimecodes replaces the caption timecodes.
func (s *Session) SetTimecodes(items []annotations.Timecode) {
	s.captions = annotations.NewCaptions(items)
}

// Locked reports whether a clip job owns playback.
func (s *Session) Locked() bool {
	return s.extractor.Busy()
}

// RequestSeek jumps to t seconds. It is ignored while locked.
func (s *Session) RequestSeek(t float64) bool {
	if s.Locked() || s.video.Source() == "" {
		return false
	}
	s.video.Seek(t)
	s.requestRepaint()
	return true
}

// Scrub seeks to a fraction of the duration. It is ignored while locked.
func (s *Session) Scrub(fraction float64) bool {
	d := s.video.Duration()
	if d <= 0 {
		return false
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	return s.RequestSeek(fraction * d)
}

// TogglePlay flips between playing and paused. It is ignored while locked.
func (s *Session) TogglePlay() bool {
	if s.Locked() {
		return false
	}
	if !s.video.Paused() {
		s.video.Pause()
		return true
	}
	if err := s.video.Play(); err != nil {
		s.logger.Warn("Playback refused: %v", err)
		return false
	}
	return true
}

// SetMuted changes the mute state. It is ignored while locked.
func (s *Session) SetMuted(muted bool) bool {
	if s.Locked() {
		return false
	}
	s.video.SetMuted(muted)
	return true
}

// RequestClip sets the pending clip request. nil clears it. A request is
// consumed once; it waits while another job is active.
func (s *Session) RequestClip(req *clip.Request) {
	if req == nil {
		s.pending = nil
		return
	}
	s.pending = &pendingClip{req: *req}
	s.tryClip()
}

// CancelClip aborts the active clip job.
func (s *Session) CancelClip() {
	s.extractor.Cancel()
}

func (s *Session) tryClip() {
	p := s.pending
	if p == nil || p.submitted || s.extractor.Busy() {
		return
	}
	p.submitted = true
	err := s.extractor.Submit(p.req, func() { s.clipDone() })
	if errors.Is(err, clip.ErrBusy) {
		p.submitted = false
	}
}

func (s *Session) clipDone() {
	if s.onClipComplete != nil {
		s.onClipComplete()
	}
	// A newer request may have arrived while the job ran.
	s.sched.Post(s.tryClip)
}

func (s *Session) clipStatus(st clip.Status) {
	if st.Phase == clip.PhaseSeekingToStart || st.Err != nil || st.File != "" {
		s.logger.Info(st.Message)
	}
	if s.onClipStatus != nil {
		s.onClipStatus(st)
	}
}

func (s *Session) metadataLoaded() {
	if s.tracker.SyncIntrinsic() {
		s.logger.Debug("Overlay resized after metadata")
	}
	s.requestRepaint()
	if s.onLoaded != nil {
		s.onLoaded()
	}
}

// requestRepaint coalesces repaints into one pending task that reads the
// playback time when it runs.
func (s *Session) requestRepaint() {
	if s.repaintQueued {
		return
	}
	s.repaintQueued = true
	s.sched.Post(s.repaint)
}

func (s *Session) repaint() {
	s.repaintQueued = false
	s.drawn = s.renderer.Render(s.overlay, overlay.Scene{
		Time:     s.video.CurrentTime(),
		Sequence: s.sequence,
		FocusID:  s.focusID,
	})
}

// Snapshot returns the current player state.
func (s *Session) Snapshot() Snapshot {
	t := s.video.CurrentTime()
	d := s.video.Duration()
	snap := Snapshot{
		Source:    s.video.Source(),
		Time:      t,
		Duration:  d,
		Clock:     annotations.FormatClock(t),
		Playing:   !s.video.Paused(),
		Muted:     s.video.Muted(),
		Caption:   s.captions.At(t),
		Locked:    s.Locked(),
		ClipPhase: s.extractor.Phase(),
		Geometry:  s.tracker.Geometry(),
		Drawn:     s.drawn,
	}
	if d > 0 {
		snap.ScrubFraction = t / d
	}
	return snap
}
