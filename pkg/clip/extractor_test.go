package clip

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/vidreview/pkg/adapters/logger"
	"github.com/user/vidreview/pkg/adapters/simsurface"
	"github.com/user/vidreview/pkg/mocks"
	"github.com/user/vidreview/pkg/ports"
)

const source = "match.mp4"

type harness struct {
	sched       *mocks.Scheduler
	video       *simsurface.Surface
	capture     *mocks.Capture
	downloader  *mocks.Downloader
	ex          *Extractor
	statuses    []Status
	completions int
}

func newHarness(t *testing.T, simOpts simsurface.Options) *harness {
	t.Helper()
	h := &harness{
		sched:      mocks.NewScheduler(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		downloader: &mocks.Downloader{},
	}
	simOpts.FPS = 10
	if simOpts.SeekDelay == 0 {
		simOpts.SeekDelay = 50 * time.Millisecond
	}
	simOpts.Probe = func(string) (ports.MediaInfo, error) {
		return ports.MediaInfo{Duration: 20, Size: ports.Size{Width: 1280, Height: 720}}, nil
	}
	h.video = simsurface.New(h.sched, logger.NewNoop(), simOpts)
	h.capture = mocks.NewCapture(h.sched)
	h.ex = New(Deps{
		Video:      h.video,
		Capture:    h.capture,
		Downloader: h.downloader,
		Scheduler:  h.sched,
		Logger:     logger.NewNoop(),
	}, DefaultOptions())
	h.ex.OnStatus(func(s Status) { h.statuses = append(h.statuses, s) })

	h.video.Load(source)
	h.sched.RunPending()
	h.video.Seek(7)
	h.sched.Advance(100 * time.Millisecond)
	return h
}

func (h *harness) submit(anchor float64) error {
	err := h.ex.Submit(Request{Anchor: anchor, Source: source}, func() { h.completions++ })
	h.sched.RunPending()
	return err
}

func (h *harness) lastStatus() Status {
	return h.statuses[len(h.statuses)-1]
}

var clipName = regexp.MustCompile(`^clip_\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}\.webm$`)

func TestExtractor_HappyPath(t *testing.T) {
	h := newHarness(t, simsurface.Options{})

	require.NoError(t, h.submit(10))
	require.Equal(t, PhaseSeekingToStart, h.ex.Phase())
	require.True(t, h.ex.Busy())
	require.True(t, h.video.Muted())
	require.True(t, h.video.Paused())
	require.Equal(t, 8.0, h.video.CurrentTime())

	h.sched.Advance(50 * time.Millisecond)
	require.Equal(t, PhaseRecording, h.ex.Phase())
	rec := h.capture.Last()
	require.NotNil(t, rec)
	require.Equal(t, "video/webm;codecs=vp9,opus", rec.MimeType)
	require.Equal(t, 1, rec.Starts)
	require.False(t, h.video.Paused())

	h.sched.Advance(6 * time.Second)
	require.Equal(t, 1, rec.Stops)
	require.Len(t, h.downloader.Downloads, 1)
	dl := h.downloader.Downloads[0]
	require.Regexp(t, clipName, dl.Name)
	require.Equal(t, "clip-data", string(dl.Data))
	require.Equal(t, MessageSuccess, h.lastStatus().Message)
	require.Equal(t, "/downloads/"+dl.Name, h.lastStatus().File)

	// Restored while the confirmation is still showing.
	require.Equal(t, 7.0, h.video.CurrentTime())
	require.True(t, h.video.Paused())
	require.False(t, h.video.Muted())
	require.True(t, h.ex.Busy())
	require.Equal(t, 0, h.completions)

	h.sched.Advance(2 * time.Second)
	require.False(t, h.ex.Busy())
	require.Equal(t, PhaseIdle, h.lastStatus().Phase)
	require.Equal(t, 1, h.completions)

	h.sched.Advance(10 * time.Second)
	require.Equal(t, 1, h.completions)
	require.Equal(t, 0, h.sched.PendingTimers())
}

func TestExtractor_PhasesInOrder(t *testing.T) {
	h := newHarness(t, simsurface.Options{})
	require.NoError(t, h.submit(10))
	h.sched.Advance(10 * time.Second)

	var phases []Phase
	for _, s := range h.statuses {
		if len(phases) == 0 || phases[len(phases)-1] != s.Phase {
			phases = append(phases, s.Phase)
		}
	}
	require.Equal(t, []Phase{PhaseSeekingToStart, PhaseRecording, PhaseFinalizing, PhaseIdle}, phases)
}

func TestExtractor_SeekFallbackTimer(t *testing.T) {
	h := newHarness(t, simsurface.Options{DropSeeked: true})

	require.NoError(t, h.submit(10))
	h.sched.Advance(999 * time.Millisecond)
	require.Equal(t, PhaseSeekingToStart, h.ex.Phase())

	h.sched.Advance(time.Millisecond)
	require.Equal(t, PhaseRecording, h.ex.Phase())
	require.Len(t, h.capture.Recorders, 1)
}

func TestExtractor_LateSeekedAfterFallbackIsIgnored(t *testing.T) {
	h := newHarness(t, simsurface.Options{SeekDelay: 1500 * time.Millisecond})

	require.NoError(t, h.submit(10))
	h.sched.Advance(time.Second)
	require.Equal(t, PhaseRecording, h.ex.Phase())

	h.sched.Advance(time.Second)
	require.Len(t, h.capture.Recorders, 1, "a late seeked signal must not start a second recorder")
}

func TestExtractor_BusyIgnoresRequests(t *testing.T) {
	h := newHarness(t, simsurface.Options{})
	require.NoError(t, h.submit(10))

	err := h.ex.Submit(Request{Anchor: 15, Source: source}, func() { h.completions++ })
	require.ErrorIs(t, err, ErrBusy)

	h.sched.Advance(10 * time.Second)
	require.Equal(t, 1, h.completions)
	require.Len(t, h.capture.Recorders, 1)
}

func TestExtractor_RejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "other source", req: Request{Anchor: 10, Source: "other.mp4"}, wantErr: ErrSourceMismatch},
		{name: "no source", req: Request{Anchor: 10}, wantErr: ErrSourceMismatch},
		{name: "empty window", req: Request{Anchor: -10, Source: source}, wantErr: ErrInvalidWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, simsurface.Options{})

			err := h.ex.Submit(tt.req, func() { h.completions++ })
			h.sched.RunPending()

			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, 1, h.completions)
			require.False(t, h.ex.Busy())
			require.False(t, h.video.Muted())
			require.Equal(t, 7.0, h.video.CurrentTime())
			require.Empty(t, h.capture.Recorders)
		})
	}
}

func TestExtractor_Aborts(t *testing.T) {
	tests := []struct {
		name    string
		simOpts simsurface.Options
		setup   func(h *harness)
		trigger func(h *harness)
		wantErr error
	}{
		{
			name:    "capture unsupported",
			simOpts: simsurface.Options{CaptureUnsupported: true},
			wantErr: ports.ErrCaptureUnsupported,
		},
		{
			name:    "recorder start fails",
			setup:   func(h *harness) { h.capture.StartErr = errors.New("encoder missing") },
			wantErr: ErrRecorder,
		},
		{
			name:    "playback refused",
			simOpts: simsurface.Options{PlayErr: errors.New("autoplay blocked")},
			wantErr: ErrPlayback,
		},
		{
			name: "recorder error mid-recording",
			trigger: func(h *harness) {
				h.capture.Last().Fail(errors.New("pipe closed"))
			},
			wantErr: ErrRecorder,
		},
		{
			name:    "cancelled",
			trigger: func(h *harness) { h.ex.Cancel() },
			wantErr: ErrCancelled,
		},
		{
			name: "download fails",
			setup: func(h *harness) {
				h.downloader.DownloadFunc = func(string, string, []byte) (string, error) {
					return "", errors.New("disk full")
				}
			},
			trigger: func(h *harness) { h.sched.Advance(6 * time.Second) },
			wantErr: ErrDownload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.simOpts)
			if tt.setup != nil {
				tt.setup(h)
			}
			require.NoError(t, h.submit(10))
			h.sched.Advance(50 * time.Millisecond)
			if tt.trigger != nil {
				tt.trigger(h)
				h.sched.RunPending()
			}

			require.Equal(t, PhaseAborting, h.ex.Phase())
			last := h.lastStatus()
			require.Equal(t, MessageError, last.Message)
			require.ErrorIs(t, last.Err, tt.wantErr)

			// Prior playback state comes back immediately.
			require.Equal(t, 7.0, h.video.CurrentTime())
			require.False(t, h.video.Muted())
			require.True(t, h.video.Paused())
			if rec := h.capture.Last(); rec != nil {
				require.Equal(t, ports.RecorderInactive, rec.State())
			}

			h.sched.Advance(3 * time.Second)
			require.False(t, h.ex.Busy())
			require.Equal(t, 1, h.completions)

			h.ex.Cancel()
			h.sched.Advance(10 * time.Second)
			require.Equal(t, 1, h.completions)
		})
	}
}

func TestExtractor_SourceChangeAbortsWithoutRestoringPosition(t *testing.T) {
	h := newHarness(t, simsurface.Options{})
	require.NoError(t, h.submit(10))
	h.sched.Advance(time.Second)
	require.Equal(t, PhaseRecording, h.ex.Phase())

	h.video.Load("other.mp4")
	h.sched.RunPending()

	require.Equal(t, PhaseAborting, h.ex.Phase())
	require.ErrorIs(t, h.lastStatus().Err, ErrSourceChanged)
	require.False(t, h.video.Muted())
	require.Equal(t, "other.mp4", h.video.Source())
	require.Equal(t, 0.0, h.video.CurrentTime())

	h.sched.Advance(3 * time.Second)
	require.Equal(t, 1, h.completions)
	require.Empty(t, h.downloader.Downloads)
}

func TestExtractor_ResumesPlaybackWhenItWasPlaying(t *testing.T) {
	h := newHarness(t, simsurface.Options{})
	require.NoError(t, h.video.Play())
	h.sched.RunPending()

	require.NoError(t, h.submit(10))
	h.sched.Advance(6 * time.Second)

	require.Len(t, h.downloader.Downloads, 1)
	require.False(t, h.video.Paused())
	require.False(t, h.video.Muted())

	h.sched.Advance(2 * time.Second)
	require.Equal(t, 1, h.completions)
}

func TestExtractor_FormatSelection(t *testing.T) {
	tests := []struct {
		name      string
		supported map[string]bool
		wantMime  string
		wantExt   string
	}{
		{
			name:      "mp4 only",
			supported: map[string]bool{"video/mp4;codecs=avc1.42E01E,mp4a.40.2": true},
			wantMime:  "video/mp4;codecs=avc1.42E01E,mp4a.40.2",
			wantExt:   ".mp4",
		},
		{
			name:      "vp8 before plain webm",
			supported: map[string]bool{"video/webm": true, "video/webm;codecs=vp8,opus": true},
			wantMime:  "video/webm;codecs=vp8,opus",
			wantExt:   ".webm",
		},
		{
			name:      "nothing preferred",
			supported: map[string]bool{},
			wantMime:  "image/gif",
			wantExt:   ".gif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, simsurface.Options{})
			h.capture.Supported = tt.supported

			require.NoError(t, h.submit(10))
			h.sched.Advance(6 * time.Second)

			require.Equal(t, tt.wantMime, h.capture.Last().MimeType)
			require.Len(t, h.downloader.Downloads, 1)
			require.Contains(t, h.downloader.Downloads[0].Name, tt.wantExt)
			require.Equal(t, tt.wantMime, h.downloader.Downloads[0].MimeType)
		})
	}
}

func TestExtractor_WindowClampedToDuration(t *testing.T) {
	h := newHarness(t, simsurface.Options{})

	require.NoError(t, h.submit(19))
	h.sched.Advance(50 * time.Millisecond)
	require.Equal(t, Window{Start: 17, End: 20}, h.lastStatus().Window)

	h.sched.Advance(4 * time.Second)
	require.Len(t, h.downloader.Downloads, 1)
	h.sched.Advance(2 * time.Second)
	require.Equal(t, 1, h.completions)
}
