package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidreview/pkg/adapters/ffmpegrecorder"
	"github.com/user/vidreview/pkg/adapters/ffmpegsource"
	"github.com/user/vidreview/pkg/adapters/filedownload"
	"github.com/user/vidreview/pkg/adapters/ggrenderer"
	"github.com/user/vidreview/pkg/adapters/gifrecorder"
	"github.com/user/vidreview/pkg/adapters/mediaprobe"
	"github.com/user/vidreview/pkg/adapters/multicapture"
	"github.com/user/vidreview/pkg/adapters/osfilesystem"
	"github.com/user/vidreview/pkg/adapters/simsurface"
	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/clip"
	"github.com/user/vidreview/pkg/eventloop"
	"github.com/user/vidreview/pkg/player"
	"github.com/user/vidreview/pkg/ports"
	"github.com/user/vidreview/pkg/summarizer"
)

// errNoClip marks a request the extractor consumed without producing a file.
var errNoClip = errors.New("no clip produced")

func clipCommand() *cli.Command {
	return &cli.Command{
		Name:  "clip",
		Usage: l10n.T("Cut clips around anchor times and save them"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    l10n.T("Video file to clip (required)"),
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "at",
				Aliases:  []string{"a"},
				Usage:    l10n.T("Anchor time in seconds or HH:MM:SS.fff (repeatable)"),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "annotations",
				Usage: l10n.T("Tracking data JSON file"),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   l10n.T("Output directory for clips"),
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: l10n.T("Preferred clip mime type (repeatable, overrides config)"),
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: l10n.T("Write a Markdown summary of the run to this file"),
			},
		},
		Action: runClip,
	}
}

func runClip(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	anchors, err := parseAnchors(c.StringSlice("at"))
	if err != nil {
		return err
	}
	if c.IsSet("out") {
		e.cfg.OutputDir = c.String("out")
	}
	if c.IsSet("format") {
		e.cfg.Clip.Formats = c.StringSlice("format")
	}

	var seq *annotations.Sequence
	if path := c.String("annotations"); path != "" {
		if seq, err = loadSequence(path); err != nil {
			return err
		}
	}

	source, err := filepath.Abs(c.String("source"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	sum, err := clipAll(c.Context, e, source, anchors, seq)
	if sum != nil {
		for _, info := range sum.Clips {
			if info.OK() {
				fmt.Fprintln(c.App.Writer, info.File)
			}
		}
		if path := c.String("summary"); path != "" {
			w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), osfilesystem.New())
			if werr := w.Write(path, sum); werr != nil {
				e.log.Error("Failed to write summary: %s", werr)
			} else {
				e.log.Info("Summary saved to %s", path)
			}
		}
	}
	if err != nil {
		return err
	}
	if failed := sum.Failed(); failed > 0 {
		return errors.New(l10n.F("%d of %d clips failed", failed, len(sum.Clips)))
	}
	return nil
}

// probeMedia reads MP4 metadata natively and falls back to ffmpeg for
// other containers.
func probeMedia(path string) (ports.MediaInfo, error) {
	info, err := mediaprobe.New().Probe(path)
	if err == nil && info.Duration > 0 && !info.Size.IsZero() {
		return info, nil
	}
	fallback, ferr := ffmpegsource.NewProber().Probe(path)
	if ferr != nil {
		if err != nil {
			return info, fmt.Errorf("%w (ffmpeg: %v)", err, ferr)
		}
		return info, ferr
	}
	return fallback, nil
}

// clipAll plays source on an event loop and clips each anchor in turn.
func clipAll(ctx context.Context, e *env, source string, anchors []float64, seq *annotations.Sequence) (*summarizer.Summary, error) {
	cfg := e.cfg
	log := e.log
	loop := eventloop.New()

	surface := simsurface.New(loop, log, simsurface.Options{
		FPS:   cfg.Player.FPS,
		Probe: probeMedia,
		Frames: func(src string, info ports.MediaInfo) (ports.FrameSource, error) {
			return ffmpegsource.New(src, info.Size, cfg.Player.FPS)
		},
		Display: ports.Box{Width: float64(cfg.Player.Width), Height: float64(cfg.Player.Height)},
	})
	ffmpegCapture := ffmpegrecorder.NewCapture(loop, log, cfg.EncoderOptions())
	capture := multicapture.New(
		ffmpegCapture,
		gifrecorder.NewCapture(loop, log, cfg.Recorder.GIFMaxWidth),
	)
	session := player.New(player.Deps{
		Video:      surface,
		Overlay:    ggrenderer.NewSurface(),
		Capture:    capture,
		Downloader: filedownload.New(cfg.OutputDir, osfilesystem.New(), log),
		Scheduler:  loop,
		Logger:     log,
	}, cfg.PlayerOptions())

	done := make(chan error, 1)
	run := &clipRun{
		session: session,
		surface: surface,
		source:  source,
		anchors: anchors,
		seq:     seq,
		done:    done,
		builder: summarizer.NewBuilder().WithSettings(summarizer.Settings{
			PreRoll:  cfg.Clip.PreRoll,
			PostRoll: cfg.Clip.PostRoll,
			Formats:  cfg.Clip.Formats,
			Fallback: cfg.Clip.Fallback,
			FPS:      cfg.Player.FPS,
		}),
	}

	// Encoder support is read on the loop, so learn it before the loop starts.
	select {
	case <-ffmpegCapture.Warm():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)
	loop.Post(run.start)

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		log.Warn("Interrupted, shutting down...")
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var sum *summarizer.Summary
	_ = loop.Do(shutdownCtx, func() {
		session.Close()
		surface.Close()
		sum = run.builder.Build()
	})
	return sum, err
}

// clipRun drives the session through the anchors. It is loop-confined.
type clipRun struct {
	session *player.Session
	surface *simsurface.Surface
	source  string
	anchors []float64
	seq     *annotations.Sequence
	done    chan<- error
	builder *summarizer.Builder

	next     int
	started  bool
	finished bool
	current  summarizer.ClipInfo
}

func (r *clipRun) start() {
	r.session.OnLoaded(r.loaded)
	r.session.OnClipStatus(r.status)
	r.session.OnClipComplete(r.complete)
	r.surface.On(ports.EventError, r.mediaError)
	r.session.Start()
	if r.seq != nil {
		r.session.SetAnnotations(r.seq)
	}
	r.session.SetSource(r.source)
}

func (r *clipRun) loaded() {
	if r.started {
		return
	}
	r.started = true
	r.builder.WithSource(r.source, r.surface.Info())
	r.submit()
}

func (r *clipRun) submit() {
	if r.next >= len(r.anchors) {
		r.finish(nil)
		return
	}
	anchor := r.anchors[r.next]
	r.next++
	r.current = summarizer.ClipInfo{Anchor: anchor}
	r.session.RequestClip(&clip.Request{Anchor: anchor, Source: r.source})
}

func (r *clipRun) status(st clip.Status) {
	r.current.Start = st.Window.Start
	r.current.End = st.Window.End
	if st.File != "" {
		r.current.File = st.File
		if fi, err := os.Stat(st.File); err == nil {
			r.current.Bytes = fi.Size()
		}
	}
	if st.Err != nil {
		r.current.Err = st.Err
	}
}

func (r *clipRun) complete() {
	if r.current.File == "" && r.current.Err == nil {
		r.current.Err = errNoClip
	}
	r.builder.AddClip(r.current)
	r.submit()
}

func (r *clipRun) mediaError() {
	r.finish(fmt.Errorf("load %s: %w", r.source, r.surface.Err()))
}

func (r *clipRun) finish(err error) {
	if r.finished {
		return
	}
	r.finished = true
	r.done <- err
}

// parseAnchors accepts plain seconds or timecodes.
func parseAnchors(values []string) ([]float64, error) {
	anchors := make([]float64, 0, len(values))
	for _, v := range values {
		t, err := annotations.ParseTimecode(v)
		if err != nil {
			return nil, fmt.Errorf("anchor %q: %w", v, err)
		}
		anchors = append(anchors, t)
	}
	return anchors, nil
}

func loadSequence(path string) (*annotations.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	seq, err := annotations.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return seq, nil
}
