package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidreview/pkg/adapters/ffmpegsource"
	"github.com/user/vidreview/pkg/adapters/ggrenderer"
	"github.com/user/vidreview/pkg/adapters/osfilesystem"
	"github.com/user/vidreview/pkg/annotations"
	"github.com/user/vidreview/pkg/overlay"
	"github.com/user/vidreview/pkg/ports"
)

var errUnknownResolution = errors.New("source resolution unknown: pass --width and --height or --source")

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: l10n.T("Draw the tracking overlay at a time to PNG"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "annotations",
				Usage:    l10n.T("Tracking data JSON file (required)"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "at",
				Aliases:  []string{"a"},
				Usage:    l10n.T("Time in seconds or HH:MM:SS.fff (required)"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    l10n.T("Output PNG file path (required)"),
				Required: true,
			},
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"W"},
				Usage:   l10n.T("Source video width in pixels"),
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   l10n.T("Source video height in pixels"),
			},
			&cli.StringFlag{
				Name:  "display",
				Usage: l10n.T("Displayed size as WIDTHxHEIGHT (default: source size)"),
			},
			&cli.StringFlag{
				Name:  "focus",
				Usage: l10n.T("Only draw the entity with this id"),
			},
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   l10n.T("Video file to draw the overlay on"),
			},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	seq, err := loadSequence(c.String("annotations"))
	if err != nil {
		return err
	}
	at, err := annotations.ParseTimecode(c.String("at"))
	if err != nil {
		return fmt.Errorf("--at: %w", err)
	}

	size := ports.Size{Width: c.Int("width"), Height: c.Int("height")}
	source := c.String("source")
	if size.IsZero() && source != "" {
		info, err := probeMedia(source)
		if err != nil {
			return err
		}
		size = info.Size
	}
	if size.IsZero() {
		return errUnknownResolution
	}

	display := size
	if v := c.String("display"); v != "" {
		if display, err = parseSize(v); err != nil {
			return fmt.Errorf("--display: %w", err)
		}
	}

	surface := ggrenderer.NewSurface()
	surface.SetIntrinsicSize(size)
	res := overlay.New(e.cfg.Theme(), e.cfg.MatchOptions(), e.log).Render(surface, overlay.Scene{
		Time:     at,
		Sequence: seq,
		FocusID:  c.String("focus"),
	})
	if !res.Matched {
		e.log.Warn("No tracking frame near %s", annotations.FormatTimecode(at))
	}

	renderer := ggrenderer.New()
	img := surface.Image()
	if source != "" {
		frames, err := ffmpegsource.New(source, size, e.cfg.Player.FPS)
		if err != nil {
			return err
		}
		defer frames.Close()
		frame, err := frames.FrameAt(at)
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}
		img = overlay.Compose(renderer, frame, img, display)
	} else if display != size {
		img = renderer.ResizeImage(img, display.Width, display.Height)
	}

	data, err := renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	out := c.String("out")
	if err := osfilesystem.New().WriteFile(out, data); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	e.log.Info("Overlay written to %s (%d boxes)", out, len(res.Boxes))
	return nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (ports.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return ports.Size{}, fmt.Errorf("invalid size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return ports.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return ports.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	size := ports.Size{Width: width, Height: height}
	if size.IsZero() {
		return ports.Size{}, fmt.Errorf("invalid size %q", s)
	}
	return size, nil
}
