package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidreview/pkg/adapters/osfilesystem"
	"github.com/user/vidreview/pkg/annotations"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: l10n.T("Re-export tracking data as JSON or CSV"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "annotations",
				Usage:    l10n.T("Tracking data JSON file (required)"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "json",
				Usage:   l10n.T("Output format (json, csv)"),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   l10n.T("Output file (default: standard output)"),
			},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	seq, err := loadSequence(c.String("annotations"))
	if err != nil {
		return err
	}
	if seq.Dropped() > 0 {
		e.log.Warn("Skipped %d frames with unreadable timestamps", seq.Dropped())
	}
	if n := seq.DroppedDetections(); n > 0 {
		e.log.Warn("Skipped %d malformed detections", n)
	}

	var buf bytes.Buffer
	if err := writeSequence(&buf, seq, c.String("format")); err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		_, err := c.App.Writer.Write(buf.Bytes())
		return err
	}
	if err := osfilesystem.New().WriteFile(out, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	e.log.Info("Exported %d frames to %s", seq.Len(), out)
	return nil
}

func writeSequence(w io.Writer, seq *annotations.Sequence, format string) error {
	switch format {
	case "json":
		return annotations.WriteJSON(w, seq)
	case "csv":
		return annotations.WriteCSV(w, seq)
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", format)
	}
}
