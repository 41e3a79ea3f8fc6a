package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidreview/pkg/annotations"
)

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show the duration, resolution and codec of a video"),
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if _, err := setup(c); err != nil {
				return err
			}
			if c.NArg() != 1 {
				return errors.New(l10n.T("exactly one video file is required"))
			}
			info, err := probeMedia(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "duration: %s\nresolution: %dx%d\ncodec: %s\n",
				annotations.FormatTimecode(info.Duration), info.Size.Width, info.Size.Height, info.Codec)
			return nil
		},
	}
}
