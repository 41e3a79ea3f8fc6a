package ffmpegsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/ports"
)

// ErrNoVideoStream is returned when ffmpeg reports no video stream.
var ErrNoVideoStream = errors.New("ffmpegsource: no video stream")

var (
	durationRe = regexp.MustCompile(`Duration: (\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	videoRe    = regexp.MustCompile(`Stream #[^\n]*?: Video: (\w+)[^\n]*?, (\d{2,5})x(\d{2,5})`)
)

// Prober reads media metadata from `ffmpeg -i` output. It handles any
// container ffmpeg can open.
type Prober struct {
	Timeout time.Duration
}

func NewProber() *Prober {
	return &Prober{Timeout: 10 * time.Second}
}

func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	ffmpeg, err := ffmpegbin.Find()
	if err != nil {
		return ports.MediaInfo{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-i", path)
	cmd.Stderr = &stderr
	// Without an output ffmpeg always exits non-zero; the header is still printed.
	_ = cmd.Run()
	if ctx.Err() != nil {
		return ports.MediaInfo{}, fmt.Errorf("probe %s: %w", path, ctx.Err())
	}

	info, err := ParseInfo(stderr.String())
	if err != nil {
		return info, fmt.Errorf("probe %s: %w", path, err)
	}
	return info, nil
}

// ParseInfo extracts duration, size and codec from an ffmpeg input header.
func ParseInfo(out string) (ports.MediaInfo, error) {
	var info ports.MediaInfo

	m := videoRe.FindStringSubmatch(out)
	if m == nil {
		return info, ErrNoVideoStream
	}
	info.Codec = m[1]
	info.Size.Width, _ = strconv.Atoi(m[2])
	info.Size.Height, _ = strconv.Atoi(m[3])

	if d := durationRe.FindStringSubmatch(out); d != nil {
		h, _ := strconv.Atoi(d[1])
		mins, _ := strconv.Atoi(d[2])
		sec, _ := strconv.ParseFloat(d[3], 64)
		info.Duration = float64(h*3600+mins*60) + sec
	}
	return info, nil
}

var _ ports.MediaProber = (*Prober)(nil)
