// Package ffmpegrecorder records capture streams by piping raw RGBA frames
// into an ffmpeg process.
package ffmpegrecorder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/ports"
)

var (
	// ErrNotInitialized is returned when the encoder is used before Begin.
	ErrNotInitialized = errors.New("ffmpegrecorder: encoder not initialized")

	// ErrUnsupportedType is returned for mime types with no ffmpeg profile.
	ErrUnsupportedType = errors.New("ffmpegrecorder: unsupported mime type")
)

// Profile is the ffmpeg output configuration for one container/codec.
type Profile struct {
	Encoder   string
	Container string
	Extension string
	Args      []string
}

// ProfileFor maps a recorder mime type to an ffmpeg profile.
func ProfileFor(mimeType string) (Profile, bool) {
	base, params, _ := strings.Cut(strings.ToLower(mimeType), ";")
	base = strings.TrimSpace(base)
	params = strings.ReplaceAll(params, " ", "")

	switch base {
	case "video/webm":
		if strings.Contains(params, "vp9") {
			return Profile{
				Encoder:   "libvpx-vp9",
				Container: "webm",
				Extension: "webm",
				Args:      []string{"-deadline", "realtime", "-row-mt", "1"},
			}, true
		}
		return Profile{
			Encoder:   "libvpx",
			Container: "webm",
			Extension: "webm",
			Args:      []string{"-deadline", "realtime"},
		}, true
	case "video/mp4":
		return Profile{
			Encoder:   "libx264",
			Container: "mp4",
			Extension: "mp4",
			Args:      []string{"-preset", "fast", "-profile:v", "baseline", "-level", "3.1", "-movflags", "+faststart"},
		}, true
	}
	return Profile{}, false
}

// Encoder implements ports.VideoEncoder with an ffmpeg subprocess writing to
// a temporary file. Audio is not recorded.
type Encoder struct {
	profile Profile

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   bytes.Buffer
	tempPath string
	width    int
	height   int
	frame    *image.RGBA
	frames   int
	closed   bool
}

// NewEncoder creates an encoder for the given profile.
func NewEncoder(profile Profile) *Encoder {
	return &Encoder{profile: profile}
}

func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ffmpegPath, err := ffmpegbin.Find()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "vidreview_clip_*."+e.profile.Extension)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	e.tempPath = tmp.Name()
	tmp.Close()

	e.width = width
	e.height = height
	e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	e.frames = 0
	e.closed = false
	e.stderr.Reset()

	e.cmd = exec.Command(ffmpegPath, e.args(width, height, fps, opts)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("get stdin pipe: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		stdin.Close()
		os.Remove(e.tempPath)
		e.tempPath = ""
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	e.stdin = stdin
	return nil
}

func (e *Encoder) args(width, height int, fps float64, opts ports.EncoderOptions) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.3f", fps),
		"-i", "pipe:0",
		"-an",
		// yuv420p needs even dimensions.
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", e.profile.Encoder,
		"-pix_fmt", "yuv420p",
	}
	args = append(args, e.profile.Args...)

	if opts.Quality > 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", e.crf(opts.Quality)))
	}
	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	} else if e.profile.Container == "webm" {
		// libvpx needs -b:v 0 for constant quality mode.
		args = append(args, "-b:v", "0")
		if opts.Quality <= 0 {
			args = append(args, "-crf", "32")
		}
	}

	return append(args, "-f", e.profile.Container, e.tempPath)
}

// crf maps the 0-63 quality scale onto the encoder's CRF range.
func (e *Encoder) crf(quality int) int {
	if quality > 63 {
		quality = 63
	}
	if e.profile.Encoder == "libx264" {
		return quality * 51 / 63
	}
	return quality
}

func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return ErrNotInitialized
	}

	b := img.Bounds()
	if b.Dx() == e.width && b.Dy() == e.height {
		xdraw.Draw(e.frame, e.frame.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(e.frame, e.frame.Bounds(), img, b, xdraw.Src, nil)
	}

	if _, err := e.stdin.Write(e.frame.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	e.frames++
	return nil
}

// End waits for ffmpeg and returns the encoded file.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return nil, ErrNotInitialized
	}
	e.stdin.Close()
	e.stdin = nil
	e.closed = true
	defer func() {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}()

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}
	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

// Frames returns the number of frames written.
func (e *Encoder) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

var _ ports.VideoEncoder = (*Encoder)(nil)
