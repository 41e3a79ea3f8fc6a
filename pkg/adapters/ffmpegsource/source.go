// Package ffmpegsource decodes video frames by reading raw RGBA from an
// ffmpeg pipe. Forward access is sequential; seeking backwards or far ahead
// restarts the decoder at the requested position.
package ffmpegsource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/ports"
)

// ErrClosed is returned by FrameAt after Close.
var ErrClosed = errors.New("ffmpegsource: closed")

// maxSkip is how far ahead FrameAt reads through frames before it prefers
// restarting the decoder.
const maxSkip = 2.0

// Source implements ports.FrameSource for one media file.
type Source struct {
	path string
	size ports.Size
	fps  float64

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	start  float64
	read   int
	last   *image.RGBA
	eof    bool
	closed bool
}

// New creates a source decoding path at size and fps. The decoder starts
// on the first FrameAt.
func New(path string, size ports.Size, fps float64) (*Source, error) {
	if size.IsZero() {
		return nil, fmt.Errorf("ffmpegsource: unknown frame size for %s", path)
	}
	if fps <= 0 {
		fps = 25
	}
	return &Source{path: path, size: size, fps: fps}, nil
}

// FrameAt returns the frame shown at seconds. Past the end of the stream
// the last decoded frame is returned.
func (s *Source) FrameAt(seconds float64) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if seconds < 0 {
		seconds = 0
	}

	if needsRestart(s.cmd != nil, s.start, s.read, s.fps, seconds) {
		if err := s.restart(seconds); err != nil {
			return nil, err
		}
	}

	for s.last == nil || (!s.eof && s.frameTime(s.read) <= seconds) {
		if err := s.next(); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.eof = true
				if s.last != nil {
					break
				}
				return nil, fmt.Errorf("no frame at %.3fs in %s: %s", seconds, s.path, s.stderr.String())
			}
			return nil, err
		}
	}
	return s.last, nil
}

// frameTime returns the presentation time of the i-th frame read.
func (s *Source) frameTime(i int) float64 {
	return s.start + float64(i)/s.fps
}

// needsRestart reports whether a request at seconds cannot be served by
// reading forward from the current decoder position.
func needsRestart(running bool, start float64, read int, fps, seconds float64) bool {
	if !running {
		return true
	}
	current := start
	if read > 0 {
		current = start + float64(read-1)/fps
	}
	if seconds < current-0.5/fps {
		return true
	}
	return seconds-current > maxSkip
}

func (s *Source) restart(seconds float64) error {
	s.stop()

	path, err := ffmpegbin.Find()
	if err != nil {
		return err
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", s.path,
		"-an",
		"-vf", fmt.Sprintf("fps=%s,scale=%d:%d", strconv.FormatFloat(s.fps, 'f', -1, 64), s.size.Width, s.size.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}

	s.stderr.Reset()
	s.cmd = exec.Command(path, args...)
	s.cmd.Stderr = &s.stderr
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		s.cmd = nil
		return fmt.Errorf("get stdout pipe: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		s.cmd = nil
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	s.stdout = stdout
	s.start = seconds
	s.read = 0
	s.last = nil
	s.eof = false
	return nil
}

func (s *Source) next() error {
	img := image.NewRGBA(image.Rect(0, 0, s.size.Width, s.size.Height))
	if _, err := io.ReadFull(s.stdout, img.Pix); err != nil {
		return err
	}
	s.last = img
	s.read++
	return nil
}

func (s *Source) stop() {
	if s.cmd == nil {
		return
	}
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.cmd = nil
	s.stdout = nil
}

// Close stops the decoder.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
	s.closed = true
	return nil
}

var _ ports.FrameSource = (*Source)(nil)
