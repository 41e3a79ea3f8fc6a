// Package ffmpegbin locates the ffmpeg executable and queries its encoders.
package ffmpegbin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrNotFound is returned when no ffmpeg executable can be located.
var ErrNotFound = errors.New("ffmpeg not found")

var (
	customMu   sync.RWMutex
	customPath string
)

// SetPath forces a specific ffmpeg executable. "" restores the search.
func SetPath(path string) {
	customMu.Lock()
	defer customMu.Unlock()
	customPath = path
}

// Find returns the ffmpeg executable. Priority: SetPath, VIDREVIEW_FFMPEG,
// FFMPEG_PATH, PATH, then common install locations.
func Find() (string, error) {
	customMu.RLock()
	custom := customPath
	customMu.RUnlock()

	if custom != "" {
		if _, err := os.Stat(custom); err != nil {
			return "", fmt.Errorf("%w: configured path %s", ErrNotFound, custom)
		}
		return custom, nil
	}

	for _, env := range []string{"VIDREVIEW_FFMPEG", "FFMPEG_PATH"} {
		if p := os.Getenv(env); p != "" {
			if _, err := os.Stat(p); err != nil {
				return "", fmt.Errorf("%w: %s=%s", ErrNotFound, env, p)
			}
			return p, nil
		}
	}

	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name = "ffmpeg.exe"
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	for _, p := range commonPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

func commonPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	default:
		return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	}
}

// Encoders lists the video encoder names the ffmpeg build supports.
func Encoders(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("list encoders: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseEncoders(stdout.String()), nil
}

// ParseEncoders parses `ffmpeg -encoders` output, keeping video encoders.
func ParseEncoders(out string) map[string]bool {
	encoders := make(map[string]bool)
	inList := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "------") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 || fields[0][0] != 'V' {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}
