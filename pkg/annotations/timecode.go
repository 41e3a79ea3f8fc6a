package annotations

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimecode is returned for timestamps that cannot be parsed.
var ErrInvalidTimecode = errors.New("invalid timecode")

// ParseTimecode converts "HH:MM:SS[.fff]", "MM:SS[.fff]" or plain seconds
// into seconds. A comma is accepted as the decimal separator.
func ParseTimecode(s string) (float64, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, ErrInvalidTimecode
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
	}

	total := secs
	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, s)
		}
		total += float64(n) * multiplier
		multiplier *= 60
	}
	return total, nil
}

// FormatTimecode renders seconds as "HH:MM:SS.mmm".
func FormatTimecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	sec := (ms % 60000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, sec, ms%1000)
}

// FormatClock renders seconds as "m:ss" for the playback position display.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
