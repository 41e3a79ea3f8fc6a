package annotations

import (
	"math"
	"sort"
)

// MatchOptions tunes Sequence.MatchWith.
type MatchOptions struct {
	// Window is the exclusive maximum distance between a frame and the query time.
	Window float64
	// Lookahead stops the scan once frames lie this far past the query time.
	Lookahead float64
}

// DefaultMatch is the matching rule used for overlay drawing.
var DefaultMatch = MatchOptions{Window: 0.25, Lookahead: 0.5}

type entry struct {
	seconds float64
	frame   Frame
}

// Sequence is an immutable, time-ordered list of frames. Replacing the
// tracking data means building a new Sequence.
type Sequence struct {
	entries    []entry
	dropped    int
	badDetects int
}

// NewSequence builds a sequence from frames in any order. Frames whose
// timestamp cannot be parsed are dropped; equal timestamps keep input order.
func NewSequence(frames []Frame) *Sequence {
	s := &Sequence{entries: make([]entry, 0, len(frames))}
	for _, f := range frames {
		s.badDetects += f.invalid
		secs, err := ParseTimecode(f.Timestamp)
		if err != nil {
			s.dropped++
			continue
		}
		dets := append([]Detection(nil), f.Detections...)
		s.entries = append(s.entries, entry{seconds: secs, frame: Frame{Timestamp: f.Timestamp, Detections: dets}})
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].seconds < s.entries[j].seconds
	})
	return s
}

// Len returns the number of usable frames. A nil sequence is empty.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Dropped returns how many input frames had unparseable timestamps.
func (s *Sequence) Dropped() int {
	if s == nil {
		return 0
	}
	return s.dropped
}

// DroppedDetections returns how many detections were discarded while
// decoding because they were malformed.
func (s *Sequence) DroppedDetections() int {
	if s == nil {
		return 0
	}
	return s.badDetects
}

// At returns the i-th frame in time order and its time in seconds.
func (s *Sequence) At(i int) (Frame, float64) {
	e := s.entries[i]
	return e.frame, e.seconds
}

// Frames returns the frames in time order.
func (s *Sequence) Frames() []Frame {
	if s == nil {
		return nil
	}
	out := make([]Frame, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.frame
	}
	return out
}

// Match returns the frame drawn at time t using DefaultMatch.
func (s *Sequence) Match(t float64) (Frame, bool) {
	return s.MatchWith(t, DefaultMatch)
}

// MatchWith returns the frame closest to t within opts.Window. Ties go to
// the earliest frame. Frames beyond t+opts.Lookahead are never examined.
func (s *Sequence) MatchWith(t float64, opts MatchOptions) (Frame, bool) {
	if s.Len() == 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return Frame{}, false
	}

	start := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].seconds > t-opts.Window
	})

	best := -1
	bestDiff := math.Inf(1)
	for i := start; i < len(s.entries); i++ {
		ts := s.entries[i].seconds
		if ts > t+opts.Lookahead {
			break
		}
		diff := math.Abs(ts - t)
		if diff < opts.Window && diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best < 0 {
		return Frame{}, false
	}
	return s.entries[best].frame, true
}
