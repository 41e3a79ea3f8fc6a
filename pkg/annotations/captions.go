package annotations

import "sort"

// Timecode is a labelled point of interest on the timeline.
type Timecode struct {
	Time  float64 `json:"time"`
	Text  string  `json:"text"`
	Value string  `json:"value,omitempty"`
}

// Captions answers "which label is current" for a playback position.
type Captions struct {
	items []Timecode
}

// NewCaptions copies and time-orders the timecodes.
func NewCaptions(items []Timecode) *Captions {
	c := &Captions{items: append([]Timecode(nil), items...)}
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.items[i].Time < c.items[j].Time
	})
	return c
}

// At returns the text of the last timecode at or before t, or "".
func (c *Captions) At(t float64) string {
	if c == nil {
		return ""
	}
	i := sort.Search(len(c.items), func(i int) bool {
		return c.items[i].Time > t
	})
	if i == 0 {
		return ""
	}
	return c.items[i-1].Text
}

// Items returns the timecodes in time order.
func (c *Captions) Items() []Timecode {
	if c == nil {
		return nil
	}
	return append([]Timecode(nil), c.items...)
}
