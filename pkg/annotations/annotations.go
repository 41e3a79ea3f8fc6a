// Package annotations models per-frame detection data produced by the
// analysis service and matches it against a playback position.
package annotations

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a detection. Entities are tracked participants, markers
// are the object of play.
type Kind string

const (
	KindEntity Kind = "entity"
	KindMarker Kind = "marker"
)

// ParseKind maps wire names onto a Kind. The analysis service reports
// "player" and "ball".
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entity", "player", "person":
		return KindEntity
	case "marker", "ball":
		return KindMarker
	default:
		return Kind(s)
	}
}

// Detection is one tracked object in one frame. BBox holds normalised
// [x0, y0, x1, y1] coordinates relative to the intrinsic frame size.
type Detection struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"type"`
	BBox       [4]float64  `json:"bbox"`
	Center     *[2]float64 `json:"xy,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
}

// UnmarshalJSON accepts numeric ids and the service's kind aliases.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Kind       string          `json:"type"`
		BBox       []float64       `json:"bbox"`
		Center     []float64       `json:"xy"`
		Confidence float64         `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.BBox) != 4 {
		return fmt.Errorf("bbox: expected 4 values, got %d", len(raw.BBox))
	}

	*d = Detection{
		ID:         decodeID(raw.ID),
		Kind:       ParseKind(raw.Kind),
		Confidence: raw.Confidence,
	}
	copy(d.BBox[:], raw.BBox)
	if len(raw.Center) == 2 {
		d.Center = &[2]float64{raw.Center[0], raw.Center[1]}
	}
	return nil
}

func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Frame is the set of detections reported at one timestamp.
type Frame struct {
	Timestamp  string      `json:"timestamp"`
	Detections []Detection `json:"detections"`

	// invalid counts detections discarded while decoding.
	invalid int
}

// UnmarshalJSON keeps the well-formed detections of a frame and discards
// the rest, so one bad box never costs the whole document. Numeric
// timestamps are read as seconds.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp  json.RawMessage `json:"timestamp"`
		Detections json.RawMessage `json:"detections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Frame{Timestamp: decodeID(raw.Timestamp)}
	if len(raw.Detections) == 0 || string(raw.Detections) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw.Detections, &items); err != nil {
		f.invalid++
		return nil
	}
	for _, item := range items {
		var d Detection
		if err := json.Unmarshal(item, &d); err != nil {
			f.invalid++
			continue
		}
		f.Detections = append(f.Detections, d)
	}
	return nil
}
