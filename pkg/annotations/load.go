package annotations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyDocument is returned when the input holds no JSON value.
var ErrEmptyDocument = errors.New("empty annotations document")

// Document is the wire envelope produced by the analysis service.
type Document struct {
	FrameData []Frame `json:"frame_data"`
}

// Load reads a tracking document, either {"frame_data": [...]} or a bare
// array of frames.
func Load(r io.Reader) (*Sequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	return Decode(data)
}

// Decode parses a tracking document held in memory.
func Decode(data []byte) (*Sequence, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	var frames []Frame
	if data[0] == '[' {
		if err := json.Unmarshal(data, &frames); err != nil {
			return nil, fmt.Errorf("decode frames: %w", err)
		}
	} else {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		frames = doc.FrameData
	}
	return NewSequence(frames), nil
}

// LoadTimecodes reads a JSON array of timecodes.
func LoadTimecodes(r io.Reader) ([]Timecode, error) {
	var items []Timecode
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode timecodes: %w", err)
	}
	return items, nil
}
