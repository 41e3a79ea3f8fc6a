package annotations

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the sequence as an indented frame_data document.
func WriteJSON(w io.Writer, s *Sequence) error {
	doc := Document{FrameData: s.Frames()}
	if doc.FrameData == nil {
		doc.FrameData = []Frame{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

var csvHeader = []string{"timestamp", "seconds", "id", "type", "x0", "y0", "x1", "y1", "cx", "cy", "confidence"}

// WriteCSV writes one row per detection. Frames without detections are skipped.
func WriteCSV(w io.Writer, s *Sequence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := 0; i < s.Len(); i++ {
		frame, secs := s.At(i)
		for _, d := range frame.Detections {
			cx, cy := "", ""
			if d.Center != nil {
				cx, cy = formatFloat(d.Center[0]), formatFloat(d.Center[1])
			}
			conf := ""
			if d.Confidence != 0 {
				conf = formatFloat(d.Confidence)
			}
			row := []string{
				frame.Timestamp,
				strconv.FormatFloat(secs, 'f', 3, 64),
				d.ID,
				string(d.Kind),
				formatFloat(d.BBox[0]),
				formatFloat(d.BBox[1]),
				formatFloat(d.BBox[2]),
				formatFloat(d.BBox[3]),
				cx,
				cy,
				conf,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
