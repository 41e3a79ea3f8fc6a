package ports

import (
	"image"
)

// VideoEncoder turns a sequence of frames into a finished media file.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the file bytes.
	End() ([]byte, error)
}

// EncoderOptions configures encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps, 0 lets the encoder decide
	Quality int // CRF value (lower is higher quality), 0 uses the encoder default
}
