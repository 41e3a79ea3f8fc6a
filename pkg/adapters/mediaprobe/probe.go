// Package mediaprobe reads duration, frame size and codec from MP4 files.
package mediaprobe

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/vidreview/pkg/ports"
)

// ErrNoVideoTrack is returned for files without a video track.
var ErrNoVideoTrack = errors.New("mediaprobe: no video track found")

// Prober implements ports.MediaProber for MP4 files.
type Prober struct{}

func New() *Prober {
	return &Prober{}
}

// Probe opens path and reads its metadata.
func (p *Prober) Probe(path string) (ports.MediaInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return p.ProbeReader(f)
}

// ProbeReader reads metadata from an MP4 stream.
func (p *Prober) ProbeReader(r io.ReadSeeker) (ports.MediaInfo, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := file.Moov
	if file.IsFragmented() && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return ports.MediaInfo{}, ErrNoVideoTrack
	}

	trak := videoTrack(moov)
	if trak == nil {
		return ports.MediaInfo{}, ErrNoVideoTrack
	}

	info := ports.MediaInfo{
		Size:  frameSize(trak),
		Codec: codec(trak),
	}

	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 && moov.Mvhd.Duration > 0 {
		info.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
	} else if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 && trak.Mdia.Mdhd.Duration > 0 {
		info.Duration = float64(trak.Mdia.Mdhd.Duration) / float64(trak.Mdia.Mdhd.Timescale)
	}
	if info.Duration == 0 && file.IsFragmented() {
		d, err := fragmentedDuration(file, moov, trak)
		if err != nil {
			return ports.MediaInfo{}, err
		}
		info.Duration = d
	}

	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func frameSize(trak *mp4.TrakBox) ports.Size {
	if trak.Tkhd != nil {
		size := ports.Size{Width: int(trak.Tkhd.Width >> 16), Height: int(trak.Tkhd.Height >> 16)}
		if !size.IsZero() {
			return size
		}
	}
	if stsd := sampleDescriptions(trak); stsd != nil {
		for _, child := range stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
				return ports.Size{Width: int(vse.Width), Height: int(vse.Height)}
			}
		}
	}
	return ports.Size{}
}

func codec(trak *mp4.TrakBox) string {
	stsd := sampleDescriptions(trak)
	if stsd == nil {
		return "unknown"
	}
	for _, child := range stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "hvc1", "hev1":
			return "h265"
		case "av01":
			return "av1"
		case "vp08":
			return "vp8"
		case "vp09":
			return "vp9"
		}
	}
	return "unknown"
}

func sampleDescriptions(trak *mp4.TrakBox) *mp4.StsdBox {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil
	}
	return trak.Mdia.Minf.Stbl.Stsd
}

// fragmentedDuration sums the sample durations of the video track.
func fragmentedDuration(file *mp4.File, moov *mp4.MoovBox, trak *mp4.TrakBox) (float64, error) {
	if trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return 0, nil
	}
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var total uint64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, fmt.Errorf("read fragment samples: %w", err)
			}
			for _, s := range samples {
				total += uint64(s.Dur)
			}
		}
	}
	return float64(total) / float64(trak.Mdia.Mdhd.Timescale), nil
}

var _ ports.MediaProber = (*Prober)(nil)
