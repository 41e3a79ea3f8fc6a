// Package summarizer reports the outcome of a clip run.
package summarizer

import (
	"time"

	"github.com/user/vidreview/pkg/ports"
)

// Summary contains all data collected during a clip run.
type Summary struct {
	GeneratedAt time.Time

	Source   string
	Media    ports.MediaInfo
	Settings Settings
	Clips    []ClipInfo
}

// Settings records the extractor configuration used for the run.
type Settings struct {
	PreRoll  float64
	PostRoll float64
	Formats  []string
	Fallback string
	FPS      float64
}

// ClipInfo is the outcome of one clip request.
type ClipInfo struct {
	Anchor float64
	Start  float64
	End    float64
	File   string
	Bytes  int64
	Err    error
}

// OK reports whether the clip was written.
func (c ClipInfo) OK() bool {
	return c.Err == nil && c.File != ""
}

// Failed counts clips that produced no file.
func (s *Summary) Failed() int {
	n := 0
	for _, c := range s.Clips {
		if !c.OK() {
			n++
		}
	}
	return n
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{GeneratedAt: time.Now()}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

func NewBuilder() *Builder {
	return &Builder{summary: NewSummary()}
}

func (b *Builder) WithSource(source string, media ports.MediaInfo) *Builder {
	b.summary.Source = source
	b.summary.Media = media
	return b
}

func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

func (b *Builder) AddClip(clip ClipInfo) *Builder {
	b.summary.Clips = append(b.summary.Clips, clip)
	return b
}

func (b *Builder) Build() *Summary {
	return b.summary
}
