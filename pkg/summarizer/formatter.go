package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"

	"github.com/user/vidreview/pkg/annotations"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// MarkdownFormatter renders a Summary as a Markdown document with
// localized headings.
type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Clip Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Source"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("File"), s.Source)
	fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Duration"), annotations.FormatTimecode(s.Media.Duration))
	if !s.Media.Size.IsZero() {
		fmt.Fprintf(&b, "| %s | %dx%d |\n", l10n.T("Resolution"), s.Media.Size.Width, s.Media.Size.Height)
	}
	if s.Media.Codec != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Codec"), s.Media.Codec)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	fmt.Fprintf(&b, "| %s | -%.2fs / +%.2fs |\n", l10n.T("Window"), s.Settings.PreRoll, s.Settings.PostRoll)
	if len(s.Settings.Formats) > 0 {
		fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Formats"), strings.Join(s.Settings.Formats, "<br>"))
	}
	if s.Settings.Fallback != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", l10n.T("Fallback"), s.Settings.Fallback)
	}
	if s.Settings.FPS > 0 {
		fmt.Fprintf(&b, "| FPS | %.2f |\n", s.Settings.FPS)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Clips"))
	if len(s.Clips) == 0 {
		fmt.Fprintf(&b, "%s\n", l10n.T("None"))
		return b.String()
	}
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n|---|---|---|---|\n",
		l10n.T("Anchor"), l10n.T("Window"), l10n.T("File"), l10n.T("Size"))
	for _, c := range s.Clips {
		window := fmt.Sprintf("%s - %s", annotations.FormatTimecode(c.Start), annotations.FormatTimecode(c.End))
		result := c.File
		size := FormatBytes(c.Bytes)
		if !c.OK() {
			result = l10n.F("Failed: %v", c.Err)
			size = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", annotations.FormatTimecode(c.Anchor), window, result, size)
	}
	fmt.Fprintf(&b, "\n%s\n", l10n.F("%d of %d clips written", len(s.Clips)-s.Failed(), len(s.Clips)))
	return b.String()
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
