package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ScanProgress is the progress line of a channel scan run from the command
// line. The backend reports no percentage, so progress is estimated from
// the highest physical channel seen within the scanned band.
type ScanProgress struct {
	Label      string
	MinChannel int
	MaxChannel int
	Highest    int // highest physical channel reported so far, 0 for none
	Found      int // channels with at least one subchannel
	Finished   bool
	Width      int
	bar        progress.Model
}

// NewScanProgress creates a progress display for a scan of [min, max]
func NewScanProgress(label string, minChannel, maxChannel int) *ScanProgress {
	p := &ScanProgress{Label: label, MinChannel: minChannel, MaxChannel: maxChannel}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sets the terminal width for responsive rendering
func (p *ScanProgress) SetWidth(width int) *ScanProgress {
	p.Width = width
	barWidth := width - 30 // Leave room for percentage and counts
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// Observe records the physical channels reported by a status poll
func (p *ScanProgress) Observe(physical []int, found int, finished bool) {
	for _, ch := range physical {
		if ch > p.Highest {
			p.Highest = ch
		}
	}
	p.Found = found
	p.Finished = finished
}

// Percent returns progress in [0, 1]
func (p *ScanProgress) Percent() float64 {
	if p.Finished {
		return 1
	}
	span := p.MaxChannel - p.MinChannel
	if span <= 0 || p.Highest < p.MinChannel {
		return 0
	}
	v := float64(p.Highest-p.MinChannel) / float64(span)
	if v > 1 {
		return 1
	}
	return v
}

// Render returns the styled progress display as a string
func (p *ScanProgress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	marker := fg(InfoColor).Render(RunningMarker)
	if p.Finished {
		marker = SuccessTitleStyle.Render(SuccessMarker)
	}

	channel := "-"
	if p.Highest > 0 {
		channel = fmt.Sprintf("CH %d", p.Highest)
	}

	b.WriteString(lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%  %s  %s  %d found",
			p.bar.ViewAs(p.Percent()), p.Percent()*100, marker, channel, p.Found)))
	return b.String()
}

// String implements fmt.Stringer
func (p *ScanProgress) String() string {
	return p.Render()
}
