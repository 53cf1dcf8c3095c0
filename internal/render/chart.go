package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/state"
)

// SparklineChars are Unicode block characters, lowest first
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline draws the newest width values of a 0-100 series. Unlike an
// auto-scaled sparkline the scale is fixed, so a flat 90% line sits high.
// Short series are left-padded with blanks.
func Sparkline(values []int, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		level := clampPercent(v) * (len(SparklineChars) - 1) / 100
		b.WriteRune(SparklineChars[level])
	}
	return b.String()
}

// ChartTitle builds "CH n - Prog x.y" from the tuned channel and program
func ChartTitle(channel *int, programLabel string) string {
	var parts []string
	if channel != nil {
		parts = append(parts, fmt.Sprintf("CH %d", *channel))
	}
	if programLabel != "" {
		parts = append(parts, "Prog "+programLabel)
	}
	return strings.Join(parts, " - ")
}

// RenderChart draws the three signal series as labelled sparklines
func RenderChart(m *state.Mirror, width int) string {
	title := ChartTitle(m.TunedChannel, m.TunedProgramLabel)
	if title == "" {
		title = "Signal"
	}

	lineWidth := width - 12
	if lineWidth < 10 {
		lineWidth = 10
	}

	line := func(label string, s *state.Series, tone Tone) string {
		last := "--"
		if p, ok := s.Last(); ok {
			last = fmt.Sprintf("%d%%", p.Value)
		}
		spark := lipgloss.NewStyle().Foreground(tone.Color()).Render(Sparkline(s.Values(), lineWidth))
		return fmt.Sprintf("%-4s%s %4s", label, spark, last)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		SectionTitleStyle.Render(title),
		line("SS", &m.Chart.SS, ToneSuccess),
		line("SNQ", &m.Chart.SNQ, ToneInfo),
		line("SEQ", &m.Chart.SEQ, ToneWarning),
	)
}
