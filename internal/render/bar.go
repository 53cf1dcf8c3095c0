package render

import (
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/signal"
	"github.com/muurk/tunerdash/internal/state"
)

// Bar is a horizontal gauge: fill percentage, label and tone
type Bar struct {
	Percent int
	Label   string
	Tone    Tone
}

// ProgressBar derives a metric bar. Unknown values give an empty neutral
// bar labelled "--%".
func ProgressBar(v *int, classify signal.Classifier) Bar {
	if v == nil {
		return Bar{Percent: 0, Label: signal.FormatPercent(nil), Tone: ToneNeutral}
	}
	return Bar{
		Percent: clampPercent(*v),
		Label:   signal.FormatPercent(v),
		Tone:    ToneForTier(classify(*v)),
	}
}

// TSBar derives the transport stream bitrate bar. The fill is the floor
// of the ratio of the displayed (two decimal) Mbps figures, so the bar and
// its label always agree. A peak that rounds to 0.00 falls back to the raw
// bps ratio.
func TSBar(info *state.ProgramInfo) Bar {
	if info == nil || info.BitrateBps == nil || info.MaxBitrateBps == nil || *info.MaxBitrateBps <= 0 {
		return Bar{Percent: 0, Label: "--/-- mbps", Tone: ToneNeutral}
	}
	rate := signal.Mbps(*info.BitrateBps)
	peak := signal.Mbps(*info.MaxBitrateBps)

	ratio := *info.BitrateBps / *info.MaxBitrateBps
	if peak > 0 {
		ratio = rate / peak
	}
	pct := clampPercent(int(math.Floor(ratio * 100)))
	return Bar{
		Percent: pct,
		Label:   signal.FormatMbps(*info.BitrateBps) + "/" + signal.FormatMbps(*info.MaxBitrateBps) + " mbps",
		Tone:    ToneInfo,
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Render draws the bar width cells wide followed by its label
func (b Bar) Render(width int) string {
	if width < 4 {
		width = 4
	}
	p := progress.New(
		progress.WithSolidFill(string(b.Tone.Color())),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	label := lipgloss.NewStyle().Foreground(b.Tone.Color()).Render(b.Label)
	return p.ViewAs(float64(b.Percent)/100) + " " + label
}
