package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/signal"
	"github.com/muurk/tunerdash/internal/state"
)

// DefaultTunerCount is shown before the device reports its tuner count
const DefaultTunerCount = 4

// TunerRow is the badge set of one tuner line
type TunerRow struct {
	Index    int
	Selected bool
	Lock     Badge
	Channel  Badge
	SS       Badge
	SNQ      Badge
	SEQ      Badge
}

// TunerRows derives every tuner line. When the last poll failed, or a
// tuner is missing from the list, its badges are placeholders.
func TunerRows(m *state.Mirror) []TunerRow {
	count := m.Status.TunerCount
	if count <= 0 {
		count = DefaultTunerCount
	}
	for _, t := range m.Tuners {
		if t.Index+1 > count {
			count = t.Index + 1
		}
	}

	rows := make([]TunerRow, 0, count)
	for i := 0; i < count; i++ {
		row := TunerRow{
			Index:    i,
			Selected: m.SelectedTuner != nil && *m.SelectedTuner == i,
			Lock:     Placeholder,
			Channel:  Placeholder,
			SS:       Placeholder,
			SNQ:      Placeholder,
			SEQ:      Placeholder,
		}
		if snap, ok := m.Tuner(i); ok && m.TunersKnown {
			row.Lock = LockBadge(snap)
			row.Channel = ChannelBadge(snap)
			row.SS = MetricBadge("SS", snap.SignalStrength, signal.ClassifySignalStrength)
			row.SNQ = MetricBadge("SNQ", snap.SignalNoiseQuality, signal.ClassifySignalToNoise)
			row.SEQ = MetricBadge("SEQ", snap.SymbolErrorQuality, signal.ClassifySymbolErrorQuality)
		}
		rows = append(rows, row)
	}
	return rows
}

// Render draws the tuner line. cursor marks the keyboard position.
func (r TunerRow) Render(cursor bool) string {
	marker := "  "
	if cursor {
		marker = "> "
	}
	name := fmt.Sprintf("Tuner %d", r.Index)
	if r.Selected {
		name = SelectedRowStyle.Render(name + " *")
	}
	badges := []string{r.Lock.Render(), r.Channel.Render(), r.SS.Render(), r.SNQ.Render(), r.SEQ.Render()}
	return marker + lipgloss.NewStyle().Width(12).Render(name) + strings.Join(badges, " ")
}

// SignalBars are the three metric bars of the selected tuner
type SignalBars struct {
	SS  Bar
	SNQ Bar
	SEQ Bar
}

// SelectedBars derives the selected tuner's bars. An unlocked or missing
// tuner clears them.
func SelectedBars(m *state.Mirror) SignalBars {
	snap, ok := m.SelectedSnapshot()
	if !ok || !snap.Locked || !m.TunersKnown {
		return SignalBars{
			SS:  ProgressBar(nil, signal.ClassifySignalStrength),
			SNQ: ProgressBar(nil, signal.ClassifySignalToNoise),
			SEQ: ProgressBar(nil, signal.ClassifySymbolErrorQuality),
		}
	}
	return SignalBars{
		SS:  ProgressBar(snap.SignalStrength, signal.ClassifySignalStrength),
		SNQ: ProgressBar(snap.SignalNoiseQuality, signal.ClassifySignalToNoise),
		SEQ: ProgressBar(snap.SymbolErrorQuality, signal.ClassifySymbolErrorQuality),
	}
}

// Render draws the three bars, one per line
func (b SignalBars) Render(width int) string {
	barWidth := width - 20
	return lipgloss.JoinVertical(lipgloss.Left,
		"SS   "+b.SS.Render(barWidth),
		"SNQ  "+b.SNQ.Render(barWidth),
		"SEQ  "+b.SEQ.Render(barWidth),
	)
}
