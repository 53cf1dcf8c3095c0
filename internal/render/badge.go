// Package render projects dashboard state onto terminal widgets.
//
// Nothing here holds state: every badge, bar, table row and chart is
// derived from scratch from the mirror on every frame, so a widget can
// never carry a stale color.
package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tunerdash/internal/signal"
	"github.com/muurk/tunerdash/internal/state"
)

// Tone is the single color class of a badge or bar
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneWarning
	ToneDanger
	ToneInfo
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneWarning:
		return "warning"
	case ToneDanger:
		return "danger"
	case ToneInfo:
		return "info"
	default:
		return "neutral"
	}
}

// Color returns the background color of the tone
func (t Tone) Color() lipgloss.Color {
	switch t {
	case ToneSuccess:
		return SecondaryColor
	case ToneWarning:
		return WarningColor
	case ToneDanger:
		return ErrorColor
	case ToneInfo:
		return InfoColor
	default:
		return SubtleColor
	}
}

// ToneForTier maps a signal tier to its tone
func ToneForTier(t signal.Tier) Tone {
	switch t {
	case signal.TierGood:
		return ToneSuccess
	case signal.TierMarginal:
		return ToneWarning
	case signal.TierCritical:
		return ToneDanger
	default:
		return ToneNeutral
	}
}

// Badge is a short label with exactly one tone
type Badge struct {
	Text string
	Tone Tone
}

// Placeholder is the badge shown when a value is unknown
var Placeholder = Badge{Text: "--", Tone: ToneNeutral}

// Render draws the badge
func (b Badge) Render() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(b.Tone.Color()).
		Padding(0, 1).
		Render(b.Text)
}

// StatusBadge shows device connectivity
func StatusBadge(s state.ConnStatus) Badge {
	switch {
	case s.Err != nil:
		return Badge{Text: "Error", Tone: ToneDanger}
	case !s.Known:
		return Badge{Text: "Connecting", Tone: ToneNeutral}
	case s.Connected:
		return Badge{Text: "Connected", Tone: ToneSuccess}
	default:
		return Badge{Text: "Disconnected", Tone: ToneDanger}
	}
}

// LockBadge shows whether a tuner is held and by whom
func LockBadge(t state.TunerSnapshot) Badge {
	if !t.Locked {
		return Badge{Text: "Available", Tone: ToneSuccess}
	}
	owner := "?"
	if t.LockOwner != nil {
		owner = *t.LockOwner
	}
	return Badge{Text: fmt.Sprintf("In-Use (%s)", owner), Tone: ToneDanger}
}

// ChannelBadge shows the tuned physical channel
func ChannelBadge(t state.TunerSnapshot) Badge {
	if t.Channel == nil {
		return Placeholder
	}
	return Badge{Text: fmt.Sprintf("CH: %d", *t.Channel), Tone: ToneInfo}
}

// MetricBadge shows "LABEL: NN%" toned by classify
func MetricBadge(label string, v *int, classify signal.Classifier) Badge {
	return Badge{
		Text: label + ": " + signal.FormatPercent(v),
		Tone: ToneForTier(signal.ClassifyPtr(classify, v)),
	}
}
