package signal

import (
	"fmt"
	"math"
)

// Tier is the display tier of a classified metric.
type Tier int

const (
	// TierUnknown is used when the metric was not reported
	TierUnknown Tier = iota
	// TierGood indicates a healthy reading
	TierGood
	// TierMarginal indicates a usable but degraded reading
	TierMarginal
	// TierCritical indicates a reading that will likely break reception
	TierCritical
)

// String returns the tier label
func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierMarginal:
		return "marginal"
	case TierCritical:
		return "critical"
	case TierUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Color returns the fixed terminal color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierGood:
		return "#43BF6D"
	case TierMarginal:
		return "#FFA500"
	case TierCritical:
		return "#FF5555"
	default:
		return "#626262"
	}
}

// ClassifySignalStrength maps a signal strength reading to a tier.
// Readings of 97 and above are Critical: the tuner is overdriven.
func ClassifySignalStrength(v int) Tier {
	switch {
	case v >= 97:
		return TierCritical
	case v >= 70:
		return TierGood
	case v >= 50:
		return TierMarginal
	default:
		return TierCritical
	}
}

// ClassifySignalToNoise maps a signal-to-noise quality reading to a tier.
func ClassifySignalToNoise(v int) Tier {
	switch {
	case v >= 90:
		return TierGood
	case v >= 65:
		return TierMarginal
	default:
		return TierCritical
	}
}

// ClassifySymbolErrorQuality maps a symbol error quality reading to a tier.
func ClassifySymbolErrorQuality(v int) Tier {
	switch v {
	case 100:
		return TierGood
	case 99:
		return TierMarginal
	default:
		return TierCritical
	}
}

// Classifier is one of the Classify* functions.
type Classifier func(int) Tier

// ClassifyPtr applies c to *v, or returns TierUnknown when v is nil.
func ClassifyPtr(c Classifier, v *int) Tier {
	if v == nil {
		return TierUnknown
	}
	return c(*v)
}

// FormatPercent renders a metric as "NN%", or "--%" when unknown.
func FormatPercent(v *int) string {
	if v == nil {
		return "--%"
	}
	return fmt.Sprintf("%d%%", *v)
}

// Mbps converts bits per second to megabits per second rounded to two
// decimals, the precision the dashboard displays.
func Mbps(bps float64) float64 {
	return math.Round(bps/10_000) / 100
}

// FormatMbps renders bits per second as megabits with two decimals.
func FormatMbps(bps float64) string {
	return fmt.Sprintf("%.2f", Mbps(bps))
}
