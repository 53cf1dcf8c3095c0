package state

import "time"

// DefaultChartPoints caps each series; at one sample per second this is
// five minutes of history.
const DefaultChartPoints = 300

// Sample is a metric observed at a client-side time
type Sample struct {
	Time  time.Time
	Value int
}

// Series is a bounded time series. The oldest samples are dropped once
// the cap is reached.
type Series struct {
	points []Sample
	max    int
}

// Append adds a sample
func (s *Series) Append(p Sample) {
	s.points = append(s.points, p)
	if s.max > 0 && len(s.points) > s.max {
		s.points = s.points[len(s.points)-s.max:]
	}
}

// Len returns the number of samples
func (s *Series) Len() int {
	return len(s.points)
}

// Values returns the sample values oldest first
func (s *Series) Values() []int {
	out := make([]int, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Last returns the newest sample
func (s *Series) Last() (Sample, bool) {
	if len(s.points) == 0 {
		return Sample{}, false
	}
	return s.points[len(s.points)-1], true
}

// Reset empties the series
func (s *Series) Reset() {
	s.points = nil
}

// Chart holds the three signal series of the selected tuner
type Chart struct {
	SS  Series
	SNQ Series
	SEQ Series
}

// NewChart returns an empty chart keeping at most maxPoints per series
func NewChart(maxPoints int) Chart {
	if maxPoints <= 0 {
		maxPoints = DefaultChartPoints
	}
	return Chart{
		SS:  Series{max: maxPoints},
		SNQ: Series{max: maxPoints},
		SEQ: Series{max: maxPoints},
	}
}

// Reset truncates all three series
func (c *Chart) Reset() {
	c.SS.Reset()
	c.SNQ.Reset()
	c.SEQ.Reset()
}

// Append records one observation. Metrics the tuner did not report are
// skipped rather than plotted as zero.
func (c *Chart) Append(t time.Time, snap TunerSnapshot) {
	if snap.SignalStrength != nil {
		c.SS.Append(Sample{Time: t, Value: *snap.SignalStrength})
	}
	if snap.SignalNoiseQuality != nil {
		c.SNQ.Append(Sample{Time: t, Value: *snap.SignalNoiseQuality})
	}
	if snap.SymbolErrorQuality != nil {
		c.SEQ.Append(Sample{Time: t, Value: *snap.SymbolErrorQuality})
	}
}

// Empty reports whether no series has samples
func (c *Chart) Empty() bool {
	return c.SS.Len() == 0 && c.SNQ.Len() == 0 && c.SEQ.Len() == 0
}
