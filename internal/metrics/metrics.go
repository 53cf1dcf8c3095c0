// Package metrics exports what the dashboard sees as Prometheus metrics.
//
// Gauges are written from the Bubble Tea Update loop and read by the
// scrape handler on its own goroutine.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/tunerdash/internal/state"
)

const namespace = "tunerdash"

// Metrics holds every collector on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	tunerSignal   *prometheus.GaugeVec
	tunerLocked   *prometheus.GaugeVec
	tsBitrate     prometheus.Gauge
	tsMaxBitrate  prometheus.Gauge
	pollFailures  *prometheus.CounterVec
	requestsTotal *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		tunerSignal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tuner_signal_percent",
			Help:      "Last reported tuner signal metric (ss, snq, seq), 0-100",
		}, []string{"tuner", "metric"}),
		tunerLocked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tuner_locked",
			Help:      "1 if the tuner is held by a client",
		}, []string{"tuner"}),
		tsBitrate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ts_bitrate_bps",
			Help:      "Transport stream bitrate of the tuned program",
		}),
		tsMaxBitrate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ts_max_bitrate_bps",
			Help:      "Maximum transport stream bitrate of the tuned channel",
		}),
		pollFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Failed background polls by stream",
		}, []string{"stream"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the tuner backend",
		}, []string{"code", "method"}),
		requestTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of tuner backend requests",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"code", "method"}),
	}
}

// ObserveTuners replaces the per-tuner gauges with a fresh tuner list.
// Metrics a tuner did not report are removed rather than zeroed.
func (m *Metrics) ObserveTuners(tuners []state.TunerSnapshot) {
	m.tunerSignal.Reset()
	m.tunerLocked.Reset()
	for _, t := range tuners {
		idx := strconv.Itoa(t.Index)
		locked := 0.0
		if t.Locked {
			locked = 1
		}
		m.tunerLocked.WithLabelValues(idx).Set(locked)
		m.setSignal(idx, "ss", t.SignalStrength)
		m.setSignal(idx, "snq", t.SignalNoiseQuality)
		m.setSignal(idx, "seq", t.SymbolErrorQuality)
	}
}

func (m *Metrics) setSignal(tuner, metric string, v *int) {
	if v != nil {
		m.tunerSignal.WithLabelValues(tuner, metric).Set(float64(*v))
	}
}

// ObserveProgram records the tuned program's bitrate; nil zeroes it
func (m *Metrics) ObserveProgram(info *state.ProgramInfo) {
	if info == nil || info.BitrateBps == nil {
		m.tsBitrate.Set(0)
	} else {
		m.tsBitrate.Set(*info.BitrateBps)
	}
	if info == nil || info.MaxBitrateBps == nil {
		m.tsMaxBitrate.Set(0)
	} else {
		m.tsMaxBitrate.Set(*info.MaxBitrateBps)
	}
}

// PollFailed counts one failed poll of stream
func (m *Metrics) PollFailed(stream string) {
	m.pollFailures.WithLabelValues(stream).Inc()
}

// InstrumentTransport wraps next with request count and latency metrics
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(m.requestsTotal,
		promhttp.InstrumentRoundTripperDuration(m.requestTime, next))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
