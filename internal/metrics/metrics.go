// Package metrics exports LP writer section metrics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/lpio/internal/lpfile"
)

// Observer implements lpfile.Observer with Prometheus collectors.
type Observer struct {
	sections *prometheus.CounterVec
	failures *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	lines    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lpio",
			Subsystem: "lpfile",
			Name:      "sections_total",
			Help:      "Sections written, by section.",
		}, []string{"section"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lpio",
			Subsystem: "lpfile",
			Name:      "section_failures_total",
			Help:      "Sections that failed to write, by section.",
		}, []string{"section"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lpio",
			Subsystem: "lpfile",
			Name:      "bytes_total",
			Help:      "Bytes written, by section.",
		}, []string{"section"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lpio",
			Subsystem: "lpfile",
			Name:      "lines_total",
			Help:      "Entries written, by section.",
		}, []string{"section"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lpio",
			Subsystem: "lpfile",
			Name:      "section_duration_seconds",
			Help:      "Time spent formatting and writing a section.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"section"}),
	}

	for _, c := range []prometheus.Collector{o.sections, o.failures, o.bytes, o.lines, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// SectionStart implements lpfile.Observer.
func (o *Observer) SectionStart(lpfile.Section) {}

// SectionDone implements lpfile.Observer.
func (o *Observer) SectionDone(s lpfile.Section, stats lpfile.SectionStats, err error) {
	label := s.String()
	if err != nil {
		o.failures.WithLabelValues(label).Inc()
		return
	}
	o.sections.WithLabelValues(label).Inc()
	o.bytes.WithLabelValues(label).Add(float64(stats.Bytes))
	o.lines.WithLabelValues(label).Add(float64(stats.Lines))
	o.duration.WithLabelValues(label).Observe(stats.Duration.Seconds())
}
