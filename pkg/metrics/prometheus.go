package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	seriesIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastIndex      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	stationsGated  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		seriesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watertracker_series_ingested_total",
				Help: "Total number of station series ingested per source",
			},
			[]string{"source", "indicator"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watertracker_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastIndex: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "watertracker_last_index",
				Help: "Last computed standardized index value for a station",
			},
			[]string{"indicator", "station"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "watertracker_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		stationsGated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watertracker_stations_gated_total",
				Help: "Stations excluded from computation for lack of history",
			},
			[]string{"indicator"},
		),
	}
}

// RecordSeriesIngested records one station series pulled from a source.
func (r *Recorder) RecordSeriesIngested(source, indicator string) {
	r.seriesIngested.WithLabelValues(source, indicator).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastIndex records the most recent standardized index for a station.
func (r *Recorder) RecordLastIndex(indicator, station string, value float64) {
	r.lastIndex.WithLabelValues(indicator, station).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordStationGated records a station skipped by the history gate.
func (r *Recorder) RecordStationGated(indicator string) {
	r.stationsGated.WithLabelValues(indicator).Inc()
}
