// Package telemetry exposes Prometheus metrics for scene loads, selection
// changes and frame rate.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel    = "result"
	partitionLabel = "partition"
)

// Load results.
const (
	ResultOK          = "ok"
	ResultEmpty       = "empty"
	ResultStoreError  = "store_error"
	ResultDecodeError = "decode_error"
	ResultStale       = "stale"
)

// Metrics groups the viewer's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	loads            *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	meshes           prometheus.Gauge
	markers          prometheus.Gauge
	selectionChanges prometheus.Counter
	classified       *prometheus.GaugeVec
	fps              prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "meshlens_loads_total",
			Help: "The total number of scene loads by result.",
		}, []string{resultLabel}),

		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "meshlens_load_duration_seconds",
			Help:    "Time from upload to analyzed scene batch.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),

		meshes: f.NewGauge(prometheus.GaugeOpts{
			Name: "meshlens_meshes",
			Help: "The number of meshes in the scene.",
		}),

		markers: f.NewGauge(prometheus.GaugeOpts{
			Name: "meshlens_markers",
			Help: "The number of octree markers in the scene.",
		}),

		selectionChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "meshlens_selection_changes_total",
			Help: "The total number of hover selection changes.",
		}),

		classified: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meshlens_classified_meshes",
			Help: "Meshes inside and outside the selected mesh's box at the last selection change.",
		}, []string{partitionLabel}),

		fps: f.NewGauge(prometheus.GaugeOpts{
			Name: "meshlens_fps",
			Help: "Frames rendered in the last second.",
		}),
	}
}

// ObserveLoad counts one load and its duration.
func (m *Metrics) ObserveLoad(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.With(prometheus.Labels{resultLabel: result}).Inc()
	if result == ResultOK || result == ResultEmpty {
		m.loadDuration.Observe(d.Seconds())
	}
}

// SetSceneSize records the current scene counters.
func (m *Metrics) SetSceneSize(meshes, markers int) {
	if m == nil {
		return
	}
	m.meshes.Set(float64(meshes))
	m.markers.Set(float64(markers))
}

// ObserveSelection records a selection change and its classification.
func (m *Metrics) ObserveSelection(inside, outside int) {
	if m == nil {
		return
	}
	m.selectionChanges.Inc()
	m.classified.With(prometheus.Labels{partitionLabel: "inside"}).Set(float64(inside))
	m.classified.With(prometheus.Labels{partitionLabel: "outside"}).Set(float64(outside))
}

// SetFPS records the frame rate.
func (m *Metrics) SetFPS(fps int) {
	if m == nil {
		return
	}
	m.fps.Set(float64(fps))
}
