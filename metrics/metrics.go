package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeNoImage       = "no_image"
	OutcomeUnreadable    = "unreadable"
	OutcomeTooLarge      = "too_large"
	OutcomeDetectorError = "detector_error"
	OutcomeStorageError  = "storage_error"
)

// OtherFood labels lookup misses once the distinct food label limit is hit.
const OtherFood = "other"

const defaultMissLabelLimit = 100

// Metrics holds the scan pipeline collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	scans          *prometheus.CounterVec
	detections     prometheus.Counter
	lookupMisses   *prometheus.CounterVec
	detectDuration prometheus.Histogram

	missMu     sync.Mutex
	missLabels map[string]struct{}
	missLimit  int
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "food_scans_total",
			Help: "Images processed, by outcome",
		}, []string{"outcome"}),
		detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "food_detections_total",
			Help: "Food items detected across all scans",
		}),
		lookupMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "food_nutrition_lookup_misses_total",
			Help: "Detected foods with no entry in the nutrition table",
		}, []string{"food"}),
		detectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "food_detect_duration_seconds",
			Help:    "Time spent in the detector per image",
			Buckets: prometheus.DefBuckets,
		}),
		missLabels: make(map[string]struct{}),
		missLimit:  defaultMissLabelLimit,
	}
	m.registry.MustRegister(m.scans, m.detections, m.lookupMisses, m.detectDuration)
	return m
}

func (m *Metrics) ObserveScan(outcome string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDetections(n int) {
	if m == nil {
		return
	}
	m.detections.Add(float64(n))
}

func (m *Metrics) ObserveLookupMiss(food string) {
	if m == nil {
		return
	}
	m.lookupMisses.WithLabelValues(m.missLabel(food)).Inc()
}

// missLabel bounds the food label set: names past the first missLimit
// distinct ones become OtherFood.
func (m *Metrics) missLabel(food string) string {
	m.missMu.Lock()
	defer m.missMu.Unlock()
	if _, ok := m.missLabels[food]; ok {
		return food
	}
	if len(m.missLabels) >= m.missLimit {
		return OtherFood
	}
	m.missLabels[food] = struct{}{}
	return food
}

func (m *Metrics) ObserveDetectDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.detectDuration.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Scans() *prometheus.CounterVec { return m.scans }

func (m *Metrics) LookupMisses() *prometheus.CounterVec { return m.lookupMisses }
