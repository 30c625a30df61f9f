// Package metrics exposes Prometheus instrumentation for the invoice view.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// Collector records view operations on its own registry.
type Collector struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	recordsLoaded  prometheus.Gauge
	filterRequests prometheus.Counter
	sortRequests   *prometheus.CounterVec
	viewSize       prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Number of record set loads by result",
			},
			[]string{"result"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of data source fetches",
				Buckets:   prometheus.DefBuckets,
			},
		),
		recordsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records_loaded",
				Help:      "Size of the full record set",
			},
		),
		filterRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_requests_total",
				Help:      "Number of filter text changes",
			},
		),
		sortRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sort_requests_total",
				Help:      "Number of sort requests per column",
			},
			[]string{"field"},
		),
		viewSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "view_size",
				Help:      "Number of records in the derived view",
			},
		),
	}

	c.registry.MustRegister(
		c.loads,
		c.loadDuration,
		c.recordsLoaded,
		c.filterRequests,
		c.sortRequests,
		c.viewSize,
	)

	return c
}

// ObserveLoad records one completed load.
func (c *Collector) ObserveLoad(d time.Duration, records int, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.loads.WithLabelValues(result).Inc()
	c.loadDuration.Observe(d.Seconds())
	c.recordsLoaded.Set(float64(records))
}

// IncFilter counts a filter change.
func (c *Collector) IncFilter() {
	c.filterRequests.Inc()
}

// IncSort counts a sort request on field.
func (c *Collector) IncSort(field domain.SortField) {
	c.sortRequests.WithLabelValues(field.String()).Inc()
}

// SetViewSize records the derived view size.
func (c *Collector) SetViewSize(n int) {
	c.viewSize.Set(float64(n))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
