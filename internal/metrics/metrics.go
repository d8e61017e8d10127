package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CalculationRequestsTotal prometheus.Counter
	CalculationErrorsTotal   *prometheus.CounterVec
	RateRequestsTotal        prometheus.Counter
	CatalogFetchesTotal      *prometheus.CounterVec
	CatalogServices          prometheus.Gauge
}

// NewMetrics registers on the default prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		CalculationRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "calculation_requests_total",
				Help: "Total number of NGN equivalent calculations",
			},
		),

		CalculationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calculation_errors_total",
				Help: "Calculations rejected by validation, by kind",
			},
			[]string{"kind"},
		),

		RateRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_requests_total",
				Help: "Total number of live rate lookups",
			},
		),

		CatalogFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_fetches_total",
				Help: "Upstream service catalog fetches, by outcome",
			},
			[]string{"outcome"},
		),

		CatalogServices: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_services",
				Help: "Number of services in the current catalog snapshot",
			},
		),
	}
}

// ObserveCatalogFetch records an upstream catalog fetch. Safe on a nil
// receiver so callers without a registry can skip metrics.
func (m *Metrics) ObserveCatalogFetch(err error, services int) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogFetchesTotal.WithLabelValues("failure").Inc()
		return
	}
	m.CatalogFetchesTotal.WithLabelValues("success").Inc()
	m.CatalogServices.Set(float64(services))
}

// ObserveCalculation records a calculation and, when kind is non-empty, the
// validation failure it ended with.
func (m *Metrics) ObserveCalculation(kind string) {
	if m == nil {
		return
	}
	m.CalculationRequestsTotal.Inc()
	if kind != "" {
		m.CalculationErrorsTotal.WithLabelValues(kind).Inc()
	}
}
