// Package metrics holds Prometheus instruments that are used across the CRM
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SectorSubmitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sector_submit_total",
			Help: "Sector edit submissions by outcome (saved, invalid, failed, skipped).",
		}, []string{"outcome"})

	SectorValidationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sector_validation_errors_total",
			Help: "Field-level validation failures on the sector edit form.",
		}, []string{"field"})

	MunicipalityLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_municipality_lookup_total",
			Help: "Municipality list lookups by cache result (hit, miss, error).",
		}, []string{"result"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(
		SectorSubmitTotal,
		SectorValidationErrorsTotal,
		MunicipalityLookupTotal,
		HTTPRequestDuration,
	)
}
