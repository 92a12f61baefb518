package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the widget's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Resolutions by the chain step that produced the rates
	RateResolutionsTotal *prometheus.CounterVec
	// Remote source latency, labelled with success or failure
	SourceFetchDuration *prometheus.HistogramVec
	// Conversions by outcome: ok, invalid_amount, currency_not_available
	ConversionsTotal *prometheus.CounterVec
	// Absorbed storage failures by operation
	StoreErrorsTotal *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwidget_rate_resolutions_total",
				Help: "Number of rate resolutions by source",
			},
			[]string{"source"},
		),
		SourceFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxwidget_rate_source_fetch_seconds",
				Help:    "Duration of remote rate source requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "outcome"},
		),
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwidget_conversions_total",
				Help: "Number of conversions by outcome",
			},
			[]string{"outcome"},
		),
		StoreErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxwidget_store_errors_total",
				Help: "Storage errors absorbed by operation",
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.RateResolutionsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveSourceFetch(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.SourceFetchDuration.WithLabelValues(source, outcome).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveConversion(outcome string) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(op).Inc()
}
