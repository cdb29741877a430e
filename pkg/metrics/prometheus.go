package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	verifiedPrice    *prometheus.GaugeVec
	providerErrors   *prometheus.CounterVec
	quorumSamples    *prometheus.HistogramVec
	quotaRemaining   *prometheus.GaugeVec
	limiterRejected  *prometheus.CounterVec
	limiterEvictions prometheus.Counter
	limiterTracked   prometheus.Gauge
	recommendations  *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		verifiedPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradedeck_verified_price",
				Help: "Last quorum-verified price per symbol",
			},
			[]string{"symbol"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedeck_provider_errors_total",
				Help: "Total provider fetch failures",
			},
			[]string{"provider"},
		),
		quorumSamples: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradedeck_quorum_samples",
				Help:    "Usable provider samples per quorum resolution",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
			},
			[]string{"symbol"},
		),
		quotaRemaining: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradedeck_quota_remaining",
				Help: "Remaining upstream API calls per window",
			},
			[]string{"window"},
		),
		limiterRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedeck_limiter_rejected_total",
				Help: "Requests rejected by admission control",
			},
			[]string{"scope"},
		),
		limiterEvictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tradedeck_limiter_evictions_total",
				Help: "Client limiter entries evicted under the cardinality cap",
			},
		),
		limiterTracked: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradedeck_limiter_tracked_identities",
				Help: "Identities currently tracked by the client limiter",
			},
		),
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradedeck_recommendations_total",
				Help: "Gated recommendations by resulting action",
			},
			[]string{"action"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradedeck_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordVerifiedPrice records the last quorum-verified price for a symbol.
func (r *Recorder) RecordVerifiedPrice(symbol string, price float64) {
	r.verifiedPrice.WithLabelValues(symbol).Set(price)
}

// RecordProviderError records a failed provider fetch.
func (r *Recorder) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

// RecordQuorumSamples records how many usable samples a resolution saw.
func (r *Recorder) RecordQuorumSamples(symbol string, n int) {
	r.quorumSamples.WithLabelValues(symbol).Observe(float64(n))
}

// RecordQuotaRemaining records remaining calls for a quota window.
func (r *Recorder) RecordQuotaRemaining(window string, remaining int) {
	r.quotaRemaining.WithLabelValues(window).Set(float64(remaining))
}

// RecordLimiterRejection records an admission-control rejection.
func (r *Recorder) RecordLimiterRejection(scope string) {
	r.limiterRejected.WithLabelValues(scope).Inc()
}

// RecordLimiterEviction records evicted client limiter entries.
func (r *Recorder) RecordLimiterEviction(n int) {
	r.limiterEvictions.Add(float64(n))
}

// RecordLimiterTracked records the current tracked identity count.
func (r *Recorder) RecordLimiterTracked(n int) {
	r.limiterTracked.Set(float64(n))
}

// RecordRecommendation records a gated recommendation outcome.
func (r *Recorder) RecordRecommendation(action string) {
	r.recommendations.WithLabelValues(action).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
