package apiclient

import (
	"time"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "urmart"
	metricsSubsystem = "api_client"
	outcomeSuccess   = "success"
	outcomeUnknown   = "error"
)

// Metrics holds the Prometheus collectors for outgoing API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the collectors and registers them on registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Total number of backend requests by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of backend requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"operation"},
		),
	}
	if registerer != nil {
		for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration} {
			if err := registerer.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return metrics, nil
}

func (metrics *Metrics) observe(operation string, outcome string, elapsed time.Duration) {
	metrics.requests.WithLabelValues(operation, outcome).Inc()
	metrics.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func outcomeFor(err error) string {
	kind, ok := storefront.KindOf(err)
	if !ok {
		return outcomeUnknown
	}
	return string(kind)
}
