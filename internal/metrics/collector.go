// Package metrics provides Prometheus metrics for the endpoint monitor.
package metrics

import (
	"ApiMonitor/internal/monitor/domain"
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds Prometheus metrics for ApiMonitor.
type Collector struct {
	checksTotal     *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	probeAttempts   *prometheus.CounterVec
	endpointUp      *prometheus.GaugeVec
	endpointVerdict *prometheus.GaugeVec
	eventsTotal     *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	journalErrors   prometheus.Counter
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apimonitor_checks_total",
				Help: "Total number of endpoint checks by verdict",
			},
			[]string{"endpoint", "verdict"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apimonitor_check_duration_seconds",
				Help:    "Response time of successful probes",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		probeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apimonitor_probe_attempts_total",
				Help: "Total HTTP attempts including retries",
			},
			[]string{"endpoint"},
		),
		endpointUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apimonitor_endpoint_up",
				Help: "1 if the last verdict was healthy or degraded",
			},
			[]string{"endpoint"},
		),
		endpointVerdict: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apimonitor_endpoint_verdict",
				Help: "Last verdict of an endpoint, one series per verdict set to 1 or 0",
			},
			[]string{"endpoint", "verdict"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apimonitor_health_events_total",
				Help: "Total health state transitions",
			},
			[]string{"endpoint", "kind"},
		),
		deliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apimonitor_notifications_total",
				Help: "Notification decisions by channel and status",
			},
			[]string{"channel", "status"},
		),
		journalErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "apimonitor_journal_errors_total",
				Help: "Failed writes to the event journal",
			},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.checksTotal.Describe(ch)
	c.checkDuration.Describe(ch)
	c.probeAttempts.Describe(ch)
	c.endpointUp.Describe(ch)
	c.endpointVerdict.Describe(ch)
	c.eventsTotal.Describe(ch)
	c.deliveriesTotal.Describe(ch)
	c.journalErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.checksTotal.Collect(ch)
	c.checkDuration.Collect(ch)
	c.probeAttempts.Collect(ch)
	c.endpointUp.Collect(ch)
	c.endpointVerdict.Collect(ch)
	c.eventsTotal.Collect(ch)
	c.deliveriesTotal.Collect(ch)
	c.journalErrors.Collect(ch)
}

// RecordCheck records one classified probe outcome.
func (c *Collector) RecordCheck(outcome domain.CheckOutcome, verdict domain.Verdict) {
	id := outcome.EndpointID

	c.checksTotal.WithLabelValues(id, verdict.String()).Inc()
	c.probeAttempts.WithLabelValues(id).Add(float64(outcome.Attempts))

	if outcome.Success && outcome.LatencyMs != nil {
		c.checkDuration.WithLabelValues(id).Observe(*outcome.LatencyMs / 1000)
	}

	up := 0.0
	if verdict.IsUp() {
		up = 1
	}
	c.endpointUp.WithLabelValues(id).Set(up)

	for _, v := range []domain.Verdict{domain.VerdictHealthy, domain.VerdictDegraded, domain.VerdictUnhealthy} {
		c.endpointVerdict.WithLabelValues(id, v.String()).Set(boolToFloat(v == verdict))
	}
}

// RecordEvent records a health transition.
func (c *Collector) RecordEvent(event *domain.HealthEvent) {
	c.eventsTotal.WithLabelValues(event.EndpointID, string(event.Kind)).Inc()
}

// ObserveDelivery records a notification decision.
func (c *Collector) ObserveDelivery(_ context.Context, delivery domain.Delivery) {
	c.deliveriesTotal.WithLabelValues(delivery.ChannelID, string(delivery.Status)).Inc()
}

// RecordJournalError counts a failed journal write.
func (c *Collector) RecordJournalError() {
	c.journalErrors.Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
