package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/responsewatch/backend/internal/models"
)

const namespace = "responsewatch"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry      *prometheus.Registry
	webhooks      *prometheus.CounterVec
	alertsSent    *prometheus.CounterVec
	alertFailures *prometheus.CounterVec
	tracked       prometheus.Gauge
	pending       prometheus.Gauge
	overdue       *prometheus.GaugeVec
	businessOpen  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhooks received by direction and outcome.",
		}, []string{"direction", "outcome"}),
		alertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Alerts delivered by tier.",
		}, []string{"tier"}),
		alertFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_failures_total",
			Help:      "Alert deliveries that failed by tier.",
		}, []string{"tier"}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations_tracked",
			Help:      "Conversations currently held in memory.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations_pending",
			Help:      "Conversations awaiting a reply within the assignment filter.",
		}),
		overdue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations_overdue",
			Help:      "Pending conversations past a threshold, by tier, at the last sweep.",
		}, []string{"tier"}),
		businessOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "business_hours_open",
			Help:      "1 when alert delivery is permitted at the last sweep.",
		}),
	}
	m.registry.MustRegister(
		m.webhooks, m.alertsSent, m.alertFailures,
		m.tracked, m.pending, m.overdue, m.businessOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Webhook(direction, outcome string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(direction, outcome).Inc()
}

func (m *Metrics) AlertSent(tier models.Tier) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(string(tier)).Inc()
}

func (m *Metrics) AlertFailed(tier models.Tier) {
	if m == nil {
		return
	}
	m.alertFailures.WithLabelValues(string(tier)).Inc()
}

// Sweep records the state observed by one monitor tick.
func (m *Metrics) Sweep(tracked, pending, warnings, criticals int, open bool) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(tracked))
	m.pending.Set(float64(pending))
	m.overdue.WithLabelValues(string(models.TierWarning)).Set(float64(warnings))
	m.overdue.WithLabelValues(string(models.TierCritical)).Set(float64(criticals))
	if open {
		m.businessOpen.Set(1)
	} else {
		m.businessOpen.Set(0)
	}
}
